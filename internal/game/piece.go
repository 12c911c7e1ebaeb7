package game

// PieceKey identifies a piece by owner and per-player sequence number.
type PieceKey struct {
	Player int `json:"player"`
	Number int `json:"number"`
}

// Piece is a single disc on the board.
type Piece struct {
	Player   int  `json:"player"`
	Number   int  `json:"number"`
	Position Vec2 `json:"position"`
	Velocity Vec2 `json:"velocity"`
	Active   bool `json:"active"`
}

func NewPiece(player, number int, x, y float64) *Piece {
	return &Piece{
		Player:   player,
		Number:   number,
		Position: NewVec2(x, y),
		Active:   true,
	}
}

func (p *Piece) Key() PieceKey {
	return PieceKey{Player: p.Player, Number: p.Number}
}

func (p *Piece) Speed() float64 {
	return p.Velocity.Magnitude()
}

// Moving reports whether the piece is still above the rest threshold.
func (p *Piece) Moving() bool {
	return p.Active && p.Speed() > StopThreshold
}

// Contains reports whether pt lies inside the piece's disc.
func (p *Piece) Contains(pt Vec2) bool {
	return p.Position.DistanceTo(pt) < PieceRadius
}

// eliminate removes the piece from play for the rest of the round.
func (p *Piece) eliminate() {
	p.Active = false
	p.Velocity = Vec2{}
}

func outOfBounds(pos Vec2) bool {
	return pos.X < PieceRadius || pos.X > BoardSize-PieceRadius ||
		pos.Y < PieceRadius || pos.Y > BoardSize-PieceRadius
}

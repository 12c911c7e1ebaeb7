package game

// Board and physics constants for alkkagi.
// Fixed at build time; the browser client mirrors the board geometry.

const (
	BoardSize         = 480.0
	GridCells         = 18
	Grid              = BoardSize / GridCells
	PieceRadius       = 10.0
	CollisionDistance = 2 * PieceRadius
	Friction          = 0.98 // velocity multiplier per tick
	StopThreshold     = 0.1  // speed below which a piece is snapped to rest
	MaxPower          = 40.0 // launch speed cap, units/tick
	MaxDragDistance   = 200.0
	MinDragDistance   = 5.0
	MaxRounds         = 4

	Columns         = 3
	Rows            = 17
	PiecesPerPlayer = Columns * Rows // 51

	// Leftmost grid column of each player's starting block.
	Player1Column = 1
	Player2Column = 15

	// SettleTickLimit bounds Engine.Settle; a max-power shot rests well inside it.
	SettleTickLimit = 2000
)

// Players are numbered 1 and 2.
const (
	Player1 = 1
	Player2 = 2
)

// Opponent returns the other player.
func Opponent(player int) int {
	if player == Player1 {
		return Player2
	}
	return Player1
}

package game

import "fmt"

// RoundResult describes how a round ended.
type RoundResult struct {
	Round     int    `json:"round"`
	Winner    int    `json:"winner"`
	Reason    string `json:"reason"`
	Shooter   int    `json:"shooter"`
	Remaining [2]int `json:"remaining"`
}

// MatchResult is the final tally. Winner is 0 on a draw.
type MatchResult struct {
	Winner int    `json:"winner"`
	Wins   [2]int `json:"wins"`
}

// TickResult reports what one Match.Tick did.
type TickResult struct {
	Phase      Phase            `json:"phase"`
	Eliminated []PieceKey       `json:"eliminated,omitempty"`
	Collisions []CollisionEvent `json:"collisions,omitempty"`
	Settled    bool             `json:"settled"`
}

// Match owns the pieces and the turn/round/match progression of one table.
// All mutation goes through Launch, Tick, Advance and Reset. A Match is not safe
// for concurrent use.
type Match struct {
	Engine        *PhysicsEngine
	Phase         Phase
	CurrentPlayer int
	Round         int
	Wins          [2]int
	FirstMover    int
	Shooter       int // player whose shot is resolving; 0 when none
	ShotNumber    int
	LastRound     *RoundResult
	Result        *MatchResult
}

// NewMatch starts round 1 with player 1 to move.
func NewMatch() *Match {
	m := &Match{}
	m.Reset()
	return m
}

// Reset reinitialises the whole match. Valid from any phase; an in-flight
// shot is abandoned.
func (m *Match) Reset() {
	m.Round = 1
	m.Wins = [2]int{}
	m.FirstMover = Player1
	m.ShotNumber = 0
	m.LastRound = nil
	m.Result = nil
	m.startRound()
}

func (m *Match) startRound() {
	m.Engine = NewPhysicsEngine(StandardLayout())
	m.CurrentPlayer = m.FirstMover
	m.Shooter = 0
	m.Phase = PhaseAwaitingInput
}

// SelectAt returns the current mover's active piece under pt, or nil.
// Nothing can be selected while a shot is resolving or a round is over.
func (m *Match) SelectAt(pt Vec2) *Piece {
	if m.Phase != PhaseAwaitingInput {
		return nil
	}
	return m.Engine.PieceAt(m.CurrentPlayer, pt)
}

// Launch gives piece the velocity v (capped at MaxPower) and starts resolving.
// It is ignored, returning false, unless the match awaits input and piece is an
// active piece of the current player on this match's board.
func (m *Match) Launch(piece *Piece, v Vec2) bool {
	if m.Phase != PhaseAwaitingInput || piece == nil {
		return false
	}
	if !piece.Active || piece.Player != m.CurrentPlayer {
		return false
	}
	if m.Engine.Find(piece.Key()) != piece {
		return false
	}
	if v.IsZero() {
		return false
	}

	piece.Velocity = capVelocity(v)
	m.Shooter = m.CurrentPlayer
	m.ShotNumber++
	m.Phase = PhaseResolving
	return true
}

// LaunchDrag launches piece from a slingshot drag. Short drags cancel.
func (m *Match) LaunchDrag(piece *Piece, start, end Vec2) bool {
	v, ok := LaunchVector(start, end)
	if !ok {
		return false
	}
	return m.Launch(piece, v)
}

// Tick advances the simulation by one step while a shot is resolving, and
// settles the turn once nothing moves. Other phases are left untouched.
func (m *Match) Tick() TickResult {
	if m.Phase != PhaseResolving {
		return TickResult{Phase: m.Phase}
	}

	eliminated, collisions := m.Engine.Step()
	res := TickResult{
		Eliminated: eliminated,
		Collisions: collisions,
	}
	if !m.Engine.AnyMoving() {
		m.settle()
		res.Settled = true
	}
	res.Phase = m.Phase
	return res
}

// settle runs the win check at the end of a shot.
func (m *Match) settle() {
	m.Engine.Halt()
	shooter := m.Shooter
	m.Shooter = 0

	remaining := [2]int{m.Engine.ActiveCount(Player1), m.Engine.ActiveCount(Player2)}

	var winner int
	reason := ReasonWipeout
	switch {
	case remaining[0] == 0 && remaining[1] == 0:
		// The shooter emptied both sides; the round goes to the other player.
		winner = Opponent(shooter)
		reason = ReasonDoubleWipeout
	case remaining[0] == 0:
		winner = Player2
	case remaining[1] == 0:
		winner = Player1
	default:
		m.CurrentPlayer = Opponent(m.CurrentPlayer)
		m.Phase = PhaseAwaitingInput
		return
	}

	m.Wins[winner-1]++
	m.LastRound = &RoundResult{
		Round:     m.Round,
		Winner:    winner,
		Reason:    reason,
		Shooter:   shooter,
		Remaining: remaining,
	}
	m.Phase = PhaseRoundOver
	m.mustBeConsistent()
}

// Advance leaves RoundOver: either the next round starts with the other first
// mover, or, after the last round, the match ends.
func (m *Match) Advance() bool {
	if m.Phase != PhaseRoundOver {
		return false
	}

	if m.Round >= MaxRounds {
		m.Result = &MatchResult{Winner: leader(m.Wins), Wins: m.Wins}
		m.Phase = PhaseMatchOver
		m.mustBeConsistent()
		return true
	}

	m.Round++
	m.FirstMover = Opponent(m.FirstMover)
	m.startRound()
	m.mustBeConsistent()
	return true
}

func leader(wins [2]int) int {
	switch {
	case wins[0] > wins[1]:
		return Player1
	case wins[1] > wins[0]:
		return Player2
	}
	return 0
}

// completedRounds is the number of rounds that already have a winner.
func (m *Match) completedRounds() int {
	if m.Phase == PhaseRoundOver || m.Phase == PhaseMatchOver {
		return m.Round
	}
	return m.Round - 1
}

// mustBeConsistent panics on a broken invariant. These are programming
// errors, never a result of player input.
func (m *Match) mustBeConsistent() {
	if m.Round < 1 || m.Round > MaxRounds {
		panic(fmt.Sprintf("game: round %d out of range [1,%d]", m.Round, MaxRounds))
	}
	if m.Wins[0] < 0 || m.Wins[1] < 0 {
		panic(fmt.Sprintf("game: negative win counter %v", m.Wins))
	}
	if m.Wins[0]+m.Wins[1] != m.completedRounds() {
		panic(fmt.Sprintf("game: wins %v do not match %d completed rounds", m.Wins, m.completedRounds()))
	}
	if m.CurrentPlayer != Player1 && m.CurrentPlayer != Player2 {
		panic(fmt.Sprintf("game: invalid current player %d", m.CurrentPlayer))
	}
}

// Status is the scoreboard view, recomputed on demand.
type Status struct {
	Phase         Phase        `json:"phase"`
	CurrentPlayer int          `json:"current_player"`
	Round         int          `json:"round"`
	MaxRounds     int          `json:"max_rounds"`
	Wins          [2]int       `json:"wins"`
	Active        [2]int       `json:"active"`
	FirstMover    int          `json:"first_mover"`
	ShotNumber    int          `json:"shot_number"`
	LastRound     *RoundResult `json:"last_round,omitempty"`
	Result        *MatchResult `json:"result,omitempty"`
}

func (m *Match) Status() Status {
	return Status{
		Phase:         m.Phase,
		CurrentPlayer: m.CurrentPlayer,
		Round:         m.Round,
		MaxRounds:     MaxRounds,
		Wins:          m.Wins,
		Active:        [2]int{m.Engine.ActiveCount(Player1), m.Engine.ActiveCount(Player2)},
		FirstMover:    m.FirstMover,
		ShotNumber:    m.ShotNumber,
		LastRound:     m.LastRound,
		Result:        m.Result,
	}
}

// PieceView is the render contract for one piece.
type PieceView struct {
	Player int     `json:"player"`
	Number int     `json:"number"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Active bool    `json:"active"`
}

// DragView is the render contract for an in-progress drag.
type DragView struct {
	Piece PieceKey `json:"piece"`
	From  Vec2     `json:"from"`
	To    Vec2     `json:"to"`
	Power int      `json:"power"`
}

// Frame is everything the presentation layer needs to draw one tick.
type Frame struct {
	Phase         Phase       `json:"phase"`
	CurrentPlayer int         `json:"current_player"`
	Pieces        []PieceView `json:"pieces"`
	Drag          *DragView   `json:"drag,omitempty"`
}

// Frame builds the render view. drag may be nil.
func (m *Match) Frame(drag *DragSession) Frame {
	pieces := make([]PieceView, len(m.Engine.Pieces))
	for i, p := range m.Engine.Pieces {
		pos := p.Position.Round()
		pieces[i] = PieceView{
			Player: p.Player,
			Number: p.Number,
			X:      pos.X,
			Y:      pos.Y,
			Active: p.Active,
		}
	}
	f := Frame{
		Phase:         m.Phase,
		CurrentPlayer: m.CurrentPlayer,
		Pieces:        pieces,
	}
	if drag != nil {
		f.Drag = drag.View()
	}
	return f
}

package game

import (
	"errors"
	"fmt"
)

// MatchSnapshot is the serialisable form of a settled Match.
type MatchSnapshot struct {
	Phase         Phase        `json:"phase"`
	CurrentPlayer int          `json:"current_player"`
	Round         int          `json:"round"`
	Wins          [2]int       `json:"wins"`
	FirstMover    int          `json:"first_mover"`
	ShotNumber    int          `json:"shot_number"`
	LastRound     *RoundResult `json:"last_round,omitempty"`
	Result        *MatchResult `json:"result,omitempty"`
	Pieces        []Piece      `json:"pieces"`
}

var errSnapshotResolving = errors.New("cannot snapshot a match while a shot is resolving")

// Snapshot captures the match. Only settled phases can be captured.
func (m *Match) Snapshot() (MatchSnapshot, error) {
	if m.Phase == PhaseResolving {
		return MatchSnapshot{}, errSnapshotResolving
	}
	pieces := make([]Piece, len(m.Engine.Pieces))
	for i, p := range m.Engine.Pieces {
		pieces[i] = *p
	}
	return MatchSnapshot{
		Phase:         m.Phase,
		CurrentPlayer: m.CurrentPlayer,
		Round:         m.Round,
		Wins:          m.Wins,
		FirstMover:    m.FirstMover,
		ShotNumber:    m.ShotNumber,
		LastRound:     m.LastRound,
		Result:        m.Result,
		Pieces:        pieces,
	}, nil
}

// RestoreMatch rebuilds a Match from a snapshot, rejecting anything that
// would violate the match invariants.
func RestoreMatch(s MatchSnapshot) (*Match, error) {
	if !s.Phase.Valid() || s.Phase == PhaseResolving {
		return nil, fmt.Errorf("invalid snapshot phase %q", s.Phase)
	}
	if s.Round < 1 || s.Round > MaxRounds {
		return nil, fmt.Errorf("invalid snapshot round %d", s.Round)
	}
	if s.CurrentPlayer != Player1 && s.CurrentPlayer != Player2 {
		return nil, fmt.Errorf("invalid snapshot current player %d", s.CurrentPlayer)
	}
	if s.FirstMover != Player1 && s.FirstMover != Player2 {
		return nil, fmt.Errorf("invalid snapshot first mover %d", s.FirstMover)
	}
	if len(s.Pieces) != 2*PiecesPerPlayer {
		return nil, fmt.Errorf("invalid snapshot piece count %d", len(s.Pieces))
	}

	pieces := make([]*Piece, len(s.Pieces))
	for i := range s.Pieces {
		p := s.Pieces[i]
		if p.Player != Player1 && p.Player != Player2 {
			return nil, fmt.Errorf("invalid snapshot piece owner %d", p.Player)
		}
		p.Velocity = Vec2{}
		pieces[i] = &p
	}

	m := &Match{
		Engine:        NewPhysicsEngine(pieces),
		Phase:         s.Phase,
		CurrentPlayer: s.CurrentPlayer,
		Round:         s.Round,
		Wins:          s.Wins,
		FirstMover:    s.FirstMover,
		ShotNumber:    s.ShotNumber,
		LastRound:     s.LastRound,
		Result:        s.Result,
	}
	if s.Wins[0] < 0 || s.Wins[1] < 0 || s.Wins[0]+s.Wins[1] != m.completedRounds() {
		return nil, fmt.Errorf("invalid snapshot wins %v for round %d", s.Wins, s.Round)
	}
	return m, nil
}

package game

import "math"

// CollisionEvent records a resolved piece-piece contact for clients (sound cues) and logs.
type CollisionEvent struct {
	First  PieceKey `json:"first"`
	Second PieceKey `json:"second"`
	Speed  float64  `json:"speed"` // closing speed along the contact normal
}

// PhysicsEngine advances piece motion one discrete tick at a time.
// It is not safe for concurrent use; Table serialises access.
type PhysicsEngine struct {
	Pieces []*Piece
}

// NewPhysicsEngine creates an engine over the given pieces. The slice order is
// the iteration order for collision pairs and stays stable for the round.
func NewPhysicsEngine(pieces []*Piece) *PhysicsEngine {
	return &PhysicsEngine{Pieces: pieces}
}

// Step runs one tick: integrate, then resolve collisions.
func (pe *PhysicsEngine) Step() ([]PieceKey, []CollisionEvent) {
	eliminated := pe.Integrate()
	return eliminated, pe.ResolveCollisions()
}

// Settle ticks until nothing moves or maxTicks is reached.
// Returns the number of ticks run and every collision seen.
func (pe *PhysicsEngine) Settle(maxTicks int) (int, []CollisionEvent) {
	events := make([]CollisionEvent, 0)
	ticks := 0
	for pe.AnyMoving() && ticks < maxTicks {
		_, ev := pe.Step()
		events = append(events, ev...)
		ticks++
	}
	return ticks, events
}

// Integrate moves every active piece by its velocity, applies friction,
// eliminates pieces that crossed the playable margin and snaps slow pieces to rest.
// Returns the pieces eliminated on this tick.
func (pe *PhysicsEngine) Integrate() []PieceKey {
	var eliminated []PieceKey
	for _, p := range pe.Pieces {
		if !p.Active {
			continue
		}

		p.Position = p.Position.Plus(p.Velocity)
		p.Velocity = p.Velocity.Times(Friction)

		if outOfBounds(p.Position) {
			p.eliminate()
			eliminated = append(eliminated, p.Key())
			continue
		}

		if p.Speed() < StopThreshold {
			p.Velocity = Vec2{}
		}
	}
	return eliminated
}

// ResolveCollisions resolves every overlapping pair of active pieces in i<j order.
// Pairs are handled one after another, without a global solver.
func (pe *PhysicsEngine) ResolveCollisions() []CollisionEvent {
	var events []CollisionEvent
	for i := 0; i < len(pe.Pieces); i++ {
		a := pe.Pieces[i]
		if !a.Active {
			continue
		}
		for j := i + 1; j < len(pe.Pieces); j++ {
			b := pe.Pieces[j]
			if !b.Active {
				continue
			}
			if ev, ok := resolvePair(a, b); ok {
				events = append(events, ev)
			}
		}
	}
	return events
}

// resolvePair applies an equal-mass elastic collision: the velocity components
// along the contact normal are exchanged, tangential components are kept, and
// both discs are pushed apart by half the overlap each.
func resolvePair(a, b *Piece) (CollisionEvent, bool) {
	delta := b.Position.Minus(a.Position)
	dist := delta.Magnitude()
	if dist >= CollisionDistance {
		return CollisionEvent{}, false
	}

	// Coincident centres have no defined normal; push apart along +x.
	n := Vec2{X: 1}
	if dist > 0 {
		n = delta.Normalize()
	}
	t := n.LeftNormal()

	aNormal, aTangent := a.Velocity.Dot(n), a.Velocity.Dot(t)
	bNormal, bTangent := b.Velocity.Dot(n), b.Velocity.Dot(t)

	a.Velocity = n.Times(bNormal).Plus(t.Times(aTangent))
	b.Velocity = n.Times(aNormal).Plus(t.Times(bTangent))

	overlap := CollisionDistance - dist
	a.Position = a.Position.Minus(n.Times(overlap * 0.5))
	b.Position = b.Position.Plus(n.Times(overlap * 0.5))

	return CollisionEvent{
		First:  a.Key(),
		Second: b.Key(),
		Speed:  math.Abs(aNormal - bNormal),
	}, true
}

// AnyMoving reports whether any active piece is above the rest threshold.
func (pe *PhysicsEngine) AnyMoving() bool {
	for _, p := range pe.Pieces {
		if p.Moving() {
			return true
		}
	}
	return false
}

// AllStopped is the negation of AnyMoving.
func (pe *PhysicsEngine) AllStopped() bool {
	return !pe.AnyMoving()
}

// Halt zeroes every residual velocity once the board has settled.
func (pe *PhysicsEngine) Halt() {
	for _, p := range pe.Pieces {
		p.Velocity = Vec2{}
	}
}

// ActiveCount returns the number of active pieces owned by player.
func (pe *PhysicsEngine) ActiveCount(player int) int {
	n := 0
	for _, p := range pe.Pieces {
		if p.Active && p.Player == player {
			n++
		}
	}
	return n
}

// Find returns the piece with the given key, or nil.
func (pe *PhysicsEngine) Find(key PieceKey) *Piece {
	for _, p := range pe.Pieces {
		if p.Player == key.Player && p.Number == key.Number {
			return p
		}
	}
	return nil
}

// PieceAt returns the first active piece of player whose disc contains pt.
func (pe *PhysicsEngine) PieceAt(player int, pt Vec2) *Piece {
	for _, p := range pe.Pieces {
		if p.Active && p.Player == player && p.Contains(pt) {
			return p
		}
	}
	return nil
}

package game

import (
	"math"
	"testing"
)

const eps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < eps
}

// setupEngine builds an engine over the given pieces only.
func setupEngine(pieces ...*Piece) *PhysicsEngine {
	return NewPhysicsEngine(pieces)
}

func TestIntegrateAppliesFriction(t *testing.T) {
	p := NewPiece(Player1, 1, 240, 240)
	p.Velocity = NewVec2(10, 0)
	engine := setupEngine(p)

	engine.Integrate()

	if p.Position.X != 250 || p.Position.Y != 240 {
		t.Errorf("position = %+v, want (250,240)", p.Position)
	}
	if !approx(p.Velocity.X, 9.8) || p.Velocity.Y != 0 {
		t.Errorf("velocity = %+v, want (9.8,0)", p.Velocity)
	}
}

func TestIntegrateSnapsSlowPiecesToRest(t *testing.T) {
	p := NewPiece(Player1, 1, 240, 240)
	p.Velocity = NewVec2(0.1, 0)
	engine := setupEngine(p)

	engine.Integrate()

	if !p.Velocity.IsZero() {
		t.Errorf("velocity = %+v, want zero after dropping below threshold", p.Velocity)
	}
	if !approx(p.Position.X, 240.1) {
		t.Errorf("x = %v, want 240.1", p.Position.X)
	}
	if engine.AnyMoving() {
		t.Error("engine still reports motion")
	}
}

func TestIntegrateEliminatesPastMargin(t *testing.T) {
	out := NewPiece(Player1, 1, 15, 100)
	out.Velocity = NewVec2(-6, 0) // lands at x=9
	edge := NewPiece(Player1, 2, 16, 200)
	edge.Velocity = NewVec2(-6, 0) // lands exactly on the margin
	engine := setupEngine(out, edge)

	eliminated := engine.Integrate()

	if out.Active {
		t.Error("piece past the margin should be eliminated")
	}
	if !out.Velocity.IsZero() {
		t.Errorf("eliminated piece velocity = %+v, want zero", out.Velocity)
	}
	if len(eliminated) != 1 || eliminated[0] != out.Key() {
		t.Errorf("eliminated = %v, want [%v]", eliminated, out.Key())
	}
	if !edge.Active {
		t.Error("piece exactly on the margin should stay active")
	}
}

func TestInactivePiecesAreFrozen(t *testing.T) {
	p := NewPiece(Player2, 7, 240, 240)
	p.Active = false
	p.Velocity = NewVec2(3, 3)
	other := NewPiece(Player1, 1, 245, 240)
	engine := setupEngine(p, other)

	engine.Step()

	if p.Position != NewVec2(240, 240) {
		t.Errorf("inactive piece moved to %+v", p.Position)
	}
	if other.Position != NewVec2(245, 240) {
		t.Errorf("active piece was pushed by an inactive one: %+v", other.Position)
	}
}

func TestHeadOnCollisionSwapsVelocities(t *testing.T) {
	a := NewPiece(Player1, 1, 200, 240)
	a.Velocity = NewVec2(5, 0)
	b := NewPiece(Player2, 1, 219, 240)
	engine := setupEngine(a, b)

	events := engine.ResolveCollisions()

	if !approx(a.Velocity.X, 0) || !approx(a.Velocity.Y, 0) {
		t.Errorf("shooter velocity = %+v, want zero", a.Velocity)
	}
	if !approx(b.Velocity.X, 5) || !approx(b.Velocity.Y, 0) {
		t.Errorf("target velocity = %+v, want (5,0)", b.Velocity)
	}
	if !approx(a.Position.X, 199.5) || !approx(b.Position.X, 219.5) {
		t.Errorf("positions = %v, %v; want 199.5, 219.5", a.Position.X, b.Position.X)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].First != a.Key() || events[0].Second != b.Key() || !approx(events[0].Speed, 5) {
		t.Errorf("event = %+v", events[0])
	}
}

func TestGlancingCollisionKeepsTangentialComponent(t *testing.T) {
	a := NewPiece(Player1, 1, 200, 240)
	a.Velocity = NewVec2(3, 4)
	b := NewPiece(Player2, 1, 210, 240)
	engine := setupEngine(a, b)

	engine.ResolveCollisions()

	if !approx(a.Velocity.X, 0) || !approx(a.Velocity.Y, 4) {
		t.Errorf("a velocity = %+v, want (0,4)", a.Velocity)
	}
	if !approx(b.Velocity.X, 3) || !approx(b.Velocity.Y, 0) {
		t.Errorf("b velocity = %+v, want (3,0)", b.Velocity)
	}
	if d := a.Position.DistanceTo(b.Position); !approx(d, CollisionDistance) {
		t.Errorf("separation = %v, want %v", d, CollisionDistance)
	}
}

func TestTouchingPiecesDoNotCollide(t *testing.T) {
	a := NewPiece(Player1, 1, 200, 240)
	a.Velocity = NewVec2(1, 0)
	b := NewPiece(Player2, 1, 220, 240)
	engine := setupEngine(a, b)

	if events := engine.ResolveCollisions(); len(events) != 0 {
		t.Errorf("pieces exactly 20 apart collided: %v", events)
	}
	if a.Velocity != NewVec2(1, 0) {
		t.Errorf("velocity changed: %+v", a.Velocity)
	}
}

func TestCoincidentCentresSeparateAlongX(t *testing.T) {
	a := NewPiece(Player1, 1, 240, 240)
	b := NewPiece(Player2, 1, 240, 240)
	engine := setupEngine(a, b)

	events := engine.ResolveCollisions()

	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if a.Position != NewVec2(230, 240) || b.Position != NewVec2(250, 240) {
		t.Errorf("positions = %+v, %+v; want (230,240), (250,240)", a.Position, b.Position)
	}
	for _, p := range []*Piece{a, b} {
		if math.IsNaN(p.Position.X) || math.IsNaN(p.Velocity.X) {
			t.Errorf("NaN after coincident collision: %+v", p)
		}
	}
}

func TestCollisionConservesMomentumAndEnergy(t *testing.T) {
	a := NewPiece(Player1, 1, 100, 100)
	a.Velocity = NewVec2(7, -2)
	b := NewPiece(Player2, 1, 112, 109)
	b.Velocity = NewVec2(-1, 3)
	engine := setupEngine(a, b)

	momentum := a.Velocity.Plus(b.Velocity)
	energy := a.Velocity.MagnitudeSquared() + b.Velocity.MagnitudeSquared()

	if len(engine.ResolveCollisions()) != 1 {
		t.Fatal("expected a collision")
	}

	after := a.Velocity.Plus(b.Velocity)
	if !approx(after.X, momentum.X) || !approx(after.Y, momentum.Y) {
		t.Errorf("momentum %+v -> %+v", momentum, after)
	}
	if e := a.Velocity.MagnitudeSquared() + b.Velocity.MagnitudeSquared(); !approx(e, energy) {
		t.Errorf("energy %v -> %v", energy, e)
	}
}

func TestSettleStopsLonePiece(t *testing.T) {
	p := NewPiece(Player1, 1, 240, 240)
	p.Velocity = NewVec2(2, 0)
	engine := setupEngine(p)

	ticks, events := engine.Settle(SettleTickLimit)

	if !engine.AllStopped() {
		t.Fatal("piece still moving after Settle")
	}
	if ticks != 149 {
		t.Errorf("ticks = %d, want 149", ticks)
	}
	if len(events) != 0 {
		t.Errorf("unexpected collisions: %v", events)
	}
	if math.Abs(p.Position.X-335.0718) > 1e-3 || p.Position.Y != 240 {
		t.Errorf("rest position = %+v, want about (335.07,240)", p.Position)
	}
}

func TestSettleHonoursTickLimit(t *testing.T) {
	p := NewPiece(Player1, 1, 240, 240)
	p.Velocity = NewVec2(2, 0)
	engine := setupEngine(p)

	ticks, _ := engine.Settle(10)

	if ticks != 10 {
		t.Errorf("ticks = %d, want 10", ticks)
	}
	if !engine.AnyMoving() {
		t.Error("piece should still be moving after 10 ticks")
	}
}

func TestStrikeIntoBlockTransfersMotion(t *testing.T) {
	engine := NewPhysicsEngine(StandardLayout())
	shooter := engine.Find(PieceKey{Player: Player1, Number: 27}) // row 9, column 3
	shooter.Velocity = NewVec2(MaxPower, 0)

	engine.Settle(SettleTickLimit)

	if !engine.AllStopped() {
		t.Fatal("board did not settle")
	}
	if engine.ActiveCount(Player2) == PiecesPerPlayer {
		t.Error("a full-power shot across the row should knock at least one opponent piece out")
	}
	for _, p := range engine.Pieces {
		if p.Active && outOfBounds(p.Position) {
			t.Errorf("active piece %v outside the board at %+v", p.Key(), p.Position)
		}
	}
}

func TestFindAndPieceAt(t *testing.T) {
	engine := NewPhysicsEngine(StandardLayout())

	p := engine.Find(PieceKey{Player: Player2, Number: 1})
	if p == nil || p.Position != NewVec2(15*Grid, Grid) {
		t.Fatalf("Find(P2 #1) = %+v", p)
	}
	if engine.Find(PieceKey{Player: Player1, Number: 52}) != nil {
		t.Error("Find returned a piece for an unknown number")
	}

	if got := engine.PieceAt(Player2, p.Position.Plus(NewVec2(3, 3))); got != p {
		t.Errorf("PieceAt near P2 #1 = %+v", got)
	}
	if got := engine.PieceAt(Player1, p.Position); got != nil {
		t.Errorf("PieceAt returned the opponent's piece %v", got.Key())
	}
	if got := engine.PieceAt(Player2, NewVec2(240, 240)); got != nil {
		t.Errorf("PieceAt on empty board area = %v", got.Key())
	}

	p.eliminate()
	if engine.PieceAt(Player2, p.Position) != nil {
		t.Error("PieceAt returned an eliminated piece")
	}
	if n := engine.ActiveCount(Player2); n != PiecesPerPlayer-1 {
		t.Errorf("ActiveCount = %d, want %d", n, PiecesPerPlayer-1)
	}
}

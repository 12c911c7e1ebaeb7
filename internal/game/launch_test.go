package game

import "testing"

func TestLaunchVector(t *testing.T) {
	start := NewVec2(100, 100)

	cases := []struct {
		name  string
		end   Vec2
		want  Vec2
		ok    bool
		power int
	}{
		{"half drag left shoots right", NewVec2(0, 100), NewVec2(20, 0), true, 50},
		{"full drag down shoots up", NewVec2(100, 300), NewVec2(0, -40), true, 100},
		{"over-long drag is capped", NewVec2(100, 500), NewVec2(0, -40), true, 100},
		{"diagonal", NewVec2(40, 180), NewVec2(12, -16), true, 50},
		{"dead zone", NewVec2(100, 104), Vec2{}, false, 2},
		{"no movement", start, Vec2{}, false, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, ok := LaunchVector(start, tc.end)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if !approx(v.X, tc.want.X) || !approx(v.Y, tc.want.Y) {
				t.Errorf("v = %+v, want %+v", v, tc.want)
			}
			if p := PowerPercent(start, tc.end); p != tc.power {
				t.Errorf("power = %d, want %d", p, tc.power)
			}
		})
	}
}

func TestDragSessionLifecycle(t *testing.T) {
	m := NewMatch()
	var d DragSession

	if d.Begin(m, NewVec2(240, 240)) {
		t.Fatal("began a drag on empty board")
	}
	if d.Active() || d.View() != nil {
		t.Fatal("idle session reports a drag")
	}

	p := piece(m, Player1, 26)
	grab := p.Position.Plus(NewVec2(2, -3))
	if !d.Begin(m, grab) {
		t.Fatal("could not grab own piece")
	}
	d.Move(grab.Plus(NewVec2(-80, 0)))

	view := d.View()
	if view == nil || view.Power != 40 || view.Piece != p.Key() {
		t.Fatalf("view = %+v", view)
	}

	if !d.Release(m) {
		t.Fatal("release did not launch")
	}
	if d.Active() {
		t.Error("session still active after release")
	}
	if !approx(p.Velocity.X, 16) || !approx(p.Velocity.Y, 0) {
		t.Errorf("velocity = %+v, want (16,0)", p.Velocity)
	}
	if m.Phase != PhaseResolving {
		t.Errorf("phase = %s", m.Phase)
	}

	// Nothing is selectable while the shot resolves.
	if d.Begin(m, piece(m, Player1, 1).Position) {
		t.Error("began a drag while resolving")
	}
}

func TestDragSessionCancelAndShortRelease(t *testing.T) {
	m := NewMatch()
	var d DragSession
	p := piece(m, Player1, 1)

	d.Begin(m, p.Position)
	d.Cancel()
	if d.Active() || d.Release(m) {
		t.Error("cancelled session still launched")
	}

	d.Begin(m, p.Position)
	d.Move(p.Position.Plus(NewVec2(2, 2)))
	if d.Release(m) {
		t.Error("short drag launched")
	}
	if d.Active() {
		t.Error("short release left the selection active")
	}
	if m.Phase != PhaseAwaitingInput {
		t.Errorf("phase = %s", m.Phase)
	}

	// Move without a selection is ignored.
	d.Move(NewVec2(1, 1))
	if d.End != (Vec2{}) {
		t.Errorf("end moved on idle session: %+v", d.End)
	}
}

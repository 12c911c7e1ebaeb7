package game

// DragSession is the input layer's in-progress selection. It only touches the
// match through SelectAt and LaunchDrag.
type DragSession struct {
	Piece *Piece
	Start Vec2
	End   Vec2
}

// Begin selects the current mover's piece under p. Returns false if there is none.
func (d *DragSession) Begin(m *Match, p Vec2) bool {
	piece := m.SelectAt(p)
	if piece == nil {
		d.Cancel()
		return false
	}
	d.Piece = piece
	d.Start = p
	d.End = p
	return true
}

// Move updates the drag end point. Ignored when nothing is selected.
func (d *DragSession) Move(p Vec2) {
	if d.Piece == nil {
		return
	}
	d.End = p
}

// Release launches the selected piece and clears the selection either way.
func (d *DragSession) Release(m *Match) bool {
	if d.Piece == nil {
		return false
	}
	launched := m.LaunchDrag(d.Piece, d.Start, d.End)
	d.Cancel()
	return launched
}

func (d *DragSession) Cancel() {
	d.Piece = nil
	d.Start = Vec2{}
	d.End = Vec2{}
}

func (d *DragSession) Active() bool {
	return d.Piece != nil
}

// View returns the drag feedback for rendering, or nil when idle.
func (d *DragSession) View() *DragView {
	if d.Piece == nil {
		return nil
	}
	return &DragView{
		Piece: d.Piece.Key(),
		From:  d.Piece.Position.Round(),
		To:    d.End.Round(),
		Power: PowerPercent(d.Start, d.End),
	}
}

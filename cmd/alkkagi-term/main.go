// Command alkkagi-term is a hot-seat terminal driver for the game core.
// Both players share the mouse: press on one of your stones, drag away from
// the direction you want to shoot, and release.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/alkkagi/internal/game"
)

const tickRate = time.Second / 60

var (
	styleDefault = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	styleBoard   = styleDefault.Foreground(tcell.ColorDarkGoldenrod)
	styleP1      = styleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleP2      = styleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleAim     = styleDefault.Foreground(tcell.ColorYellow)
	styleHeader  = styleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleBanner  = styleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorLime).Bold(true)
	styleHelp    = styleDefault.Foreground(tcell.ColorGray)
)

// driver owns the match; only the main loop touches it.
type driver struct {
	screen  tcell.Screen
	match   *game.Match
	drag    game.DragSession
	mouseOn bool
	running bool

	// board area in cells
	left, top, cols, rows int
}

func newDriver(s tcell.Screen) *driver {
	d := &driver{screen: s, match: game.NewMatch(), running: true}
	d.layout()
	return d
}

// layout fits the board below the header and above the help line.
func (d *driver) layout() {
	w, h := d.screen.Size()
	d.left, d.top = 0, 1
	d.cols = w
	d.rows = h - 2
	if d.cols < 1 {
		d.cols = 1
	}
	if d.rows < 1 {
		d.rows = 1
	}
}

func (d *driver) toCell(p game.Vec2) (int, int) {
	cx := int(p.X / game.BoardSize * float64(d.cols))
	cy := int(p.Y / game.BoardSize * float64(d.rows))
	return d.left + cx, d.top + cy
}

func (d *driver) toBoard(x, y int) game.Vec2 {
	bx := (float64(x-d.left) + 0.5) * game.BoardSize / float64(d.cols)
	by := (float64(y-d.top) + 0.5) * game.BoardSize / float64(d.rows)
	return game.NewVec2(bx, by)
}

// pickAt finds the mover's stone drawn in cell (x, y). A cell can be coarser
// than a stone, so the hit test is done in cells and the drag starts at the
// stone's centre.
func (d *driver) pickAt(x, y int) (game.Vec2, bool) {
	p := d.toBoard(x, y)
	if piece := d.match.SelectAt(p); piece != nil {
		return p, true
	}
	for _, piece := range d.match.Engine.Pieces {
		if !piece.Active || piece.Player != d.match.CurrentPlayer {
			continue
		}
		if px, py := d.toCell(piece.Position); px == x && py == y {
			return piece.Position, true
		}
	}
	return game.Vec2{}, false
}

func (d *driver) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	down := ev.Buttons()&tcell.Button1 != 0

	switch {
	case down && !d.mouseOn:
		d.mouseOn = true
		if p, ok := d.pickAt(x, y); ok {
			d.drag.Begin(d.match, p)
		}
	case down && d.mouseOn:
		d.drag.Move(d.toBoard(x, y))
	case !down && d.mouseOn:
		d.mouseOn = false
		if d.drag.Active() {
			d.drag.Move(d.toBoard(x, y))
			if d.drag.Release(d.match) {
				log.Printf("[TERM] shot #%d by P%d", d.match.ShotNumber, d.match.CurrentPlayer)
			}
		}
	}
}

func (d *driver) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		d.running = false
		return
	}
	if ev.Key() != tcell.KeyRune {
		return
	}
	switch ev.Rune() {
	case 'q', 'Q':
		d.running = false
	case 'r', 'R':
		d.drag.Cancel()
		d.match.Reset()
		log.Printf("[TERM] match reset")
	case 'n', 'N', ' ':
		if d.match.Advance() {
			log.Printf("[TERM] advanced to %s, round %d", d.match.Phase, d.match.Round)
		}
	}
}

func (d *driver) tick() {
	res := d.match.Tick()
	if res.Settled && res.Phase == game.PhaseRoundOver {
		lr := d.match.LastRound
		log.Printf("[TERM] round %d won by P%d (%s)", lr.Round, lr.Winner, lr.Reason)
	}
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func (d *driver) render() {
	s := d.screen
	s.Clear()
	w, h := s.Size()

	for y := d.top; y < d.top+d.rows; y++ {
		for x := d.left; x < d.left+d.cols; x++ {
			s.SetContent(x, y, '·', nil, styleBoard)
		}
	}

	frame := d.match.Frame(&d.drag)
	if frame.Drag != nil {
		d.drawAim(frame.Drag)
	}
	for _, pv := range frame.Pieces {
		if !pv.Active {
			continue
		}
		x, y := d.toCell(game.NewVec2(pv.X, pv.Y))
		style := styleP1
		if pv.Player == game.Player2 {
			style = styleP2
		}
		s.SetContent(x, y, '●', nil, style)
	}

	st := d.match.Status()
	header := fmt.Sprintf(" Round %d/%d   P1 %d - %d P2   stones %d:%d   to move: P%d   %s",
		st.Round, st.MaxRounds, st.Wins[0], st.Wins[1], st.Active[0], st.Active[1], st.CurrentPlayer, st.Phase)
	if frame.Drag != nil {
		header += fmt.Sprintf("   power %d%%", frame.Drag.Power)
	}
	drawText(s, 0, 0, header, styleHeader)

	switch st.Phase {
	case game.PhaseRoundOver:
		d.banner(w, fmt.Sprintf(" Round %d goes to P%d - press n ", st.LastRound.Round, st.LastRound.Winner))
	case game.PhaseMatchOver:
		msg := " Draw - press r "
		if st.Result.Winner != 0 {
			msg = fmt.Sprintf(" P%d wins the match %d-%d - press r ", st.Result.Winner, st.Wins[0], st.Wins[1])
		}
		d.banner(w, msg)
	}

	drawText(s, 0, h-1, " drag a stone to shoot   r reset   n/space next round   q quit", styleHelp)
	s.Show()
}

// drawAim marks the shot direction, opposite to the drag.
func (d *driver) drawAim(v *game.DragView) {
	aim := v.From.Plus(v.To.Minus(v.From).Invert())
	const steps = 12
	for i := 1; i <= steps; i++ {
		t := float64(i) / steps
		p := v.From.Plus(aim.Minus(v.From).Times(t))
		x, y := d.toCell(p)
		d.screen.SetContent(x, y, '∙', nil, styleAim)
	}
	x, y := d.toCell(v.To)
	d.screen.SetContent(x, y, '+', nil, styleAim)
}

func (d *driver) banner(w int, msg string) {
	x := (w - len(msg)) / 2
	if x < 0 {
		x = 0
	}
	drawText(d.screen, x, d.top+d.rows/2, msg, styleBanner)
}

func (d *driver) run() {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := d.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	for d.running {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				d.layout()
				d.screen.Sync()
			case *tcell.EventKey:
				d.handleKey(ev)
			case *tcell.EventMouse:
				d.handleMouse(ev)
			}
		case <-ticker.C:
			d.tick()
			d.render()
		}
	}
}

func main() {
	logPath := flag.String("log", "", "write log output to this file")
	flag.Parse()

	log.SetOutput(io.Discard)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	s, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := s.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		os.Exit(1)
	}
	s.SetStyle(styleDefault)
	s.EnableMouse()

	d := newDriver(s)
	d.run()
	s.Fini()

	st := d.match.Status()
	fmt.Printf("Final score: P1 %d - %d P2\n", st.Wins[0], st.Wins[1])
}

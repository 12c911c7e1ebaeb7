package game

import (
	"context"
	"log"
	"sync"
	"time"
)

// Event names delivered to a Notifier.
const (
	EventFrame     = "frame"
	EventStatus    = "status"
	EventCollision = "collision"
	EventRoundOver = "round_over"
	EventMatchOver = "match_over"
	EventClosed    = "closed"
)

// ClosedEvent tells attached clients the table is gone.
type ClosedEvent struct {
	Reason string `json:"reason"`
}

// Notifier receives table events. Calls happen outside the table lock.
type Notifier interface {
	Notify(t *Table, event string, payload interface{})
}

// TableOptions controls the runner cadence.
type TableOptions struct {
	TickHz      int
	BroadcastHz int
	RoundPause  time.Duration // 0 disables automatic round advance
}

// Table is one hot-seat board served to a presentation client. It serialises
// access to its Match: the runner ticks it, input handlers mutate it between ticks.
type Table struct {
	ID           string
	Token        string
	CreatedAt    time.Time
	LastActivity time.Time

	match          *Match
	drag           DragSession
	opts           TableOptions
	broadcastEvery int
	ticks          uint64
	advanceAt      time.Time

	notifier Notifier
	onSettle func(*Table)

	quit     chan struct{}
	stopOnce sync.Once
	stopped  bool // set by Stop; later input is ignored
	mu       sync.Mutex
}

type tableEvent struct {
	name    string
	payload interface{}
}

// NewTable wraps m. A nil match starts a fresh one.
func NewTable(id, token string, m *Match, opts TableOptions) *Table {
	if m == nil {
		m = NewMatch()
	}
	if opts.TickHz <= 0 {
		opts.TickHz = 60
	}
	if opts.BroadcastHz <= 0 || opts.BroadcastHz > opts.TickHz {
		opts.BroadcastHz = opts.TickHz
	}
	broadcastEvery := opts.TickHz / opts.BroadcastHz
	if broadcastEvery <= 0 {
		broadcastEvery = 1
	}

	now := time.Now()
	t := &Table{
		ID:             id,
		Token:          token,
		CreatedAt:      now,
		LastActivity:   now,
		match:          m,
		opts:           opts,
		broadcastEvery: broadcastEvery,
		quit:           make(chan struct{}),
	}
	// A match restored between rounds still gets its pause.
	if m.Phase == PhaseRoundOver && opts.RoundPause > 0 {
		t.advanceAt = now.Add(opts.RoundPause)
	}
	return t
}

func (t *Table) SetNotifier(n Notifier) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notifier = n
}

// OnSettle registers a hook run whenever the board comes to rest or is reset.
func (t *Table) OnSettle(fn func(*Table)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettle = fn
}

// Run drives the table at TickHz until ctx is done or Stop is called.
func (t *Table) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(t.opts.TickHz))
	defer ticker.Stop()

	log.Printf("[TABLE] %s runner started (%d Hz)", t.ID, t.opts.TickHz)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[TABLE] %s runner stopping: %v", t.ID, ctx.Err())
			return
		case <-t.quit:
			log.Printf("[TABLE] %s runner stopped", t.ID)
			return
		case now := <-ticker.C:
			t.step(now)
		}
	}
}

// Stop ends the runner. A stopped table ignores all further input.
func (t *Table) Stop() {
	t.stopOnce.Do(func() {
		t.mu.Lock()
		t.stopped = true
		t.mu.Unlock()
		close(t.quit)
	})
}

func (t *Table) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Close stops the table and tells its clients why.
func (t *Table) Close(reason string) {
	t.Stop()
	t.emit([]tableEvent{{EventClosed, ClosedEvent{Reason: reason}}})
}

// step runs one runner iteration at time now.
func (t *Table) step(now time.Time) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	var events []tableEvent
	settled := false

	switch t.match.Phase {
	case PhaseResolving:
		res := t.match.Tick()
		t.ticks++
		if len(res.Collisions) > 0 {
			events = append(events, tableEvent{EventCollision, res.Collisions})
		}
		if res.Settled || t.ticks%uint64(t.broadcastEvery) == 0 {
			events = append(events, tableEvent{EventFrame, t.match.Frame(&t.drag)})
		}
		if res.Settled {
			settled = true
			st := t.match.Status()
			events = append(events, tableEvent{EventStatus, st})
			if t.match.Phase == PhaseRoundOver {
				events = append(events, tableEvent{EventRoundOver, *t.match.LastRound})
				if t.opts.RoundPause > 0 {
					t.advanceAt = now.Add(t.opts.RoundPause)
				}
				log.Printf("[TABLE] %s round %d won by P%d (%s), wins=%v",
					t.ID, t.match.LastRound.Round, t.match.LastRound.Winner, t.match.LastRound.Reason, t.match.Wins)
			}
		}

	case PhaseRoundOver:
		if !t.advanceAt.IsZero() && !now.Before(t.advanceAt) {
			events = append(events, t.advanceLocked()...)
			settled = true
		}
	}

	hook := t.onSettle
	t.mu.Unlock()

	t.emit(events)
	if settled && hook != nil {
		hook(t)
	}
}

// advanceLocked leaves RoundOver. Caller holds t.mu.
func (t *Table) advanceLocked() []tableEvent {
	t.advanceAt = time.Time{}
	if !t.match.Advance() {
		return nil
	}
	t.drag.Cancel()
	events := []tableEvent{
		{EventStatus, t.match.Status()},
		{EventFrame, t.match.Frame(nil)},
	}
	if t.match.Phase == PhaseMatchOver {
		events = append(events, tableEvent{EventMatchOver, *t.match.Result})
		log.Printf("[TABLE] %s match over: winner=P%d wins=%v", t.ID, t.match.Result.Winner, t.match.Result.Wins)
	} else {
		log.Printf("[TABLE] %s round %d starting, P%d moves first", t.ID, t.match.Round, t.match.FirstMover)
	}
	return events
}

// Select starts a drag on the current mover's piece under p.
func (t *Table) Select(p Vec2) bool {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return false
	}
	t.LastActivity = time.Now()
	ok := t.drag.Begin(t.match, p)
	var events []tableEvent
	if ok {
		events = append(events, tableEvent{EventFrame, t.match.Frame(&t.drag)})
	}
	t.mu.Unlock()

	t.emit(events)
	return ok
}

// Drag moves the drag end point of the current selection.
func (t *Table) Drag(p Vec2) bool {
	t.mu.Lock()
	if t.stopped || !t.drag.Active() {
		t.mu.Unlock()
		return false
	}
	t.LastActivity = time.Now()
	t.drag.Move(p)
	frame := t.match.Frame(&t.drag)
	t.mu.Unlock()

	t.emit([]tableEvent{{EventFrame, frame}})
	return true
}

// Release launches the selected piece. A too-short drag only clears the selection.
func (t *Table) Release() bool {
	t.mu.Lock()
	if t.stopped || !t.drag.Active() {
		t.mu.Unlock()
		return false
	}
	t.LastActivity = time.Now()
	key := t.drag.Piece.Key()
	launched := t.drag.Release(t.match)
	events := []tableEvent{{EventFrame, t.match.Frame(nil)}}
	if launched {
		events = append(events, tableEvent{EventStatus, t.match.Status()})
		log.Printf("[TABLE] %s shot #%d by P%d piece %d", t.ID, t.match.ShotNumber, key.Player, key.Number)
	}
	t.mu.Unlock()

	t.emit(events)
	return launched
}

func (t *Table) CancelDrag() {
	t.mu.Lock()
	wasActive := t.drag.Active()
	t.drag.Cancel()
	frame := t.match.Frame(nil)
	t.mu.Unlock()

	if wasActive {
		t.emit([]tableEvent{{EventFrame, frame}})
	}
}

// Reset restarts the match from round 1, abandoning any shot in flight.
func (t *Table) Reset() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.LastActivity = time.Now()
	t.drag.Cancel()
	t.advanceAt = time.Time{}
	t.match.Reset()
	events := []tableEvent{
		{EventStatus, t.match.Status()},
		{EventFrame, t.match.Frame(nil)},
	}
	hook := t.onSettle
	t.mu.Unlock()

	log.Printf("[TABLE] %s reset", t.ID)
	t.emit(events)
	if hook != nil {
		hook(t)
	}
}

// Advance leaves RoundOver immediately instead of waiting for the round pause.
func (t *Table) Advance() bool {
	t.mu.Lock()
	if t.stopped || t.match.Phase != PhaseRoundOver {
		t.mu.Unlock()
		return false
	}
	t.LastActivity = time.Now()
	events := t.advanceLocked()
	hook := t.onSettle
	t.mu.Unlock()

	t.emit(events)
	if hook != nil {
		hook(t)
	}
	return len(events) > 0
}

func (t *Table) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.match.Status()
}

func (t *Table) Frame() Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.match.Frame(&t.drag)
}

func (t *Table) Snapshot() (MatchSnapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.match.Snapshot()
}

// IdleFor returns how long the table has gone without input.
func (t *Table) IdleFor(now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return now.Sub(t.LastActivity)
}

func (t *Table) emit(events []tableEvent) {
	if len(events) == 0 {
		return
	}
	t.mu.Lock()
	n := t.notifier
	t.mu.Unlock()
	if n == nil {
		return
	}
	for _, ev := range events {
		n.Notify(t, ev.name, ev.payload)
	}
}

package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/playmatatu/alkkagi/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:        "test",
		TickHz:             60,
		BroadcastHz:        30,
		RoundPauseMs:       1500,
		TableIdleMinutes:   30,
		SnapshotTTLMinutes: 30,
		MaxTables:          2,
	}
}

func newTestManager(t *testing.T) *TableManager {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewTableManager(ctx, nil, testConfig())
}

func TestCreateAndLookupTable(t *testing.T) {
	tm := newTestManager(t)

	tbl, err := tm.CreateTable()
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if tbl.ID == "" || len(tbl.Token) != 32 {
		t.Errorf("id=%q token=%q", tbl.ID, tbl.Token)
	}
	if tbl.opts.RoundPause != 1500*time.Millisecond || tbl.broadcastEvery != 2 {
		t.Errorf("opts = %+v every=%d", tbl.opts, tbl.broadcastEvery)
	}

	got, err := tm.GetTableByToken(tbl.Token)
	if err != nil || got != tbl {
		t.Errorf("GetTableByToken = %v, %v", got, err)
	}
	if _, err := tm.GetTableByToken("nope"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("unknown token err = %v", err)
	}
	if n := tm.ActiveTableCount(); n != 1 {
		t.Errorf("ActiveTableCount = %d", n)
	}
}

func TestTableLimit(t *testing.T) {
	tm := newTestManager(t)
	for i := 0; i < 2; i++ {
		if _, err := tm.CreateTable(); err != nil {
			t.Fatalf("table %d: %v", i, err)
		}
	}
	if _, err := tm.CreateTable(); !errors.Is(err, ErrTooManyTables) {
		t.Errorf("third table err = %v, want ErrTooManyTables", err)
	}
}

func TestRemoveTable(t *testing.T) {
	tm := newTestManager(t)
	tbl, _ := tm.CreateTable()

	if err := tm.RemoveTable(tbl.Token); err != nil {
		t.Fatalf("RemoveTable: %v", err)
	}
	if err := tm.RemoveTable(tbl.Token); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("second remove err = %v", err)
	}
	if _, err := tm.GetTableByToken(tbl.Token); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("removed table still found: %v", err)
	}
}

func TestCloseIdleTables(t *testing.T) {
	tm := newTestManager(t)
	idle, _ := tm.CreateTable()
	busy, _ := tm.CreateTable()

	now := time.Now()
	idle.mu.Lock()
	idle.LastActivity = now.Add(-time.Hour)
	idle.mu.Unlock()

	if n := tm.closeIdleTables(now); n != 1 {
		t.Fatalf("closed %d tables, want 1", n)
	}
	if _, err := tm.GetTableByToken(idle.Token); err == nil {
		t.Error("idle table still open")
	}
	if _, err := tm.GetTableByToken(busy.Token); err != nil {
		t.Errorf("busy table closed: %v", err)
	}
}

func TestReapedTableRejectsShots(t *testing.T) {
	tm := newTestManager(t)
	rec := &recorder{}
	tm.SetNotifier(rec)
	tbl, _ := tm.CreateTable()

	if n := tm.closeIdleTables(time.Now().Add(time.Hour)); n != 1 {
		t.Fatalf("closed %d tables, want 1", n)
	}
	if rec.count(EventClosed) != 1 {
		t.Errorf("closed events = %d", rec.count(EventClosed))
	}

	// A client still holding the table keeps sending input.
	start := NewVec2(Grid, Grid)
	if tbl.Select(start) {
		t.Error("select accepted after reap")
	}
	tbl.Drag(start.Plus(NewVec2(0, 200)))
	if tbl.Release() {
		t.Error("release launched after reap")
	}
	time.Sleep(50 * time.Millisecond)
	if st := tbl.Status(); st.Phase != PhaseAwaitingInput {
		t.Errorf("phase = %s, want %s", st.Phase, PhaseAwaitingInput)
	}
}

func TestManagerDeliversEventsLocallyWithoutRedis(t *testing.T) {
	tm := newTestManager(t)
	rec := &recorder{}
	tm.SetNotifier(rec)

	tbl, _ := tm.CreateTable()
	tbl.Reset()

	if rec.count(EventStatus) != 1 || rec.count(EventFrame) != 1 {
		t.Errorf("events = %+v", rec.take())
	}

	// Round results fall back to local delivery too.
	tableNotifier{tm}.Notify(tbl, EventRoundOver, RoundResult{Round: 1, Winner: Player1})
	if rec.count(EventRoundOver) != 1 {
		t.Error("round_over not delivered")
	}
}

func TestSaveWithoutRedisIsNoOp(t *testing.T) {
	tm := newTestManager(t)
	tbl, _ := tm.CreateTable()
	if err := tm.saveTableToRedis(tbl); err != nil {
		t.Errorf("save: %v", err)
	}
	if _, err := tm.loadTableFromRedis(tbl.Token); err == nil {
		t.Error("load without redis succeeded")
	}
}

func TestSnapshotKey(t *testing.T) {
	if got := snapshotKey("abc"); got != "table:abc:state" {
		t.Errorf("snapshotKey = %q", got)
	}
}

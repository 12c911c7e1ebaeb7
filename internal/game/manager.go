package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playmatatu/alkkagi/internal/config"
	"github.com/redis/go-redis/v9"
)

var (
	ErrTableNotFound = errors.New("table not found")
	ErrTooManyTables = errors.New("too many open tables")
)

// TableEventsChannel is the Redis pub/sub channel for round and match results.
const TableEventsChannel = "table_events"

// TableEvent is the payload published on TableEventsChannel.
type TableEvent struct {
	Type    string          `json:"type"`
	TableID string          `json:"table_id"`
	Token   string          `json:"token"`
	Data    json.RawMessage `json:"data"`
}

// TableManager owns every open table and their runners.
type TableManager struct {
	tables   map[string]*Table // keyed by token
	rdb      *redis.Client     // optional; snapshots and event fan-out
	config   *config.Config
	notifier Notifier
	ctx      context.Context
	mu       sync.RWMutex
}

// NewTableManager creates a manager. Runners started by it stop when ctx is done.
// rdb may be nil.
func NewTableManager(ctx context.Context, rdb *redis.Client, cfg *config.Config) *TableManager {
	return &TableManager{
		tables: make(map[string]*Table),
		rdb:    rdb,
		config: cfg,
		ctx:    ctx,
	}
}

// SetNotifier sets the delivery target for table events (the WebSocket hub).
func (tm *TableManager) SetNotifier(n Notifier) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.notifier = n
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func (tm *TableManager) tableOptions() TableOptions {
	return TableOptions{
		TickHz:      tm.config.TickHz,
		BroadcastHz: tm.config.BroadcastHz,
		RoundPause:  time.Duration(tm.config.RoundPauseMs) * time.Millisecond,
	}
}

// CreateTable opens a new table with a fresh match and starts its runner.
func (tm *TableManager) CreateTable() (*Table, error) {
	tm.mu.Lock()
	if tm.config.MaxTables > 0 && len(tm.tables) >= tm.config.MaxTables {
		tm.mu.Unlock()
		return nil, ErrTooManyTables
	}
	t := NewTable(uuid.NewString(), generateToken(16), NewMatch(), tm.tableOptions())
	tm.tables[t.Token] = t
	tm.mu.Unlock()

	tm.start(t)
	if err := tm.saveTableToRedis(t); err != nil {
		log.Printf("[REDIS] Failed to save new table %s: %v", t.ID, err)
	}
	log.Printf("[TABLE] Created table %s", t.ID)
	return t, nil
}

func (tm *TableManager) start(t *Table) {
	t.SetNotifier(tableNotifier{tm})
	t.OnSettle(func(t *Table) {
		if err := tm.saveTableToRedis(t); err != nil {
			log.Printf("[REDIS] Failed to save table %s: %v", t.ID, err)
		}
	})
	go t.Run(tm.ctx)
}

// GetTableByToken returns the table from memory, falling back to its Redis snapshot.
func (tm *TableManager) GetTableByToken(token string) (*Table, error) {
	tm.mu.RLock()
	t, ok := tm.tables[token]
	tm.mu.RUnlock()
	if ok {
		return t, nil
	}

	t, err := tm.loadTableFromRedis(token)
	if err != nil {
		return nil, ErrTableNotFound
	}

	tm.mu.Lock()
	if existing, ok := tm.tables[token]; ok {
		tm.mu.Unlock()
		return existing, nil
	}
	tm.tables[token] = t
	tm.mu.Unlock()

	tm.start(t)
	log.Printf("[TABLE] Restored table %s from snapshot", t.ID)
	return t, nil
}

// RemoveTable closes the table, drops it and deletes its snapshot.
func (tm *TableManager) RemoveTable(token string) error {
	return tm.removeTable(token, "removed")
}

func (tm *TableManager) removeTable(token, reason string) error {
	tm.mu.Lock()
	t, ok := tm.tables[token]
	if ok {
		delete(tm.tables, token)
	}
	tm.mu.Unlock()
	if !ok {
		return ErrTableNotFound
	}

	t.Close(reason)
	if tm.rdb != nil {
		if err := tm.rdb.Del(context.Background(), snapshotKey(token)).Err(); err != nil {
			log.Printf("[REDIS] Failed to delete snapshot for table %s: %v", t.ID, err)
		}
	}
	return nil
}

func (tm *TableManager) ActiveTableCount() int {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return len(tm.tables)
}

func snapshotKey(token string) string {
	return "table:" + token + ":state"
}

// tableRecord is the Redis form of a table.
type tableRecord struct {
	ID        string        `json:"id"`
	Token     string        `json:"token"`
	CreatedAt time.Time     `json:"created_at"`
	Match     MatchSnapshot `json:"match"`
}

// saveTableToRedis stores a settled table with the snapshot TTL.
func (tm *TableManager) saveTableToRedis(t *Table) error {
	if tm.rdb == nil {
		return nil
	}

	snap, err := t.Snapshot()
	if err != nil {
		return err
	}
	data, err := json.Marshal(tableRecord{
		ID:        t.ID,
		Token:     t.Token,
		CreatedAt: t.CreatedAt,
		Match:     snap,
	})
	if err != nil {
		return err
	}

	ttl := time.Duration(tm.config.SnapshotTTLMinutes) * time.Minute
	return tm.rdb.SetEx(context.Background(), snapshotKey(t.Token), data, ttl).Err()
}

// loadTableFromRedis rebuilds a table from its snapshot.
func (tm *TableManager) loadTableFromRedis(token string) (*Table, error) {
	if tm.rdb == nil {
		return nil, errors.New("no redis client")
	}

	data, err := tm.rdb.Get(context.Background(), snapshotKey(token)).Result()
	if err == redis.Nil {
		return nil, errors.New("table not found in redis")
	}
	if err != nil {
		return nil, err
	}

	var rec tableRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode table snapshot: %w", err)
	}
	m, err := RestoreMatch(rec.Match)
	if err != nil {
		return nil, fmt.Errorf("restore table %s: %w", rec.ID, err)
	}

	t := NewTable(rec.ID, rec.Token, m, tm.tableOptions())
	t.CreatedAt = rec.CreatedAt
	return t, nil
}

// tableNotifier routes runner events. Round and match results go through Redis
// pub/sub when available so every instance with a connection to the table
// hears them; everything else is delivered locally.
type tableNotifier struct {
	tm *TableManager
}

func (n tableNotifier) Notify(t *Table, event string, payload interface{}) {
	n.tm.mu.RLock()
	local := n.tm.notifier
	n.tm.mu.RUnlock()

	if n.tm.rdb != nil && (event == EventRoundOver || event == EventMatchOver) {
		err := n.tm.publishEvent(t, event, payload)
		if err == nil {
			return
		}
		log.Printf("[REDIS] publish %s for table %s failed, delivering locally: %v", event, t.ID, err)
	}
	if local != nil {
		local.Notify(t, event, payload)
	}
}

func (tm *TableManager) publishEvent(t *Table, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	b, err := json.Marshal(TableEvent{Type: event, TableID: t.ID, Token: t.Token, Data: data})
	if err != nil {
		return err
	}
	return tm.rdb.Publish(context.Background(), TableEventsChannel, b).Err()
}

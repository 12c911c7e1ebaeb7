package game

import (
	"context"
	"log"
	"time"
)

const idlePollInterval = 30 * time.Second

// StartExpiryChecker starts a background worker that closes tables left
// without input for longer than TableIdleMinutes. Closing a table also drops
// its Redis snapshot.
func (tm *TableManager) StartExpiryChecker(ctx context.Context) {
	if tm.config == nil || tm.config.TableIdleMinutes <= 0 {
		log.Println("[IDLE] TABLE_IDLE_MINUTES not set; idle worker not started")
		return
	}

	log.Printf("[IDLE] Idle worker started (limit=%dm)", tm.config.TableIdleMinutes)
	go func() {
		ticker := time.NewTicker(idlePollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case now := <-ticker.C:
				if n := tm.closeIdleTables(now); n > 0 {
					log.Printf("[IDLE] closed %d idle tables, %d still open", n, tm.ActiveTableCount())
				}
			}
		}
	}()
}

// closeIdleTables removes every table idle for longer than the limit at now.
func (tm *TableManager) closeIdleTables(now time.Time) int {
	limit := time.Duration(tm.config.TableIdleMinutes) * time.Minute
	if limit <= 0 {
		return 0
	}

	tm.mu.RLock()
	var idle []string
	for token, t := range tm.tables {
		if t.IdleFor(now) > limit {
			idle = append(idle, token)
		}
	}
	tm.mu.RUnlock()

	closed := 0
	for _, token := range idle {
		if err := tm.removeTable(token, "idle"); err == nil {
			log.Printf("[IDLE] closed idle table (token=%s)", token)
			closed++
		}
	}
	return closed
}

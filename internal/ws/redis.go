package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/alkkagi/internal/game"
	"github.com/redis/go-redis/v9"
)

// StartTableEventSubscriber relays round and match results published on the
// table_events channel to the clients attached on this instance.
func StartTableEventSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; table event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, game.TableEventsChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		log.Printf("[WS] %s subscribe failed: %v", game.TableEventsChannel, err)
		pubsub.Close()
		return
	}
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", game.TableEventsChannel)
		for msg := range ch {
			hub.relayTableEvent(msg.Payload)
		}
	}()
}

func (h *Hub) relayTableEvent(payload string) {
	var ev game.TableEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		log.Printf("[WS] invalid table event payload: %v", err)
		return
	}

	switch ev.Type {
	case game.EventRoundOver, game.EventMatchOver:
		if h.RoomSize(ev.TableID) == 0 {
			return
		}
		log.Printf("[WS] relaying %s to table %s (room_size=%d)", ev.Type, ev.TableID, h.RoomSize(ev.TableID))
		h.BroadcastToTable(ev.TableID, map[string]interface{}{
			"type": ev.Type,
			"data": ev.Data,
		})
	default:
		log.Printf("[WS] unknown table event type: %s", ev.Type)
	}
}

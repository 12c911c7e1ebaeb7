package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/alkkagi/internal/game"
)

// Client represents a connected WebSocket client
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	id         string
	tableID    string
	tableToken string
	table      *game.Table
	send       chan []byte
}

// Hub maintains the set of active clients
type Hub struct {
	clients    map[string]*Client            // client ID -> Client
	tableRooms map[string]map[string]*Client // table ID -> client ID -> Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		tableRooms: make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is done.
// On return every remaining client is dropped.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			n := h.dropAll()
			log.Printf("[WS] Hub stopping, dropped %d clients", n)
			return
		case client := <-h.register:
			h.addClient(client)
			log.Printf("[WS] Client %s attached to table %s", client.id, client.tableID)
			client.sendState()
		case client := <-h.unregister:
			if h.removeClient(client) {
				log.Printf("[WS] Client %s detached from table %s", client.id, client.tableID)
			}
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.id] = client
	if _, exists := h.tableRooms[client.tableID]; !exists {
		h.tableRooms[client.tableID] = make(map[string]*Client)
	}
	h.tableRooms[client.tableID][client.id] = client
}

func (h *Hub) removeClient(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	cur, ok := h.clients[client.id]
	if !ok || cur != client {
		return false
	}
	delete(h.clients, client.id)
	if room, exists := h.tableRooms[client.tableID]; exists {
		delete(room, client.id)
		if len(room) == 0 {
			delete(h.tableRooms, client.tableID)
		}
	}
	close(client.send)
	return true
}

// attach hands a client to Run. Returns false once the hub has stopped.
func (h *Hub) attach(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// detach hands a client to Run for removal, or removes it directly once
// the hub has stopped.
func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		h.removeClient(client)
	}
}

// closeRoom drops every client attached to a table. Their write pumps send a
// close frame and hang up.
func (h *Hub) closeRoom(tableID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.tableRooms[tableID]
	for id, client := range room {
		delete(h.clients, id)
		close(client.send)
	}
	delete(h.tableRooms, tableID)
	return len(room)
}

func (h *Hub) dropAll() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.clients)
	for _, client := range h.clients {
		close(client.send)
	}
	h.clients = make(map[string]*Client)
	h.tableRooms = make(map[string]map[string]*Client)
	return n
}

// RoomSize returns the number of clients attached to a table.
func (h *Hub) RoomSize(tableID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tableRooms[tableID])
}

// BroadcastToTable sends a message to every client attached to a table
func (h *Hub) BroadcastToTable(tableID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, exists := h.tableRooms[tableID]; exists {
		for _, client := range room {
			select {
			case client.send <- data:
			default:
				log.Printf("[WS] Client %s send buffer full on table %s, dropping message", client.id, tableID)
			}
		}
	}
}

// Notify implements game.Notifier by broadcasting to the table's room.
// A closed table's room is emptied after the notice goes out.
func (h *Hub) Notify(t *game.Table, event string, payload interface{}) {
	h.BroadcastToTable(t.ID, map[string]interface{}{
		"type": event,
		"data": payload,
	})
	if event == game.EventClosed {
		if n := h.closeRoom(t.ID); n > 0 {
			log.Printf("[WS] Table %s closed, dropped %d clients", t.ID, n)
		}
	}
}

// Message types
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel; best-effort close frame.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for client %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for client %s: %v", c.id, err)
				return
			}
		}
	}
}

// sendJSON queues a message for this client only.
func (c *Client) sendJSON(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("[WS] Client %s send buffer full, dropping message", c.id)
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.sendJSON(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}

// sendState sends the current status and frame to this client.
func (c *Client) sendState() {
	c.sendJSON(map[string]interface{}{"type": game.EventStatus, "data": c.table.Status()})
	c.sendJSON(map[string]interface{}{"type": game.EventFrame, "data": c.table.Frame()})
}

package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/alkkagi/internal/config"
	"github.com/playmatatu/alkkagi/internal/game"
	"github.com/playmatatu/alkkagi/internal/ticket"
)

// PointData carries a board-coordinate pointer position.
type PointData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p PointData) vec() game.Vec2 {
	return game.NewVec2(p.X, p.Y)
}

func newUpgrader(cfg *config.Config) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if cfg.Environment != "production" {
				return true
			}
			origin := r.Header.Get("Origin")
			return origin == "" || origin == cfg.FrontendURL
		},
	}
}

// HandleWebSocket attaches a presentation client to a table.
// Route: GET /tables/:token/ws?ticket=...
func HandleWebSocket(hub *Hub, tm *game.TableManager, cfg *config.Config) gin.HandlerFunc {
	upgrader := newUpgrader(cfg)

	return func(c *gin.Context) {
		token := c.Param("token")
		if err := ticket.Verify(cfg.JWTSecret, c.Query("ticket"), token); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid ticket"})
			return
		}

		t, err := tm.GetTableByToken(token)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &Client{
			hub:        hub,
			conn:       conn,
			id:         uuid.NewString(),
			tableID:    t.ID,
			tableToken: token,
			table:      t,
			send:       make(chan []byte, 256),
		}

		if !hub.attach(client) {
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

// readPump reads input messages until the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.detach(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Unexpected close for client %s: %v", c.id, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage applies one input message to the table. Inputs the match
// rejects (wrong piece, shot in flight) are ignored without an error.
func (c *Client) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "select":
		var data PointData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid select data")
			return
		}
		c.table.Select(data.vec())

	case "drag":
		var data PointData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid drag data")
			return
		}
		c.table.Drag(data.vec())

	case "release":
		c.table.Release()

	case "cancel":
		c.table.CancelDrag()

	case "advance":
		c.table.Advance()

	case "reset":
		c.table.Reset()

	case "get_state":
		c.sendState()

	default:
		c.sendError("Unknown message type")
	}
}

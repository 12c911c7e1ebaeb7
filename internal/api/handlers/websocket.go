package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/alkkagi/internal/config"
	"github.com/playmatatu/alkkagi/internal/game"
	"github.com/playmatatu/alkkagi/internal/ws"
)

// HandleTableWebSocket handles real-time table communication
func HandleTableWebSocket(hub *ws.Hub, tm *game.TableManager, cfg *config.Config) gin.HandlerFunc {
	return ws.HandleWebSocket(hub, tm, cfg)
}

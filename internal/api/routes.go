package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/alkkagi/internal/api/handlers"
	"github.com/playmatatu/alkkagi/internal/config"
	"github.com/playmatatu/alkkagi/internal/game"
	"github.com/playmatatu/alkkagi/internal/middleware"
	"github.com/playmatatu/alkkagi/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, tm *game.TableManager, hub *ws.Hub, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(tm))

		tables := v1.Group("/tables")
		{
			tables.POST("", handlers.CreateTable(tm, cfg))
			tables.GET("/:token", handlers.GetTableStatus(tm))
			tables.POST("/:token/reset", handlers.ResetTable(tm, cfg))
			tables.GET("/:token/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleTableWebSocket(hub, tm, cfg))
		}
	}
}

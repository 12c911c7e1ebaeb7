package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/alkkagi/internal/config"
	"github.com/playmatatu/alkkagi/internal/game"
	"github.com/playmatatu/alkkagi/internal/ticket"
)

// CreateTable opens a new table and returns its attach ticket.
func CreateTable(tm *game.TableManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := tm.CreateTable()
		if errors.Is(err, game.ErrTooManyTables) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create table"})
			return
		}

		ttl := time.Duration(cfg.TicketTTLMinutes) * time.Minute
		tk, err := ticket.Issue(cfg.JWTSecret, t.ID, t.Token, ttl)
		if err != nil {
			log.Printf("[API] Failed to issue ticket for table %s: %v", t.ID, err)
			tm.RemoveTable(t.Token)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue ticket"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"table_id": t.ID,
			"token":    t.Token,
			"ticket":   tk,
			"ws_url":   "/api/v1/tables/" + t.Token + "/ws?ticket=" + tk,
			"status":   t.Status(),
		})
	}
}

// GetTableStatus returns the scoreboard of a table.
func GetTableStatus(tm *game.TableManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := tm.GetTableByToken(c.Param("token"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
			return
		}
		c.JSON(http.StatusOK, t.Status())
	}
}

// ResetTable restarts a table's match from round 1.
func ResetTable(tm *game.TableManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if err := ticket.Verify(cfg.JWTSecret, requestTicket(c), token); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid ticket"})
			return
		}

		t, err := tm.GetTableByToken(token)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
			return
		}

		t.Reset()
		c.JSON(http.StatusOK, t.Status())
	}
}

// requestTicket reads the ticket from the query string or a Bearer header.
func requestTicket(c *gin.Context) string {
	if tk := c.Query("ticket"); tk != "" {
		return tk
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

package http

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/dropfour/internal/domain"
	"github.com/iamasit07/dropfour/internal/service/game"
)

type SnapshotReader interface {
	GetSnapshot(ctx context.Context, sessionID string) (*domain.Snapshot, error)
}

type WatchHandler struct {
	SessionManager *game.SessionManager
	Cache          SnapshotReader
}

func NewWatchHandler(sm *game.SessionManager, cache SnapshotReader) *WatchHandler {
	return &WatchHandler{SessionManager: sm, Cache: cache}
}

// GetSnapshot serves a read-only view of a session. Live sessions are read
// from memory; the cache only answers for sessions this process no longer
// hosts.
func (h *WatchHandler) GetSnapshot(c *gin.Context) {
	sessionID := c.Param("id")

	if session, exists := h.SessionManager.GetSession(sessionID); exists {
		c.JSON(http.StatusOK, session.Snapshot())
		return
	}

	if h.Cache != nil {
		snap, err := h.Cache.GetSnapshot(c.Request.Context(), sessionID)
		if err == nil {
			c.JSON(http.StatusOK, snap)
			return
		}
		log.Printf("[HTTP] Snapshot cache miss for %s: %v", sessionID, err)
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
}

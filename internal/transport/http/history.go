package http

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/dropfour/internal/domain"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type HistoryRepository interface {
	RecentGames(ctx context.Context, limit int) ([]domain.GameRecord, error)
	GetGameByID(ctx context.Context, id int64) (*domain.GameRecord, error)
}

type HistoryHandler struct {
	Repo HistoryRepository
}

func NewHistoryHandler(repo HistoryRepository) *HistoryHandler {
	return &HistoryHandler{Repo: repo}
}

func (h *HistoryHandler) available(c *gin.Context) bool {
	if h.Repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Game history is not configured"})
		return false
	}
	return true
}

func (h *HistoryHandler) GetHistory(c *gin.Context) {
	if !h.available(c) {
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	games, err := h.Repo.RecentGames(c.Request.Context(), limit)
	if err != nil {
		log.Printf("[HTTP] Failed to fetch history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}
	c.JSON(http.StatusOK, games)
}

func (h *HistoryHandler) GetGameDetails(c *gin.Context) {
	if !h.available(c) {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
		return
	}

	game, err := h.Repo.GetGameByID(c.Request.Context(), id)
	if err != nil {
		log.Printf("[HTTP] Failed to fetch game %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch game"})
		return
	}
	if game == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}
	c.JSON(http.StatusOK, game)
}

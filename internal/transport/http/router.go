package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/dropfour/internal/service/game"
	"github.com/iamasit07/dropfour/internal/transport/http/middleware"
)

type RouterConfig struct {
	SessionManager *game.SessionManager
	// WebSocket is mounted at /ws when set.
	WebSocket      http.HandlerFunc
	Cache          SnapshotReader
	History        HistoryRepository
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string
	SecureCookie   bool
}

// NewRouter wires every route behind the fault boundary.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), FaultBoundary())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	sessionHandler := NewSessionHandler(cfg.SessionManager, cfg.JWTSecret, cfg.TokenTTL, cfg.SecureCookie)
	watchHandler := NewWatchHandler(cfg.SessionManager, cfg.Cache)
	historyHandler := NewHistoryHandler(cfg.History)

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	router.POST("/api/sessions", sessionHandler.Create)

	protected := router.Group("/api/sessions/:id")
	protected.Use(middleware.SessionAuth(cfg.JWTSecret))
	{
		protected.GET("", sessionHandler.Get)
		protected.POST("/columns/:col", sessionHandler.SelectColumn)
		protected.POST("/restart", sessionHandler.Restart)
		protected.DELETE("", sessionHandler.Close)
	}

	router.GET("/api/watch/:id", watchHandler.GetSnapshot)
	router.GET("/api/history", historyHandler.GetHistory)
	router.GET("/api/history/:id", historyHandler.GetGameDetails)

	if cfg.WebSocket != nil {
		router.GET("/ws", gin.WrapF(cfg.WebSocket))
	}

	return router
}

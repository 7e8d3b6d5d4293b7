package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/dropfour/internal/domain"
	"github.com/iamasit07/dropfour/internal/service/game"
	"github.com/iamasit07/dropfour/pkg/auth"
	"github.com/iamasit07/dropfour/pkg/httputil"
)

type SessionHandler struct {
	SessionManager *game.SessionManager
	JWTSecret      string
	TokenTTL       time.Duration
	SecureCookie   bool
}

func NewSessionHandler(sm *game.SessionManager, jwtSecret string, tokenTTL time.Duration, secureCookie bool) *SessionHandler {
	return &SessionHandler{
		SessionManager: sm,
		JWTSecret:      jwtSecret,
		TokenTTL:       tokenTTL,
		SecureCookie:   secureCookie,
	}
}

type createSessionResponse struct {
	SessionID string          `json:"sessionId"`
	Token     string          `json:"token"`
	State     domain.Snapshot `json:"state"`
}

// Create starts a new hosted game and hands out its token
func (h *SessionHandler) Create(c *gin.Context) {
	session, err := h.SessionManager.CreateSession()
	if err != nil {
		log.Printf("[HTTP] Failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	token, err := auth.GenerateSessionToken(h.JWTSecret, session.ID, h.TokenTTL)
	if err != nil {
		log.Printf("[HTTP] Failed to sign token for session %s: %v", session.ID, err)
		if err := h.SessionManager.RemoveSession(session.ID); err != nil {
			log.Printf("[HTTP] Failed to remove unsigned session %s: %v", session.ID, err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	httputil.SetSessionCookie(c.Writer, token, int(h.TokenTTL.Seconds()), h.SecureCookie)
	c.JSON(http.StatusCreated, createSessionResponse{
		SessionID: session.ID,
		Token:     token,
		State:     session.Snapshot(),
	})
}

func (h *SessionHandler) session(c *gin.Context) (*game.Session, bool) {
	session, exists := h.SessionManager.GetSession(c.Param("id"))
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return nil, false
	}
	return session, true
}

func (h *SessionHandler) Get(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}

// SelectColumn queues a drop. The answer carries the state at the time of
// the request; the drop itself lands after the debounce window.
func (h *SessionHandler) SelectColumn(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	col, err := strconv.Atoi(c.Param("col"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Column must be a number"})
		return
	}

	if err := session.SelectColumn(col); err != nil {
		if errors.Is(err, domain.ErrInvalidColumn) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, session.Snapshot())
}

func (h *SessionHandler) Restart(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.Restart()
	c.JSON(http.StatusOK, session.Snapshot())
}

// Close ends a session and forgets its token cookie
func (h *SessionHandler) Close(c *gin.Context) {
	if err := h.SessionManager.RemoveSession(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	httputil.ClearSessionCookie(c.Writer)
	c.Status(http.StatusNoContent)
}

package websocket

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iamasit07/dropfour/internal/domain"
	"github.com/iamasit07/dropfour/internal/service/game"
	"github.com/iamasit07/dropfour/pkg/auth"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Handler manages WebSocket dependencies
type Handler struct {
	ConnManager    *ConnectionManager
	SessionManager *game.SessionManager
	JWTSecret      string
	Upgrader       websocket.Upgrader
}

// NewHandler creates a WebSocket handler. checkOrigin may be nil to accept any origin.
func NewHandler(cm *ConnectionManager, sm *game.SessionManager, jwtSecret string, checkOrigin func(r *http.Request) bool) *Handler {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Handler{
		ConnManager:    cm,
		SessionManager: sm,
		JWTSecret:      jwtSecret,
		Upgrader: websocket.Upgrader{
			CheckOrigin:     checkOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleWebSocket is the HTTP handler that upgrades the connection
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	h.handleConnection(conn)
}

// handleConnection manages the lifecycle of a single WebSocket connection
func (h *Handler) handleConnection(conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// 1. Wait for Initialization (session token)
	session, err := h.initialize(conn)
	if err != nil {
		log.Printf("[WS] Init failed: %v", err)
		conn.WriteJSON(domain.ServerMessage{Type: domain.MessageTypeError, Message: err.Error()})
		conn.Close()
		return
	}
	sessionID := session.ID
	h.ConnManager.AddConnection(sessionID, conn)
	log.Printf("[WS] Connection initialized for session %s", sessionID)

	done := make(chan struct{})
	defer func() {
		close(done)
		// a panic while handling a frame ends this connection only
		if r := recover(); r != nil {
			log.Printf("[WS] Recovered from panic in session %s: %v", sessionID, r)
		}
		log.Printf("[WS] Connection closed for session %s", sessionID)
		h.ConnManager.RemoveConnection(sessionID, conn)
	}()

	go h.keepAlive(sessionID, conn, done)

	snap := session.Snapshot()
	h.ConnManager.sendTo(sessionID, conn, domain.ServerMessage{Type: domain.MessageTypeState, SessionID: sessionID, State: &snap})

	// 2. Main Message Loop
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Session %s disconnected unexpectedly: %v", sessionID, err)
			}
			return
		}

		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WS] Invalid message format: %v", err)
			h.ConnManager.sendTo(sessionID, conn, domain.ServerMessage{Type: domain.MessageTypeError, Message: "Invalid message format"})
			continue
		}

		// the session may have been evicted while this socket stayed open
		current, exists := h.SessionManager.GetSession(sessionID)
		if !exists {
			h.ConnManager.sendTo(sessionID, conn, domain.ServerMessage{Type: domain.MessageTypeError, Message: "Session expired"})
			return
		}

		h.processMessage(current, conn, msg)
	}
}

func (h *Handler) initialize(conn *websocket.Conn) (*game.Session, error) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var message domain.ClientMessage
	if err := json.Unmarshal(data, &message); err != nil {
		return nil, errors.New("invalid init message")
	}
	if message.Type != domain.MessageTypeInit || message.Token == "" {
		return nil, errors.New("missing initialization or token")
	}

	claims, err := auth.ValidateSessionToken(h.JWTSecret, message.Token)
	if err != nil {
		return nil, errors.New("invalid token or session expired")
	}

	session, exists := h.SessionManager.GetSession(claims.SessionID)
	if !exists {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (h *Handler) keepAlive(sessionID string, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Printf("[WS] Ping to session %s failed: %v", sessionID, err)
				return
			}
		}
	}
}

// processMessage routes specific actions
func (h *Handler) processMessage(session *game.Session, conn *websocket.Conn, msg domain.ClientMessage) {
	switch msg.Type {
	case domain.MessageTypeSelectColumn:
		if msg.Column == nil {
			h.ConnManager.sendTo(session.ID, conn, domain.ServerMessage{Type: domain.MessageTypeError, Message: "Missing column"})
			return
		}
		if err := session.SelectColumn(*msg.Column); err != nil {
			h.ConnManager.sendTo(session.ID, conn, domain.ServerMessage{Type: domain.MessageTypeError, Message: err.Error()})
		}

	case domain.MessageTypeRestart:
		session.Restart()

	default:
		h.ConnManager.sendTo(session.ID, conn, domain.ServerMessage{Type: domain.MessageTypeError, Message: "Unknown message type"})
	}
}

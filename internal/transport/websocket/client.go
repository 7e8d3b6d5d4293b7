package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iamasit07/dropfour/internal/domain"
)

const writeWait = 10 * time.Second

// client wraps one socket. conn.WriteJSON is not safe for concurrent use,
// so every write takes writeMu.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) write(message domain.ServerMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(message)
}

// ConnectionManager tracks the sockets attached to each session. A session
// can have several: the player's tab plus any reconnects.
type ConnectionManager struct {
	connections map[string]map[*websocket.Conn]*client
	mu          sync.RWMutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]map[*websocket.Conn]*client),
	}
}

func (cm *ConnectionManager) AddConnection(sessionID string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	clients, exists := cm.connections[sessionID]
	if !exists {
		clients = make(map[*websocket.Conn]*client)
		cm.connections[sessionID] = clients
	}
	clients[conn] = &client{conn: conn}
}

// RemoveConnection closes and forgets a single socket.
func (cm *ConnectionManager) RemoveConnection(sessionID string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	clients, exists := cm.connections[sessionID]
	if !exists {
		return
	}
	if _, ok := clients[conn]; ok {
		conn.Close()
		delete(clients, conn)
	}
	if len(clients) == 0 {
		delete(cm.connections, sessionID)
	}
}

// RemoveSession closes every socket of a session.
func (cm *ConnectionManager) RemoveSession(sessionID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for conn := range cm.connections[sessionID] {
		conn.Close()
	}
	delete(cm.connections, sessionID)
}

// SendMessage writes message to every socket of the session. The first
// write error is returned after all sockets were tried.
func (cm *ConnectionManager) SendMessage(sessionID string, message domain.ServerMessage) error {
	cm.mu.RLock()
	clients := make([]*client, 0, len(cm.connections[sessionID]))
	for _, c := range cm.connections[sessionID] {
		clients = append(clients, c)
	}
	cm.mu.RUnlock()

	var firstErr error
	for _, c := range clients {
		if err := c.write(message); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// sendTo writes to one socket of a session, such as a reply to a bad frame.
func (cm *ConnectionManager) sendTo(sessionID string, conn *websocket.Conn, message domain.ServerMessage) error {
	cm.mu.RLock()
	c, exists := cm.connections[sessionID][conn]
	cm.mu.RUnlock()

	if !exists {
		return nil
	}
	return c.write(message)
}

func (cm *ConnectionManager) ConnectionCount(sessionID string) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections[sessionID])
}

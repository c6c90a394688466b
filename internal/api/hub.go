package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// GateEvent is pushed to connected clients when gate-relevant state changes:
// a turn landed, or an anomaly was resolved.
type GateEvent struct {
	Type       string `json:"type"`
	Unresolved int    `json:"unresolved"`
}

// SessionHub tracks the WebSocket connections subscribed to each
// conversation. A conversation can have several listeners: the browser tab
// and the terminal client see the same gate state.
type SessionHub struct {
	mu     sync.RWMutex
	active map[string]map[string][]*websocket.Conn
}

// NewSessionHub creates a new session hub.
func NewSessionHub() *SessionHub {
	return &SessionHub{
		active: make(map[string]map[string][]*websocket.Conn),
	}
}

// Register adds a WebSocket connection for a user/session.
func (m *SessionHub) Register(userID, sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.active[userID]; !exists {
		m.active[userID] = make(map[string][]*websocket.Conn)
	}
	m.active[userID][sessionID] = append(m.active[userID][sessionID], conn)
	slog.Info("Gate listener registered", "user_id", userID, "session_id", sessionID)
}

// Unregister removes a WebSocket connection for a user/session.
func (m *SessionHub) Unregister(userID, sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conns := m.active[userID][sessionID]
	for i, c := range conns {
		if c == conn {
			conns = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(conns) == 0 {
		delete(m.active[userID], sessionID)
		if len(m.active[userID]) == 0 {
			delete(m.active, userID)
		}
	} else {
		m.active[userID][sessionID] = conns
	}
	slog.Info("Gate listener unregistered", "user_id", userID, "session_id", sessionID)
}

// Broadcast pushes a gate event to every listener of one conversation.
// Failed writes are logged and skipped; the reader loop handles teardown.
func (m *SessionHub) Broadcast(userID, sessionID string, ev GateEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("marshal gate event failed", "error", err)
		return
	}

	m.mu.RLock()
	conns := append([]*websocket.Conn(nil), m.active[userID][sessionID]...)
	m.mu.RUnlock()

	for _, conn := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
			slog.Debug("gate event write failed", "error", err, "user_id", userID)
		}
		cancel()
	}
}

package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"talkie/internal/domain"
	"talkie/internal/metrics"
)

const writeWait = 5 * time.Second

// Event is what the hub sends to clients.
type Event struct {
	Type  string `json:"type"`
	Topic string `json:"topic,omitempty"`
}

// Hub manages active WebSocket connections, optionally tagged with the user
// ID that opened them, and broadcasts change notices to all of them.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]string
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]string),
	}
}

var _ domain.Notifier = (*Hub)(nil)

// Register adds a connection for the given user (may be empty).
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; !ok {
		metrics.WSConnections.Inc()
	}
	h.conns[conn] = userID
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(conn)
}

func (h *Hub) removeLocked(conn *websocket.Conn) {
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		metrics.WSConnections.Dec()
	}
}

// Len returns the number of registered connections.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Publish broadcasts a change notice for topic.
func (h *Hub) Publish(topic string) {
	h.BroadcastAll(Event{Type: "changed", Topic: topic})
}

// BroadcastAll sends the payload to every connection. The hub lock is held
// for the whole broadcast so writes to one socket never interleave.
// Connections that fail are closed and dropped.
func (h *Hub) BroadcastAll(payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		if err := h.writeLocked(conn, payload); err != nil {
			conn.Close()
			h.removeLocked(conn)
		}
	}
}

// Send writes payload to a single registered connection.
func (h *Hub) Send(conn *websocket.Conn, payload any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.writeLocked(conn, payload)
}

func (h *Hub) writeLocked(conn *websocket.Conn, payload any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(payload)
}

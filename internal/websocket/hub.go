package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wilbersoares/projeto-fatec/internal/infrastructure"
)

// Hub maintains the set of active clients grouped by dashboard session.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Client]struct{}
	logger   *slog.Logger
	metrics  *infrastructure.BusinessMetrics

	messagesSent int64
	dropped      int64
}

// NewHub creates a new Hub instance with dependency injection
func NewHub(logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		sessions: make(map[string]map[*Client]struct{}),
		logger:   logger.With(slog.String("component", "websocket.hub")),
		metrics:  metrics,
	}
}

// Register adds a client to its session's group.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	group, ok := h.sessions[c.sessionID]
	if !ok {
		group = make(map[*Client]struct{})
		h.sessions[c.sessionID] = group
	}
	group[c] = struct{}{}
	count := h.countLocked()
	h.mu.Unlock()

	ctx := infrastructure.WithSessionID(context.Background(), c.sessionID)
	if h.metrics != nil {
		h.metrics.WebSocketClients.Add(ctx, 1)
	}
	h.logger.InfoContext(ctx, "Client registered",
		slog.Int("total_clients", count),
		slog.String("client_id", c.id),
		slog.String("remote_addr", c.remoteAddr))
}

// Unregister removes a client and closes its send channel. Calling it twice
// is harmless.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	group := h.sessions[c.sessionID]
	if _, ok := group[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(group, c)
	if len(group) == 0 {
		delete(h.sessions, c.sessionID)
	}
	close(c.send)
	count := h.countLocked()
	h.mu.Unlock()

	ctx := infrastructure.WithSessionID(context.Background(), c.sessionID)
	if h.metrics != nil {
		h.metrics.WebSocketClients.Add(ctx, -1)
	}
	h.logger.InfoContext(ctx, "Client unregistered",
		slog.Int("total_clients", count),
		slog.String("client_id", c.id))
}

// Send queues message for one client. A client whose buffer is full is
// disconnected.
func (h *Hub) Send(c *Client, message []byte) bool {
	h.mu.Lock()
	if _, ok := h.sessions[c.sessionID][c]; !ok {
		h.mu.Unlock()
		return false
	}
	select {
	case c.send <- message:
		h.messagesSent++
		h.mu.Unlock()
		return true
	default:
		h.dropped++
		h.mu.Unlock()
	}

	h.logger.Warn("Client send buffer full, disconnecting", slog.String("client_id", c.id))
	h.Unregister(c)
	return false
}

// Broadcast queues message for every client of sessionID except the sender.
// It returns the number of clients reached.
func (h *Hub) Broadcast(sessionID string, message []byte, except *Client) int {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.sessions[sessionID]))
	for c := range h.sessions[sessionID] {
		if c != except {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if h.Send(c, message) {
			sent++
		}
	}
	return sent
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.countLocked()
}

// Len implements services.Counter.
func (h *Hub) Len() int {
	return h.ClientCount()
}

// SessionClients returns the number of clients attached to sessionID.
func (h *Hub) SessionClients(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	var all []*Client
	for _, group := range h.sessions {
		for c := range group {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.Unregister(c)
	}
	h.logger.Info("Hub shutting down", slog.Int("disconnected", len(all)))
}

// Stats returns message counters for diagnostics.
func (h *Hub) Stats() map[string]int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return map[string]int64{
		"clients":       int64(h.countLocked()),
		"messages_sent": h.messagesSent,
		"dropped":       h.dropped,
	}
}

func (h *Hub) countLocked() int {
	n := 0
	for _, group := range h.sessions {
		n += len(group)
	}
	return n
}

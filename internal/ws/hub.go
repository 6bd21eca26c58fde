package ws

import (
	"encoding/json"

	"sync"

	"github.com/carepulse/hms-api/internal/model"
	"github.com/carepulse/hms-api/pkg/logger"
	"github.com/carepulse/hms-api/pkg/metrics"
)

// Hub is the connection registry: it tracks every registered connection per
// user and fans messages out to them. A user may hold any number of
// concurrent connections (multiple tabs or devices); entries with no
// remaining connections are removed.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[*Conn]struct{}

	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewHub(logger *logger.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		conns:   make(map[string]map[*Conn]struct{}),
		logger:  logger,
		metrics: m,
	}
}

// Register adds a connection to its user's entry. Connections without a user
// identity are left unregistered: they stay open but are never addressed.
func (h *Hub) Register(c *Conn) {
	if c.userID == "" {
		return
	}

	h.mu.Lock()
	if _, ok := h.conns[c.userID]; !ok {
		h.conns[c.userID] = make(map[*Conn]struct{})
	}
	h.conns[c.userID][c] = struct{}{}
	total := len(h.conns[c.userID])
	h.mu.Unlock()

	h.metrics.ConnectionsActive.Inc()
	h.logger.Debug("ws connection registered", "user_id", c.userID, "role", string(c.role), "connections", total)
}

// Unregister removes a connection and closes its socket. Idempotent: a
// connection that was never registered, or already removed, only gets its
// socket closed.
func (h *Hub) Unregister(c *Conn) {
	h.mu.Lock()
	removed := false
	if conns, ok := h.conns[c.userID]; ok {
		if _, present := conns[c]; present {
			delete(conns, c)
			removed = true
			if len(conns) == 0 {
				delete(h.conns, c.userID)
			}
		}
	}
	h.mu.Unlock()

	c.close()
	if removed {
		h.metrics.ConnectionsActive.Dec()
		h.logger.Debug("ws connection unregistered", "user_id", c.userID)
	}
}

// SendToUser writes the payload to every open connection of one user.
// Serializes once; a user with no registered connections is a no-op.
func (h *Hub) SendToUser(userID string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error(err, "failed to marshal unicast payload", "user_id", userID)
		return
	}

	h.mu.RLock()
	targets := make([]*Conn, 0, len(h.conns[userID]))
	for c := range h.conns[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	h.deliver(targets, data, "unicast")
}

// Broadcast writes the payload to every registered connection.
func (h *Hub) Broadcast(payload interface{}) {
	h.broadcast(payload, "")
}

// BroadcastToRole writes the payload only to connections registered with the
// given role.
func (h *Hub) BroadcastToRole(payload interface{}, role model.Role) {
	h.broadcast(payload, role)
}

func (h *Hub) broadcast(payload interface{}, role model.Role) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error(err, "failed to marshal broadcast payload")
		return
	}

	h.mu.RLock()
	var targets []*Conn
	for _, conns := range h.conns {
		for c := range conns {
			if role != "" && c.role != role {
				continue
			}
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	h.deliver(targets, data, "broadcast")
}

// deliver writes one serialized frame to each target. A failing connection is
// dropped and unregistered without affecting delivery to the rest.
func (h *Hub) deliver(targets []*Conn, data []byte, kind string) {
	for _, c := range targets {
		if err := c.write(data); err != nil {
			h.metrics.MessagesDropped.Inc()
			h.Unregister(c)
			continue
		}
		h.metrics.MessagesSent.WithLabelValues(kind).Inc()
	}
}

// ConnectionCount returns the number of registered connections for a user.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// HasUser reports whether the user has a registry entry at all.
func (h *Hub) HasUser(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[userID]
	return ok
}

// Close unregisters and closes every connection.
func (h *Hub) Close() {
	h.mu.Lock()
	var all []*Conn
	for _, conns := range h.conns {
		for c := range conns {
			all = append(all, c)
		}
	}
	h.mu.Unlock()

	for _, c := range all {
		h.Unregister(c)
	}
}

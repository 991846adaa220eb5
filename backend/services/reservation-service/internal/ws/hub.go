package ws

import (
	"context"
	"encoding/json"
	"sync"

	"smartcharge/backend/services/reservation-service/internal/events"
)

// Hub tracks live connections per user and pushes reservation events to their owners.
type Hub struct {
	mu    sync.RWMutex
	conns map[int64]map[*Connection]struct{}
}

// NewHub builds an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[int64]map[*Connection]struct{})}
}

// Add registers conn.
func (h *Hub) Add(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[conn.UserID()]
	if !ok {
		set = make(map[*Connection]struct{})
		h.conns[conn.UserID()] = set
	}
	set[conn] = struct{}{}
}

// Remove unregisters conn.
func (h *Hub) Remove(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.conns[conn.UserID()]
	delete(set, conn)
	if len(set) == 0 {
		delete(h.conns, conn.UserID())
	}
}

// Count returns the number of live connections of a user.
func (h *Hub) Count(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// Publish implements events.Publisher by sending the event to every connection of its user.
func (h *Hub) Publish(_ context.Context, event events.Event) error {
	h.mu.RLock()
	targets := make([]*Connection, 0, len(h.conns[event.UserID]))
	for conn := range h.conns[event.UserID] {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	for _, conn := range targets {
		conn.Send(payload)
	}
	return nil
}

// CloseAll disconnects everyone.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	var all []*Connection
	for _, set := range h.conns {
		for conn := range set {
			all = append(all, conn)
		}
	}
	h.mu.RUnlock()
	for _, conn := range all {
		conn.Close()
	}
}

// Package websocket pushes notifications and record changes to connected clients.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tartampluch/go-lunar-birthday/internal/config"
	"github.com/tartampluch/go-lunar-birthday/internal/notify"
)

// Message is one live event broadcast to every client.
type Message struct {
	Type         string          `json:"type"`
	Entity       string          `json:"entity,omitempty"`
	Action       string          `json:"action,omitempty"`
	ID           string          `json:"id,omitempty"`
	Notification *notify.Payload `json:"notification,omitempty"`
}

// NewMessage creates a change event whose Type is derived from entity and action.
func NewMessage(entity, action, id string) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
	}
}

// Hub maintains the set of active clients and broadcasts messages.
// It serves as the dispatcher's event sink and the host toaster.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger.With(config.LogKeyComponent, config.CompWebSocket),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends msg to all connected clients. Slow clients drop it.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error(config.MsgWSMarshal, config.LogKeyError, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Debug(config.MsgWSDropped, config.LogKeyCategory, msg.Type)
		}
	}
}

// Publish broadcasts a dispatcher payload.
func (h *Hub) Publish(_ context.Context, p notify.Payload) {
	h.Broadcast(Message{Type: config.EventNotification, Notification: &p})
}

// Toast broadcasts a short user-facing message, such as a storage failure.
func (h *Hub) Toast(ctx context.Context, msg string) {
	h.Publish(ctx, notify.Payload{Title: msg, Category: config.CategoryToast})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

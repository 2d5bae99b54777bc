package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event is a real-time notification pushed to connected clients: judgment
// outcomes, portal lifecycle changes, quest launches.
type Event struct {
	Type     string         `json:"type"`
	PlayerID string         `json:"player_id,omitempty"`
	Title    string         `json:"title,omitempty"`
	Body     string         `json:"body,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Hub maintains the set of active WebSocket clients and routes events to
// them, either hall-wide or per player.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(ev Event) {
	h.deliver(ev, "")
}

// SendTo sends an event only to the given player's connections.
func (h *Hub) SendTo(playerID string, ev Event) {
	ev.PlayerID = playerID
	h.deliver(ev, playerID)
}

func (h *Hub) deliver(ev Event, playerID string) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if playerID != "" && c.playerID != playerID {
			continue
		}
		select {
		case c.send <- data:
		default:
			// Client buffer full — drop rather than block the sender
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

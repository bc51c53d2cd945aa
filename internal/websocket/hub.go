package websocket

import (
	"encoding/json"
	"sync"
)

const (
	EventNewCustomer = "new_customer"
	EventCalled      = "called"
	EventCompleted   = "completed"
	EventCancelled   = "cancelled"
)

// QueueUpdate is the change notification fanned out to display boards and
// teller screens. Delivery is best-effort and at-most-once; it is not tied
// to the storage commit.
type QueueUpdate struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
}

// BroadcastQueueUpdate sends to every connected client; slow consumers drop
// messages rather than block the caller.
func (h *Hub) BroadcastQueueUpdate(update QueueUpdate) {
	payload, _ := json.Marshal(update)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
		}
	}
}

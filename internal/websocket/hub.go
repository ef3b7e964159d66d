package websocket

import (
	"encoding/json"
	"sync"
)

// Notice is a realtime event pushed to a member's open connections.
// Type is one of payment_initiated, payment_confirmed, payment_rejected,
// group_settled.
type Notice struct {
	Type       string `json:"type"`
	GroupID    string `json:"group_id"`
	PaymentID  string `json:"payment_id,omitempty"`
	FromUserID string `json:"from_user_id,omitempty"`
	ToUserID   string `json:"to_user_id,omitempty"`
	Amount     string `json:"amount,omitempty"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

func (h *Hub) Unregister(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		return
	}
	delete(h.clients[userID], client)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

// Notify pushes a notice to every open connection of one member. Sends are
// non-blocking; a slow client drops the notice rather than stalling the
// caller.
func (h *Hub) Notify(userID string, notice Notice) {
	payload, _ := json.Marshal(notice)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
		}
	}
}

// NotifyAll fans a notice out to several members.
func (h *Hub) NotifyAll(userIDs []string, notice Notice) {
	for _, userID := range userIDs {
		h.Notify(userID, notice)
	}
}

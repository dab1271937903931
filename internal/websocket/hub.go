package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub tracks live connections per user and pushes notification events to them.
// A user may hold several connections, one per device.
type Hub struct {
	clients map[string]map[*Client]bool

	// Outbound messages addressed to a user
	broadcast chan *Message

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

// Message represents a message to deliver to a specific user. With Client
// set only that connection receives it.
type Message struct {
	UserID string
	Client *Client
	Data   interface{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			total := h.countLocked()
			h.mu.Unlock()
			log.Printf("✅ [WEBSOCKET] Client CONNECTED: user %s (%s), %d connections open", client.UserID, client.UserRole, total)

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			total := h.countLocked()
			h.mu.Unlock()
			log.Printf("🔴 [WEBSOCKET] Client DISCONNECTED: user %s, %d connections open", client.UserID, total)

		case message := <-h.broadcast:
			data, err := json.Marshal(message.Data)
			if err != nil {
				log.Printf("❌ [WEBSOCKET] Failed to marshal message: %v", err)
				continue
			}

			h.mu.Lock()
			for client := range h.clients[message.UserID] {
				if message.Client != nil && message.Client != client {
					continue
				}
				select {
				case client.send <- data:
				default:
					// Client buffer full, disconnect
					h.removeLocked(client)
					log.Printf("⚠️ [WEBSOCKET] Client buffer full, disconnecting: %s", message.UserID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// removeLocked drops client and closes its send channel. Caller holds mu.
func (h *Hub) removeLocked(client *Client) {
	conns, ok := h.clients[client.UserID]
	if !ok || !conns[client] {
		return
	}
	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(h.clients, client.UserID)
	}
}

func (h *Hub) countLocked() int {
	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}

// SendToUser queues data for every connection of userID. It never blocks;
// when the queue is full the message is dropped.
func (h *Hub) SendToUser(userID string, data interface{}) {
	select {
	case h.broadcast <- &Message{UserID: userID, Data: data}:
	default:
		log.Printf("⚠️ [WEBSOCKET] Send queue full, dropping message for user %s", userID)
	}
}

// sendToClient queues data for one connection only
func (h *Hub) sendToClient(client *Client, data interface{}) {
	select {
	case h.broadcast <- &Message{UserID: client.UserID, Client: client, Data: data}:
	default:
		log.Printf("⚠️ [WEBSOCKET] Send queue full, dropping reply for user %s", client.UserID)
	}
}

// GetClientCount returns the number of open connections
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.countLocked()
}

// IsUserConnected checks if a user has at least one open connection
func (h *Hub) IsUserConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

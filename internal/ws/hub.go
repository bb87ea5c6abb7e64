package ws

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Hub tracks active chat connections and routes frames between buyers and
// sellers. Presence is purely in-memory; nothing is written to the
// database when a user connects or disconnects.
type Hub struct {
	clients map[*Client]bool

	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan []byte

	// userClients indexes connections by user so a private message can be
	// delivered to every device the user has open.
	userClients map[uint][]*Client
	mutex       sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Broadcast:   make(chan []byte),
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		clients:     make(map[*Client]bool),
		userClients: make(map[uint][]*Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			h.trackUser(client)
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.untrackUser(client)
			}
		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
		}
	}
}

func (h *Hub) trackUser(client *Client) {
	h.mutex.Lock()
	h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
	count := len(h.userClients[client.UserID])

	online := make([]uint, 0, len(h.userClients))
	for userID := range h.userClients {
		online = append(online, userID)
	}
	h.mutex.Unlock()

	logrus.Infof("chat: user %d connected (%d connections)", client.UserID, count)

	statusJSON, _ := json.Marshal(map[string]any{
		"type":      "user_status",
		"user_id":   client.UserID,
		"is_online": true,
	})
	go func() { h.Broadcast <- statusJSON }()

	// The new client gets the current online list so both sides of a chat
	// see each other regardless of connect order.
	if len(online) > 0 {
		listJSON, _ := json.Marshal(map[string]any{
			"type":     "online_users_list",
			"user_ids": online,
		})
		go func() { client.Send <- listJSON }()
	}
}

func (h *Hub) untrackUser(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	conns := h.userClients[client.UserID]
	for i, conn := range conns {
		if conn == client {
			h.userClients[client.UserID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	if len(h.userClients[client.UserID]) == 0 {
		delete(h.userClients, client.UserID)

		statusJSON, _ := json.Marshal(map[string]any{
			"type":      "user_status",
			"user_id":   client.UserID,
			"is_online": false,
		})
		go func() { h.Broadcast <- statusJSON }()

		logrus.Infof("chat: user %d disconnected", client.UserID)
	}
}

// SendToUser delivers a frame to every connection the user has open.
func (h *Hub) SendToUser(userID uint, message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for _, client := range h.userClients[userID] {
		select {
		case client.Send <- message:
		default:
			close(client.Send)
			delete(h.clients, client)
		}
	}
}

// IsUserInRoom reports whether the user currently has the room open on
// any connection.
func (h *Hub) IsUserInRoom(userID, roomID uint) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for _, client := range h.userClients[userID] {
		client.mu.Lock()
		active := client.ActiveRoomID
		client.mu.Unlock()
		if active == roomID {
			return true
		}
	}
	return false
}

// IsUserOnline reports whether the user has any open connection.
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return len(h.userClients[userID]) > 0
}

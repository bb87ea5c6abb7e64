package ws

import (
	"encoding/json"
	"sync"
	"time"

	"qbuy_backend/models"

	"github.com/gofiber/contrib/websocket"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client bridges one websocket connection and the hub.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte

	UserID uint
	DB     *gorm.DB

	// ActiveRoomID is the room the user currently has open, 0 when none.
	ActiveRoomID uint
	mu           sync.Mutex
}

// Frame is the wire format for chat traffic. Product carries the snapshot
// of the listing a buyer is asking about.
type Frame struct {
	Type       string          `json:"type"` // chat, read, join_room, leave_room
	ChatRoomID uint            `json:"chat_room_id,omitempty"`
	Content    string          `json:"content,omitempty"`
	MessageID  uint            `json:"message_id,omitempty"`
	Product    json.RawMessage `json:"product,omitempty"`
}

// ReadPump pumps frames from the websocket connection to the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.Errorf("chat read error: %v", err)
			}
			break
		}
		c.handleFrame(message)
	}
}

// WritePump pumps frames from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush any queued frames into the same websocket message.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleFrame(message []byte) {
	var frame Frame
	if err := json.Unmarshal(message, &frame); err != nil {
		logrus.Errorf("chat: invalid frame from user %d: %v", c.UserID, err)
		return
	}

	switch frame.Type {
	case "chat":
		c.deliverChat(&frame)
	case "read":
		c.markRead(&frame)
	case "join_room":
		c.mu.Lock()
		previous := c.ActiveRoomID
		c.ActiveRoomID = frame.ChatRoomID
		c.mu.Unlock()

		if previous != 0 && previous != frame.ChatRoomID {
			c.notifyRoomPresence(previous, false)
		}
		c.notifyRoomPresence(frame.ChatRoomID, true)

		go c.deliverUnread(frame.ChatRoomID)
	case "leave_room":
		c.mu.Lock()
		previous := c.ActiveRoomID
		c.ActiveRoomID = 0
		c.mu.Unlock()

		if previous != 0 {
			c.notifyRoomPresence(previous, false)
		}
	}
}

func (c *Client) notifyRoomPresence(roomID uint, inRoom bool) {
	var room models.ChatRoom
	if err := c.DB.Preload("Participants").First(&room, roomID).Error; err != nil {
		logrus.Errorf("chat: room %d lookup failed: %v", roomID, err)
		return
	}

	statusJSON, _ := json.Marshal(map[string]any{
		"type":         "room_status",
		"user_id":      c.UserID,
		"chat_room_id": roomID,
		"in_room":      inRoom,
	})
	for _, p := range room.Participants {
		if p.UserID != c.UserID {
			c.Hub.SendToUser(p.UserID, statusJSON)
		}
	}
}

// deliverChat persists the message and pushes it to the sender and to
// every online connection of the recipient. When the recipient has the
// room open the message is stored already read.
func (c *Client) deliverChat(frame *Frame) {
	var room models.ChatRoom
	if err := c.DB.Preload("Participants").First(&room, frame.ChatRoomID).Error; err != nil {
		logrus.Errorf("chat: room %d lookup failed: %v", frame.ChatRoomID, err)
		return
	}

	var recipientID uint
	isParticipant := false
	for _, p := range room.Participants {
		if p.UserID == c.UserID {
			isParticipant = true
		} else {
			recipientID = p.UserID
		}
	}
	if !isParticipant {
		logrus.Warnf("chat: user %d is not in room %d", c.UserID, frame.ChatRoomID)
		return
	}

	var sender models.User
	if err := c.DB.First(&sender, c.UserID).Error; err != nil {
		logrus.Errorf("chat: sender %d lookup failed: %v", c.UserID, err)
		return
	}

	recipientInRoom := recipientID != 0 && c.Hub.IsUserInRoom(recipientID, frame.ChatRoomID)

	msg := models.Message{
		ChatRoomID:  frame.ChatRoomID,
		SenderID:    c.UserID,
		Content:     frame.Content,
		IsRead:      recipientInRoom,
		Sender:      sender,
		ProductInfo: string(frame.Product),
	}
	if err := c.DB.Omit("Sender").Create(&msg).Error; err != nil {
		logrus.Errorf("chat: message save failed: %v", err)
		return
	}

	responseJSON, _ := json.Marshal(map[string]any{
		"type":         "chat",
		"message":      msg,
		"sender_id":    c.UserID,
		"chat_room_id": frame.ChatRoomID,
		"product":      frame.Product,
	})

	c.Send <- responseJSON
	if recipientID != 0 {
		c.Hub.SendToUser(recipientID, responseJSON)
	}

	if err := c.DB.Model(&models.ChatRoom{}).Where("id = ?", frame.ChatRoomID).Updates(map[string]any{
		"last_message_content": frame.Content,
		"last_message_at":      time.Now(),
	}).Error; err != nil {
		logrus.Errorf("chat: room preview update failed: %v", err)
	}
}

// markRead flags a message as read and tells the sender.
func (c *Client) markRead(frame *Frame) {
	if frame.MessageID == 0 {
		return
	}

	var msg models.Message
	if err := c.DB.First(&msg, frame.MessageID).Error; err != nil {
		return
	}
	if msg.SenderID == c.UserID {
		return
	}

	if err := c.DB.Model(&models.Message{}).Where("id = ?", frame.MessageID).Update("is_read", true).Error; err != nil {
		logrus.Errorf("chat: read update failed for message %d: %v", frame.MessageID, err)
		return
	}

	receiptJSON, _ := json.Marshal(map[string]any{
		"type":         "read_receipt",
		"message_id":   frame.MessageID,
		"chat_room_id": msg.ChatRoomID,
		"read_by":      c.UserID,
	})
	c.Hub.SendToUser(msg.SenderID, receiptJSON)
}

// deliverUnread pushes messages the user missed while the room was
// closed, marks them read and receipts the senders.
func (c *Client) deliverUnread(roomID uint) {
	var unread []models.Message
	err := c.DB.Preload("Sender").
		Where("chat_room_id = ? AND sender_id != ? AND is_read = ?", roomID, c.UserID, false).
		Order("created_at ASC").
		Find(&unread).Error
	if err != nil {
		logrus.Errorf("chat: unread fetch failed for room %d: %v", roomID, err)
		return
	}
	if len(unread) == 0 {
		return
	}

	ids := make([]uint, 0, len(unread))
	for _, msg := range unread {
		responseJSON, _ := json.Marshal(map[string]any{
			"type":         "chat",
			"message":      msg,
			"sender_id":    msg.SenderID,
			"chat_room_id": msg.ChatRoomID,
		})
		c.Send <- responseJSON
		ids = append(ids, msg.ID)

		receiptJSON, _ := json.Marshal(map[string]any{
			"type":         "read_receipt",
			"message_id":   msg.ID,
			"chat_room_id": roomID,
			"read_by":      c.UserID,
		})
		c.Hub.SendToUser(msg.SenderID, receiptJSON)
	}

	if err := c.DB.Model(&models.Message{}).Where("id IN ?", ids).Update("is_read", true).Error; err != nil {
		logrus.Errorf("chat: unread mark failed for room %d: %v", roomID, err)
	}
}

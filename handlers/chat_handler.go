package handlers

import (
	"time"

	"qbuy_backend/internal/ws"
	"qbuy_backend/models"
	"qbuy_backend/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ChatHandler struct {
	Hub *ws.Hub
	DB  *gorm.DB
}

func NewChatHandler(hub *ws.Hub, db *gorm.DB) *ChatHandler {
	return &ChatHandler{Hub: hub, DB: db}
}

// WebSocketUpgradeMiddleware ensures the client is trying to upgrade to WebSocket
func (h *ChatHandler) WebSocketUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler returns the websocket handler function
func (h *ChatHandler) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		userID, ok := c.Locals("user_id").(uint)
		if !ok || userID == 0 {
			logrus.Warn("chat: websocket connection without a valid user id")
			c.Close()
			return
		}

		client := &ws.Client{
			Hub:    h.Hub,
			Conn:   c,
			Send:   make(chan []byte, 256),
			UserID: userID,
			DB:     h.DB,
		}

		client.Hub.Register <- client

		go client.WritePump()
		client.ReadPump()
	})
}

// InitPrivateChatRequest defines the payload for starting a chat. Buyers
// normally open a chat from a product page, so StoreID is accepted as an
// alternative to the seller's user id.
type InitPrivateChatRequest struct {
	TargetUserID uint `json:"target_user_id"`
	StoreID      uint `json:"store_id"`
}

// InitPrivateChat - POST /api/chats
// Returns the existing private room with the target user or creates one.
func (h *ChatHandler) InitPrivateChat(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req InitPrivateChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	targetID := req.TargetUserID
	if targetID == 0 && req.StoreID != 0 {
		var store models.Store
		if err := h.DB.First(&store, req.StoreID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Store not found"})
		}
		targetID = store.OwnerID
	}
	if targetID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A target user or store is required"})
	}
	if userID == targetID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot chat with yourself"})
	}

	// Look for an existing private room shared by both users.
	var roomID uint
	query := `
		SELECT cr.id
		FROM chat_rooms cr
		JOIN chat_participants cp1 ON cr.id = cp1.chat_room_id
		JOIN chat_participants cp2 ON cr.id = cp2.chat_room_id
		WHERE cr.type = 'private'
		AND cp1.user_id = ?
		AND cp2.user_id = ?
		LIMIT 1
	`
	h.DB.Raw(query, userID, targetID).Scan(&roomID)

	if roomID != 0 {
		// The user may have hidden this chat earlier; restore it.
		h.DB.Unscoped().Model(&models.ChatParticipant{}).
			Where("chat_room_id = ? AND user_id = ?", roomID, userID).
			Update("deleted_at", nil)

		return c.JSON(fiber.Map{
			"room_id": roomID,
			"created": false,
		})
	}

	newRoom := models.ChatRoom{Type: "private"}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newRoom).Error; err != nil {
			return err
		}
		participants := []models.ChatParticipant{
			{ChatRoomID: newRoom.ID, UserID: userID},
			{ChatRoomID: newRoom.ID, UserID: targetID},
		}
		return tx.Create(&participants).Error
	})
	if txErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create room"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"room_id": newRoom.ID,
		"created": true,
	})
}

// GetMyChats - GET /api/chats
// Lists the user's chat rooms with the other participant and an unread
// count, newest activity first.
func (h *ChatHandler) GetMyChats(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	type ChatRoomResult struct {
		ID                 uint       `json:"id"`
		Type               string     `json:"type"`
		LastMessageContent string     `json:"last_message"`
		LastMessageAt      *time.Time `json:"last_message_at"`
		OtherUserID        uint       `json:"other_user_id"`
		OtherUsername      string     `json:"other_username"`
		OtherImageURL      string     `json:"other_image_url"`
		UnreadCount        int64      `json:"unread_count"`
	}

	var results []ChatRoomResult
	query := `
		SELECT
			cr.id, cr.type, cr.last_message_content, cr.last_message_at,
			u.id as other_user_id, u.username as other_username, u.image_url as other_image_url,
			(
				SELECT COUNT(*)
				FROM messages m
				WHERE m.chat_room_id = cr.id
				AND m.is_read = false
				AND m.sender_id != ?
			) as unread_count
		FROM chat_rooms cr
		JOIN chat_participants cp ON cr.id = cp.chat_room_id
		LEFT JOIN chat_participants cp_other ON cr.id = cp_other.chat_room_id AND cp_other.user_id != ?
		LEFT JOIN users u ON cp_other.user_id = u.id
		WHERE cp.user_id = ? AND cp.deleted_at IS NULL
		ORDER BY cr.last_message_at DESC
	`
	if err := h.DB.Raw(query, userID, userID, userID).Scan(&results).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch chats"})
	}

	return c.JSON(fiber.Map{"data": results})
}

// GetChatMessages - GET /api/chats/:roomID/messages?limit=&offset=
func (h *ChatHandler) GetChatMessages(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	roomID, err := c.ParamsInt("roomID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid room ID"})
	}
	if !h.isParticipant(uint(roomID), userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not a member of this chat room"})
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	var messages []models.Message
	if err := h.DB.Preload("Sender").
		Where("chat_room_id = ?", roomID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch messages"})
	}

	return c.JSON(fiber.Map{"messages": messages})
}

// GetRoomStatus - GET /api/chats/:roomID/status
// Reports in-room and online state for each participant.
func (h *ChatHandler) GetRoomStatus(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	roomID, err := c.ParamsInt("roomID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid room ID"})
	}
	if !h.isParticipant(uint(roomID), userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not a member of this chat room"})
	}

	var participants []models.ChatParticipant
	h.DB.Where("chat_room_id = ?", roomID).Find(&participants)

	type UserRoomStatus struct {
		UserID   uint `json:"user_id"`
		InRoom   bool `json:"in_room"`
		IsOnline bool `json:"is_online"`
	}

	statuses := make([]UserRoomStatus, 0, len(participants))
	for _, p := range participants {
		statuses = append(statuses, UserRoomStatus{
			UserID:   p.UserID,
			InRoom:   h.Hub.IsUserInRoom(p.UserID, uint(roomID)),
			IsOnline: h.Hub.IsUserOnline(p.UserID),
		})
	}

	return c.JSON(fiber.Map{
		"room_id":  roomID,
		"statuses": statuses,
	})
}

// DeleteChat - DELETE /api/chats/:roomID
// Hides the chat for the caller; the room persists for the other user.
func (h *ChatHandler) DeleteChat(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	roomID, err := c.ParamsInt("roomID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid room ID"})
	}

	var participant models.ChatParticipant
	if err := h.DB.Where("chat_room_id = ? AND user_id = ?", roomID, userID).First(&participant).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Chat not found or not a participant"})
	}

	if err := h.DB.Delete(&participant).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete chat"})
	}

	return c.JSON(fiber.Map{"message": "Chat deleted successfully"})
}

func (h *ChatHandler) isParticipant(roomID, userID uint) bool {
	var count int64
	h.DB.Model(&models.ChatParticipant{}).
		Where("chat_room_id = ? AND user_id = ?", roomID, userID).
		Count(&count)
	return count > 0
}

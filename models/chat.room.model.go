package models

import (
	"time"

	"gorm.io/gorm"
)

// ChatRoom is a private buyer/seller conversation, usually opened from a
// product page.
type ChatRoom struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Type string `gorm:"default:'private'" json:"type"`

	// Denormalized preview so the chat list does not need a per-room
	// latest-message query.
	LastMessageContent string    `gorm:"type:text" json:"last_message"`
	LastMessageAt      time.Time `json:"last_message_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	// Relations
	Participants []ChatParticipant `json:"participants"`
	Messages     []Message         `json:"messages"`
}

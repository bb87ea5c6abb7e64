package models

import (
	"time"

	"gorm.io/gorm"
)

type Message struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ChatRoomID uint `gorm:"index;not null" json:"chat_room_id"`
	SenderID   uint `gorm:"index;not null" json:"sender_id"`

	Content   string `gorm:"type:text;not null" json:"content"`
	MediaType string `gorm:"default:'text'" json:"media_type"` // text, image
	MediaURL  string `json:"media_url,omitempty"`

	// Snapshot of the product the buyer is asking about, JSON encoded.
	ProductInfo string `gorm:"type:text" json:"product_info,omitempty"`

	IsRead bool `gorm:"default:false" json:"is_read"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	// Relations
	Sender User `gorm:"foreignKey:SenderID" json:"sender"`
}

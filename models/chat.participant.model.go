package models

import (
	"time"

	"gorm.io/gorm"
)

type ChatParticipant struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ChatRoomID uint `gorm:"index" json:"chat_room_id"`
	UserID     uint `gorm:"index" json:"user_id"`

	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
	// Soft delete marks "chat hidden for this user"; rejoining restores it.
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User     User     `gorm:"foreignKey:UserID" json:"user"`
	ChatRoom ChatRoom `gorm:"foreignKey:ChatRoomID" json:"chat_room"`
}

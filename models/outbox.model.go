package models

import (
	"time"
)

// OutboxEvent is written in the same transaction as the state change it
// describes, then published asynchronously. SentAt nil means pending.
type OutboxEvent struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	EventID string `gorm:"uniqueIndex;size:36;not null" json:"event_id"`
	Topic   string `gorm:"size:100;not null" json:"topic"`
	Key     string `gorm:"size:100" json:"key"`
	Payload string `gorm:"type:text" json:"payload"`

	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at"`
}

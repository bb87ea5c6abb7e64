package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is written by the buyer after confirming receipt. The unique
// order index plus the HasReviewed flag on the order (flipped in the same
// transaction) guarantee at most one review per order.
type Review struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	OrderID   uint `gorm:"uniqueIndex;not null" json:"order_id"`
	ProductID uint `gorm:"index;not null" json:"product_id"`
	StoreID   uint `gorm:"index;not null" json:"store_id"`
	UserID    uint `gorm:"index;not null" json:"user_id"`

	Rating    int      `gorm:"not null" json:"rating"` // 1..5
	Text      string   `gorm:"type:text" json:"text"`
	ImageURLs []string `gorm:"serializer:json" json:"image_urls"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

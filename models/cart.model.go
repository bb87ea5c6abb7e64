package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem is one buyer-selected product pending checkout. Price and image
// are snapshots taken when the line was added; the live product row is
// re-read at commit time for stock.
type CartItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	UserID    uint `gorm:"index;not null" json:"user_id"`
	ProductID uint `gorm:"index;not null" json:"product_id"`
	StoreID   uint `gorm:"index" json:"store_id"`

	ProductName string  `gorm:"size:255" json:"product_name"`
	Price       float64 `gorm:"not null" json:"price"` // snapshot at add time
	Quantity    int     `gorm:"not null;default:1" json:"quantity"`
	ImageURL    string  `json:"image_url"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

package models

import (
	"time"
)

// Favorite is a saved product. The composite unique index makes the
// save/unsave toggle idempotent.
type Favorite struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	UserID    uint `gorm:"uniqueIndex:idx_fav_user_product;not null" json:"user_id"`
	ProductID uint `gorm:"uniqueIndex:idx_fav_user_product;not null" json:"product_id"`

	CreatedAt time.Time `json:"created_at"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

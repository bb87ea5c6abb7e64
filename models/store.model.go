package models

import (
	"time"

	"gorm.io/gorm"
)

// Store is a seller's shopfront. One store per user, enforced by the
// unique owner index. Prices are never cached on the store; the product
// rows are the source of truth.
type Store struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OwnerID uint `gorm:"uniqueIndex;not null" json:"owner_id"`

	Name       string `gorm:"size:100;not null" json:"name"`
	Location   string `gorm:"size:255" json:"location"` // free-text address
	AboutUs    string `gorm:"type:text" json:"about_us"`
	ImageURL   string `json:"image_url"`
	IsVerified bool   `gorm:"default:false" json:"is_verified"`

	// Geographic position for nearby-store discovery. Zero values mean
	// "unknown"; such stores are skipped by the offer search.
	Latitude  float64 `gorm:"index:idx_store_location" json:"latitude"`
	Longitude float64 `gorm:"index:idx_store_location" json:"longitude"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	// Relations
	Owner    User      `gorm:"foreignKey:OwnerID" json:"owner"`
	Products []Product `gorm:"foreignKey:StoreID" json:"products,omitempty"`
}

func (s *Store) HasCoordinates() bool {
	return s.Latitude != 0 || s.Longitude != 0
}

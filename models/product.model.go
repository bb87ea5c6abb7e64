package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	StoreID uint `gorm:"index;not null" json:"store_id"`

	Name        string   `gorm:"size:255;not null;index" json:"name"`
	Description string   `gorm:"type:text" json:"description"`
	Price       float64  `gorm:"not null" json:"price"` // LKR
	Category    string   `gorm:"size:50;index" json:"category"`
	ImageURLs   []string `gorm:"serializer:json" json:"image_urls"`

	// Sellable units. Never negative: decremented only through the
	// conditional update in the checkout committer.
	TotalStocks int `gorm:"not null;default:0" json:"total_stocks"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	// Relations
	Store Store `gorm:"foreignKey:StoreID" json:"store,omitempty"`
}

func (p *Product) InStock() bool {
	return p.TotalStocks > 0
}

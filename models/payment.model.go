package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentCard is a saved payment method. Only the brand and last four
// digits are persisted; the full PAN never reaches storage.
type PaymentCard struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"index;not null" json:"user_id"`

	HolderName  string `gorm:"size:100;not null" json:"holder_name"`
	Brand       string `gorm:"size:20;not null" json:"brand"` // visa, mastercard
	LastFour    string `gorm:"size:4;not null" json:"last_four"`
	ExpiryMonth int    `gorm:"not null" json:"expiry_month"`
	ExpiryYear  int    `gorm:"not null" json:"expiry_year"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

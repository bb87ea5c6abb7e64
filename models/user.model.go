package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Login credentials
	Username string `gorm:"unique;not null;size:50" json:"username"`
	Email    string `gorm:"unique;not null;size:100" json:"email"`
	Password string `gorm:"not null" json:"-"`

	// Profile
	FullName string  `gorm:"size:100" json:"full_name"`
	Phone    *string `gorm:"unique;size:20" json:"phone"`
	ImageURL string  `json:"image_url"`

	// Role & membership
	Role       string `gorm:"default:'user';size:20" json:"role"` // user, admin
	IsVerified bool   `gorm:"default:false" json:"is_verified"`
	Membership string `gorm:"default:'free';size:20" json:"membership"` // free, premium

	// Last known location, used as the default buyer position for
	// nearby-store offers when the client sends no coordinates.
	Latitude  float64 `gorm:"index:idx_user_location" json:"latitude"`
	Longitude float64 `gorm:"index:idx_user_location" json:"longitude"`
	Address   string  `gorm:"type:text" json:"address"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

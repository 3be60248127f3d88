package model

import (
	"time"

	"gorm.io/gorm"
)

// Auth providers a user can sign in with.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User represents a registered FinConnect user.
type User struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Name           string         `json:"name" gorm:"size:255;not null"`
	Email          string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash   string         `json:"-" gorm:"size:255"` // empty for OAuth-only users
	Phone          string         `json:"phone,omitempty" gorm:"size:32"`
	DateOfBirth    *time.Time     `json:"date_of_birth,omitempty"`
	ProfilePicture string         `json:"profile_picture,omitempty" gorm:"type:longtext"` // base64 data URL
	Bio            string         `json:"bio,omitempty" gorm:"type:text"`
	Provider       string         `json:"provider" gorm:"size:20;default:'local'"`
	GoogleID       string         `json:"-" gorm:"size:64;index"`
	IsVerified     bool           `json:"is_verified" gorm:"default:false"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

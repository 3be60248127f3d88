package model

import "time"

// UserPreferences holds per-user dashboard settings, one row per user.
type UserPreferences struct {
	ID                   uint      `json:"-" gorm:"primaryKey"`
	UserID               uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Theme                string    `json:"theme" gorm:"size:16;default:'dark'"`
	Language             string    `json:"language" gorm:"size:8;default:'en'"`
	Currency             string    `json:"currency" gorm:"size:8;default:'USD'"`
	NotificationsEnabled bool      `json:"notifications_enabled" gorm:"default:true"`
	EmailNotifications   bool      `json:"email_notifications" gorm:"default:true"`
	PushNotifications    bool      `json:"push_notifications" gorm:"default:true"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DefaultPreferences are returned for users that never saved a row.
func DefaultPreferences(userID uint) UserPreferences {
	return UserPreferences{
		UserID:               userID,
		Theme:                "dark",
		Language:             "en",
		Currency:             "USD",
		NotificationsEnabled: true,
		EmailNotifications:   true,
		PushNotifications:    true,
	}
}

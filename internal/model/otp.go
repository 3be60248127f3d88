package model

import "time"

// OTPType distinguishes what an emailed code is good for.
type OTPType string

const (
	OTPTypeVerification  OTPType = "verification"
	OTPTypePasswordReset OTPType = "password_reset"
)

// OTP is one emailed verification code. Multiple rows may exist per email;
// only the newest unused, unexpired, matching-code row is accepted.
type OTP struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"size:255;not null;index"`
	Code      string    `json:"-" gorm:"size:6;not null"`
	Type      OTPType   `json:"type" gorm:"type:varchar(20);not null;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	Used      bool      `json:"used" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"finconnect/internal/model"
)

// OTPRepository defines one-time-code persistence operations.
type OTPRepository interface {
	Create(ctx context.Context, otp *model.OTP) error
	// FindValid returns the newest unused, unexpired row matching email, code
	// and type, or gorm.ErrRecordNotFound.
	FindValid(ctx context.Context, email, code string, otpType model.OTPType) (*model.OTP, error)
	MarkUsed(ctx context.Context, id uint) error
	// InvalidateAll marks every outstanding code of the given type for the
	// email as used, so a resend leaves exactly one live code.
	InvalidateAll(ctx context.Context, email string, otpType model.OTPType) error
}

type otpRepository struct {
	db *gorm.DB
}

// NewOTPRepository creates a new OTP repository.
func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &otpRepository{db: db}
}

// Create creates a new OTP row.
func (r *otpRepository) Create(ctx context.Context, otp *model.OTP) error {
	return r.db.WithContext(ctx).Create(otp).Error
}

// FindValid returns the newest matching live code.
func (r *otpRepository) FindValid(ctx context.Context, email, code string, otpType model.OTPType) (*model.OTP, error) {
	var otp model.OTP
	err := r.db.WithContext(ctx).
		Where("email = ? AND code = ? AND type = ? AND used = ? AND expires_at > ?",
			email, code, otpType, false, time.Now()).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

// MarkUsed marks a single code as consumed.
func (r *otpRepository) MarkUsed(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.OTP{}).
		Where("id = ?", id).
		Update("used", true).Error
}

// InvalidateAll consumes every outstanding code of a type for an email.
func (r *otpRepository) InvalidateAll(ctx context.Context, email string, otpType model.OTPType) error {
	return r.db.WithContext(ctx).Model(&model.OTP{}).
		Where("email = ? AND type = ?", email, otpType).
		Update("used", true).Error
}

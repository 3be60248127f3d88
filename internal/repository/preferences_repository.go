package repository

import (
	"context"

	"gorm.io/gorm"

	"finconnect/internal/model"
)

// PreferencesRepository defines user-preferences persistence operations.
type PreferencesRepository interface {
	FindByUserID(ctx context.Context, userID uint) (*model.UserPreferences, error)
	Upsert(ctx context.Context, prefs *model.UserPreferences) error
}

type preferencesRepository struct {
	db *gorm.DB
}

// NewPreferencesRepository creates a new preferences repository.
func NewPreferencesRepository(db *gorm.DB) PreferencesRepository {
	return &preferencesRepository{db: db}
}

// FindByUserID finds the preferences row for a user.
func (r *preferencesRepository) FindByUserID(ctx context.Context, userID uint) (*model.UserPreferences, error) {
	var prefs model.UserPreferences
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error; err != nil {
		return nil, err
	}
	return &prefs, nil
}

// Upsert inserts or replaces the single preferences row for a user.
func (r *preferencesRepository) Upsert(ctx context.Context, prefs *model.UserPreferences) error {
	var existing model.UserPreferences
	err := r.db.WithContext(ctx).Where("user_id = ?", prefs.UserID).First(&existing).Error
	if err == nil {
		prefs.ID = existing.ID
		return r.db.WithContext(ctx).Save(prefs).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return r.db.WithContext(ctx).Create(prefs).Error
}

package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "finconnect/internal/errors"
	"finconnect/internal/model"
	"finconnect/internal/repository"
)

// Allowed preference enum values.
var (
	validThemes     = map[string]bool{"dark": true, "light": true, "system": true}
	validLanguages  = map[string]bool{"en": true, "es": true, "fr": true, "de": true}
	validCurrencies = map[string]bool{"USD": true, "EUR": true, "GBP": true, "JPY": true}
)

// UpdatePreferencesInput carries the editable preference fields. Nil pointers
// leave the stored value untouched.
type UpdatePreferencesInput struct {
	Theme                *string
	Language             *string
	Currency             *string
	NotificationsEnabled *bool
	EmailNotifications   *bool
	PushNotifications    *bool
}

// PreferencesService reads and updates per-user dashboard settings.
type PreferencesService struct {
	prefs repository.PreferencesRepository
}

// NewPreferencesService creates a new preferences service.
func NewPreferencesService(prefs repository.PreferencesRepository) *PreferencesService {
	return &PreferencesService{prefs: prefs}
}

// Get returns stored preferences, or the defaults when no row exists yet.
func (s *PreferencesService) Get(ctx context.Context, userID uint) (*model.UserPreferences, error) {
	prefs, err := s.prefs.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			defaults := model.DefaultPreferences(userID)
			return &defaults, nil
		}
		return nil, err
	}
	return prefs, nil
}

// Update validates and persists the provided fields, creating the row on first
// write.
func (s *PreferencesService) Update(ctx context.Context, userID uint, input UpdatePreferencesInput) (*model.UserPreferences, error) {
	if input.Theme != nil && !validThemes[*input.Theme] {
		return nil, apperrors.ErrInvalidPreference
	}
	if input.Language != nil && !validLanguages[*input.Language] {
		return nil, apperrors.ErrInvalidPreference
	}
	if input.Currency != nil && !validCurrencies[*input.Currency] {
		return nil, apperrors.ErrInvalidPreference
	}

	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Theme != nil {
		prefs.Theme = *input.Theme
	}
	if input.Language != nil {
		prefs.Language = *input.Language
	}
	if input.Currency != nil {
		prefs.Currency = *input.Currency
	}
	if input.NotificationsEnabled != nil {
		prefs.NotificationsEnabled = *input.NotificationsEnabled
	}
	if input.EmailNotifications != nil {
		prefs.EmailNotifications = *input.EmailNotifications
	}
	if input.PushNotifications != nil {
		prefs.PushNotifications = *input.PushNotifications
	}

	if err := s.prefs.Upsert(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "finconnect/internal/errors"
	"finconnect/internal/model"
	"finconnect/internal/repository"
)

// maxPictureBytes caps the stored data URL. A 5MB image base64-encodes to
// roughly 6.7MB.
const maxPictureBytes = 7 << 20

// UpdateProfileInput carries the editable profile fields. Nil pointers leave
// the stored value untouched.
type UpdateProfileInput struct {
	Name        *string
	Phone       *string
	DateOfBirth *time.Time
	Bio         *string
}

// ProfileService reads and updates user profiles.
type ProfileService struct {
	users repository.UserRepository
}

// NewProfileService creates a new profile service.
func NewProfileService(users repository.UserRepository) *ProfileService {
	return &ProfileService{users: users}
}

// Get returns the profile for a user.
func (s *ProfileService) Get(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Update applies the provided profile fields and returns the updated user.
func (s *ProfileService) Update(ctx context.Context, userID uint, input UpdateProfileInput) (*model.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.DateOfBirth != nil {
		user.DateOfBirth = input.DateOfBirth
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdatePicture stores a base64 data URL as the profile picture. Only image
// MIME types are accepted, capped at maxPictureBytes of encoded payload.
func (s *ProfileService) UpdatePicture(ctx context.Context, userID uint, dataURL string) (*model.User, error) {
	if !strings.HasPrefix(dataURL, "data:image/") {
		return nil, apperrors.ErrInvalidImage
	}
	if len(dataURL) > maxPictureBytes {
		return nil, apperrors.ErrPictureTooLarge
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.ProfilePicture = dataURL
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"finconnect/internal/auth"
	apperrors "finconnect/internal/errors"
	"finconnect/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) MarkVerified(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, email, hash string) error {
	args := m.Called(ctx, email, hash)
	return args.Error(0)
}

// MockOTPRepository is a mock implementation of OTPRepository.
type MockOTPRepository struct {
	mock.Mock
}

func (m *MockOTPRepository) Create(ctx context.Context, otp *model.OTP) error {
	args := m.Called(ctx, otp)
	return args.Error(0)
}

func (m *MockOTPRepository) FindValid(ctx context.Context, email, code string, otpType model.OTPType) (*model.OTP, error) {
	args := m.Called(ctx, email, code, otpType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OTP), args.Error(1)
}

func (m *MockOTPRepository) MarkUsed(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOTPRepository) InvalidateAll(ctx context.Context, email string, otpType model.OTPType) error {
	args := m.Called(ctx, email, otpType)
	return args.Error(0)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, email string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, email, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uint, string, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uint), args.String(1), args.Error(2)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

// MockMailer is a mock implementation of mail.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(to, subject, htmlBody string) error {
	args := m.Called(to, subject, htmlBody)
	return args.Error(0)
}

func newTestAuthService(users *MockUserRepository, otps *MockOTPRepository, tokens *MockTokenStore, mailer *MockMailer) *AuthService {
	return NewAuthService(users, otps, auth.NewJWTService("test-secret"), tokens, nil, mailer, zerolog.Nop())
}

func TestAuthService_Signup(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		setupMock     func(*MockUserRepository, *MockOTPRepository, *MockMailer)
		expectedError error
	}{
		{
			name:  "successful signup",
			email: "new@example.com",
			setupMock: func(users *MockUserRepository, otps *MockOTPRepository, mailer *MockMailer) {
				users.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
				users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				otps.On("Create", mock.Anything, mock.AnythingOfType("*model.OTP")).Return(nil)
				mailer.On("Send", "new@example.com", mock.Anything, mock.Anything).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:  "email already taken",
			email: "taken@example.com",
			setupMock: func(users *MockUserRepository, otps *MockOTPRepository, mailer *MockMailer) {
				users.On("FindByEmail", mock.Anything, "taken@example.com").
					Return(&model.User{Email: "taken@example.com"}, nil)
			},
			expectedError: apperrors.ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			otps := new(MockOTPRepository)
			tokens := new(MockTokenStore)
			mailer := new(MockMailer)
			tt.setupMock(users, otps, mailer)

			svc := newTestAuthService(users, otps, tokens, mailer)
			user, err := svc.Signup(context.Background(), SignupInput{
				Name:     "Test User",
				Email:    tt.email,
				Password: "password123",
			})

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
				assert.False(t, user.IsVerified)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, "password123", user.PasswordHash)
			}

			users.AssertExpectations(t)
			otps.AssertExpectations(t)
			mailer.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	tests := []struct {
		name          string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:     "successful login",
			password: "password123",
			setupMock: func(users *MockUserRepository, tokens *MockTokenStore) {
				users.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           1,
					Email:        "test@example.com",
					PasswordHash: string(hash),
					IsVerified:   true,
				}, nil)
				tokens.On("StoreRefreshToken", mock.Anything, mock.Anything, uint(1), "test@example.com", mock.Anything).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "wrong password",
			password: "wrong",
			setupMock: func(users *MockUserRepository, tokens *MockTokenStore) {
				users.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           1,
					Email:        "test@example.com",
					PasswordHash: string(hash),
					IsVerified:   true,
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			password: "password123",
			setupMock: func(users *MockUserRepository, tokens *MockTokenStore) {
				users.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "unverified account",
			password: "password123",
			setupMock: func(users *MockUserRepository, tokens *MockTokenStore) {
				users.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           1,
					Email:        "test@example.com",
					PasswordHash: string(hash),
					IsVerified:   false,
				}, nil)
			},
			expectedError: apperrors.ErrEmailNotVerified,
		},
		{
			name:     "oauth-only account has no password",
			password: "password123",
			setupMock: func(users *MockUserRepository, tokens *MockTokenStore) {
				users.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:       1,
					Email:    "test@example.com",
					Provider: model.ProviderGoogle,
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			otps := new(MockOTPRepository)
			tokens := new(MockTokenStore)
			mailer := new(MockMailer)
			tt.setupMock(users, tokens)

			svc := newTestAuthService(users, otps, tokens, mailer)
			user, pair, err := svc.Login(context.Background(), "test@example.com", tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
				assert.Nil(t, pair)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.NotEmpty(t, pair.AccessToken)
				assert.NotEmpty(t, pair.RefreshToken)
			}

			users.AssertExpectations(t)
			tokens.AssertExpectations(t)
		})
	}
}

func TestAuthService_VerifyOTP(t *testing.T) {
	tests := []struct {
		name          string
		code          string
		setupMock     func(*MockUserRepository, *MockOTPRepository)
		expectedError error
	}{
		{
			name: "valid code marks user verified",
			code: "123456",
			setupMock: func(users *MockUserRepository, otps *MockOTPRepository) {
				otps.On("FindValid", mock.Anything, "test@example.com", "123456", model.OTPTypeVerification).
					Return(&model.OTP{ID: 7, Email: "test@example.com", Code: "123456"}, nil)
				otps.On("MarkUsed", mock.Anything, uint(7)).Return(nil)
				users.On("MarkVerified", mock.Anything, "test@example.com").Return(nil)
			},
			expectedError: nil,
		},
		{
			name: "wrong code",
			code: "000000",
			setupMock: func(users *MockUserRepository, otps *MockOTPRepository) {
				otps.On("FindValid", mock.Anything, "test@example.com", "000000", model.OTPTypeVerification).
					Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidOTP,
		},
		{
			name:          "empty code",
			code:          "",
			setupMock:     func(users *MockUserRepository, otps *MockOTPRepository) {},
			expectedError: apperrors.ErrInvalidOTP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			otps := new(MockOTPRepository)
			tt.setupMock(users, otps)

			svc := newTestAuthService(users, otps, new(MockTokenStore), new(MockMailer))
			err := svc.VerifyOTP(context.Background(), "test@example.com", tt.code, model.OTPTypeVerification)

			assert.Equal(t, tt.expectedError, err)
			users.AssertExpectations(t)
			otps.AssertExpectations(t)
		})
	}
}

func TestAuthService_ForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	users := new(MockUserRepository)
	otps := new(MockOTPRepository)
	mailer := new(MockMailer)
	users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

	svc := newTestAuthService(users, otps, new(MockTokenStore), mailer)
	err := svc.ForgotPassword(context.Background(), "ghost@example.com")

	assert.NoError(t, err)
	otps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_ForgotPassword_SendsResetCode(t *testing.T) {
	users := new(MockUserRepository)
	otps := new(MockOTPRepository)
	mailer := new(MockMailer)
	users.On("FindByEmail", mock.Anything, "test@example.com").
		Return(&model.User{ID: 1, Email: "test@example.com", IsVerified: true}, nil)
	otps.On("InvalidateAll", mock.Anything, "test@example.com", model.OTPTypePasswordReset).Return(nil)
	otps.On("Create", mock.Anything, mock.AnythingOfType("*model.OTP")).Return(nil)
	mailer.On("Send", "test@example.com", mock.Anything, mock.Anything).Return(nil)

	svc := newTestAuthService(users, otps, new(MockTokenStore), mailer)
	err := svc.ForgotPassword(context.Background(), "test@example.com")

	assert.NoError(t, err)
	otps.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestAuthService_ResetPassword(t *testing.T) {
	users := new(MockUserRepository)
	otps := new(MockOTPRepository)
	otps.On("FindValid", mock.Anything, "test@example.com", "654321", model.OTPTypePasswordReset).
		Return(&model.OTP{ID: 9, Email: "test@example.com", Code: "654321", Type: model.OTPTypePasswordReset}, nil)
	otps.On("MarkUsed", mock.Anything, uint(9)).Return(nil)
	users.On("UpdatePasswordHash", mock.Anything, "test@example.com", mock.AnythingOfType("string")).Return(nil)

	svc := newTestAuthService(users, otps, new(MockTokenStore), new(MockMailer))
	err := svc.ResetPassword(context.Background(), "test@example.com", "654321", "newpassword")

	assert.NoError(t, err)
	users.AssertExpectations(t)
	otps.AssertExpectations(t)
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	svc := newTestAuthService(new(MockUserRepository), new(MockOTPRepository), new(MockTokenStore), new(MockMailer))

	pair, err := svc.Refresh(context.Background(), "not-a-jwt")

	assert.Equal(t, apperrors.ErrInvalidRefreshToken, err)
	assert.Nil(t, pair)
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	users := new(MockUserRepository)
	tokens := new(MockTokenStore)
	jwtService := auth.NewJWTService("test-secret")

	tokenID, refresh, err := jwtService.GenerateRefreshToken(1, "test@example.com")
	assert.NoError(t, err)

	tokens.On("GetRefreshToken", mock.Anything, tokenID).Return(uint(1), "test@example.com", nil)
	tokens.On("DeleteRefreshToken", mock.Anything, tokenID).Return(nil)
	tokens.On("StoreRefreshToken", mock.Anything, mock.Anything, uint(1), "test@example.com", mock.Anything).Return(nil)
	users.On("FindByID", mock.Anything, uint(1)).
		Return(&model.User{ID: 1, Email: "test@example.com", IsVerified: true}, nil)

	svc := NewAuthService(users, new(MockOTPRepository), jwtService, tokens, nil, new(MockMailer), zerolog.Nop())
	pair, err := svc.Refresh(context.Background(), refresh)

	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, refresh, pair.RefreshToken)
	tokens.AssertExpectations(t)
}

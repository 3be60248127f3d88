package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"finconnect/internal/auth"
	"finconnect/internal/cache"
	apperrors "finconnect/internal/errors"
	"finconnect/internal/mail"
	"finconnect/internal/model"
	"finconnect/internal/repository"
)

// otpTTL is how long an emailed code stays valid.
const otpTTL = 10 * time.Minute

// TokenPair is an access/refresh token pair issued on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SignupInput carries the fields accepted at registration.
type SignupInput struct {
	Name        string
	Email       string
	Password    string
	Phone       string
	DateOfBirth *time.Time
}

// AuthService implements signup, login, email verification and password reset.
type AuthService struct {
	users  repository.UserRepository
	otps   repository.OTPRepository
	jwt    *auth.JWTService
	tokens auth.TokenStoreInterface
	cache  *cache.Client
	mailer mail.Mailer
	logger zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	users repository.UserRepository,
	otps repository.OTPRepository,
	jwtService *auth.JWTService,
	tokens auth.TokenStoreInterface,
	cacheClient *cache.Client,
	mailer mail.Mailer,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		otps:   otps,
		jwt:    jwtService,
		tokens: tokens,
		cache:  cacheClient,
		mailer: mailer,
		logger: logger,
	}
}

// Signup registers a local account and emails a verification code. The account
// stays unverified until VerifyOTP succeeds.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*model.User, error) {
	_, err := s.users.FindByEmail(ctx, input.Email)
	if err == nil {
		return nil, apperrors.ErrUserAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Phone:        input.Phone,
		DateOfBirth:  input.DateOfBirth,
		Provider:     model.ProviderLocal,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.issueOTP(ctx, user.Email, model.OTPTypeVerification); err != nil {
		// The account exists; the user can request a resend.
		s.logger.Error().Err(err).Str("email", user.Email).Msg("failed to send verification code")
	}
	return user, nil
}

// Login authenticates a verified local account and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, *TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if user.PasswordHash == "" {
		// OAuth-only account.
		return nil, nil, apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, nil, apperrors.ErrEmailNotVerified
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// VerifyOTP consumes an emailed code. Verification codes additionally mark
// the account verified. The Redis copy is the hot path; the database row is
// the fallback when Redis is cold.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string, otpType model.OTPType) error {
	if !s.checkOTP(ctx, email, code, otpType) {
		return apperrors.ErrInvalidOTP
	}
	if otpType == model.OTPTypeVerification {
		if err := s.users.MarkVerified(ctx, email); err != nil {
			return err
		}
	}
	return nil
}

// ResendOTP invalidates outstanding codes of the given type and emails a
// fresh one.
func (s *AuthService) ResendOTP(ctx context.Context, email string, otpType model.OTPType) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return err
	}
	if otpType == model.OTPTypeVerification && user.IsVerified {
		return nil
	}
	if err := s.otps.InvalidateAll(ctx, email, otpType); err != nil {
		return err
	}
	return s.issueOTP(ctx, email, otpType)
}

// ForgotPassword emails a reset code. It reports success for unknown emails so
// the endpoint does not reveal which addresses are registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	_, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if err := s.otps.InvalidateAll(ctx, email, model.OTPTypePasswordReset); err != nil {
		return err
	}
	return s.issueOTP(ctx, email, model.OTPTypePasswordReset)
}

// ResetPassword consumes a reset code and replaces the stored password hash.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if !s.checkOTP(ctx, email, code, model.OTPTypePasswordReset) {
		return apperrors.ErrInvalidOTP
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePasswordHash(ctx, email, string(hash))
}

// Refresh rotates a refresh token: the old token is revoked and a new pair is
// issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	tokenID, err := s.jwt.ExtractTokenID(refreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	userID, _, err := s.tokens.GetRefreshToken(ctx, tokenID)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	if err := s.tokens.DeleteRefreshToken(ctx, tokenID); err != nil {
		return nil, err
	}
	return s.issueTokenPair(ctx, user)
}

// Logout revokes a refresh token. Access tokens simply age out.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenID, err := s.jwt.ExtractTokenID(refreshToken)
	if err != nil {
		return apperrors.ErrInvalidRefreshToken
	}
	return s.tokens.DeleteRefreshToken(ctx, tokenID)
}

func (s *AuthService) issueTokenPair(ctx context.Context, user *model.User) (*TokenPair, error) {
	access, err := s.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	tokenID, refresh, err := s.jwt.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.tokens.StoreRefreshToken(ctx, tokenID, user.ID, user.Email, auth.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// issueOTP generates a six-digit code, caches it, writes the audit row and
// sends the email.
func (s *AuthService) issueOTP(ctx context.Context, email string, otpType model.OTPType) error {
	code, err := generateOTPCode()
	if err != nil {
		return err
	}

	// Cache copy serves the verification hot path; the row is the durable
	// fallback and audit trail.
	_ = s.cache.Set(ctx, otpCacheKey(email, otpType), []byte(code), otpTTL)

	otp := &model.OTP{
		Email:     email,
		Code:      code,
		Type:      otpType,
		ExpiresAt: time.Now().Add(otpTTL),
	}
	if err := s.otps.Create(ctx, otp); err != nil {
		return err
	}

	subject, body := mail.VerificationSubject, mail.VerificationBody(code)
	if otpType == model.OTPTypePasswordReset {
		subject, body = mail.PasswordResetSubject, mail.PasswordResetBody(code)
	}
	if err := s.mailer.Send(email, subject, body); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}

// checkOTP validates and consumes a code, Redis first, database second.
func (s *AuthService) checkOTP(ctx context.Context, email, code string, otpType model.OTPType) bool {
	if code == "" {
		return false
	}

	key := otpCacheKey(email, otpType)
	if cached, _ := s.cache.Get(ctx, key); cached != nil && string(cached) == code {
		_ = s.cache.Delete(ctx, key)
		if err := s.otps.InvalidateAll(ctx, email, otpType); err != nil {
			s.logger.Warn().Err(err).Str("email", email).Msg("failed to invalidate otp rows")
		}
		return true
	}

	otp, err := s.otps.FindValid(ctx, email, code, otpType)
	if err != nil {
		return false
	}
	_ = s.cache.Delete(ctx, key)
	if err := s.otps.MarkUsed(ctx, otp.ID); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("failed to mark otp used")
	}
	return true
}

func otpCacheKey(email string, otpType model.OTPType) string {
	return fmt.Sprintf("otp:%s:%s", email, otpType)
}

// generateOTPCode produces a uniformly random six-digit code.
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

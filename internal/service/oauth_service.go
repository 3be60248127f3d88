package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"finconnect/internal/auth"
	"finconnect/internal/model"
	"finconnect/internal/repository"
)

const (
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleUserInfo is the subset of the Google userinfo payload we keep.
type GoogleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// OAuthService exchanges Google authorization codes for FinConnect sessions.
type OAuthService struct {
	users        repository.UserRepository
	jwt          *auth.JWTService
	tokens       auth.TokenStoreInterface
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client
	logger       zerolog.Logger
}

// NewOAuthService creates a new Google OAuth service.
func NewOAuthService(
	users repository.UserRepository,
	jwtService *auth.JWTService,
	tokens auth.TokenStoreInterface,
	clientID, clientSecret, redirectURI string,
	logger zerolog.Logger,
) *OAuthService {
	return &OAuthService{
		users:        users,
		jwt:          jwtService,
		tokens:       tokens,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		logger:       logger,
	}
}

// HandleCallback exchanges the authorization code, resolves or creates the
// matching user and issues a token pair. Google accounts are verified by
// construction.
func (s *OAuthService) HandleCallback(ctx context.Context, code string) (*model.User, *TokenPair, error) {
	accessToken, err := s.exchangeCode(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("exchange code: %w", err)
	}

	info, err := s.fetchUserInfo(ctx, accessToken)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch userinfo: %w", err)
	}

	user, err := s.findOrCreateUser(ctx, info)
	if err != nil {
		return nil, nil, err
	}

	access, err := s.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, nil, err
	}
	tokenID, refresh, err := s.jwt.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, nil, err
	}
	if err := s.tokens.StoreRefreshToken(ctx, tokenID, user.ID, user.Email, auth.RefreshTokenExpiry); err != nil {
		return nil, nil, err
	}
	return user, &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *OAuthService) exchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{
		"code":          {code},
		"client_id":     {s.clientID},
		"client_secret": {s.clientSecret},
		"redirect_uri":  {s.redirectURI},
		"grant_type":    {"authorization_code"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleTokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("empty access token")
	}
	return body.AccessToken, nil
}

func (s *OAuthService) fetchUserInfo(ctx context.Context, accessToken string) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, fmt.Errorf("userinfo missing email")
	}
	return &info, nil
}

// findOrCreateUser links the Google identity to an existing account by Google
// ID, then by email, and creates a fresh account otherwise.
func (s *OAuthService) findOrCreateUser(ctx context.Context, info *GoogleUserInfo) (*model.User, error) {
	user, err := s.users.FindByGoogleID(ctx, info.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user, err = s.users.FindByEmail(ctx, info.Email)
	if err == nil {
		// Existing local account: link the Google identity.
		user.GoogleID = info.ID
		user.IsVerified = true
		if user.ProfilePicture == "" {
			user.ProfilePicture = info.Picture
		}
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = &model.User{
		Name:           info.Name,
		Email:          info.Email,
		Provider:       model.ProviderGoogle,
		GoogleID:       info.ID,
		ProfilePicture: info.Picture,
		IsVerified:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Str("email", user.Email).Msg("created user from google oauth")
	return user, nil
}

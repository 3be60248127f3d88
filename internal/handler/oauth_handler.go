package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"finconnect/internal/service"
)

// OAuthHandler handles the Google OAuth callback.
type OAuthHandler struct {
	oauthService *service.OAuthService
}

// NewOAuthHandler creates a new OAuth handler.
func NewOAuthHandler(oauthService *service.OAuthService) *OAuthHandler {
	return &OAuthHandler{oauthService: oauthService}
}

// GoogleCallback godoc
// @Summary Google OAuth callback
// @Tags auth
// @Param code query string true "Authorization code"
// @Param state query string false "Opaque state"
// @Success 302
// @Router /auth/google/callback [get]
func (h *OAuthHandler) GoogleCallback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return c.Redirect(http.StatusFound, "/login?error=missing_code")
	}

	user, pair, err := h.oauthService.HandleCallback(c.Request().Context(), code)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login?error=token_exchange_failed")
	}

	setAuthCookies(c, pair)
	// Non-sensitive display cookies for the frontend shell.
	c.SetCookie(&http.Cookie{
		Name:  "user_email",
		Value: url.QueryEscape(user.Email),
		Path:  "/",
	})
	c.SetCookie(&http.Cookie{
		Name:  "user_name",
		Value: url.QueryEscape(user.Name),
		Path:  "/",
	})
	return c.Redirect(http.StatusFound, "/")
}

func setAuthCookies(c echo.Context, pair *service.TokenPair) {
	c.SetCookie(&http.Cookie{
		Name:     "access_token",
		Value:    pair.AccessToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(15 * time.Minute),
	})
	c.SetCookie(&http.Cookie{
		Name:     "refresh_token",
		Value:    pair.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
	})
}

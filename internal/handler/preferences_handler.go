package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"finconnect/internal/errors"
	"finconnect/internal/service"
)

// PreferencesHandler handles user preference endpoints.
type PreferencesHandler struct {
	preferencesService *service.PreferencesService
}

// NewPreferencesHandler creates a new preferences handler.
func NewPreferencesHandler(preferencesService *service.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{preferencesService: preferencesService}
}

// UpdatePreferencesRequest represents a preferences update. Omitted fields
// keep their stored values.
type UpdatePreferencesRequest struct {
	Theme                *string `json:"theme,omitempty"`
	Language             *string `json:"language,omitempty"`
	Currency             *string `json:"currency,omitempty"`
	NotificationsEnabled *bool   `json:"notifications_enabled,omitempty"`
	EmailNotifications   *bool   `json:"email_notifications,omitempty"`
	PushNotifications    *bool   `json:"push_notifications,omitempty"`
}

// Get godoc
// @Summary Get the authenticated user's preferences
// @Tags preferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserPreferences
// @Failure 401 {object} errors.ErrorResponse
// @Router /preferences [get]
func (h *PreferencesHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	prefs, err := h.preferencesService.Get(c.Request().Context(), userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, prefs)
}

// Update godoc
// @Summary Update the authenticated user's preferences
// @Tags preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdatePreferencesRequest true "Preference fields"
// @Success 200 {object} model.UserPreferences
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /preferences [put]
func (h *PreferencesHandler) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req UpdatePreferencesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	prefs, err := h.preferencesService.Update(c.Request().Context(), userID, service.UpdatePreferencesInput{
		Theme:                req.Theme,
		Language:             req.Language,
		Currency:             req.Currency,
		NotificationsEnabled: req.NotificationsEnabled,
		EmailNotifications:   req.EmailNotifications,
		PushNotifications:    req.PushNotifications,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, prefs)
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"finconnect/internal/service"
)

// NewsHandler handles the news feed endpoint.
type NewsHandler struct {
	newsService *service.NewsService
}

// NewNewsHandler creates a new news handler.
func NewNewsHandler(newsService *service.NewsService) *NewsHandler {
	return &NewsHandler{newsService: newsService}
}

// Get godoc
// @Summary Get business news headlines
// @Tags news
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /news [get]
func (h *NewsHandler) Get(c echo.Context) error {
	articles := h.newsService.Headlines(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]interface{}{"articles": articles})
}

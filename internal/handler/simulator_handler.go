package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"finconnect/internal/errors"
	"finconnect/internal/model"
	"finconnect/internal/service"
	"finconnect/internal/sim"
)

// SimulatorHandler handles paper-trading endpoints.
type SimulatorHandler struct {
	simulatorService *service.SimulatorService
}

// NewSimulatorHandler creates a new simulator handler.
func NewSimulatorHandler(simulatorService *service.SimulatorService) *SimulatorHandler {
	return &SimulatorHandler{simulatorService: simulatorService}
}

// TradeRequest represents a simple buy or sell order.
type TradeRequest struct {
	Symbol   string `json:"symbol" validate:"required"`
	Side     string `json:"side" validate:"required,oneof=BUY SELL"`
	Quantity string `json:"qty" validate:"required"`
}

// OpenSessionRequest represents a session open order.
type OpenSessionRequest struct {
	Symbol   string `json:"symbol" validate:"required"`
	Side     string `json:"side" validate:"required,oneof=BUY SELL"`
	Quantity string `json:"qty" validate:"required"`
}

// TradeResponse pairs an executed trade with the resulting portfolio.
type TradeResponse struct {
	Trade     *model.Trade           `json:"trade"`
	Portfolio *service.PortfolioView `json:"portfolio"`
}

// GetPortfolio godoc
// @Summary Get the paper-trading portfolio
// @Tags simulator
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.PortfolioView
// @Failure 401 {object} errors.ErrorResponse
// @Router /simulator/portfolio [get]
func (h *SimulatorHandler) GetPortfolio(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	view, err := h.simulatorService.GetPortfolio(c.Request().Context(), userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, view)
}

// PlaceTrade godoc
// @Summary Place a simple buy or sell order
// @Tags simulator
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TradeRequest true "Order data"
// @Success 200 {object} TradeResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /simulator/trades [post]
func (h *SimulatorHandler) PlaceTrade(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req TradeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(errors.ErrInvalidQuantity)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	trade, view, err := h.simulatorService.PlaceTrade(
		c.Request().Context(), userID, req.Symbol, model.TradeSide(req.Side), qty)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, TradeResponse{Trade: trade, Portfolio: view})
}

// ListTrades godoc
// @Summary List the trade log, newest first
// @Tags simulator
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max rows, 0 for all"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /simulator/trades [get]
func (h *SimulatorHandler) ListTrades(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "limit must be a non-negative integer",
				Code:  "INVALID_LIMIT",
			})
		}
	}

	trades, err := h.simulatorService.ListTrades(c.Request().Context(), userID, limit)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"trades": trades})
}

// OpenSession godoc
// @Summary Open a simulated position
// @Tags simulator
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body OpenSessionRequest true "Position data"
// @Success 201 {object} service.SessionView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /simulator/sessions [post]
func (h *SimulatorHandler) OpenSession(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req OpenSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(errors.ErrInvalidQuantity)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	view, err := h.simulatorService.OpenSession(
		c.Request().Context(), userID, req.Symbol, sim.Side(req.Side), qty)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, view)
}

// GetSession godoc
// @Summary Get the open simulated position
// @Tags simulator
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.SessionView
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /simulator/session [get]
func (h *SimulatorHandler) GetSession(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	view, err := h.simulatorService.GetSession(c.Request().Context(), userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, view)
}

// CloseSession godoc
// @Summary Close the open simulated position
// @Tags simulator
// @Produce json
// @Security BearerAuth
// @Success 200 {object} TradeResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /simulator/session/close [post]
func (h *SimulatorHandler) CloseSession(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	trade, view, err := h.simulatorService.CloseSession(c.Request().Context(), userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, TradeResponse{Trade: trade, Portfolio: view})
}

// Reset godoc
// @Summary Reset the portfolio to its starting state
// @Tags simulator
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.PortfolioView
// @Failure 401 {object} errors.ErrorResponse
// @Router /simulator/reset [post]
func (h *SimulatorHandler) Reset(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	view, err := h.simulatorService.Reset(c.Request().Context(), userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, view)
}

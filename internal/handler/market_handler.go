package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"finconnect/internal/errors"
	"finconnect/internal/service"
)

// MarketHandler handles the market data proxy endpoint.
type MarketHandler struct {
	marketService *service.MarketService
}

// NewMarketHandler creates a new market handler.
func NewMarketHandler(marketService *service.MarketService) *MarketHandler {
	return &MarketHandler{marketService: marketService}
}

// Get godoc
// @Summary Get market data
// @Description Dispatches on query parameters: symbol= for a quote, q= for
// @Description symbol search, type=gainers|losers|actives for movers.
// @Tags market
// @Produce json
// @Security BearerAuth
// @Param symbol query string false "Ticker symbol"
// @Param q query string false "Search query"
// @Param type query string false "Movers screener" Enums(gainers, losers, actives)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /market [get]
func (h *MarketHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	if query := c.QueryParam("q"); query != "" {
		results, err := h.marketService.Search(ctx, query)
		if err != nil {
			httpErr := errors.MapErrorToHTTP(err)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"quotes": results})
	}

	if symbol := c.QueryParam("symbol"); symbol != "" {
		quote, err := h.marketService.GetQuote(ctx, symbol)
		if err != nil {
			httpErr := errors.MapErrorToHTTP(err)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		return c.JSON(http.StatusOK, quote)
	}

	if kind := c.QueryParam("type"); kind != "" {
		movers, err := h.marketService.Movers(ctx, service.MoverKind(kind))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "type must be gainers, losers or actives",
				Code:  "INVALID_MOVERS_TYPE",
			})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"quotes": movers})
	}

	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: "one of symbol, q or type is required",
		Code:  "MISSING_QUERY",
	})
}

package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"finconnect/internal/auth"
	"finconnect/internal/config"
	"finconnect/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	oauthHandler *handler.OAuthHandler,
	profileHandler *handler.ProfileHandler,
	preferencesHandler *handler.PreferencesHandler,
	newsHandler *handler.NewsHandler,
	marketHandler *handler.MarketHandler,
	simulatorHandler *handler.SimulatorHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/verify-otp", authHandler.VerifyOTP)
	api.POST("/auth/resend-otp", authHandler.ResendOTP)
	api.POST("/auth/forgot-password", authHandler.ForgotPassword)
	api.POST("/auth/reset-password", authHandler.ResetPassword)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/google/callback", oauthHandler.GoogleCallback)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}))

	// Profile routes
	secured.GET("/profile", profileHandler.Get)
	secured.PUT("/profile", profileHandler.Update)
	secured.POST("/profile/picture", profileHandler.UploadPicture)

	// Preference routes
	secured.GET("/preferences", preferencesHandler.Get)
	secured.PUT("/preferences", preferencesHandler.Update)

	// Data proxy routes
	secured.GET("/news", newsHandler.Get)
	secured.GET("/market", marketHandler.Get)

	// Simulator routes
	secured.GET("/simulator/portfolio", simulatorHandler.GetPortfolio)
	secured.POST("/simulator/trades", simulatorHandler.PlaceTrade)
	secured.GET("/simulator/trades", simulatorHandler.ListTrades)
	secured.POST("/simulator/sessions", simulatorHandler.OpenSession)
	secured.GET("/simulator/session", simulatorHandler.GetSession)
	secured.POST("/simulator/session/close", simulatorHandler.CloseSession)
	secured.POST("/simulator/reset", simulatorHandler.Reset)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"

	_ "finconnect/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"finconnect/internal/auth"
	"finconnect/internal/cache"
	"finconnect/internal/clients/newsapi"
	"finconnect/internal/clients/yahoo"
	"finconnect/internal/config"
	"finconnect/internal/db"
	"finconnect/internal/handler"
	"finconnect/internal/mail"
	"finconnect/internal/model"
	"finconnect/internal/repository"
	"finconnect/internal/router"
	"finconnect/internal/service"
)

// @title FinConnect API
// @version 1.0
// @description FinConnect backend: auth with email verification, profile and
// @description preferences, news and market data proxies, and a paper-trading
// @description simulator.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.Trade{},
			&model.Holding{},
			&model.Portfolio{},
			&model.Stock{},
			&model.UserPreferences{},
			&model.OTP{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.OTP{},
		&model.UserPreferences{},
		&model.Stock{},
		&model.Portfolio{},
		&model.Holding{},
		&model.Trade{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	otpRepo := repository.NewOTPRepository(gormDB)
	preferencesRepo := repository.NewPreferencesRepository(gormDB)
	stockRepo := repository.NewStockRepository(gormDB)
	portfolioRepo := repository.NewPortfolioRepository(gormDB)
	tradeRepo := repository.NewTradeRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Outbound collaborators
	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom)
	newsClient := newsapi.NewClient(cfg.NewsAPIKey, newsapi.WithBaseURL(cfg.NewsAPIBaseURL))
	yahooClient := yahoo.NewClient(yahoo.WithBaseURL(cfg.QuoteBaseURL))

	// Initialize services
	authService := service.NewAuthService(userRepo, otpRepo, jwtService, tokenStore, cacheClient, mailer, logger)
	oauthService := service.NewOAuthService(userRepo, jwtService, tokenStore,
		cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI, logger)
	profileService := service.NewProfileService(userRepo)
	preferencesService := service.NewPreferencesService(preferencesRepo)
	newsService := service.NewNewsService(newsClient, logger)
	marketService := service.NewMarketService(yahooClient, cacheClient, logger)
	simulatorService := service.NewSimulatorService(portfolioRepo, tradeRepo, stockRepo, logger)

	if err := simulatorService.Start(context.Background()); err != nil {
		log.Fatalf("simulator start: %v", err)
	}
	defer simulatorService.Stop()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	oauthHandler := handler.NewOAuthHandler(oauthService)
	profileHandler := handler.NewProfileHandler(profileService)
	preferencesHandler := handler.NewPreferencesHandler(preferencesService)
	newsHandler := handler.NewNewsHandler(newsService)
	marketHandler := handler.NewMarketHandler(marketService)
	simulatorHandler := handler.NewSimulatorHandler(simulatorService)

	// Register routes
	router.Register(
		e,
		cfg,
		authHandler,
		oauthHandler,
		profileHandler,
		preferencesHandler,
		newsHandler,
		marketHandler,
		simulatorHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"

	"fintrack/internal/config"
	"fintrack/internal/currency"
	"fintrack/internal/database"
	"fintrack/internal/drive"
	"fintrack/internal/googleauth"
	"fintrack/internal/handlers"
	"fintrack/internal/insights"
	"fintrack/internal/logger"
	"fintrack/internal/server"
	"fintrack/internal/session"
	"fintrack/internal/validator"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if appConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         appConfig.SentryDSN,
			Environment: appConfig.Env,
		}); err != nil {
			log.Warnf("Failed to initialize Sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	validator.Register()

	// Session storage: sqlite-backed when configured, in-memory otherwise
	var store session.Store
	if appConfig.SessionDB != "" {
		dbManager, err := database.NewManager(appConfig.SessionDB)
		if err != nil {
			return fmt.Errorf("failed to open session database: %w", err)
		}
		if err := dbManager.Migrate(); err != nil {
			return fmt.Errorf("failed to run session store migrations: %w", err)
		}
		defer dbManager.Close()
		store = session.NewGormStore(dbManager.DB())
	} else {
		memStore := session.NewMemoryStore(time.Hour)
		defer memStore.Close()
		store = memStore
	}
	sessions := session.NewManager(store, appConfig.SessionTTL)

	// Initialize services
	authService := googleauth.New(appConfig)
	driveStore := drive.NewStore(authService)
	insightClient := insights.NewClient(appConfig.GeminiAPIKey, appConfig.GeminiModel)
	rateClient := currency.NewClient()

	// Initialize handlers and router
	router := server.New(server.Deps{
		Sessions: sessions,
		Auth:     handlers.NewAuthHandler(authService, sessions, appConfig),
		Drive:    handlers.NewDriveHandler(driveStore),
		Insights: handlers.NewInsightsHandler(insightClient),
		Currency: handlers.NewCurrencyHandler(rateClient),
	})

	log.Infof("Starting FinTrack backend server on port %s", appConfig.Port)
	log.Infof("Configured APP_URL: %s", appConfig.AppURL)
	return router.Run(":" + appConfig.Port)
}

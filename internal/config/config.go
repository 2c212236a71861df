package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port   string
	AppURL string
	Env    string

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string

	// Signed OAuth state parameter
	StateSecret string
	StateTTL    time.Duration

	// Sessions
	SessionTTL time.Duration
	SessionDB  string // path to a sqlite file; empty means in-memory sessions

	// Upstream services
	GeminiAPIKey string
	GeminiModel  string

	// Observability
	SentryDSN string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port:   getEnv("PORT", "3000"),
		AppURL: strings.TrimSuffix(getEnv("APP_URL", "http://localhost:3000"), "/"),
		Env:    getEnv("ENV", "development"),

		// Google OAuth
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),

		StateSecret: getEnv("STATE_SECRET", "fallback-secret-key-for-dev-only"),
		StateTTL:    10 * time.Minute,

		SessionDB: getEnv("SESSION_DB", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		SentryDSN: getEnv("SENTRY_DSN", ""),
	}

	// Parse session expiry duration (sliding window)
	ttlStr := getEnv("SESSION_TTL", "720h")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		log.Printf("Warning: invalid SESSION_TTL value '%s', falling back to 720h\n", ttlStr)
		ttl = 720 * time.Hour
	}
	config.SessionTTL = ttl

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// CallbackURL returns the OAuth redirect URI derived from the app URL.
func (c *Config) CallbackURL() string {
	return c.AppURL + "/auth/callback"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

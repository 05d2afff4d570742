package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Application
	AppTitle string

	// Authentication
	Auth AuthConfig

	// Database Configuration
	Database DatabaseConfig

	// Redis Configuration (asynq broker)
	Redis RedisConfig

	// Background recalculation
	Recalc RecalcConfig

	// HTTP server
	Server ServerConfig

	// Logging Configuration
	Logging LoggingConfig
}

// AuthConfig holds cookie authentication configuration
type AuthConfig struct {
	// Secret signs the session cookie. Empty means degraded insecure mode:
	// cookies are still parsed but carry no integrity guarantee.
	Secret string

	// AdminEmails is the raw comma-separated ADMIN_EMAILS value.
	AdminEmails string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address string // Redis address (host:port)
}

// RecalcConfig holds scheduled map recalculation configuration
type RecalcConfig struct {
	Schedule string // Cron expression (5-field), empty = no scheduled recalc
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// InsecureCookies reports whether the server runs without a configured
// signing secret.
func (c *Config) InsecureCookies() bool {
	return c.Auth.Secret == ""
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	appTitle := os.Getenv("APP_TITLE")
	if appTitle == "" {
		appTitle = "Heresy Campaign Tracker"
	}

	// Database URL - default to data/campaign.sqlite, allow override for dev
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "data/campaign.sqlite"
	}

	// Redis address - default to localhost:6379, allow override for dev/docker
	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Logging configuration - defaults suitable for production
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}

	return &Config{
		AppTitle: appTitle,
		Auth: AuthConfig{
			Secret:      strings.TrimSpace(os.Getenv("AUTH_SECRET")),
			AdminEmails: os.Getenv("ADMIN_EMAILS"),
		},
		Database: DatabaseConfig{
			URL: dbURL,
		},
		Redis: RedisConfig{
			Address: redisAddr,
		},
		Recalc: RecalcConfig{
			Schedule: strings.TrimSpace(os.Getenv("RECALC_SCHEDULE")),
		},
		Server: ServerConfig{
			Port: port,
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
	}, nil
}

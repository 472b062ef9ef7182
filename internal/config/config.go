package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath  string
	Port          int
	DevMode       bool
	LogLevel      string
	CheckInterval time.Duration
	FetchTimeout  time.Duration
	SMTPHost      string
	SMTPPort      int
	SenderEmail   string
	SenderSecret  string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnvAsInt("PORT", 8080),
		DevMode:       getEnvAsBool("DEV_MODE", false),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabasePath:  getEnv("DATABASE_PATH", "./data/pricewatch.db"),
		CheckInterval: time.Duration(getEnvAsInt("CHECK_INTERVAL_SECONDS", 21600)) * time.Second,
		FetchTimeout:  time.Duration(getEnvAsInt("FETCH_TIMEOUT_SECONDS", 30)) * time.Second,
		SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnvAsInt("SMTP_PORT", 587),
		SenderEmail:   getEnv("EMAIL", ""),
		SenderSecret:  getEnv("EMAIL_PASSWORD", ""),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("CHECK_INTERVAL_SECONDS must be positive")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT_SECONDS must be positive")
	}

	// Mail credentials are deliberately not required here: the engine starts
	// without them and skips check cycles until they are supplied.
	return nil
}

// MailConfigured reports whether the sender identity and secret are set.
// Without them no alert can be delivered and check cycles are skipped.
func (c *Config) MailConfigured() bool {
	return c.SenderEmail != "" && c.SenderSecret != ""
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

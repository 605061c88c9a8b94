package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Remote API
	APIBaseURL  string
	HTTPTimeout time.Duration

	// Credential persistence
	TokenBackend string // "memory" or "sqlite"
	TokenDBPath  string

	// AMQP mutation events (optional; empty URL disables publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	AMQPPrefetch int

	// Google Sheets mirror (worker)
	SheetsSpreadsheetID string
	SheetsSheetName     string

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		APIBaseURL:  getEnv("FINDASH_API_URL", "http://localhost:8000/api"),
		HTTPTimeout: getEnvDuration("FINDASH_HTTP_TIMEOUT", 30*time.Second),

		TokenBackend: getEnv("FINDASH_TOKEN_BACKEND", "sqlite"),
		TokenDBPath:  getEnv("FINDASH_TOKEN_DB_PATH", "./data/findash.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "findash"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "entity_mutations"),
		AMQPPrefetch: getEnvInt("AMQP_PREFETCH", 8),

		SheetsSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		SheetsSheetName:     getEnv("GOOGLE_SHEET_NAME", "Transactions"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errs []string

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("invalid API base URL %q", c.APIBaseURL))
	}

	switch c.TokenBackend {
	case "memory", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("invalid token backend %q: must be memory or sqlite", c.TokenBackend))
	}
	if c.TokenBackend == "sqlite" && strings.TrimSpace(c.TokenDBPath) == "" {
		errs = append(errs, "token db path must not be empty for the sqlite backend")
	}

	if c.HTTPTimeout <= 0 {
		errs = append(errs, "http timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/pkg/logging"
)

// DevJWTSecret is used when JWT_SECRET is unset in development.
const DevJWTSecret = "splitledger-dev-secret-do-not-use"

type Config struct {
	Env string

	// HTTP Server
	Port            string
	ShutdownTimeout time.Duration

	// Database
	DBPath string

	LogLevel string

	// Auth
	JWTSecret     string
	TokenDuration time.Duration

	// Ledger
	SettlementStrategy   string
	ExactMaxParticipants int
	DefaultCurrency      string

	// loadErrors holds environment values Load could not parse.
	loadErrors []string
}

// Load reads the configuration from environment variables.
// Call godotenv.Load first to pick up a .env file.
func Load() *Config {
	cfg := &Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8080"),

		DBPath:   getEnv("DB_PATH", "./data/splitledger.db"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		SettlementStrategy: getEnv("SETTLEMENT_STRATEGY", calculator.StrategyGreedy),
		DefaultCurrency:    strings.ToUpper(getEnv("DEFAULT_CURRENCY", "USD")),
	}

	// Parse failures are kept on cfg and reported by Validate.
	cfg.ShutdownTimeout = cfg.getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	cfg.TokenDuration = cfg.getEnvDuration("TOKEN_DURATION", 24*time.Hour)
	cfg.ExactMaxParticipants = cfg.getEnvInt("EXACT_MAX_PARTICIPANTS", calculator.DefaultExactMaxParticipants)

	if cfg.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.JWTSecret = DevJWTSecret
	}

	return cfg
}

// IsDevelopment reports whether the server runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	errors := append([]string(nil), c.loadErrors...)

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBPath == "" {
		errors = append(errors, "database path cannot be empty")
	}

	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	switch {
	case c.JWTSecret == "":
		errors = append(errors, "JWT_SECRET is required outside development")
	case !c.IsDevelopment() && len(c.JWTSecret) < 32:
		errors = append(errors, "JWT_SECRET must be at least 32 characters")
	}
	if c.TokenDuration < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid token duration %v: must be at least 1 minute", c.TokenDuration))
	}

	if _, err := calculator.ParseStrategy(c.SettlementStrategy, c.ExactMaxParticipants); err != nil {
		errors = append(errors, fmt.Sprintf("invalid settlement strategy '%s': must be greedy or exact", c.SettlementStrategy))
	}
	if c.ExactMaxParticipants < 1 || c.ExactMaxParticipants > calculator.MaxExactParticipants {
		errors = append(errors, fmt.Sprintf("invalid exact max participants %d: must be between 1 and %d",
			c.ExactMaxParticipants, calculator.MaxExactParticipants))
	}

	if len(c.DefaultCurrency) != 3 {
		errors = append(errors, fmt.Sprintf("invalid default currency '%s': must be a 3-letter ISO code", c.DefaultCurrency))
	}

	if c.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		c.loadErrors = append(c.loadErrors, fmt.Sprintf("invalid %s '%s': must be an integer", key, value))
		return defaultValue
	}
	return i
}

func (c *Config) getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		c.loadErrors = append(c.loadErrors, fmt.Sprintf("invalid %s '%s': must be a duration like 30s or 24h", key, value))
		return defaultValue
	}
	return d
}

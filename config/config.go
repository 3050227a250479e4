package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the server reads from the environment.
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string

	Database DatabaseConfig
	JWT      JWTConfig
	Twilio   TwilioConfig
	Reminder ReminderConfig
}

type DatabaseConfig struct {
	Driver string // postgres or sqlite
	URL    string
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// TwilioConfig holds the SMS credentials. Empty credentials disable sending.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.FromNumber != ""
}

// ReminderConfig drives the expiring-estimate reminder job.
type ReminderConfig struct {
	Cron      string
	DaysAhead int
}

// Warnings collects values that were present but unusable and fell back to a default.
// They are logged once the logger exists.
type Warnings []string

// Load reads the optional env file and then the process environment.
func Load(envFile string) (*Config, Warnings, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
		}
	} else {
		// A missing .env is fine; values may come straight from the environment.
		_ = godotenv.Load()
	}

	var warn Warnings
	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		Env:            getenv("APP_ENV", "development"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		Database: DatabaseConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", "postgres")),
			URL:    os.Getenv("DB_URL"),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Expiry: time.Duration(getInt("JWT_EXPIRY_HOURS", 24, &warn)) * time.Hour,
		},
		Twilio: TwilioConfig{
			AccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
			FromNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
		},
		Reminder: ReminderConfig{
			Cron:      getenv("REMINDER_CRON", "0 9 * * *"),
			DaysAhead: getInt("EXPIRY_REMINDER_DAYS", 3, &warn),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, warn, err
	}
	return cfg, warn, nil
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("DB_URL is required for the postgres driver")
		}
	case "sqlite":
		if c.Database.URL == "" {
			c.Database.URL = "jobsbreeze.db"
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		if !c.IsDevelopment() {
			return errors.New("JWT_SECRET not set")
		}
		c.JWT.Secret = "development-secret"
	}
	if c.JWT.Expiry <= 0 {
		c.JWT.Expiry = 24 * time.Hour
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int, warn *Warnings) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		*warn = append(*warn, fmt.Sprintf("invalid integer for %s: %q, using %d", key, v, def))
		return def
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

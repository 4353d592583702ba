package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `validate:"oneof=dev prod"`
	LogLevel string `validate:"oneof=debug info warn error"`
	Port     uint16 `validate:"required"`

	// TrustedProxies lists the proxies, as IPs or CIDRs, whose
	// X-Forwarded-For header is believed. Empty trusts no one.
	TrustedProxies []string `validate:"dive,cidr|ip"`

	// DatabaseUrl selects the Postgres address book. Empty keeps the
	// address book in memory.
	DatabaseUrl string `validate:"omitempty,url"`

	Lookup  LookupConfig
	Session SessionConfig
	NATS    NATSConfig
	Sentry  SentryConfig
}

// LookupConfig points at the address lookup service.
type LookupConfig struct {
	URL     string        `validate:"required,http_url"`
	Timeout time.Duration `validate:"gt=0"`

	// RequestsPerSecond and Burst bound POST /lookup per client IP.
	RequestsPerSecond float64 `validate:"gt=0"`
	Burst             int     `validate:"gte=1"`
}

// SessionConfig controls finder sessions and their cookie.
type SessionConfig struct {
	TTL           time.Duration `validate:"gt=0"`
	SweepInterval time.Duration `validate:"gt=0"`
	CookieDomain  string
	CookieSecure  bool
}

// NATSConfig enables entry-added events. Empty URL disables them.
type NATSConfig struct {
	URL           string `validate:"omitempty,url"`
	SubjectPrefix string `validate:"required"`
}

// SentryConfig holds configuration for Sentry error tracking
type SentryConfig struct {
	DSN              string `validate:"omitempty,url"`
	Enabled          bool
	Environment      string
	Release          string
	SampleRate       float64 `validate:"gte=0,lte=1"`
	TracesSampleRate float64 `validate:"gte=0,lte=1"`
	Debug            bool
}

// InMemory reports whether the address book lives in process memory.
func (c *Config) InMemory() bool {
	return c.DatabaseUrl == ""
}

func NewConfig() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		Env:            getEnv("ENV", "dev"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Port:           getEnvInt("PORT", 3000),
		DatabaseUrl:    getEnv("DATABASE_URL", ""),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),
		Lookup: LookupConfig{
			URL:               getEnv("LOOKUP_URL", "http://localhost:3001"),
			Timeout:           getEnvDuration("LOOKUP_TIMEOUT", 10*time.Second),
			RequestsPerSecond: getEnvFloat("LOOKUP_RATE_LIMIT", 2),
			Burst:             int(getEnvInt("LOOKUP_RATE_BURST", 10)),
		},
		Session: SessionConfig{
			TTL:           getEnvDuration("SESSION_TTL", 2*time.Hour),
			SweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
			CookieDomain:  getEnv("COOKIE_DOMAIN", ""),
			CookieSecure:  getEnvBool("COOKIE_SECURE", false),
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT", "addressbook"),
		},
		Sentry: SentryConfig{
			DSN:              getEnv("SENTRY_DSN", ""),
			Enabled:          getEnvBool("SENTRY_ENABLED", false), // Disabled by default for development
			Environment:      getEnv("SENTRY_ENVIRONMENT", "development"),
			Release:          getEnv("SENTRY_RELEASE", ""),
			SampleRate:       getEnvFloat("SENTRY_SAMPLE_RATE", 1.0),
			TracesSampleRate: getEnvFloat("SENTRY_TRACES_SAMPLE_RATE", 0.0),
			Debug:            getEnvBool("SENTRY_DEBUG", false),
		},
	}

	validEnv := cfg.Env == "dev" || cfg.Env == "prod"
	if !validEnv {
		slog.Default().Warn("Invalid environment. Using default: prod", slog.String("env", cfg.Env))
		cfg.Env = "prod"
	}

	validLevel := cfg.LogLevel == "info" || cfg.LogLevel == "debug" || cfg.LogLevel == "warn" || cfg.LogLevel == "error"
	if !validLevel {
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the struct tags and returns one error naming every
// offending environment setting.
func (c *Config) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, ", "))
}

// loadDotEnv loads .env from the current directory, walking up at most two
// parents to find it.
func loadDotEnv() {
	if err := godotenv.Load(); err == nil {
		return
	}

	dir, _ := os.Getwd()
	for i := 0; i < 2; i++ {
		dir = filepath.Join(dir, "..")
		if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
			return
		}
	}
	slog.Default().Warn("Warning: .env file not found, using environment variables and defaults")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue uint16) uint16 {
	if value := os.Getenv(key); value != "" {
		var intValue uint16
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var floatValue float64
		if _, err := fmt.Sscanf(value, "%f", &floatValue); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Default().Warn("Invalid duration. Using default", slog.String("key", key), slog.String("value", value))
	}
	return defaultValue
}

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

// Supported STATE_STORE values.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	// Server config
	Server ServerConfig

	// page state storage
	Store StoreConfig

	// CSRF and session cookies
	Security SecurityConfig

	// simulated backend
	Analyzer AnalyzerConfig

	LogLevel string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	Environment  string // development, staging, production
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StoreConfig selects where page states live.
type StoreConfig struct {
	Backend     string
	DatabaseURL string
	Redis       RedisConfig
	TTL         time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	CSRFSecret        string
	TrustedOrigins    []string
	SessionSecret     string
	SessionCookieName string
	SessionDuration   time.Duration
	SecureCookies     bool // true in production
}

// AnalyzerConfig controls the simulated analysis backend.
type AnalyzerConfig struct {
	Delay time.Duration
	// Seed makes verdicts reproducible; zero means unseeded.
	Seed uint64
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// LoadEnv reads a .env file into the environment if one exists.
func LoadEnv() {
	_ = godotenv.Load()
}

func Load() (*Config, error) {
	// .env is optional; in production the platform sets the environment
	LoadEnv()

	cfg := &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}

	var err error

	cfg.Server = ServerConfig{
		Port:        getEnvOrDefault("SERVER_PORT", "8080"),
		Environment: getEnvOrDefault("APP_ENV", "development"),
		BaseURL:     getEnvOrDefault("BASE_URL", "http://localhost:8080"),
	}
	if cfg.Server.ReadTimeout, err = getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationOrDefault("SERVER_WRITE_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}

	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	sessionHours, err := strconv.Atoi(getEnvOrDefault("SESSION_DURATION_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_DURATION_HOURS: %w", err)
	}

	cfg.Store = StoreConfig{
		Backend:     strings.ToLower(getEnvOrDefault("STATE_STORE", StoreMemory)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		// a page state lives as long as the session cookie that points at it
		TTL: time.Duration(sessionHours) * time.Hour,
	}

	cfg.Security = SecurityConfig{
		CSRFSecret:        os.Getenv("CSRF_SECRET"),
		TrustedOrigins:    strings.Fields(os.Getenv("CSRF_TRUSTED_ORIGINS")),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		SessionCookieName: getEnvOrDefault("SESSION_COOKIE_NAME", "runtime_calculator_session"),
		SessionDuration:   time.Duration(sessionHours) * time.Hour,
		SecureCookies:     cfg.Server.Environment == "production",
	}

	if cfg.Analyzer.Delay, err = getDurationOrDefault("ANALYZER_DELAY", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.Analyzer.Seed, err = strconv.ParseUint(getEnvOrDefault("ANALYZER_SEED", "0"), 10, 64); err != nil {
		return nil, fmt.Errorf("invalid ANALYZER_SEED: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate reports every problem at once so a bad deployment fails at
// startup with the full list.
func (c *Config) validate() error {
	var errs []error

	if c.Security.CSRFSecret == "" {
		errs = append(errs, errors.New("CSRF_SECRET is required"))
	} else if len(c.Security.CSRFSecret) < 32 {
		errs = append(errs, errors.New("CSRF_SECRET must be at least 32 characters"))
	}

	if c.Security.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	} else if len(c.Security.SessionSecret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 characters"))
	}

	if c.Security.SessionDuration <= 0 {
		errs = append(errs, errors.New("SESSION_DURATION_HOURS must be positive"))
	}

	switch c.Store.Backend {
	case StoreMemory:
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STATE_STORE=postgres"))
		}
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when STATE_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("STATE_STORE must be one of: memory, postgres, redis (got: %s)", c.Store.Backend))
	}

	if c.Analyzer.Delay < 0 {
		errs = append(errs, errors.New("ANALYZER_DELAY must not be negative"))
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.Server.Environment] {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of: development, staging, production (got: %s)", c.Server.Environment))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%w", errors.Join(errs...))
	}

	return nil
}

// getEnvOrDefault returns the .env value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

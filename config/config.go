package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultAPIBaseURL     = "http://localhost:5000/api"
	DefaultRequestTimeout = 30 * time.Second
	DefaultPageSize       = 10
	MaxPageSize           = 100
	DefaultLocale         = "en"
)

// Config holds all configuration for the console core
type Config struct {
	Environment    string
	LogLevel       string
	APIBaseURL     string
	RequestTimeout time.Duration
	PageSize       int
	Locale         string
}

// Load loads configuration from environment variables
// It attempts to load from .env file if not in production
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// In production the variables come from the environment only.
	if env != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	cfg := &Config{
		Environment:    env,
		LogLevel:       strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))),
		APIBaseURL:     strings.TrimSpace(os.Getenv("API_BASE_URL")),
		RequestTimeout: DefaultRequestTimeout,
		PageSize:       DefaultPageSize,
		Locale:         strings.TrimSpace(os.Getenv("LOCALE")),
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	cfg.APIBaseURL = strings.TrimSuffix(cfg.APIBaseURL, "/")
	if cfg.Locale == "" {
		cfg.Locale = DefaultLocale
	}

	if s := strings.TrimSpace(os.Getenv("REQUEST_TIMEOUT")); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("config: REQUEST_TIMEOUT %q is not a duration: %w", s, err)
		}
		cfg.RequestTimeout = d
	}
	if s := strings.TrimSpace(os.Getenv("PAGE_SIZE")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("config: PAGE_SIZE %q is not a number: %w", s, err)
		}
		cfg.PageSize = n
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	parsed, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("config: API_BASE_URL invalid (%q): %w", c.APIBaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: API_BASE_URL invalid (%q): missing scheme or host", c.APIBaseURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("config: PAGE_SIZE must be at least 1, got %d", c.PageSize)
	}
	if c.PageSize > MaxPageSize {
		c.PageSize = MaxPageSize
	}
	return nil
}

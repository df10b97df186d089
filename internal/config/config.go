// Package config loads docdiff settings from a .env file and the process
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ironsheep/docdiff/internal/geometry"
	"github.com/ironsheep/docdiff/internal/reasoning"
	"github.com/ironsheep/docdiff/internal/reconcile"
)

// Defaults.
const (
	DefaultPort             = ":3000"
	DefaultReasoningTimeout = 60 * time.Second
	DefaultOCRLanguage      = "eng"
	DefaultImageCacheSize   = 32
)

// ErrNoReasoningURL is returned by ReasoningOptions when no endpoint is set.
var ErrNoReasoningURL = errors.New("config: DOCDIFF_REASONING_URL is not set")

// Config holds every runtime setting.
type Config struct {
	ReasoningURL     string
	ReasoningToken   string
	SessionID        string
	SessionScope     reasoning.SessionScope
	ReasoningTimeout time.Duration
	Fallback         reconcile.FallbackPolicy
	CloseThreshold   float64
	OCRLanguage      string
	ImageCacheSize   int
	Port             string
	LogLevel         string
}

// Load reads .env from the working directory, when present, and then the
// environment. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv and validates it.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		ReasoningURL:     strings.TrimSpace(getenv("DOCDIFF_REASONING_URL")),
		ReasoningToken:   strings.TrimSpace(getenv("DOCDIFF_REASONING_TOKEN")),
		SessionID:        strings.TrimSpace(getenv("DOCDIFF_SESSION_ID")),
		ReasoningTimeout: DefaultReasoningTimeout,
		CloseThreshold:   geometry.DefaultCloseThreshold,
		OCRLanguage:      DefaultOCRLanguage,
		ImageCacheSize:   DefaultImageCacheSize,
		Port:             NormalizePort(getenv("PORT")),
		LogLevel:         strings.TrimSpace(getenv("DOCDIFF_LOG_LEVEL")),
	}

	var errs []error

	scope, err := reasoning.ParseSessionScope(getenv("DOCDIFF_SESSION_SCOPE"))
	if err != nil {
		errs = append(errs, fmt.Errorf("DOCDIFF_SESSION_SCOPE: %w", err))
	}
	cfg.SessionScope = scope

	fallback, err := reconcile.ParseFallbackPolicy(getenv("DOCDIFF_FALLBACK"))
	if err != nil {
		errs = append(errs, fmt.Errorf("DOCDIFF_FALLBACK: %w", err))
	}
	cfg.Fallback = fallback

	if v := strings.TrimSpace(getenv("DOCDIFF_REASONING_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("DOCDIFF_REASONING_TIMEOUT: %w", err))
		}
		cfg.ReasoningTimeout = d
	}

	if v := strings.TrimSpace(getenv("DOCDIFF_CLOSE_THRESHOLD")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("DOCDIFF_CLOSE_THRESHOLD: %w", err))
		}
		cfg.CloseThreshold = f
	}

	if v := strings.TrimSpace(getenv("DOCDIFF_OCR_LANGUAGE")); v != "" {
		cfg.OCRLanguage = v
	}

	if v := strings.TrimSpace(getenv("DOCDIFF_IMAGE_CACHE_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("DOCDIFF_IMAGE_CACHE_SIZE: %w", err))
		}
		cfg.ImageCacheSize = n
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports out-of-range values.
func (c *Config) Validate() error {
	var errs []error
	if c.ReasoningTimeout <= 0 {
		errs = append(errs, fmt.Errorf("reasoning timeout must be positive, got %s", c.ReasoningTimeout))
	}
	if c.CloseThreshold <= 0 {
		errs = append(errs, fmt.Errorf("close threshold must be positive, got %g", c.CloseThreshold))
	}
	if c.ImageCacheSize <= 0 {
		errs = append(errs, fmt.Errorf("image cache size must be positive, got %d", c.ImageCacheSize))
	}
	if _, err := reasoning.ParseSessionScope(string(c.SessionScope)); err != nil {
		errs = append(errs, err)
	}
	if _, err := reconcile.ParseFallbackPolicy(string(c.Fallback)); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ReasoningOptions returns the client options for the configured reasoning
// service.
func (c *Config) ReasoningOptions() (reasoning.Options, error) {
	if c.ReasoningURL == "" {
		return reasoning.Options{}, ErrNoReasoningURL
	}
	return reasoning.Options{
		Endpoint:  c.ReasoningURL,
		Token:     c.ReasoningToken,
		SessionID: c.SessionID,
		Scope:     c.SessionScope,
	}, nil
}

// NormalizePort turns "8080" into ":8080". Empty input yields DefaultPort;
// values that already carry a colon are returned as is.
func NormalizePort(port string) string {
	port = strings.TrimSpace(port)
	switch {
	case port == "":
		return DefaultPort
	case strings.Contains(port, ":"):
		return port
	default:
		return ":" + port
	}
}

package shared

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Mode is the build mode that selects the backend address.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

const (
	EnvMode           = "MODE"
	EnvBackendBaseURL = "BACKEND_BASE_URL"

	DefaultDevelopmentURL = "http://localhost:8080"
	DefaultProductionURL  = "https://watchlist-backend-vb24.onrender.com"
	defaultTimeout        = 15 * time.Second
)

// Backend is the resolved backend connection. It is computed once at startup and handed to client constructors.
type Backend struct {
	Mode      Mode
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
}

// LoadEnv loads .env style files into the process environment.
//
// Missing files are not an error; the existing environment is used as is.
func LoadEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(paths) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			existing = append(existing, ".env")
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("%w: failed to load env file: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ResolveBackend picks the backend address for the active mode.
//
// MODE overrides app.mode and BACKEND_BASE_URL overrides the URL of whichever mode is active.
// A nil getenv reads the process environment.
func ResolveBackend(cfg *Config, getenv func(string) string) (Backend, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if getenv == nil {
		getenv = os.Getenv
	}

	mode := Mode(fallback(getenv(EnvMode), fallback(cfg.App.Mode, string(ModeDevelopment))))

	var url string
	switch mode {
	case ModeDevelopment:
		url = fallback(cfg.Backend.DevelopmentURL, DefaultDevelopmentURL)
	case ModeProduction:
		url = fallback(cfg.Backend.ProductionURL, DefaultProductionURL)
	default:
		return Backend{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, mode)
	}
	url = strings.TrimRight(fallback(getenv(EnvBackendBaseURL), url), "/")

	timeout := defaultTimeout
	if cfg.Backend.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Backend.TimeoutSeconds) * time.Second
	}

	rateLimit := cfg.Backend.RateLimit
	if rateLimit < 0 {
		return Backend{}, fmt.Errorf("%w: rate_limit must not be negative", ErrInvalidConfig)
	}

	return Backend{Mode: mode, BaseURL: url, Timeout: timeout, RateLimit: rateLimit}, nil
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

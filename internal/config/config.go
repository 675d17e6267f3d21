package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultPort              = 4000
	DefaultEnv               = "development"
	DefaultTmapBaseURL       = "https://apis.openapi.sk.com"
	DefaultLandMaxAttempts   = 10
	DefaultSessionTTLMinutes = 60
	DefaultMaxRetries        = 3

	DefaultRequestTimeoutSeconds = 25
)

// writeTimeoutMargin leaves room to encode a response after the work
// bounded by RequestTimeout has finished.
const writeTimeoutMargin = 5 * time.Second

// Config holds all the configuration settings for our application.
type Config struct {
	Port              int             `json:"port"`
	Env               string          `json:"env"`
	Tmap              TmapConfig      `json:"tmap"`
	LandCheck         LandCheckConfig `json:"land_check"`
	SessionTTLMinutes int             `json:"session_ttl_minutes"`
	DatabaseURL       string          `json:"database_url"`
	MaxRetries        int             `json:"max_retries"`

	RequestTimeoutSeconds int `json:"request_timeout_seconds"`
}

// TmapConfig points at the SK open API used for reverse geocoding and routes.
type TmapConfig struct {
	BaseURL string `json:"base_url"`
	AppKey  string `json:"app_key"`
}

// LandCheckConfig controls rejection of destinations that fall in water.
type LandCheckConfig struct {
	Enabled     bool `json:"enabled"`
	MaxAttempts int  `json:"max_attempts"`
}

// NewConfig creates a Config populated with defaults.
func NewConfig(port int, env string) *Config {
	return &Config{
		Port: port,
		Env:  env,
		Tmap: TmapConfig{BaseURL: DefaultTmapBaseURL},
		LandCheck: LandCheckConfig{
			Enabled:     true,
			MaxAttempts: DefaultLandMaxAttempts,
		},
		SessionTTLMinutes: DefaultSessionTTLMinutes,
		MaxRetries:        DefaultMaxRetries,

		RequestTimeoutSeconds: DefaultRequestTimeoutSeconds,
	}
}

// SessionTTL is how long an idle session is kept in memory.
func (cfg *Config) SessionTTL() time.Duration {
	return time.Duration(cfg.SessionTTLMinutes) * time.Minute
}

// RequestTimeout bounds a single locate or trip, upstream retries included.
func (cfg *Config) RequestTimeout() time.Duration {
	return time.Duration(cfg.RequestTimeoutSeconds) * time.Second
}

// WriteTimeout is the HTTP server write deadline. It outlasts RequestTimeout
// so a timed-out trip can still report the timeout.
func (cfg *Config) WriteTimeout() time.Duration {
	return cfg.RequestTimeout() + writeTimeoutMargin
}

// IsProduction reports whether the service runs in the production environment.
func (cfg *Config) IsProduction() bool {
	return cfg.Env == "production"
}

// Validate reports every problem with the configuration at once.
func (cfg *Config) Validate() error {
	var errs []error

	if cfg.Port <= 0 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", cfg.Port))
	}
	switch cfg.Env {
	case "development", "staging", "production", "testing":
	default:
		errs = append(errs, fmt.Errorf("unknown env %q", cfg.Env))
	}
	if strings.TrimSpace(cfg.Tmap.BaseURL) == "" {
		errs = append(errs, errors.New("tmap base_url is required"))
	}
	if strings.TrimSpace(cfg.Tmap.AppKey) == "" {
		errs = append(errs, errors.New("tmap app_key is required (TMAP_APP_KEY)"))
	}
	if cfg.LandCheck.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("land_check max_attempts must be at least 1, got %d", cfg.LandCheck.MaxAttempts))
	}
	if cfg.SessionTTLMinutes < 1 {
		errs = append(errs, fmt.Errorf("session_ttl_minutes must be at least 1, got %d", cfg.SessionTTLMinutes))
	}
	if cfg.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max_retries must not be negative, got %d", cfg.MaxRetries))
	}

	if cfg.RequestTimeoutSeconds < 1 {
		errs = append(errs, fmt.Errorf("request_timeout_seconds must be at least 1, got %d", cfg.RequestTimeoutSeconds))
	}

	return errors.Join(errs...)
}

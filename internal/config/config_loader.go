package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/getsentry/sentry-go"
	"gostop.app/internal/report"
	"gostop.app/internal/utils"
)

// LoadConfigFromFile reads a JSON configuration file from disk on top of
// the defaults in base. Fields missing from the file keep their defaults.
//
// On error, it reports issues to Sentry and returns a descriptive error.
func LoadConfigFromFile(filePath string, base *Config) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags:  utils.MakeMap("file_path", filePath),
			Level: sentry.LevelError,
		})
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := *base
	if err := json.Unmarshal(data, &cfg); err != nil {
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags:  utils.MakeMap("file_path", filePath),
			Level: sentry.LevelError,
		})
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides configuration from environment variables. getenv is
// usually os.Getenv; tests pass a map lookup.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("TMAP_APP_KEY"); v != "" {
		cfg.Tmap.AppKey = v
	}
	if v := getenv("TMAP_BASE_URL"); v != "" {
		cfg.Tmap.BaseURL = strings.TrimRight(v, "/")
	}
	if v := getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := getenv("GOSTOP_ENV"); v != "" {
		cfg.Env = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"GOSTOP_PORT", &cfg.Port},
		{"GOSTOP_LAND_MAX_ATTEMPTS", &cfg.LandCheck.MaxAttempts},
		{"GOSTOP_SESSION_TTL_MINUTES", &cfg.SessionTTLMinutes},
		{"GOSTOP_MAX_RETRIES", &cfg.MaxRetries},
		{"GOSTOP_REQUEST_TIMEOUT_SECONDS", &cfg.RequestTimeoutSeconds},
	}
	for _, i := range ints {
		v := getenv(i.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", i.key, err)
		}
		*i.dst = n
	}

	if v := getenv("GOSTOP_LAND_CHECK"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("GOSTOP_LAND_CHECK: %w", err)
		}
		cfg.LandCheck.Enabled = enabled
	}

	return nil
}

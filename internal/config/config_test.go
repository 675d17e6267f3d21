package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := NewConfig(DefaultPort, DefaultEnv)
	cfg.Tmap.AppKey = "test-key"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults with key", mutate: func(*Config) {}},
		{name: "missing key", mutate: func(c *Config) { c.Tmap.AppKey = "" }, wantErr: "app_key"},
		{name: "bad port", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "port"},
		{name: "bad env", mutate: func(c *Config) { c.Env = "moon" }, wantErr: "unknown env"},
		{name: "zero attempts", mutate: func(c *Config) { c.LandCheck.MaxAttempts = 0 }, wantErr: "max_attempts"},
		{name: "negative retries", mutate: func(c *Config) { c.MaxRetries = -1 }, wantErr: "max_retries"},
		{name: "zero request timeout", mutate: func(c *Config) { c.RequestTimeoutSeconds = 0 }, wantErr: "request_timeout_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gostop.json")
	content := `{
		"port": 8080,
		"tmap": {"base_url": "http://localhost:9999", "app_key": "file-key"},
		"land_check": {"enabled": false, "max_attempts": 4}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfigFromFile(path, NewConfig(DefaultPort, DefaultEnv))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DefaultEnv, cfg.Env)
	assert.Equal(t, "http://localhost:9999", cfg.Tmap.BaseURL)
	assert.Equal(t, "file-key", cfg.Tmap.AppKey)
	assert.False(t, cfg.LandCheck.Enabled)
	assert.Equal(t, 4, cfg.LandCheck.MaxAttempts)
	assert.Equal(t, DefaultSessionTTLMinutes, cfg.SessionTTLMinutes)
}

func TestLoadConfigFromFileErrors(t *testing.T) {
	_, err := LoadConfigFromFile(filepath.Join(t.TempDir(), "missing.json"), NewConfig(DefaultPort, DefaultEnv))
	assert.ErrorContains(t, err, "failed to read config file")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = LoadConfigFromFile(path, NewConfig(DefaultPort, DefaultEnv))
	assert.ErrorContains(t, err, "failed to unmarshal JSON")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"TMAP_APP_KEY":               "env-key",
		"TMAP_BASE_URL":              "http://tmap.local/",
		"GOSTOP_PORT":                "5000",
		"GOSTOP_LAND_CHECK":          "false",
		"GOSTOP_SESSION_TTL_MINUTES": "5",

		"GOSTOP_REQUEST_TIMEOUT_SECONDS": "40",
	}
	cfg := NewConfig(DefaultPort, DefaultEnv)

	require.NoError(t, ApplyEnv(cfg, func(k string) string { return env[k] }))

	assert.Equal(t, "env-key", cfg.Tmap.AppKey)
	assert.Equal(t, "http://tmap.local", cfg.Tmap.BaseURL)
	assert.Equal(t, 5000, cfg.Port)
	assert.False(t, cfg.LandCheck.Enabled)
	assert.Equal(t, 5, cfg.SessionTTLMinutes)
	assert.Equal(t, 40*time.Second, cfg.RequestTimeout())
	assert.Equal(t, DefaultLandMaxAttempts, cfg.LandCheck.MaxAttempts)

	env["GOSTOP_PORT"] = "abc"
	assert.ErrorContains(t, ApplyEnv(cfg, func(k string) string { return env[k] }), "GOSTOP_PORT")
}

func TestWriteTimeoutOutlastsRequestTimeout(t *testing.T) {
	cfg := NewConfig(DefaultPort, DefaultEnv)
	assert.Equal(t, DefaultRequestTimeoutSeconds*time.Second, cfg.RequestTimeout())
	assert.Greater(t, cfg.WriteTimeout(), cfg.RequestTimeout())

	cfg.RequestTimeoutSeconds = 120
	assert.Greater(t, cfg.WriteTimeout(), 120*time.Second)
}

package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()

	cfg, err := LoadFrom(t.TempDir(), "")
	require.NoError(t, err)

	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, validConfig(t).Validate())
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing app name", func(c *Config) { c.App.Name = "" }, "app.name is required"},
		{"unknown environment", func(c *Config) { c.App.Environment = "staging" }, "app.environment must be one of"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port must be at most 65535"},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level must be one of: trace debug info warn error"},
		{"log file without path", func(c *Config) {
			c.Log.File.Enabled = true
			c.Log.File.Path = ""
		}, "log.file.path is required when"},
		{"telemetry without endpoint", func(c *Config) { c.Telemetry.Enabled = true }, "telemetry.endpoint is required when"},
		{"sampling rate above one", func(c *Config) { c.Telemetry.SamplingRate = 1.5 }, "telemetry.sampling_rate must be at most 1"},
		{"too many retries", func(c *Config) { c.Client.Retry.MaxAttempts = 11 }, "client.retry.max_attempts must be at most 10"},
		{"flat multiplier", func(c *Config) { c.Client.Retry.Multiplier = 1.0 }, "client.retry.multiplier must be at least 1.1"},
		{"bad quote server url", func(c *Config) { c.Services.Quote.BaseURL = "not a url" }, "services.quote.base_url must be a valid URL"},
		{"relative posts path", func(c *Config) { c.Services.Quote.PostsPath = "posts" }, `services.quote.posts_path must start with "/"`},
		{"missing storage path", func(c *Config) { c.Storage.Path = "" }, "storage.path is required"},
		{"sync interval too short", func(c *Config) { c.Sync.Interval = 1 }, "sync.interval must be at least 1s"},
		{"zero notification capacity", func(c *Config) { c.Notifications.Capacity = 0 }, "notifications.capacity is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_DisabledSyncSkipsInterval(t *testing.T) {
	cfg := validConfig(t)
	cfg.Sync.Enabled = false
	cfg.Sync.Interval = 0

	assert.NoError(t, cfg.Validate())
}

func TestValidate_ReportsEveryFailure(t *testing.T) {
	cfg := validConfig(t)
	cfg.App.Name = ""
	cfg.Storage.Path = ""

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
	assert.Contains(t, err.Error(), "app.name")
	assert.Contains(t, err.Error(), "storage.path")
}

func TestFormatValidationErrors_PassesThroughOtherErrors(t *testing.T) {
	other := errors.New("not a validation error")
	assert.Same(t, other, formatValidationErrors(other))
}

func TestFormatFieldPath(t *testing.T) {
	assert.Equal(t, "services.quote.base_url", formatFieldPath("Config.services.quote.base_url"))
	assert.Equal(t, "port", formatFieldPath("Port"))
}

// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	// Import documents travel through the same limit.
	DefaultMaxRequestSize = 1 << 20

	DefaultClientRetryMaxAttempts     = 3
	DefaultClientRetryMultiplier      = 2.0
	DefaultClientRetryJitterFactor    = 0.25
	DefaultClientCircuitMaxFailures   = 5
	DefaultClientCircuitHalfOpenLimit = 3

	DefaultTransportMaxIdleConns        = 100
	DefaultTransportMaxIdleConnsPerHost = 10

	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28

	// DefaultNotificationCapacity bounds how many active notifications are kept.
	DefaultNotificationCapacity = 32

	// DefaultConfigDir is where Load looks for base.yaml and profile files.
	DefaultConfigDir = "configs"

	// EnvPrefix marks environment variables that override configuration.
	EnvPrefix = "APP_"
)

// Config is the root configuration structure.
type Config struct {
	App           AppConfig           `koanf:"app"           validate:"required"`
	Server        ServerConfig        `koanf:"server"        validate:"required"`
	Log           LogConfig           `koanf:"log"           validate:"required"`
	Telemetry     TelemetryConfig     `koanf:"telemetry"`
	Client        ClientConfig        `koanf:"client"        validate:"required"`
	Services      ServicesConfig      `koanf:"services"      validate:"required"`
	Storage       StorageConfig       `koanf:"storage"       validate:"required"`
	Sync          SyncConfig          `koanf:"sync"`
	Notifications NotificationsConfig `koanf:"notifications" validate:"required"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// ClientConfig contains HTTP client settings for the quote server.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig contains retry settings for HTTP clients.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig contains circuit breaker settings for HTTP clients.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// ServicesConfig contains configuration for downstream services.
type ServicesConfig struct {
	Quote ServiceEndpointConfig `koanf:"quote" validate:"required"`
}

// ServiceEndpointConfig describes the remote quote server.
type ServiceEndpointConfig struct {
	BaseURL   string `koanf:"base_url"   validate:"required,url"`
	Name      string `koanf:"name"       validate:"required"`
	PostsPath string `koanf:"posts_path" validate:"required,startswith=/"`
}

// StorageConfig locates the persistent key-value store.
type StorageConfig struct {
	Path        string        `koanf:"path"         validate:"required"`
	BusyTimeout time.Duration `koanf:"busy_timeout" validate:"required,min=1ms"`
}

// SyncConfig controls the periodic sync loop.
type SyncConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval" validate:"required_if=Enabled true,omitempty,min=1s"`
}

// NotificationsConfig controls the transient notification feed.
type NotificationsConfig struct {
	TTL      time.Duration `koanf:"ttl"      validate:"required,min=100ms"`
	Capacity int           `koanf:"capacity" validate:"required,min=1,max=1000"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "quote-manager",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/quote-manager.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "quote-manager",
		"telemetry.sampling_rate": 1.0,

		"client.timeout":                           "10s",
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "5s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"services.quote.base_url":   "https://jsonplaceholder.typicode.com",
		"services.quote.name":       "quote-server",
		"services.quote.posts_path": "/posts",

		"storage.path":         "./data/quotes.db",
		"storage.busy_timeout": "5s",

		"sync.enabled":  true,
		"sync.interval": "60s",

		"notifications.ttl":      "3s",
		"notifications.capacity": DefaultNotificationCapacity,
	}
}

// Load reads configuration from DefaultConfigDir. See LoadFrom.
func Load(profile string) (*Config, error) {
	return LoadFrom(DefaultConfigDir, profile)
}

// LoadFrom loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix)
//  2. Profile config file ({dir}/{profile}.yaml)
//  3. Base config file ({dir}/base.yaml)
//  4. Default values
func LoadFrom(dir, profile string) (*Config, error) {
	k := koanf.New(".")

	defs := defaults()

	if err := k.Load(confmap.Provider(defs, "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := loadFileIfExists(k, filepath.Join(dir, "base.yaml")); err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		if err := loadFileIfExists(k, filepath.Join(dir, profile+".yaml")); err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKeyMapper(defs)), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKeyMapper maps APP_SERVICES_QUOTE_BASE_URL to services.quote.base_url.
// Known keys are matched first so that underscores inside a key name survive;
// anything else falls back to replacing every underscore with a dot.
func envKeyMapper(known map[string]any) func(string) string {
	flat := make(map[string]string, len(known))
	for key := range known {
		flat[strings.ReplaceAll(key, ".", "_")] = key
	}

	return func(s string) string {
		name := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		if key, ok := flat[name]; ok {
			return key
		}

		return strings.ReplaceAll(name, "_", ".")
	}
}

// loadFileIfExists loads a YAML config file if it exists.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}

// Package config resolves the runtime configuration from YAML file,
// environment, and flag overrides, and validates its bounds. The engine
// and client only ever see the resolved Config value; they never read
// environment or argument sources themselves.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Bounds and defaults for the numeric settings.
const (
	DefaultConcurrency = 10
	MaxConcurrency     = 50

	DefaultTimeoutSeconds = 30
	MaxTimeoutSeconds     = 300

	DefaultCacheCapacity = 1024
)

// Config is the resolved runtime configuration.
type Config struct {
	// APIKey is the OpenWeatherMap credential. Required for report runs,
	// not for cache maintenance.
	APIKey string `yaml:"api_key" env:"OPENWEATHER_API_KEY"`

	// APIBaseURL overrides the provider endpoint. Empty means the
	// client default; mainly useful against a stub server.
	APIBaseURL string `yaml:"api_base_url" env:"WEATHER_API_BASE_URL"`

	// Concurrency bounds simultaneous provider calls.
	Concurrency int `yaml:"concurrency" env:"WEATHER_CONCURRENCY" validate:"min=1,max=50"`

	// TimeoutSeconds is the per-request budget.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"WEATHER_TIMEOUT" validate:"min=1,max=300"`

	// CachePath enables the persistent cache tier when non-empty.
	CachePath string `yaml:"cache_path" env:"WEATHER_CACHE_PATH"`

	// CacheCapacity bounds the in-memory cache tier.
	CacheCapacity int `yaml:"cache_capacity" env:"WEATHER_CACHE_CAPACITY" validate:"min=1"`

	// ClearCache empties both cache tiers before any lookups begin.
	ClearCache bool `yaml:"clear_cache" env:"WEATHER_CLEAR_CACHE"`

	// LogLevel is the zerolog level name.
	LogLevel string `yaml:"log_level" env:"WEATHER_LOG_LEVEL"`
}

// Default returns the configuration used when no source overrides it.
func Default() Config {
	return Config{
		Concurrency:    DefaultConcurrency,
		TimeoutSeconds: DefaultTimeoutSeconds,
		CacheCapacity:  DefaultCacheCapacity,
		LogLevel:       "info",
	}
}

// Load resolves configuration in precedence order: defaults, then the
// YAML file at configPath (optional), then environment variables (a
// .env file is honored when present). Flag overrides are applied by
// the CLI layer after Load. Bounds are validated before returning.
func Load(configPath string) (Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	// A missing .env file is not an error.
	_ = godotenv.Load()

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the numeric bounds. Violations are configuration
// errors and abort before any fetch begins.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Timeout returns the per-request budget as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

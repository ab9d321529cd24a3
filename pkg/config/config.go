package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the service.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Provider ProviderConfig `mapstructure:"provider"`
	Log      LogConfig      `mapstructure:"log"`
}

type AppConfig struct {
	Port    string `mapstructure:"port"`
	Env     string `mapstructure:"env"` // "local" or "prod"
	Version string `mapstructure:"version"`
}

type ProviderConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
	UseMock   bool   `mapstructure:"use_mock"`
	Fixtures  string `mapstructure:"fixtures"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Timeout converts the configured fetch budget into a duration.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutMS) * time.Millisecond
}

// LoadConfig reads configuration from a .env file, environment variables,
// and defaults, in that order of increasing precedence for the env vars.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Load .env into the process environment when present; a missing file
	// just means the host environment is the only source.
	_ = godotenv.Load()

	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.version", "dev")

	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.timeout_ms", 2000)
	v.SetDefault("provider.use_mock", true)
	v.SetDefault("provider.fixtures", "fixtures/quotes.yaml")

	v.SetDefault("log.level", "info")

	// Map dot-notation keys to underscore env vars (app.port -> APP_PORT).
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicit binds so flat env vars land in the nested structs.
	bindEnv(v, "app.port", "app.env", "app.version")
	bindEnv(v, "provider.base_url", "provider.timeout_ms", "provider.use_mock", "provider.fixtures")
	bindEnv(v, "log.level")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if cfg.App.Port == "" {
		return nil, fmt.Errorf("app port cannot be empty")
	}
	if cfg.Provider.TimeoutMS <= 0 {
		return nil, fmt.Errorf("provider timeout must be positive, got %d", cfg.Provider.TimeoutMS)
	}
	if cfg.Provider.UseMock && cfg.Provider.Fixtures == "" {
		return nil, fmt.Errorf("provider fixtures path required when mock provider is enabled")
	}

	return &cfg, nil
}

func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		// BindEnv only errors on an empty key.
		_ = v.BindEnv(key)
	}
}

package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.App.Port != "8080" {
		t.Fatalf("App.Port = %q, expected 8080", cfg.App.Port)
	}
	if cfg.App.Env != "local" {
		t.Fatalf("App.Env = %q, expected local", cfg.App.Env)
	}
	if cfg.Provider.TimeoutMS != 2000 {
		t.Fatalf("Provider.TimeoutMS = %d, expected 2000", cfg.Provider.TimeoutMS)
	}
	if !cfg.Provider.UseMock {
		t.Fatalf("Provider.UseMock = false, expected the mock default")
	}
	if cfg.Provider.Fixtures == "" {
		t.Fatalf("Provider.Fixtures empty, expected a default path")
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("Log.Level = %q, expected info", cfg.Log.Level)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9999")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PROVIDER_TIMEOUT_MS", "1500")
	t.Setenv("PROVIDER_USE_MOCK", "false")
	t.Setenv("PROVIDER_BASE_URL", "http://localhost:1234")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.App.Port != "9999" {
		t.Fatalf("App.Port = %q, expected 9999", cfg.App.Port)
	}
	if cfg.App.Env != "prod" {
		t.Fatalf("App.Env = %q, expected prod", cfg.App.Env)
	}
	if cfg.Provider.TimeoutMS != 1500 {
		t.Fatalf("Provider.TimeoutMS = %d, expected 1500", cfg.Provider.TimeoutMS)
	}
	if cfg.Provider.UseMock {
		t.Fatalf("Provider.UseMock = true, expected override to false")
	}
	if cfg.Provider.BaseURL != "http://localhost:1234" {
		t.Fatalf("Provider.BaseURL = %q", cfg.Provider.BaseURL)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("Log.Level = %q, expected debug", cfg.Log.Level)
	}
}

func TestLoadConfigRejectsBadTimeout(t *testing.T) {
	for _, v := range []string{"-5", "0"} {
		t.Setenv("PROVIDER_TIMEOUT_MS", v)
		if _, err := LoadConfig(); err == nil {
			t.Fatalf("expected error for PROVIDER_TIMEOUT_MS=%s", v)
		}
	}
}

func TestProviderTimeout(t *testing.T) {
	p := ProviderConfig{TimeoutMS: 2500}
	if got := p.Timeout(); got != 2500*time.Millisecond {
		t.Fatalf("Timeout() = %v, expected 2.5s", got)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.API.Port != 8000 {
		t.Errorf("default port = %d, want 8000", cfg.API.Port)
	}
	if cfg.Scanning.MaxConcurrentScans != 10 {
		t.Errorf("default max concurrent scans = %d, want 10", cfg.Scanning.MaxConcurrentScans)
	}
	if cfg.Callback.Timeout != 30*time.Second {
		t.Errorf("default callback timeout = %v, want 30s", cfg.Callback.Timeout)
	}
	if cfg.Scanning.RegistryRetention != 24*time.Hour {
		t.Errorf("default retention = %v, want 24h", cfg.Scanning.RegistryRetention)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
api:
  host: "127.0.0.1"
  port: 9000
scanning:
  max_concurrent_scans: 3
callback:
  default_url: "http://hooks.example/scan"
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.API.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.API.Port)
	}
	if cfg.ListenAddr() != "127.0.0.1:9000" {
		t.Errorf("listen addr = %q", cfg.ListenAddr())
	}
	if cfg.Scanning.MaxConcurrentScans != 3 {
		t.Errorf("max concurrent scans = %d, want 3", cfg.Scanning.MaxConcurrentScans)
	}
	if cfg.Callback.DefaultURL != "http://hooks.example/scan" {
		t.Errorf("default callback = %q", cfg.Callback.DefaultURL)
	}
	// Unspecified values keep defaults.
	if cfg.Callback.Timeout != 30*time.Second {
		t.Errorf("callback timeout = %v, want default", cfg.Callback.Timeout)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") returned error: %v", err)
	}
	if cfg.API.Port != 8000 {
		t.Errorf("port = %d, want default", cfg.API.Port)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvCallbackDefault, "http://env.example/cb")
	t.Setenv(EnvScannerSecret, "sekrit")
	t.Setenv(EnvAllowedOrigins, "https://a.example, https://b.example")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Callback.DefaultURL != "http://env.example/cb" {
		t.Errorf("callback default = %q", cfg.Callback.DefaultURL)
	}
	if cfg.API.SharedSecret != "sekrit" {
		t.Errorf("shared secret = %q", cfg.API.SharedSecret)
	}
	if len(cfg.API.CORSOrigins) != 2 || cfg.API.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors origins = %v", cfg.API.CORSOrigins)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.API.Port = 0 }},
		{"port too high", func(c *Config) { c.API.Port = 70000 }},
		{"zero concurrent scans", func(c *Config) { c.Scanning.MaxConcurrentScans = 0 }},
		{"zero registry capacity", func(c *Config) { c.Scanning.RegistryCapacity = 0 }},
		{"zero callback timeout", func(c *Config) { c.Callback.Timeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

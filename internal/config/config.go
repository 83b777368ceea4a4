// Package config provides typed configuration for the scand service.
// Configuration is loaded from an optional YAML file and overlaid with
// environment variables for deployment-level settings.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cyberscan/scand/internal/errors"
)

// Environment variable names recognized at load time.
const (
	EnvCallbackDefault = "CALLBACK_URL_DEFAULT"
	EnvScannerSecret   = "SCANNER_SECRET"
	EnvAllowedOrigins  = "ALLOWED_ORIGINS"
)

// Config represents the complete service configuration.
type Config struct {
	// API configuration
	API APIConfig `yaml:"api" json:"api"`

	// Scanning configuration
	Scanning ScanningConfig `yaml:"scanning" json:"scanning"`

	// Callback configuration
	Callback CallbackConfig `yaml:"callback" json:"callback"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	// Listen address
	Host string `yaml:"host" json:"host"`

	// Listen port
	Port int `yaml:"port" json:"port"`

	// HTTP server timeouts
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idle_timeout"`

	// Maximum request header size
	MaxHeaderBytes int `yaml:"max_header_bytes" json:"max_header_bytes"`

	// Shared secret checked against the X-Scanner-Secret header.
	// Empty disables the check.
	SharedSecret string `yaml:"shared_secret" json:"shared_secret"`

	// CORS settings
	EnableCORS  bool     `yaml:"enable_cors" json:"enable_cors"`
	CORSOrigins []string `yaml:"cors_origins" json:"cors_origins"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// ScanningConfig holds scan execution settings.
type ScanningConfig struct {
	// Maximum number of scans running concurrently
	MaxConcurrentScans int `yaml:"max_concurrent_scans" json:"max_concurrent_scans"`

	// How long terminal scan entries are kept before eviction
	RegistryRetention time.Duration `yaml:"registry_retention" json:"registry_retention"`

	// Maximum number of entries admitted into the registry
	RegistryCapacity int `yaml:"registry_capacity" json:"registry_capacity"`
}

// CallbackConfig holds callback delivery settings.
type CallbackConfig struct {
	// Default callback URL used when a request does not supply one
	DefaultURL string `yaml:"default_url" json:"default_url"`

	// Per-delivery HTTP timeout
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level"`

	// Log format (text, json)
	Format string `yaml:"format" json:"format"`

	// Log output (stdout, stderr, file path)
	Output string `yaml:"output" json:"output"`
}

// Default configuration constants.
const (
	defaultPort               = 8000
	defaultReadTimeout        = 10 * time.Second
	defaultWriteTimeout       = 10 * time.Second
	defaultIdleTimeout        = 60 * time.Second
	defaultMaxHeaderBytes     = 1 << 20 // 1 MB
	defaultShutdownTimeout    = 30 * time.Second
	defaultCallbackTimeout    = 30 * time.Second
	defaultMaxConcurrentScans = 10
	defaultRegistryRetention  = 24 * time.Hour
	defaultRegistryCapacity   = 10000
)

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Host:            "0.0.0.0",
			Port:            defaultPort,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			MaxHeaderBytes:  defaultMaxHeaderBytes,
			EnableCORS:      true,
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Scanning: ScanningConfig{
			MaxConcurrentScans: defaultMaxConcurrentScans,
			RegistryRetention:  defaultRegistryRetention,
			RegistryCapacity:   defaultRegistryCapacity,
		},
		Callback: CallbackConfig{
			Timeout: defaultCallbackTimeout,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Load reads configuration from the given file path, falling back to
// defaults when the path is empty, and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 - path comes from operator flags
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides overlays deployment-level environment variables.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvCallbackDefault); v != "" {
		c.Callback.DefaultURL = v
	}
	if v := os.Getenv(EnvScannerSecret); v != "" {
		c.API.SharedSecret = v
	}
	if v := os.Getenv(EnvAllowedOrigins); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		c.API.CORSOrigins = origins
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.API.Port < 1 || c.API.Port > 65535 {
		return errors.NewConfigFieldError(errors.CodeValidation,
			"port must be between 1 and 65535", "api.port", c.API.Port)
	}
	if c.Scanning.MaxConcurrentScans < 1 {
		return errors.NewConfigFieldError(errors.CodeValidation,
			"must allow at least one concurrent scan", "scanning.max_concurrent_scans",
			c.Scanning.MaxConcurrentScans)
	}
	if c.Scanning.RegistryCapacity < 1 {
		return errors.NewConfigFieldError(errors.CodeValidation,
			"registry capacity must be positive", "scanning.registry_capacity",
			c.Scanning.RegistryCapacity)
	}
	if c.Callback.Timeout <= 0 {
		return errors.NewConfigFieldError(errors.CodeValidation,
			"callback timeout must be positive", "callback.timeout", c.Callback.Timeout)
	}
	return nil
}

// ListenAddr returns the host:port address for the API server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

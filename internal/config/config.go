package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const configVersion = "1"

// Config represents the rollcall configuration.
type Config struct {
	Version       string `json:"version"`
	Driver        string `json:"driver"`                   // "sqlite" or "postgres"
	DSN           string `json:"dsn,omitempty"`            // sqlite path or postgres DSN
	HTTPAddr      string `json:"http_addr,omitempty"`      // listen address for serve
	LogFormat     string `json:"log_format,omitempty"`     // "text" or "json"
	LogLevel      string `json:"log_level,omitempty"`      // debug, info, warn, error
	DefaultWorker string `json:"default_worker,omitempty"` // worker used when --worker is omitted
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version:   configVersion,
		Driver:    DriverSQLite,
		HTTPAddr:  ":8080",
		LogFormat: "text",
		LogLevel:  "info",
	}
}

// Load reads .rollcall/config.json from dir, then applies .env and
// ROLLCALL_* environment overrides. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(dir, ".rollcall", "config.json"))
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	overrides := map[string]*string{
		"ROLLCALL_DRIVER":     &cfg.Driver,
		"ROLLCALL_DSN":        &cfg.DSN,
		"ROLLCALL_HTTP_ADDR":  &cfg.HTTPAddr,
		"ROLLCALL_LOG_FORMAT": &cfg.LogFormat,
		"ROLLCALL_LOG_LEVEL":  &cfg.LogLevel,
		"ROLLCALL_WORKER":     &cfg.DefaultWorker,
	}
	for key, field := range overrides {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*field = strings.TrimSpace(v)
		}
	}
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DSN == "" {
			return fmt.Errorf("driver postgres requires a dsn (set ROLLCALL_DSN)")
		}
	default:
		return fmt.Errorf("unknown driver %q (want %s or %s)", c.Driver, DriverSQLite, DriverPostgres)
	}
	return nil
}

// Save writes config.json to directory
func Save(dir string, cfg *Config) error {
	rcDir := filepath.Join(dir, ".rollcall")
	if err := os.MkdirAll(rcDir, 0755); err != nil {
		return fmt.Errorf("failed to create .rollcall dir: %w", err)
	}

	if cfg.Version == "" {
		cfg.Version = configVersion
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(rcDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

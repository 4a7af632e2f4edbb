package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrUnknownBackend is returned by Validate for an unsupported store backend.
var ErrUnknownBackend = errors.New("unknown store backend")

// Store backends.
const (
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all slayken configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Missions MissionsConfig `yaml:"missions"`
	Logging  LoggingConfig  `yaml:"logging"`
	Server   ServerConfig   `yaml:"server"`
}

// StoreConfig selects where learner state is kept.
type StoreConfig struct {
	Backend     string `yaml:"backend"` // sqlite, memory, redis, postgres
	Path        string `yaml:"path"`    // sqlite file; empty = XDG default
	RedisURL    string `yaml:"redis_url"`
	RedisPrefix string `yaml:"redis_prefix"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// MissionsConfig configures the mission tracker.
type MissionsConfig struct {
	// Catalog is a JSON mission catalog; empty uses the built-in one.
	Catalog string `yaml:"catalog"`

	// Timezone is the IANA zone in which days and weeks roll over.
	Timezone string `yaml:"timezone"`

	// AbsoluteLevelProgress lets a lower level lower the level missions.
	AbsoluteLevelProgress bool `yaml:"absolute_level_progress"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:     BackendSQLite,
			RedisPrefix: "slayken:",
		},
		Missions: MissionsConfig{
			Timezone: "Local",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8420",
			AllowedOrigins: []string{"*"},
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/slayken/config.yaml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "slayken", "config.yaml"), nil
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides, including those from a .env file in the
// working directory, are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// A missing .env is normal.
	_ = godotenv.Load()
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite, BackendMemory:
	case BackendRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("store backend %q requires redis_url", c.Store.Backend)
		}
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("store backend %q requires postgres_dsn", c.Store.Backend)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Store.Backend)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the mission time zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Missions.Timezone {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Missions.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Missions.Timezone, err)
	}
	return loc, nil
}

// applyEnvOverrides applies SLAYKEN_* environment variables.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SLAYKEN_STORE"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("SLAYKEN_DB"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("SLAYKEN_REDIS_URL"); v != "" {
		c.Store.RedisURL = v
	}
	if v := os.Getenv("SLAYKEN_POSTGRES_DSN"); v != "" {
		c.Store.PostgresDSN = v
	}
	if v := os.Getenv("SLAYKEN_CATALOG"); v != "" {
		c.Missions.Catalog = v
	}
	if v := os.Getenv("SLAYKEN_TZ"); v != "" {
		c.Missions.Timezone = v
	}
	if v := os.Getenv("SLAYKEN_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SLAYKEN_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

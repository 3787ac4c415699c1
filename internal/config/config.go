// Package config loads service settings from defaults, an optional TOML file
// and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAddr       = ":3000"
	DefaultDriver     = "json"
	DefaultTasksFile  = "tasks.json"
	DefaultConfigFile = "tasks.toml"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Storage  StorageConfig  `toml:"storage"`
	Log      LogConfig      `toml:"log"`
	Telegram TelegramConfig `toml:"telegram"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type StorageConfig struct {
	// Driver is one of json, sqlite, memory.
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type TelegramConfig struct {
	Token string `toml:"token"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Addr: DefaultAddr},
		Storage: StorageConfig{Driver: DefaultDriver, Path: DefaultTasksFile},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration. An explicit path must exist; when path is
// empty TASKS_CONFIG is tried, then tasks.toml in the working directory if
// present.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("TASKS_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = DefaultConfigFile
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromEnv(cfg *Config) {
	setFromEnv(&cfg.Server.Addr, "TASKS_ADDR")
	setFromEnv(&cfg.Storage.Driver, "TASKS_STORAGE_DRIVER")
	setFromEnv(&cfg.Storage.Path, "TASKS_FILE")
	setFromEnv(&cfg.Log.Level, "LOG_LEVEL")
	setFromEnv(&cfg.Log.Format, "LOG_FORMAT")
	setFromEnv(&cfg.Telegram.Token, "TELEGRAM_TOKEN")
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks settings that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is empty")
	}
	switch c.Storage.Driver {
	case "json", "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for driver %q", c.Storage.Driver)
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	return nil
}

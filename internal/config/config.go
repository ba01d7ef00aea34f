package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const appDir = "pipefit"

type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	Log           LogConfig           `yaml:"log"`
	Timer         TimerConfig         `yaml:"timer"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

type TimerConfig struct {
	// TickInterval is how often the UI polls the engine. Elapsed time is
	// measured on the wall clock, so this only affects display latency.
	TickInterval time.Duration `yaml:"tick_interval"`
}

type NotificationsConfig struct {
	Desktop bool `yaml:"desktop"`
}

// Default returns a Config with everything under the user config directory.
func Default() *Config {
	dir := Dir()
	return &Config{
		Storage: StorageConfig{DBPath: filepath.Join(dir, "pipefit.db")},
		Log: LogConfig{
			Path:  filepath.Join(dir, "pipefit.log"),
			Level: "info",
		},
		Timer:         TimerConfig{TickInterval: 100 * time.Millisecond},
		Notifications: NotificationsConfig{Desktop: true},
	}
}

// Dir is ~/.config/pipefit, or ./pipefit when the user config directory is
// unknown.
func Dir() string {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return appDir
	}
	return filepath.Join(cfg, appDir)
}

// DefaultPath returns ~/.config/pipefit/config.yaml
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. A missing file is not an error:
//
//	PIPEFIT_DB_PATH, PIPEFIT_LOG_PATH, PIPEFIT_LOG_LEVEL,
//	PIPEFIT_TICK_INTERVAL, PIPEFIT_DESKTOP_NOTIFY
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PIPEFIT_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("PIPEFIT_LOG_PATH"); v != "" {
		cfg.Log.Path = v
	}
	if v := os.Getenv("PIPEFIT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PIPEFIT_TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PIPEFIT_TICK_INTERVAL: %w", err)
		}
		cfg.Timer.TickInterval = d
	}
	if v := os.Getenv("PIPEFIT_DESKTOP_NOTIFY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PIPEFIT_DESKTOP_NOTIFY: %w", err)
		}
		cfg.Notifications.Desktop = b
	}
	return nil
}

func (c *Config) validate() error {
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	if c.Timer.TickInterval <= 0 {
		return fmt.Errorf("timer.tick_interval must be positive")
	}
	if c.Timer.TickInterval > time.Second {
		return fmt.Errorf("timer.tick_interval must be at most 1s")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses Level (debug, info, warn, error).
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

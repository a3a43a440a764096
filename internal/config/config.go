package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rpggio/turnkeeper/internal/domain/queue"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the variable holding the config file path.
const EnvConfigPath = "TURNKEEPER_CONFIG_PATH"

// Config defines application configuration.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
	Device   DeviceConfig   `yaml:"device"`
	Timer    TimerConfig    `yaml:"timer"`
	Queue    QueueConfig    `yaml:"queue"`
	Sessions SessionsConfig `yaml:"sessions"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Path sends logs to a file instead of stderr.
	Path string `yaml:"path"`
}

type DeviceConfig struct {
	// ID pins the device identity. Empty means generate and remember one.
	ID               string `yaml:"id"`
	SelectedDeviceID string `yaml:"selected_device_id"`
}

type TimerConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
}

type QueueConfig struct {
	ReshuffleMode string `yaml:"reshuffle_mode"`
}

type SessionsConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Storage:  StorageConfig{Path: "turnkeeper.db"},
		Log:      LogConfig{Level: "info"},
		Timer:    TimerConfig{TickInterval: time.Second},
		Queue:    QueueConfig{ReshuffleMode: string(queue.ReshuffleAll)},
		Sessions: SessionsConfig{TTL: time.Hour},
	}
}

// Load reads configuration from an optional .env file, an optional YAML
// file and environment variables, in increasing precedence. An empty path
// falls back to TURNKEEPER_CONFIG_PATH.
func Load(path string) (Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("TURNKEEPER_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("TURNKEEPER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TURNKEEPER_LOG_PATH"); v != "" {
		cfg.Log.Path = v
	}
	if v := os.Getenv("TURNKEEPER_DEVICE_ID"); v != "" {
		cfg.Device.ID = v
	}
	if v := os.Getenv("TURNKEEPER_SELECTED_DEVICE_ID"); v != "" {
		cfg.Device.SelectedDeviceID = v
	}
	if v := os.Getenv("TURNKEEPER_RESHUFFLE_MODE"); v != "" {
		cfg.Queue.ReshuffleMode = v
	}
	if v := os.Getenv("TURNKEEPER_TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TURNKEEPER_TICK_INTERVAL: %w", err)
		}
		cfg.Timer.TickInterval = d
	}
	if v := os.Getenv("TURNKEEPER_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TURNKEEPER_SESSION_TTL: %w", err)
		}
		cfg.Sessions.TTL = d
	}
	return nil
}

// Validate checks that every value is usable.
func (c Config) Validate() error {
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	if c.Timer.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}
	if c.Sessions.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if _, err := queue.ParseReshuffleMode(c.Queue.ReshuffleMode); err != nil {
		return err
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

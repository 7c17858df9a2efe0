package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete botswitch configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Control    ControlConfig    `mapstructure:"control"`
	MessageLog MessageLogConfig `mapstructure:"messagelog"`
	Task       TaskConfig       `mapstructure:"task"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// AppConfig identifies the automation the switch controls
type AppConfig struct {
	// Name appears in notifications and failure lines (default: "botswitch")
	Name string `mapstructure:"name"`
}

// ControlConfig controls the on-screen toggle button
type ControlConfig struct {
	// TapThresholdMs is the longest press, in milliseconds, that counts as a tap (default: 100)
	TapThresholdMs int `mapstructure:"tap_threshold_ms"`
	// StartX is the initial column of the button (default: 2)
	StartX int `mapstructure:"start_x"`
	// StartY is the initial row of the button (default: 2)
	StartY int `mapstructure:"start_y"`
}

// TapThreshold returns the tap threshold as a time.Duration
func (c *ControlConfig) TapThreshold() time.Duration {
	return time.Duration(c.TapThresholdMs) * time.Millisecond
}

// MessageLogConfig controls where run logs are persisted
type MessageLogConfig struct {
	// Dir holds saved message logs. Empty means <config dir>/logs.
	Dir string `mapstructure:"dir"`
	// RetentionLimit is the record count above which all records are wiped (default: 50)
	RetentionLimit int `mapstructure:"retention_limit"`
}

// ResolveDir returns the message log directory, applying the default.
func (c *MessageLogConfig) ResolveDir() string {
	if c.Dir == "" {
		return filepath.Join(ConfigDir(), "logs")
	}
	if rest, ok := strings.CutPrefix(c.Dir, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return c.Dir
}

// TaskConfig selects the automation body
type TaskConfig struct {
	// File is a YAML step script. Empty means the built-in demo script.
	File string `mapstructure:"file"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name: "botswitch",
		},
		Control: ControlConfig{
			TapThresholdMs: 100,
			StartX:         2,
			StartY:         2,
		},
		MessageLog: MessageLogConfig{
			Dir:            "",
			RetentionLimit: 50,
		},
		Task: TaskConfig{
			File: "",
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("app.name", defaults.App.Name)

	// Control defaults
	viper.SetDefault("control.tap_threshold_ms", defaults.Control.TapThresholdMs)
	viper.SetDefault("control.start_x", defaults.Control.StartX)
	viper.SetDefault("control.start_y", defaults.Control.StartY)

	// Message log defaults
	viper.SetDefault("messagelog.dir", defaults.MessageLog.Dir)
	viper.SetDefault("messagelog.retention_limit", defaults.MessageLog.RetentionLimit)

	viper.SetDefault("task.file", defaults.Task.File)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom is Load for an explicit viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the configuration directory path
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "botswitch")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".botswitch"
	}
	return filepath.Join(home, ".config", "botswitch")
}

// ConfigFile returns the default config file path
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

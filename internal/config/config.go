package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPollIntervalMs     = 1000
	DefaultStopTimeoutSeconds = 30
	DefaultFillRatio          = 0.8
	DefaultResizeStep         = 10
	DefaultLogLevel           = "info"
)

// HotkeyConfig binds global key chords to actions on the active window.
// Chords use xgbutil keybind syntax, e.g. "Mod4-Mod1-c". An empty chord
// disables the action.
type HotkeyConfig struct {
	Center string `yaml:"center"`
	Grow   string `yaml:"grow"`
	Shrink string `yaml:"shrink"`
	Pin    string `yaml:"pin"`
}

// Config is the effective configuration.
type Config struct {
	Display            string       `yaml:"display,omitempty"`
	PollIntervalMs     int          `yaml:"poll_interval_ms"`
	StopTimeoutSeconds int          `yaml:"stop_timeout_seconds"`
	FillRatio          float64      `yaml:"fill_ratio"`
	ResizeStep         int          `yaml:"resize_step"`
	LogLevel           string       `yaml:"log_level"`
	Hotkeys            HotkeyConfig `yaml:"hotkeys"`
}

func DefaultHotkeys() HotkeyConfig {
	return HotkeyConfig{
		Center: "Mod4-Mod1-c",
		Grow:   "Mod4-Mod1-equal",
		Shrink: "Mod4-Mod1-minus",
		Pin:    "Mod4-Mod1-p",
	}
}

func DefaultConfig() *Config {
	return &Config{
		PollIntervalMs:     DefaultPollIntervalMs,
		StopTimeoutSeconds: DefaultStopTimeoutSeconds,
		FillRatio:          DefaultFillRatio,
		ResizeStep:         DefaultResizeStep,
		LogLevel:           DefaultLogLevel,
		Hotkeys:            DefaultHotkeys(),
	}
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c *Config) StopTimeout() time.Duration {
	return time.Duration(c.StopTimeoutSeconds) * time.Second
}

// SlogLevel maps log_level to a slog level. Unknown values map to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DisplayName returns the X display to connect to: the configured one, or
// $DISPLAY.
func (c *Config) DisplayName() string {
	if strings.TrimSpace(c.Display) != "" {
		return c.Display
	}
	return os.Getenv("DISPLAY")
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.PollIntervalMs < 50 {
		return &ValidationError{Path: "poll_interval_ms", Err: fmt.Errorf("poll_interval_ms must be >= 50")}
	}
	if c.StopTimeoutSeconds < 1 {
		return &ValidationError{Path: "stop_timeout_seconds", Err: fmt.Errorf("stop_timeout_seconds must be >= 1")}
	}
	if c.FillRatio <= 0 || c.FillRatio > 1 {
		return &ValidationError{Path: "fill_ratio", Err: fmt.Errorf("fill_ratio must be in (0, 1]")}
	}
	if c.ResizeStep <= 0 {
		return &ValidationError{Path: "resize_step", Err: fmt.Errorf("resize_step must be > 0")}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}

	seen := make(map[string]string)
	for _, hk := range []struct{ path, chord string }{
		{"hotkeys.center", c.Hotkeys.Center},
		{"hotkeys.grow", c.Hotkeys.Grow},
		{"hotkeys.shrink", c.Hotkeys.Shrink},
		{"hotkeys.pin", c.Hotkeys.Pin},
	} {
		chord := strings.TrimSpace(hk.chord)
		if chord == "" {
			continue
		}
		if strings.ContainsAny(chord, " \t") {
			return &ValidationError{Path: hk.path, Err: fmt.Errorf("hotkey %q must not contain whitespace", chord)}
		}
		if prev, ok := seen[chord]; ok {
			return &ValidationError{Path: hk.path, Err: fmt.Errorf("hotkey %q is already bound by %s", chord, prev)}
		}
		seen[chord] = hk.path
	}
	return nil
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

package config

// RawConfig mirrors the YAML file. Nil fields were absent and take their
// default.
type RawConfig struct {
	Display            *string          `yaml:"display"`
	PollIntervalMs     *int             `yaml:"poll_interval_ms"`
	StopTimeoutSeconds *int             `yaml:"stop_timeout_seconds"`
	FillRatio          *float64         `yaml:"fill_ratio"`
	ResizeStep         *int             `yaml:"resize_step"`
	LogLevel           *string          `yaml:"log_level"`
	Hotkeys            *RawHotkeyConfig `yaml:"hotkeys"`
}

type RawHotkeyConfig struct {
	Center *string `yaml:"center"`
	Grow   *string `yaml:"grow"`
	Shrink *string `yaml:"shrink"`
	Pin    *string `yaml:"pin"`
}

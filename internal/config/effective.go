package config

import "fmt"

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig overlays the keys present in raw on the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	cfg.PollIntervalMs = derefInt(raw.PollIntervalMs, cfg.PollIntervalMs)
	cfg.StopTimeoutSeconds = derefInt(raw.StopTimeoutSeconds, cfg.StopTimeoutSeconds)
	if raw.FillRatio != nil {
		cfg.FillRatio = *raw.FillRatio
	}
	cfg.ResizeStep = derefInt(raw.ResizeStep, cfg.ResizeStep)
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}

	if hk := raw.Hotkeys; hk != nil {
		cfg.Hotkeys.Center = derefString(hk.Center, cfg.Hotkeys.Center)
		cfg.Hotkeys.Grow = derefString(hk.Grow, cfg.Hotkeys.Grow)
		cfg.Hotkeys.Shrink = derefString(hk.Shrink, cfg.Hotkeys.Shrink)
		cfg.Hotkeys.Pin = derefString(hk.Pin, cfg.Hotkeys.Pin)
	}

	return cfg
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func derefString(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

package config

import "fmt"

// Explain returns the effective value at the given YAML-like path and where
// it came from. Supported paths are the keys of the config file, e.g.
//
//	poll_interval_ms
//	fill_ratio
//	hotkeys.center
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	switch path {
	case "display":
		return cfg.Display, nil
	case "poll_interval_ms":
		return cfg.PollIntervalMs, nil
	case "stop_timeout_seconds":
		return cfg.StopTimeoutSeconds, nil
	case "fill_ratio":
		return cfg.FillRatio, nil
	case "resize_step":
		return cfg.ResizeStep, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "hotkeys":
		return cfg.Hotkeys, nil
	case "hotkeys.center":
		return cfg.Hotkeys.Center, nil
	case "hotkeys.grow":
		return cfg.Hotkeys.Grow, nil
	case "hotkeys.shrink":
		return cfg.Hotkeys.Shrink, nil
	case "hotkeys.pin":
		return cfg.Hotkeys.Pin, nil
	default:
		return nil, fmt.Errorf("unknown config path %q", path)
	}
}

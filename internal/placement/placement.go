// Package placement applies geometry targets to live windows: it reads the
// hosting monitor, computes the target, restores minimized windows and issues
// a single move+resize request.
package placement

import (
	"log/slog"

	"github.com/1broseidon/wincc/internal/geometry"
	"github.com/1broseidon/wincc/internal/platform"
	"github.com/1broseidon/wincc/internal/window"
)

// Placer centers and resizes windows. Calls are synchronous and never retried;
// every failure matches geometry.ErrGeometryQuery.
type Placer struct {
	backend platform.Placer
	logger  *slog.Logger
}

func New(backend platform.Placer, logger *slog.Logger) *Placer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Placer{backend: backend, logger: logger}
}

// MonitorFor returns the monitor currently hosting h. The result is never
// cached since windows move between monitors.
func (p *Placer) MonitorFor(h window.Handle) (geometry.Monitor, error) {
	mon, err := p.backend.WorkArea(platform.WindowID(h))
	if err != nil {
		return geometry.Monitor{}, geometry.WithWindow(uint32(h), "monitor lookup", err)
	}
	return mon, nil
}

// Center sizes h to ratio of its monitor's work area and centers it.
func (p *Placer) Center(h window.Handle, ratio float64) (geometry.Target, error) {
	mon, err := p.MonitorFor(h)
	if err != nil {
		return geometry.Target{}, err
	}
	target := geometry.CenterTarget(mon.Work, ratio)
	if err := p.apply(h, target); err != nil {
		return geometry.Target{}, err
	}
	p.logger.Debug("window centered", "window", h, "monitor", mon.Name, "target", target)
	return target, nil
}

// Resize grows h by widthDelta pixels (shrinks when negative), keeping its
// aspect ratio, and re-centers it on its monitor.
func (p *Placer) Resize(h window.Handle, widthDelta int) (geometry.Target, error) {
	mon, err := p.MonitorFor(h)
	if err != nil {
		return geometry.Target{}, err
	}
	current, err := p.backend.WindowRect(platform.WindowID(h))
	if err != nil {
		return geometry.Target{}, geometry.WithWindow(uint32(h), "window rect", err)
	}
	target, err := geometry.ResizeTarget(current, mon.Work, widthDelta)
	if err != nil {
		return geometry.Target{}, geometry.WithWindow(uint32(h), "resize", err)
	}
	if err := p.apply(h, target); err != nil {
		return geometry.Target{}, err
	}
	p.logger.Debug("window resized", "window", h, "delta", widthDelta, "target", target)
	return target, nil
}

func (p *Placer) apply(h window.Handle, target geometry.Target) error {
	id := platform.WindowID(h)

	iconic, err := p.backend.IsIconic(id)
	if err != nil {
		return geometry.WithWindow(uint32(h), "iconic state", err)
	}
	if iconic {
		if err := p.backend.Restore(id); err != nil {
			return geometry.WithWindow(uint32(h), "restore", err)
		}
	}

	if err := p.backend.MoveResize(id, target.Rect()); err != nil {
		return geometry.WithWindow(uint32(h), "move resize", err)
	}
	return nil
}

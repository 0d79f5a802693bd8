package hotkeys

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/wincc/internal/app"
	"github.com/1broseidon/wincc/internal/geometry"
	"github.com/1broseidon/wincc/internal/platform"
	"github.com/1broseidon/wincc/internal/window"
)

// Action is something a hotkey does to the active window.
type Action string

const (
	ActionCenter    Action = "center"
	ActionGrow      Action = "grow"
	ActionShrink    Action = "shrink"
	ActionTogglePin Action = "pin"
)

const actionTimeout = 5 * time.Second

// ActiveWindower reports the focused window.
type ActiveWindower interface {
	ActiveWindow() (platform.WindowID, error)
}

// Runner performs hotkey actions on the active window through the
// controller loop.
type Runner struct {
	active ActiveWindower
	loop   *app.Loop
	logger *slog.Logger
}

func NewRunner(active ActiveWindower, loop *app.Loop, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{active: active, loop: loop, logger: logger}
}

// Run performs action and logs the outcome. Failures never propagate: a
// hotkey on a window that is gone is a no-op.
func (r *Runner) Run(action Action) {
	if err := r.Do(context.Background(), action); err != nil {
		r.logger.Warn("hotkey action failed", "action", action, "error", err)
	}
}

// Do performs action and returns its error.
func (r *Runner) Do(ctx context.Context, action Action) error {
	id, err := r.active.ActiveWindow()
	if err != nil {
		return err
	}
	h := window.Handle(id)

	ctx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()

	_, err = app.Do(ctx, r.loop, func(c *app.Controller) (geometry.Target, error) {
		switch action {
		case ActionCenter:
			return c.Center(h)
		case ActionGrow:
			return c.Grow(h)
		case ActionShrink:
			return c.Shrink(h)
		case ActionTogglePin:
			pinned, err := c.TogglePin(h)
			if err == nil {
				r.logger.Info("pin toggled", "window", h, "pinned", pinned)
			}
			return geometry.Target{}, err
		default:
			return geometry.Target{}, fmt.Errorf("unknown hotkey action %q", action)
		}
	})
	return err
}

// Package hotkeys binds global key chords to actions on the active window.
package hotkeys

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/wincc/internal/config"
)

// x11Accessor is implemented by backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts. Callbacks run on the X event
// loop goroutine.
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler on the backend's X connection.
func NewHandler(backend any, logger *slog.Logger) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok || accessor.XUtil() == nil {
		return nil, fmt.Errorf("hotkeys require an X11 backend")
	}
	if logger == nil {
		logger = slog.Default()
	}
	xu := accessor.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:     xu,
		root:   accessor.RootWindow(),
		logger: logger,
	}, nil
}

// Bind replaces every binding with the chords in cfg. Empty chords are
// skipped. A chord that cannot be grabbed is logged and the rest still bind.
func (h *Handler) Bind(cfg config.HotkeyConfig, run func(Action)) error {
	keybind.Detach(h.xu, h.root)

	var failed []string
	for _, b := range bindings(cfg) {
		action := b.action
		if err := h.RegisterFunc(b.chord, func() { run(action) }); err != nil {
			h.logger.Warn("failed to bind hotkey", "action", action, "chord", b.chord, "error", err)
			failed = append(failed, b.chord)
			continue
		}
		h.logger.Debug("hotkey bound", "action", action, "chord", b.chord)
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to bind hotkeys: %v", failed)
	}
	return nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// Unbind releases every grabbed chord.
func (h *Handler) Unbind() {
	keybind.Detach(h.xu, h.root)
}

type binding struct {
	action Action
	chord  string
}

func bindings(cfg config.HotkeyConfig) []binding {
	all := []binding{
		{ActionCenter, cfg.Center},
		{ActionGrow, cfg.Grow},
		{ActionShrink, cfg.Shrink},
		{ActionTogglePin, cfg.Pin},
	}
	out := all[:0]
	for _, b := range all {
		if b.chord != "" {
			out = append(out, b)
		}
	}
	return out
}

// configureIgnoreMods makes bindings fire regardless of CapsLock, NumLock and
// ScrollLock.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	locks := []uint16{uint16(xproto.ModMaskLock)}
	for _, keysym := range []string{"Num_Lock", "Scroll_Lock"} {
		mask := modMaskForKeysym(xu, keysym)
		if mask == 0 {
			continue
		}
		dup := false
		for _, m := range locks {
			dup = dup || m == mask
		}
		if !dup {
			locks = append(locks, mask)
		}
	}

	ignore := make([]uint16, 0, 1<<len(locks))
	for subset := 0; subset < 1<<len(locks); subset++ {
		var mask uint16
		for bit, m := range locks {
			if subset&(1<<bit) != 0 {
				mask |= m
			}
		}
		ignore = append(ignore, mask)
	}
	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}

// Package window holds the identity model for discovered top-level windows
// and the per-window UI state the consumer keeps about them.
package window

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Handle is the opaque window-system identifier of a window (an X11 window id).
// It is stable for the window's lifetime and is the only identity key.
type Handle uint32

func (h Handle) String() string {
	return fmt.Sprintf("0x%08x", uint32(h))
}

// Window is one discovered top-level window. Values are built fresh on every
// discovery poll and never mutated; PID, Title, Exe and ProcessCreatedAt are
// descriptive and may drift between polls without changing identity.
type Window struct {
	PID              int32
	Handle           Handle
	Title            string
	Exe              string
	ProcessCreatedAt time.Time
}

// Key returns the value to use when a Window indexes a map or set.
func (w Window) Key() Handle {
	return w.Handle
}

// Equal reports whether w and o refer to the same window.
func (w Window) Equal(o Window) bool {
	return w.Handle == o.Handle
}

func (w Window) String() string {
	return fmt.Sprintf("%s, hwnd=%d, exe=%s", w.Title, uint32(w.Handle), w.Exe)
}

// Handles returns the identity set of ws.
func Handles(ws []Window) map[Handle]struct{} {
	set := make(map[Handle]struct{}, len(ws))
	for _, w := range ws {
		set[w.Key()] = struct{}{}
	}
	return set
}

// ParseHandle parses a handle written in decimal or 0x-prefixed hex.
func ParseHandle(s string) (Handle, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window handle %q: %w", s, err)
	}
	return Handle(v), nil
}

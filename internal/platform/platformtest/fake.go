// Package platformtest provides an in-memory platform.Backend for tests.
package platformtest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/1broseidon/wincc/internal/geometry"
	"github.com/1broseidon/wincc/internal/platform"
)

// ErrNoWindow is returned for queries against a window the fake does not know.
var ErrNoWindow = errors.New("BadWindow")

// Window is one fake top-level window.
type Window struct {
	ID      platform.WindowID
	Title   string
	PID     int32
	NoPID   bool
	Owner   platform.WindowID
	Hidden  bool
	Iconic  bool
	Bounds  geometry.Rect
	Monitor geometry.Monitor
}

// MoveResizeCall records one MoveResize request.
type MoveResizeCall struct {
	ID     platform.WindowID
	Bounds geometry.Rect
}

// Backend is a concurrency-safe fake window system.
type Backend struct {
	mu       sync.Mutex
	windows  []Window
	active   platform.WindowID
	listErr  error
	listHook func()

	Restored    []platform.WindowID
	MoveResizes []MoveResizeCall
}

var _ platform.Backend = (*Backend)(nil)

func New(windows ...Window) *Backend {
	return &Backend{windows: windows}
}

// SetWindows replaces the whole window set.
func (b *Backend) SetWindows(windows ...Window) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.windows = windows
}

// Remove destroys a window.
func (b *Backend) Remove(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.windows[:0]
	for _, w := range b.windows {
		if w.ID != id {
			out = append(out, w)
		}
	}
	b.windows = out
}

// FailList makes TopLevelWindows return err until called again with nil.
func (b *Backend) FailList(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listErr = err
}

// OnList runs fn at the start of every TopLevelWindows call, outside the lock.
func (b *Backend) OnList(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listHook = fn
}

func (b *Backend) SetActive(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = id
}

// Calls returns copies of the recorded Restore and MoveResize calls.
func (b *Backend) Calls() ([]platform.WindowID, []MoveResizeCall) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]platform.WindowID(nil), b.Restored...), append([]MoveResizeCall(nil), b.MoveResizes...)
}

func (b *Backend) TopLevelWindows() ([]platform.WindowID, error) {
	b.mu.Lock()
	hook := b.listHook
	b.mu.Unlock()
	if hook != nil {
		hook()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listErr != nil {
		return nil, b.listErr
	}
	ids := make([]platform.WindowID, len(b.windows))
	for i, w := range b.windows {
		ids[i] = w.ID
	}
	return ids, nil
}

func (b *Backend) IsVisible(id platform.WindowID) bool {
	w, ok := b.find(id)
	return ok && !w.Hidden
}

func (b *Backend) Title(id platform.WindowID) string {
	w, _ := b.find(id)
	return w.Title
}

func (b *Backend) Owner(id platform.WindowID) platform.WindowID {
	w, _ := b.find(id)
	return w.Owner
}

func (b *Backend) PID(id platform.WindowID) (int32, error) {
	w, ok := b.find(id)
	if !ok {
		return 0, ErrNoWindow
	}
	if w.NoPID {
		return 0, fmt.Errorf("_NET_WM_PID not set on window %d", id)
	}
	return w.PID, nil
}

func (b *Backend) WorkArea(id platform.WindowID) (geometry.Monitor, error) {
	w, ok := b.find(id)
	if !ok {
		return geometry.Monitor{}, ErrNoWindow
	}
	return w.Monitor, nil
}

func (b *Backend) WindowRect(id platform.WindowID) (geometry.Rect, error) {
	w, ok := b.find(id)
	if !ok {
		return geometry.Rect{}, ErrNoWindow
	}
	return w.Bounds, nil
}

func (b *Backend) IsIconic(id platform.WindowID) (bool, error) {
	w, ok := b.find(id)
	if !ok {
		return false, ErrNoWindow
	}
	return w.Iconic, nil
}

func (b *Backend) Restore(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.windows {
		if b.windows[i].ID == id {
			b.windows[i].Iconic = false
			b.Restored = append(b.Restored, id)
			return nil
		}
	}
	return ErrNoWindow
}

func (b *Backend) MoveResize(id platform.WindowID, bounds geometry.Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.windows {
		if b.windows[i].ID == id {
			b.windows[i].Bounds = bounds
			b.MoveResizes = append(b.MoveResizes, MoveResizeCall{ID: id, Bounds: bounds})
			return nil
		}
	}
	return ErrNoWindow
}

func (b *Backend) ActiveWindow() (platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == 0 {
		return 0, ErrNoWindow
	}
	return b.active, nil
}

func (b *Backend) Displays() ([]geometry.Monitor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	seen := map[int]bool{}
	var out []geometry.Monitor
	for _, w := range b.windows {
		if !seen[w.Monitor.ID] {
			seen[w.Monitor.ID] = true
			out = append(out, w.Monitor)
		}
	}
	return out, nil
}

func (b *Backend) find(id platform.WindowID) (Window, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, w := range b.windows {
		if w.ID == id {
			return w, true
		}
	}
	return Window{}, false
}

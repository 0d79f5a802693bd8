// Package app is the single consumer of discovery snapshots. It owns the
// window state store and turns user actions into geometry operations.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/1broseidon/wincc/internal/discovery"
	"github.com/1broseidon/wincc/internal/geometry"
	"github.com/1broseidon/wincc/internal/window"
)

// ErrUnknownWindow is returned for an action on a handle that is not in the
// current snapshot.
var ErrUnknownWindow = errors.New("unknown window")

// Source publishes discovery snapshots.
type Source interface {
	Snapshot() *discovery.Snapshot
}

// Placer applies geometry targets to live windows.
type Placer interface {
	Center(h window.Handle, ratio float64) (geometry.Target, error)
	Resize(h window.Handle, widthDelta int) (geometry.Target, error)
}

// Options tunes the controller's geometry actions.
type Options struct {
	FillRatio  float64
	ResizeStep int
	Logger     *slog.Logger
}

// Row is one window as rendered by a consumer.
type Row struct {
	Window   window.Window
	Selected bool
	Pinned   bool
	PinnedAt time.Time
}

// Status summarizes the controller's view.
type Status struct {
	Seq      uint64
	TakenAt  time.Time
	Windows  int
	Pinned   int
	Selected window.Handle
}

// Controller is not safe for concurrent use. Run it from one goroutine, or
// through a Loop.
type Controller struct {
	source Source
	placer Placer
	store  *window.Store
	logger *slog.Logger

	fillRatio  float64
	resizeStep int

	seq     uint64
	loaded  bool
	takenAt time.Time
	windows []window.Window
}

func NewController(source Source, placer Placer, opts Options) *Controller {
	c := &Controller{
		source: source,
		placer: placer,
		store:  window.NewStore(),
		logger: opts.Logger,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.SetOptions(opts.FillRatio, opts.ResizeStep)
	return c
}

// SetOptions replaces the fill ratio and resize step. Non-positive values
// fall back to the defaults.
func (c *Controller) SetOptions(fillRatio float64, resizeStep int) {
	if fillRatio <= 0 || fillRatio > 1 {
		fillRatio = geometry.DefaultFillRatio
	}
	if resizeStep <= 0 {
		resizeStep = geometry.DefaultResizeStep
	}
	c.fillRatio = fillRatio
	c.resizeStep = resizeStep
}

// Refresh adopts the latest snapshot and purges state for windows that are
// gone. It does nothing when the snapshot has not changed since the last
// call, and reports whether it adopted a new one.
func (c *Controller) Refresh() bool {
	snap := c.source.Snapshot()
	if snap == nil || (c.loaded && snap.Seq == c.seq) {
		return false
	}
	c.store.Purge(snap.Windows)
	c.windows = snap.Windows
	c.seq = snap.Seq
	c.takenAt = snap.TakenAt
	c.loaded = true
	return true
}

// Rows returns the current windows in enumeration order with their state.
func (c *Controller) Rows() []Row {
	rows := make([]Row, 0, len(c.windows))
	for _, w := range c.windows {
		rows = append(rows, c.row(w))
	}
	return rows
}

// Pinned returns the pinned rows, most recently pinned first.
func (c *Controller) Pinned() []Row {
	var rows []Row
	for _, w := range c.windows {
		if st, ok := c.store.Lookup(w.Key()); ok && st.Pinned() {
			rows = append(rows, c.row(w))
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PinnedAt.After(rows[j].PinnedAt)
	})
	return rows
}

func (c *Controller) Status() Status {
	st := Status{
		Seq:     c.seq,
		TakenAt: c.takenAt,
		Windows: len(c.windows),
	}
	for _, w := range c.windows {
		s, ok := c.store.Lookup(w.Key())
		if !ok {
			continue
		}
		if s.Pinned() {
			st.Pinned++
		}
		if s.Selected {
			st.Selected = w.Handle
		}
	}
	return st
}

// Window returns the current window with handle h.
func (c *Controller) Window(h window.Handle) (window.Window, error) {
	for _, w := range c.windows {
		if w.Handle == h {
			return w, nil
		}
	}
	return window.Window{}, fmt.Errorf("%w: %s", ErrUnknownWindow, h)
}

// TogglePin pins an unpinned window and unpins a pinned one. It returns the
// new pinned state.
func (c *Controller) TogglePin(h window.Handle) (bool, error) {
	st, err := c.state(h)
	if err != nil {
		return false, err
	}
	if st.Pinned() {
		st.Unpin()
	} else {
		st.Pin()
	}
	return st.Pinned(), nil
}

func (c *Controller) Pin(h window.Handle) error {
	st, err := c.state(h)
	if err != nil {
		return err
	}
	st.Pin()
	return nil
}

func (c *Controller) Unpin(h window.Handle) error {
	st, err := c.state(h)
	if err != nil {
		return err
	}
	st.Unpin()
	return nil
}

// Select marks h as the only selected window.
func (c *Controller) Select(h window.Handle) error {
	target, err := c.state(h)
	if err != nil {
		return err
	}
	for _, w := range c.windows {
		if st, ok := c.store.Lookup(w.Key()); ok {
			st.SetSelected(false)
		}
	}
	target.SetSelected(true)
	return nil
}

// Center centers h on its monitor's work area at the configured fill ratio.
func (c *Controller) Center(h window.Handle) (geometry.Target, error) {
	return c.CenterRatio(h, c.fillRatio)
}

func (c *Controller) CenterRatio(h window.Handle, ratio float64) (geometry.Target, error) {
	if _, err := c.Window(h); err != nil {
		return geometry.Target{}, geometry.WithWindow(uint32(h), "lookup", err)
	}
	target, err := c.placer.Center(h, ratio)
	if err != nil {
		c.logger.Warn("center failed", "window", h, "error", err)
		return geometry.Target{}, err
	}
	return target, nil
}

// Resize changes the width of h by widthDelta, keeping its aspect ratio. A
// handle missing from the current snapshot is a geometry query failure.
func (c *Controller) Resize(h window.Handle, widthDelta int) (geometry.Target, error) {
	if _, err := c.Window(h); err != nil {
		return geometry.Target{}, geometry.WithWindow(uint32(h), "lookup", err)
	}
	target, err := c.placer.Resize(h, widthDelta)
	if err != nil {
		c.logger.Warn("resize failed", "window", h, "delta", widthDelta, "error", err)
		return geometry.Target{}, err
	}
	return target, nil
}

func (c *Controller) Grow(h window.Handle) (geometry.Target, error) {
	return c.Resize(h, c.resizeStep)
}

func (c *Controller) Shrink(h window.Handle) (geometry.Target, error) {
	return c.Resize(h, -c.resizeStep)
}

func (c *Controller) state(h window.Handle) (*window.State, error) {
	w, err := c.Window(h)
	if err != nil {
		return nil, err
	}
	return c.store.GetOrCreate(w), nil
}

func (c *Controller) row(w window.Window) Row {
	st := c.store.GetOrCreate(w)
	at, pinned := st.PinnedAt()
	return Row{
		Window:   w,
		Selected: st.Selected,
		Pinned:   pinned,
		PinnedAt: at,
	}
}

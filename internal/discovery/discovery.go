package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync/atomic"
	"time"

	"github.com/1broseidon/wincc/internal/platform"
	"github.com/1broseidon/wincc/internal/procinfo"
	"github.com/1broseidon/wincc/internal/window"
)

// ErrEnumeration is returned when the window system cannot list top-level
// windows. The cycle fails and is retried after the next interval.
var ErrEnumeration = errors.New("window enumeration failed")

// Snapshot is one complete poll result. It is immutable once published.
type Snapshot struct {
	Seq     uint64
	TakenAt time.Time
	Windows []window.Window
}

// Config holds configuration for Discovery.
type Config struct {
	PollInterval time.Duration
	StopTimeout  time.Duration
	Logger       *slog.Logger

	// SelfPID is excluded from results. Zero means os.Getpid().
	SelfPID int32
}

// Discovery polls the window system and publishes the visible, unowned,
// titled top-level windows of other processes.
type Discovery struct {
	*Service

	enum    platform.Enumerator
	procs   procinfo.Provider
	selfPID int32
	logger  *slog.Logger

	current atomic.Pointer[Snapshot]
	seq     uint64
	updated chan struct{}
}

var _ Cycle = (*Discovery)(nil)

// New creates an Idle Discovery. Until the first poll completes the current
// snapshot is empty with Seq 0.
func New(cfg Config, enum platform.Enumerator, procs procinfo.Provider) *Discovery {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	self := cfg.SelfPID
	if self == 0 {
		self = int32(os.Getpid())
	}

	d := &Discovery{
		enum:    enum,
		procs:   procs,
		selfPID: self,
		logger:  logger,
		updated: make(chan struct{}, 1),
	}
	d.current.Store(&Snapshot{})
	d.Service = NewService(ServiceConfig{
		Name:        "window discovery",
		Interval:    cfg.PollInterval,
		StopTimeout: cfg.StopTimeout,
		Logger:      logger,
	}, d)
	return d
}

// Snapshot returns the latest published snapshot. Callers must not modify
// its Windows slice.
func (d *Discovery) Snapshot() *Snapshot {
	return d.current.Load()
}

// Current returns a copy of the latest window list.
func (d *Discovery) Current() []window.Window {
	return slices.Clone(d.current.Load().Windows)
}

// Updated receives a value after each publish. Publishes coalesce while
// nobody is reading.
func (d *Discovery) Updated() <-chan struct{} {
	return d.updated
}

// RunCycle performs one poll and publishes its result. It only ever runs on
// the service goroutine, or directly when the service is not running.
func (d *Discovery) RunCycle(ctx context.Context) error {
	ids, err := d.enum.TopLevelWindows()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEnumeration, err)
	}

	windows, err := collectWindows(ctx, ids, d.resolve)
	if err != nil {
		return err
	}

	d.seq++
	d.current.Store(&Snapshot{
		Seq:     d.seq,
		TakenAt: time.Now(),
		Windows: windows,
	})
	select {
	case d.updated <- struct{}{}:
	default:
	}

	d.logger.Debug("published window snapshot", "seq", d.seq, "windows", len(windows))
	return nil
}

// collectWindows resolves ids in enumeration order and returns the accepted
// windows. A cancelled ctx abandons the pass.
func collectWindows(ctx context.Context, ids []platform.WindowID, resolve func(context.Context, platform.WindowID) (window.Window, bool)) ([]window.Window, error) {
	out := make([]window.Window, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if w, ok := resolve(ctx, id); ok {
			out = append(out, w)
		}
	}
	// Also catches a cancellation during an empty or final pass.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Discovery) resolve(ctx context.Context, id platform.WindowID) (window.Window, bool) {
	if !d.enum.IsVisible(id) {
		return window.Window{}, false
	}
	title := d.enum.Title(id)
	if title == "" {
		return window.Window{}, false
	}
	if d.enum.Owner(id) != 0 {
		return window.Window{}, false
	}

	pid, err := d.enum.PID(id)
	if err != nil {
		d.logger.Debug("skipping window without pid", "window", window.Handle(id), "error", err)
		return window.Window{}, false
	}
	if pid == d.selfPID {
		return window.Window{}, false
	}

	info, err := d.procs.Lookup(ctx, pid)
	if err != nil {
		d.logger.Debug("skipping window", "window", window.Handle(id), "pid", pid, "error", err)
		return window.Window{}, false
	}

	return window.Window{
		PID:              pid,
		Handle:           window.Handle(id),
		Title:            title,
		Exe:              info.Exe,
		ProcessCreatedAt: info.CreatedAt,
	}, true
}

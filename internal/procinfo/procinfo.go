// Package procinfo resolves process metadata for the PID that owns a window.
package procinfo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// ErrProcessResolution matches every failure to resolve a process, typically
// because it exited between window enumeration and the lookup.
var ErrProcessResolution = errors.New("process resolution failed")

// Info is the metadata kept for a window's owning process.
type Info struct {
	PID       int32
	CreatedAt time.Time
	Exe       string
}

// Provider looks up process metadata by PID.
type Provider interface {
	Lookup(ctx context.Context, pid int32) (Info, error)
}

// Gopsutil is a Provider backed by gopsutil.
type Gopsutil struct{}

var _ Provider = Gopsutil{}

// Lookup returns the process start time and executable path. The executable
// is best effort: a process whose binary cannot be read (other users, kernel
// threads) still resolves with an empty Exe.
func (Gopsutil) Lookup(ctx context.Context, pid int32) (Info, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return Info{}, fmt.Errorf("%w: pid %d: %v", ErrProcessResolution, pid, err)
	}

	createdMs, err := p.CreateTimeWithContext(ctx)
	if err != nil {
		return Info{}, fmt.Errorf("%w: pid %d create time: %v", ErrProcessResolution, pid, err)
	}

	exe, _ := p.ExeWithContext(ctx)

	return Info{
		PID:       pid,
		CreatedAt: time.UnixMilli(createdMs),
		Exe:       exe,
	}, nil
}

package platformtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/1broseidon/wincc/internal/procinfo"
)

// Processes is an in-memory procinfo.Provider.
type Processes struct {
	mu    sync.Mutex
	procs map[int32]procinfo.Info
}

var _ procinfo.Provider = (*Processes)(nil)

func NewProcesses() *Processes {
	return &Processes{procs: make(map[int32]procinfo.Info)}
}

// Add registers a running process.
func (p *Processes) Add(pid int32, exe string, createdAt time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.procs[pid] = procinfo.Info{PID: pid, Exe: exe, CreatedAt: createdAt}
}

// Exit forgets a process, as if it exited.
func (p *Processes) Exit(pid int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.procs, pid)
}

func (p *Processes) Lookup(_ context.Context, pid int32) (procinfo.Info, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	info, ok := p.procs[pid]
	if !ok {
		return procinfo.Info{}, fmt.Errorf("%w: pid %d: process does not exist", procinfo.ErrProcessResolution, pid)
	}
	return info, nil
}

// Package discovery runs the background poll that keeps an up-to-date
// snapshot of the host's top-level windows.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrAlreadyStarted is returned by Start on a service that left Idle.
	ErrAlreadyStarted = errors.New("service already started")

	// ErrStopTimeout is returned by Stop when the worker did not exit within
	// the stop timeout. Shutdown carries on regardless.
	ErrStopTimeout = errors.New("timed out waiting for service to stop")
)

// State is the lifecycle state of a Service.
type State int32

const (
	Idle State = iota
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Cycle is the body of one poll. An error fails that cycle only.
type Cycle interface {
	RunCycle(ctx context.Context) error
}

// CycleFunc adapts a function to Cycle.
type CycleFunc func(ctx context.Context) error

func (f CycleFunc) RunCycle(ctx context.Context) error {
	return f(ctx)
}

const (
	DefaultInterval    = time.Second
	DefaultStopTimeout = 30 * time.Second
)

// ServiceConfig holds configuration for a Service.
type ServiceConfig struct {
	Name        string
	Interval    time.Duration
	StopTimeout time.Duration
	Logger      *slog.Logger
}

// Service runs one Cycle repeatedly on a dedicated goroutine:
// Idle -> Running -> Stopping -> Stopped. It is not restartable.
type Service struct {
	name        string
	cycle       Cycle
	interval    time.Duration
	stopTimeout time.Duration
	logger      *slog.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates an Idle service around cycle.
func NewService(cfg ServiceConfig, cycle Cycle) *Service {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	stopTimeout := cfg.StopTimeout
	if stopTimeout <= 0 {
		stopTimeout = DefaultStopTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	name := cfg.Name
	if name == "" {
		name = "background service"
	}

	return &Service{
		name:        name,
		cycle:       cycle,
		interval:    interval,
		stopTimeout: stopTimeout,
		logger:      logger,
		state:       Idle,
	}
}

// Start launches the worker. The worker also stops when ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle {
		return fmt.Errorf("%s: %w (state %s)", s.name, ErrAlreadyStarted, s.state)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = Running

	go s.run(ctx, s.done)
	return nil
}

// Stop requests cancellation and waits, bounded by the stop timeout, for the
// worker to exit. Stopping an Idle service moves it straight to Stopped.
func (s *Service) Stop() error {
	s.mu.Lock()
	switch s.state {
	case Idle:
		s.state = Stopped
		s.mu.Unlock()
		return nil
	case Stopped:
		s.mu.Unlock()
		return nil
	case Running:
		s.state = Stopping
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()

	timer := time.NewTimer(s.stopTimeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		s.logger.Warn("worker did not stop in time", "service", s.name, "timeout", s.stopTimeout)
		return fmt.Errorf("%s: %w after %s", s.name, ErrStopTimeout, s.stopTimeout)
	}
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the worker has exited. It is nil before Start.
func (s *Service) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Service) run(ctx context.Context, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.state = Stopped
		s.mu.Unlock()
		close(done)
	}()

	s.logger.Debug("service started", "service", s.name, "interval", s.interval)

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		s.runOnce(ctx)

		timer.Reset(s.interval)
		select {
		case <-ctx.Done():
			s.logger.Debug("service stopped", "service", s.name)
			return
		case <-timer.C:
		}
	}
}

// runOnce executes a single cycle, recovering panics so one bad pass cannot
// end the service.
func (s *Service) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("cycle panic recovered", "service", s.name, "panic", r)
		}
	}()

	if err := s.cycle.RunCycle(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("cycle failed, retrying next interval", "service", s.name, "error", err)
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrLoopStopped is returned by Submit once the loop has exited.
var ErrLoopStopped = errors.New("controller loop stopped")

type task struct {
	fn   func(*Controller)
	done chan struct{}
	// err is set when fn panicked.
	err error
}

// Loop serializes access to a Controller. Every Submit runs on the goroutine
// that called Run, after the controller has adopted the latest snapshot.
type Loop struct {
	ctrl    *Controller
	updates <-chan struct{}
	tasks   chan *task
	stopped chan struct{}
	logger  *slog.Logger
}

// NewLoop creates a loop around ctrl. A receive on updates triggers a
// Refresh; it may be nil.
func NewLoop(ctrl *Controller, updates <-chan struct{}, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		ctrl:    ctrl,
		updates: updates,
		tasks:   make(chan *task),
		stopped: make(chan struct{}),
		logger:  logger,
	}
}

// Run processes tasks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.stopped)
	l.ctrl.Refresh()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.updates:
			if l.ctrl.Refresh() {
				l.logger.Debug("adopted window snapshot", "seq", l.ctrl.seq, "windows", len(l.ctrl.windows))
			}
		case t := <-l.tasks:
			l.run(t)
		}
	}
}

func (l *Loop) run(t *task) {
	defer close(t.done)
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("controller task panic recovered", "panic", r)
			t.err = fmt.Errorf("controller task panic: %v", r)
		}
	}()
	l.ctrl.Refresh()
	t.fn(l.ctrl)
}

// Submit runs fn on the loop goroutine and waits for it to finish. A panic in
// fn is recovered and returned as an error.
func (l *Loop) Submit(ctx context.Context, fn func(*Controller)) error {
	t := &task{fn: fn, done: make(chan struct{})}
	select {
	case l.tasks <- t:
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-t.done
	return t.err
}

// Do runs fn on the loop and returns its result.
func Do[T any](ctx context.Context, l *Loop, fn func(*Controller) (T, error)) (T, error) {
	var (
		out T
		err error
	)
	if serr := l.Submit(ctx, func(c *Controller) {
		out, err = fn(c)
	}); serr != nil {
		return out, serr
	}
	return out, err
}

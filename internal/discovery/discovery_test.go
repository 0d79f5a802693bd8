package discovery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/1broseidon/wincc/internal/platform"
	"github.com/1broseidon/wincc/internal/platform/platformtest"
	"github.com/1broseidon/wincc/internal/window"
)

const selfPID = 4242

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, wins ...platformtest.Window) (*Discovery, *platformtest.Backend, *platformtest.Processes) {
	t.Helper()
	backend := platformtest.New(wins...)
	procs := platformtest.NewProcesses()
	d := New(Config{
		PollInterval: 10 * time.Millisecond,
		StopTimeout:  2 * time.Second,
		Logger:       quietLogger(),
		SelfPID:      selfPID,
	}, backend, procs)
	return d, backend, procs
}

func handles(ws []window.Window) []window.Handle {
	out := make([]window.Handle, len(ws))
	for i, w := range ws {
		out[i] = w.Handle
	}
	return out
}

func waitForSeq(t *testing.T, d *Discovery, seq uint64) *Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if snap := d.Snapshot(); snap.Seq >= seq {
			return snap
		}
		select {
		case <-d.Updated():
		case <-time.After(5 * time.Millisecond):
		case <-deadline:
			t.Fatalf("timed out waiting for snapshot seq %d", seq)
		}
	}
}

func TestRunCycle_FiltersWindows(t *testing.T) {
	created := time.Unix(1700000000, 0)
	d, _, procs := newFixture(t,
		platformtest.Window{ID: 1, Title: "editor", PID: 100},
		platformtest.Window{ID: 2, Title: "hidden", PID: 100, Hidden: true},
		platformtest.Window{ID: 3, Title: "", PID: 100},
		platformtest.Window{ID: 4, Title: "dialog", PID: 100, Owner: 1},
		platformtest.Window{ID: 5, Title: "ourselves", PID: selfPID},
		platformtest.Window{ID: 6, Title: "no pid", NoPID: true},
		platformtest.Window{ID: 7, Title: "gone", PID: 300},
		platformtest.Window{ID: 8, Title: "terminal", PID: 200, Iconic: true},
	)
	procs.Add(100, "/usr/bin/editor", created)
	procs.Add(200, "/usr/bin/term", created)
	procs.Add(selfPID, "/usr/bin/wincc", created)

	if snap := d.Snapshot(); snap == nil || snap.Seq != 0 || len(snap.Windows) != 0 {
		t.Fatalf("expected empty initial snapshot, got %+v", snap)
	}

	if err := d.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	snap := d.Snapshot()
	if snap.Seq != 1 {
		t.Fatalf("expected seq 1, got %d", snap.Seq)
	}
	got := handles(snap.Windows)
	want := []window.Handle{1, 8}
	if len(got) != len(want) {
		t.Fatalf("expected handles %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected handles %v, got %v", want, got)
		}
	}

	w := snap.Windows[0]
	if w.PID != 100 || w.Title != "editor" || w.Exe != "/usr/bin/editor" || !w.ProcessCreatedAt.Equal(created) {
		t.Fatalf("unexpected window fields: %+v", w)
	}
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	d, _, procs := newFixture(t, platformtest.Window{ID: 1, Title: "a", PID: 100})
	procs.Add(100, "a", time.Time{})
	if err := d.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	cur := d.Current()
	cur[0].Title = "mutated"
	if d.Snapshot().Windows[0].Title != "a" {
		t.Fatalf("Current must not alias the published snapshot")
	}
}

func TestRunCycle_ProcessExitSkipsWindow(t *testing.T) {
	d, _, procs := newFixture(t,
		platformtest.Window{ID: 1, Title: "a", PID: 100},
		platformtest.Window{ID: 2, Title: "b", PID: 101},
	)
	procs.Add(100, "a", time.Time{})
	procs.Add(101, "b", time.Time{})

	if err := d.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	procs.Exit(101)
	if err := d.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	got := handles(d.Snapshot().Windows)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected only handle 1 after process exit, got %v", got)
	}
}

func TestRunCycle_EnumerationFailureKeepsSnapshot(t *testing.T) {
	d, backend, procs := newFixture(t, platformtest.Window{ID: 1, Title: "a", PID: 100})
	procs.Add(100, "a", time.Time{})

	if err := d.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	before := d.Snapshot()

	backend.FailList(errors.New("connection reset"))
	err := d.RunCycle(context.Background())
	if !errors.Is(err, ErrEnumeration) {
		t.Fatalf("expected ErrEnumeration, got %v", err)
	}
	if d.Snapshot() != before {
		t.Fatalf("failed cycle must not publish")
	}

	backend.FailList(nil)
	if err := d.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle after recovery: %v", err)
	}
	if d.Snapshot().Seq != 2 {
		t.Fatalf("expected seq 2 after recovery, got %d", d.Snapshot().Seq)
	}
}

func TestRunCycle_DisappearingWindow(t *testing.T) {
	d, backend, procs := newFixture(t,
		platformtest.Window{ID: 1, Title: "a", PID: 100},
		platformtest.Window{ID: 2, Title: "b", PID: 100},
	)
	procs.Add(100, "a", time.Time{})

	if err := d.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	backend.Remove(2)
	if err := d.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	for _, w := range d.Snapshot().Windows {
		if w.Handle == 2 {
			t.Fatalf("destroyed window still present in snapshot")
		}
	}
}

func TestCollectWindows_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	resolve := func(_ context.Context, id platform.WindowID) (window.Window, bool) {
		calls++
		if calls == 1 {
			cancel()
		}
		return window.Window{Handle: window.Handle(id)}, true
	}

	out, err := collectWindows(ctx, []platform.WindowID{1, 2, 3}, resolve)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if out != nil || calls != 1 {
		t.Fatalf("expected abandoned pass after first window, got %v after %d calls", out, calls)
	}
}

func TestRunCycle_CancelledEmptyPassPublishesNothing(t *testing.T) {
	d, _, _ := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := d.RunCycle(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if snap := d.Snapshot(); snap.Seq != 0 {
		t.Fatalf("cancelled cycle published seq %d", snap.Seq)
	}
	select {
	case <-d.Updated():
		t.Fatalf("cancelled cycle must not notify")
	default:
	}

	out, err := collectWindows(ctx, nil, func(context.Context, platform.WindowID) (window.Window, bool) {
		return window.Window{}, true
	})
	if out != nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled empty pass, got %v %v", out, err)
	}
}

func TestDiscovery_ServicePublishesAndStops(t *testing.T) {
	d, backend, procs := newFixture(t, platformtest.Window{ID: 1, Title: "a", PID: 100})
	procs.Add(100, "a", time.Time{})

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := d.State(); got != Running {
		t.Fatalf("expected running, got %s", got)
	}
	waitForSeq(t, d, 1)

	backend.SetWindows(
		platformtest.Window{ID: 1, Title: "a", PID: 100},
		platformtest.Window{ID: 9, Title: "new", PID: 100},
	)
	deadline := time.After(2 * time.Second)
	for len(d.Snapshot().Windows) != 2 {
		select {
		case <-d.Updated():
		case <-deadline:
			t.Fatalf("new window never published")
		}
	}

	if err := d.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got := d.State(); got != Stopped {
		t.Fatalf("expected stopped, got %s", got)
	}
}

func TestDiscovery_StopDuringInFlightPoll(t *testing.T) {
	d, backend, procs := newFixture(t, platformtest.Window{ID: 1, Title: "a", PID: 100})
	procs.Add(100, "a", time.Time{})

	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	backend.OnList(func() {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
	})

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-entered

	stopped := make(chan error, 1)
	go func() { stopped <- d.Stop() }()

	deadline := time.After(time.Second)
	for d.State() != Stopping {
		select {
		case <-deadline:
			t.Fatalf("expected stopping while the poll is in flight, got %s", d.State())
		case <-time.After(time.Millisecond):
		}
	}
	close(release)

	select {
	case err := <-stopped:
		if err != nil {
			t.Fatalf("Stop: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("Stop did not return")
	}
	if seq := d.Snapshot().Seq; seq != 0 {
		t.Fatalf("cancelled poll must not publish, got seq %d", seq)
	}
}

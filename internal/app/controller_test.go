package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/wincc/internal/discovery"
	"github.com/1broseidon/wincc/internal/geometry"
	"github.com/1broseidon/wincc/internal/placement"
	"github.com/1broseidon/wincc/internal/platform/platformtest"
	"github.com/1broseidon/wincc/internal/window"
)

type fakeSource struct {
	snap *discovery.Snapshot
}

func (f *fakeSource) Snapshot() *discovery.Snapshot {
	return f.snap
}

func (f *fakeSource) publish(ws ...window.Window) {
	var seq uint64
	if f.snap != nil {
		seq = f.snap.Seq
	}
	f.snap = &discovery.Snapshot{Seq: seq + 1, TakenAt: time.Now(), Windows: ws}
}

var monitor = geometry.Monitor{
	Name:   "DP-1",
	Bounds: geometry.NewRect(0, 0, 1920, 1200),
	Work:   geometry.NewRect(0, 0, 1920, 1200),
}

func newTestController(t *testing.T) (*Controller, *fakeSource, *platformtest.Backend) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := platformtest.New(
		platformtest.Window{ID: 1, Title: "a", Bounds: geometry.RectFromXYWH(10, 10, 1000, 500), Monitor: monitor},
		platformtest.Window{ID: 2, Title: "b", Bounds: geometry.RectFromXYWH(50, 50, 800, 600), Monitor: monitor},
	)
	src := &fakeSource{}
	src.publish(window.Window{Handle: 1, Title: "a"}, window.Window{Handle: 2, Title: "b"})
	c := NewController(src, placement.New(backend, logger), Options{Logger: logger})
	c.Refresh()
	return c, src, backend
}

func TestController_RowsKeepEnumerationOrder(t *testing.T) {
	c, _, _ := newTestController(t)

	rows := c.Rows()
	if len(rows) != 2 || rows[0].Window.Handle != 1 || rows[1].Window.Handle != 2 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	for _, r := range rows {
		if r.Selected || r.Pinned {
			t.Fatalf("expected default state for %s", r.Window.Handle)
		}
	}
}

func TestController_RefreshOncePerSnapshot(t *testing.T) {
	c, src, _ := newTestController(t)

	if c.Refresh() {
		t.Fatalf("unchanged snapshot must not be adopted again")
	}
	src.publish(window.Window{Handle: 2, Title: "b"})
	if !c.Refresh() {
		t.Fatalf("expected new snapshot to be adopted")
	}
	if got := c.Status(); got.Seq != 2 || got.Windows != 1 {
		t.Fatalf("unexpected status %+v", got)
	}
}

func TestController_DisappearingWindow(t *testing.T) {
	c, src, backend := newTestController(t)

	if err := c.Pin(2); err != nil {
		t.Fatalf("Pin: %v", err)
	}
	if err := c.Select(1); err != nil {
		t.Fatalf("Select: %v", err)
	}

	// Window 2 is destroyed; the next poll no longer reports it.
	backend.Remove(2)
	src.publish(window.Window{Handle: 1, Title: "a"})
	c.Refresh()

	if c.store.Len() != 1 {
		t.Fatalf("expected store purged to 1 entry, got %d", c.store.Len())
	}
	if _, ok := c.store.Lookup(2); ok {
		t.Fatalf("state for destroyed window survived purge")
	}
	if st, ok := c.store.Lookup(1); !ok || !st.Selected {
		t.Fatalf("state for live window must be unchanged")
	}
	if err := c.Pin(2); !errors.Is(err, ErrUnknownWindow) {
		t.Fatalf("expected ErrUnknownWindow, got %v", err)
	}
	if _, err := c.Center(2); !errors.Is(err, geometry.ErrGeometryQuery) {
		t.Fatalf("center on purged window: expected ErrGeometryQuery, got %v", err)
	}
	if _, err := c.Shrink(2); !errors.Is(err, geometry.ErrGeometryQuery) {
		t.Fatalf("shrink on purged window: expected ErrGeometryQuery, got %v", err)
	}
}

func TestController_TogglePin(t *testing.T) {
	c, _, _ := newTestController(t)

	pinned, err := c.TogglePin(1)
	if err != nil || !pinned {
		t.Fatalf("expected pinned, got %v %v", pinned, err)
	}
	pinned, err = c.TogglePin(1)
	if err != nil || pinned {
		t.Fatalf("expected unpinned, got %v %v", pinned, err)
	}
	if _, err := c.TogglePin(42); !errors.Is(err, ErrUnknownWindow) {
		t.Fatalf("expected ErrUnknownWindow, got %v", err)
	}
}

func TestController_PinnedNewestFirst(t *testing.T) {
	c, _, _ := newTestController(t)

	if err := c.Pin(1); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if err := c.Pin(2); err != nil {
		t.Fatal(err)
	}

	rows := c.Pinned()
	if len(rows) != 2 || rows[0].Window.Handle != 2 || rows[1].Window.Handle != 1 {
		t.Fatalf("expected newest pin first, got %+v", rows)
	}

	if err := c.Unpin(2); err != nil {
		t.Fatal(err)
	}
	if rows := c.Pinned(); len(rows) != 1 || rows[0].Window.Handle != 1 {
		t.Fatalf("expected only window 1 pinned, got %+v", rows)
	}
	if got := c.Status().Pinned; got != 1 {
		t.Fatalf("expected 1 pinned in status, got %d", got)
	}
}

func TestController_SelectIsExclusive(t *testing.T) {
	c, _, _ := newTestController(t)

	if err := c.Select(1); err != nil {
		t.Fatal(err)
	}
	if err := c.Select(2); err != nil {
		t.Fatal(err)
	}
	rows := c.Rows()
	if rows[0].Selected || !rows[1].Selected {
		t.Fatalf("expected only window 2 selected, got %+v", rows)
	}
	if got := c.Status().Selected; got != 2 {
		t.Fatalf("expected status selected 2, got %s", got)
	}
}

func TestController_CenterAndResize(t *testing.T) {
	c, _, backend := newTestController(t)

	target, err := c.Center(1)
	if err != nil {
		t.Fatalf("Center: %v", err)
	}
	want := geometry.Target{Width: 1536, Height: 960, Left: 192, Top: 120}
	if target != want {
		t.Fatalf("expected %+v, got %+v", want, target)
	}

	// 1536x960 grows by the default step of 10: height delta floor(10/1.6) = 6.
	target, err = c.Grow(1)
	if err != nil {
		t.Fatalf("Grow: %v", err)
	}
	if target.Width != 1546 || target.Height != 966 {
		t.Fatalf("unexpected grow target %+v", target)
	}

	target, err = c.Shrink(1)
	if err != nil {
		t.Fatalf("Shrink: %v", err)
	}
	if target.Width != 1536 || target.Height != 959 {
		t.Fatalf("unexpected shrink target %+v", target)
	}

	_, moves := backend.Calls()
	if len(moves) != 3 {
		t.Fatalf("expected 3 move requests, got %d", len(moves))
	}
}

func TestController_CenterRatioAndOptions(t *testing.T) {
	c, _, _ := newTestController(t)

	target, err := c.CenterRatio(2, 0.5)
	if err != nil {
		t.Fatalf("CenterRatio: %v", err)
	}
	if target.Width != 960 || target.Height != 600 || target.Left != 480 || target.Top != 300 {
		t.Fatalf("unexpected target %+v", target)
	}

	c.SetOptions(1, 0)
	if c.resizeStep != geometry.DefaultResizeStep {
		t.Fatalf("expected default step, got %d", c.resizeStep)
	}
	target, err = c.Center(2)
	if err != nil {
		t.Fatal(err)
	}
	if target.Width != 1920 || target.Height != 1200 {
		t.Fatalf("expected full work area, got %+v", target)
	}
}

func TestController_GeometryErrorsAreReturned(t *testing.T) {
	c, _, backend := newTestController(t)

	if _, err := c.Center(77); !errors.Is(err, ErrUnknownWindow) || !errors.Is(err, geometry.ErrGeometryQuery) {
		t.Fatalf("expected ErrUnknownWindow and ErrGeometryQuery, got %v", err)
	}

	// Destroyed after the snapshot was taken but before the action.
	backend.Remove(1)
	_, err := c.Center(1)
	if !errors.Is(err, geometry.ErrGeometryQuery) {
		t.Fatalf("expected ErrGeometryQuery, got %v", err)
	}
	if _, err := c.Grow(1); !errors.Is(err, geometry.ErrGeometryQuery) {
		t.Fatalf("expected ErrGeometryQuery, got %v", err)
	}
	if _, moves := backend.Calls(); len(moves) != 0 {
		t.Fatalf("expected no move requests, got %d", len(moves))
	}
}

func TestLoop_SubmitAndDo(t *testing.T) {
	c, src, _ := newTestController(t)
	updates := make(chan struct{}, 1)
	loop := NewLoop(c, updates, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	pinned, err := Do(ctx, loop, func(c *Controller) (bool, error) {
		return c.TogglePin(1)
	})
	if err != nil || !pinned {
		t.Fatalf("expected pinned via loop, got %v %v", pinned, err)
	}

	src.publish(window.Window{Handle: 1, Title: "a"})
	rows, err := Do(ctx, loop, func(c *Controller) ([]Row, error) {
		return c.Rows(), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || !rows[0].Pinned {
		t.Fatalf("expected refreshed rows with pin kept, got %+v", rows)
	}

	if err := loop.Submit(ctx, func(*Controller) { panic("boom") }); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected panic reported as error, got %v", err)
	}
	target, err := Do(ctx, loop, func(c *Controller) (geometry.Target, error) {
		panic("center exploded")
	})
	if err == nil || target != (geometry.Target{}) {
		t.Fatalf("expected Do to fail on panic, got %+v %v", target, err)
	}
	if _, err := Do(ctx, loop, func(c *Controller) (int, error) { return len(c.Rows()), nil }); err != nil {
		t.Fatalf("loop must keep serving after a panic: %v", err)
	}

	cancel()
	<-done
	if err := loop.Submit(context.Background(), func(*Controller) {}); !errors.Is(err, ErrLoopStopped) {
		t.Fatalf("expected ErrLoopStopped, got %v", err)
	}
}

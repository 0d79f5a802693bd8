package placement

import (
	"errors"
	"testing"

	"github.com/1broseidon/wincc/internal/geometry"
	"github.com/1broseidon/wincc/internal/platform/platformtest"
	"github.com/1broseidon/wincc/internal/window"
)

func monitor1920x1200() geometry.Monitor {
	work := geometry.NewRect(0, 0, 1920, 1200)
	return geometry.Monitor{ID: 0, Name: "eDP-1", Bounds: work, Work: work}
}

func TestCenter_MovesToExpectedTarget(t *testing.T) {
	fake := platformtest.New(platformtest.Window{
		ID:      42,
		Title:   "editor",
		Bounds:  geometry.RectFromXYWH(10, 10, 300, 200),
		Monitor: monitor1920x1200(),
	})
	p := New(fake, nil)

	target, err := p.Center(42, geometry.DefaultFillRatio)
	if err != nil {
		t.Fatalf("center: %v", err)
	}
	want := geometry.Target{Width: 1536, Height: 960, Left: 192, Top: 120}
	if target != want {
		t.Fatalf("target = %+v, want %+v", target, want)
	}

	restored, moves := fake.Calls()
	if len(restored) != 0 {
		t.Fatalf("expected no restore for a normal window, got %v", restored)
	}
	if len(moves) != 1 {
		t.Fatalf("expected exactly one move+resize call, got %d", len(moves))
	}
	if moves[0].Bounds != want.Rect() {
		t.Fatalf("move+resize bounds = %+v, want %+v", moves[0].Bounds, want.Rect())
	}
}

func TestCenter_RestoresIconicWindowFirst(t *testing.T) {
	fake := platformtest.New(platformtest.Window{
		ID:      7,
		Iconic:  true,
		Bounds:  geometry.RectFromXYWH(0, 0, 100, 100),
		Monitor: monitor1920x1200(),
	})
	p := New(fake, nil)

	if _, err := p.Center(7, 0.5); err != nil {
		t.Fatalf("center: %v", err)
	}
	restored, moves := fake.Calls()
	if len(restored) != 1 || restored[0] != 7 {
		t.Fatalf("expected window 7 restored, got %v", restored)
	}
	if len(moves) != 1 {
		t.Fatalf("expected one move+resize, got %d", len(moves))
	}
}

func TestResize_PreservesAspect(t *testing.T) {
	fake := platformtest.New(platformtest.Window{
		ID:      9,
		Bounds:  geometry.RectFromXYWH(100, 100, 1000, 500),
		Monitor: monitor1920x1200(),
	})
	p := New(fake, nil)

	target, err := p.Resize(9, geometry.DefaultResizeStep)
	if err != nil {
		t.Fatalf("resize: %v", err)
	}
	if target.Width != 1010 || target.Height != 505 {
		t.Fatalf("expected 1010x505, got %dx%d", target.Width, target.Height)
	}

	// A second step starts from the new geometry.
	target, err = p.Resize(9, -geometry.DefaultResizeStep)
	if err != nil {
		t.Fatalf("shrink: %v", err)
	}
	if target.Width != 1000 || target.Height != 500 {
		t.Fatalf("expected 1000x500 after shrinking back, got %dx%d", target.Width, target.Height)
	}
}

func TestResize_ZeroHeightWindow(t *testing.T) {
	fake := platformtest.New(platformtest.Window{
		ID:      3,
		Bounds:  geometry.NewRect(0, 0, 100, 0),
		Monitor: monitor1920x1200(),
	})
	p := New(fake, nil)

	_, err := p.Resize(3, 10)
	if !errors.Is(err, geometry.ErrGeometryQuery) {
		t.Fatalf("expected ErrGeometryQuery, got %v", err)
	}
	if _, moves := fake.Calls(); len(moves) != 0 {
		t.Fatalf("no move must be issued for a malformed window")
	}
}

func TestGeometryOnVanishedWindow(t *testing.T) {
	fake := platformtest.New()
	p := New(fake, nil)

	for name, op := range map[string]func() error{
		"center": func() error { _, err := p.Center(window.Handle(99), 0.8); return err },
		"resize": func() error { _, err := p.Resize(window.Handle(99), 10); return err },
		"monitor": func() error { _, err := p.MonitorFor(window.Handle(99)); return err },
	} {
		err := op()
		if !errors.Is(err, geometry.ErrGeometryQuery) {
			t.Fatalf("%s: expected ErrGeometryQuery, got %v", name, err)
		}
		var qe *geometry.QueryError
		if !errors.As(err, &qe) || qe.Window != 99 {
			t.Fatalf("%s: expected QueryError for window 99, got %v", name, err)
		}
	}
}

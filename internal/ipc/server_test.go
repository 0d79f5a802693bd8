package ipc

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/1broseidon/wincc/internal/app"
	"github.com/1broseidon/wincc/internal/discovery"
	"github.com/1broseidon/wincc/internal/geometry"
	"github.com/1broseidon/wincc/internal/placement"
	"github.com/1broseidon/wincc/internal/platform/platformtest"
)

var testMonitor = geometry.Monitor{
	ID:     0,
	Name:   "DP-1",
	Bounds: geometry.NewRect(0, 0, 1920, 1200),
	Work:   geometry.NewRect(0, 0, 1920, 1200),
}

type fixture struct {
	client  *Client
	backend *platformtest.Backend
	reloads atomic.Int32
}

func startServer(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	backend := platformtest.New(
		platformtest.Window{ID: 0x100, Title: "editor", PID: 10, Bounds: geometry.RectFromXYWH(0, 0, 1000, 500), Monitor: testMonitor},
		platformtest.Window{ID: 0x200, Title: "browser", PID: 20, Bounds: geometry.RectFromXYWH(0, 0, 800, 600), Monitor: testMonitor},
	)
	procs := platformtest.NewProcesses()
	procs.Add(10, "/usr/bin/editor", time.Unix(1000, 0))
	procs.Add(20, "/usr/bin/browser", time.Unix(2000, 0))

	disc := discovery.New(discovery.Config{Logger: logger, SelfPID: 1}, backend, procs)
	if err := disc.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	ctrl := app.NewController(disc, placement.New(backend, logger), app.Options{Logger: logger})
	loop := app.NewLoop(ctrl, disc.Updated(), logger)
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)

	f := &fixture{backend: backend}
	srv, err := NewServer(ServerConfig{
		SocketPath: filepath.Join(t.TempDir(), "wincc.sock"),
		Loop:       loop,
		Displays:   backend,
		Discovery:  disc,
		Reload: func() error {
			f.reloads.Add(1)
			return nil
		},
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		srv.Stop()
		cancel()
	})

	f.client = NewClientWithSocket(srv.SocketPath())
	return f
}

func TestServer_StatusAndList(t *testing.T) {
	f := startServer(t)

	status, err := f.client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !status.DaemonRunning || status.WindowCount != 2 || status.SnapshotSeq != 1 || status.Discovery != "idle" {
		t.Fatalf("unexpected status %+v", status)
	}

	windows, err := f.client.ListWindows()
	if err != nil {
		t.Fatalf("ListWindows: %v", err)
	}
	if len(windows) != 2 || windows[0].Handle != 0x100 || windows[1].Title != "browser" {
		t.Fatalf("unexpected windows %+v", windows)
	}
	if windows[0].Exe != "/usr/bin/editor" || windows[0].Pinned || windows[0].PinnedAt != nil {
		t.Fatalf("unexpected first window %+v", windows[0])
	}
}

func TestServer_PinSelectFlow(t *testing.T) {
	f := startServer(t)

	if err := f.client.Pin(0x200); err != nil {
		t.Fatalf("Pin: %v", err)
	}
	if err := f.client.Select(0x100); err != nil {
		t.Fatalf("Select: %v", err)
	}

	windows, err := f.client.ListWindows()
	if err != nil {
		t.Fatalf("ListWindows: %v", err)
	}
	if !windows[0].Selected || windows[1].Selected {
		t.Fatalf("expected only first window selected: %+v", windows)
	}
	if !windows[1].Pinned || windows[1].PinnedAt == nil {
		t.Fatalf("expected second window pinned: %+v", windows[1])
	}

	pinned, err := f.client.TogglePin(0x200)
	if err != nil || pinned {
		t.Fatalf("expected toggle to unpin, got %v %v", pinned, err)
	}
	if err := f.client.Unpin(0x100); err != nil {
		t.Fatalf("Unpin on unpinned window: %v", err)
	}

	status, err := f.client.GetStatus()
	if err != nil {
		t.Fatal(err)
	}
	if status.PinnedCount != 0 || status.SelectedWindow != 0x100 {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestServer_GeometryCommands(t *testing.T) {
	f := startServer(t)

	target, err := f.client.Center(0x100, 0)
	if err != nil {
		t.Fatalf("Center: %v", err)
	}
	if *target != (TargetData{Left: 192, Top: 120, Width: 1536, Height: 960}) {
		t.Fatalf("unexpected center target %+v", target)
	}

	target, err = f.client.Center(0x200, 0.5)
	if err != nil {
		t.Fatalf("Center ratio: %v", err)
	}
	if target.Width != 960 || target.Height != 600 {
		t.Fatalf("unexpected ratio target %+v", target)
	}

	// 960x600 grows by the default step: floor(10/1.6) = 6.
	target, err = f.client.Grow(0x200)
	if err != nil {
		t.Fatalf("Grow: %v", err)
	}
	if target.Width != 970 || target.Height != 606 {
		t.Fatalf("unexpected grow target %+v", target)
	}

	target, err = f.client.Resize(0x200, 30)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if target.Width != 1000 {
		t.Fatalf("unexpected resize target %+v", target)
	}

	if _, err := f.client.Shrink(0x200); err != nil {
		t.Fatalf("Shrink: %v", err)
	}

	_, moves := f.backend.Calls()
	if len(moves) != 5 {
		t.Fatalf("expected 5 move requests, got %d", len(moves))
	}
}

func TestServer_Errors(t *testing.T) {
	f := startServer(t)

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{"unknown window", func() error { return f.client.Pin(0xdead) }, "unknown window"},
		{"center unknown", func() error { _, err := f.client.Center(0xdead, 0); return err }, "unknown window"},
		{"bad ratio", func() error { _, err := f.client.Center(0x100, 2); return err }, "ratio"},
		{"zero delta", func() error { _, err := f.client.Resize(0x100, 0); return err }, "delta or direction"},
		{"unknown command", func() error { _, err := f.client.sendRequest("FROB", nil); return err }, "Unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestServer_VanishedWindowReportsGeometryError(t *testing.T) {
	f := startServer(t)
	f.backend.Remove(0x100)

	_, err := f.client.Center(0x100, 0)
	if err == nil || !strings.Contains(err.Error(), "geometry: monitor lookup for window 0x100") {
		t.Fatalf("expected geometry query error, got %v", err)
	}
}

func TestServer_MonitorsAndReload(t *testing.T) {
	f := startServer(t)

	mons, err := f.client.GetMonitors()
	if err != nil {
		t.Fatalf("GetMonitors: %v", err)
	}
	if len(mons.Monitors) != 1 || mons.Monitors[0].Name != "DP-1" || mons.Monitors[0].Width != 1920 {
		t.Fatalf("unexpected monitors %+v", mons)
	}

	if err := f.client.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := f.reloads.Load(); got != 1 {
		t.Fatalf("expected 1 reload, got %d", got)
	}
}

func TestClient_NoDaemon(t *testing.T) {
	c := NewClientWithSocket(filepath.Join(t.TempDir(), "missing.sock"))
	err := c.Ping()
	if err == nil || !strings.Contains(err.Error(), "is the daemon running?") {
		t.Fatalf("expected connection error, got %v", err)
	}
}

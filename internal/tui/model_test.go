package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/wincc/internal/app"
	"github.com/1broseidon/wincc/internal/discovery"
	"github.com/1broseidon/wincc/internal/geometry"
	"github.com/1broseidon/wincc/internal/placement"
	"github.com/1broseidon/wincc/internal/platform/platformtest"
)

var mon = geometry.Monitor{Work: geometry.NewRect(0, 0, 1920, 1200)}

func newTestModel(t *testing.T) (model, *discovery.Discovery, *platformtest.Backend) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := platformtest.New(
		platformtest.Window{ID: 1, Title: "editor", PID: 10, Bounds: geometry.RectFromXYWH(0, 0, 1000, 500), Monitor: mon},
		platformtest.Window{ID: 2, Title: "browser", PID: 10, Bounds: geometry.RectFromXYWH(0, 0, 800, 600), Monitor: mon, Iconic: true},
	)
	procs := platformtest.NewProcesses()
	procs.Add(10, "/usr/bin/app", time.Time{})

	disc := discovery.New(discovery.Config{Logger: logger, SelfPID: 1}, backend, procs)
	if err := disc.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctrl := app.NewController(disc, placement.New(backend, logger), app.Options{Logger: logger})
	return newModel(ctrl, disc.Updated()), disc, backend
}

func press(m model, key string) model {
	var msg tea.KeyMsg
	switch key {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(model)
}

func TestModel_InitialRows(t *testing.T) {
	m, _, _ := newTestModel(t)
	if len(m.rows) != 2 || m.cursor != 0 {
		t.Fatalf("unexpected initial model: rows=%d cursor=%d", len(m.rows), m.cursor)
	}
	if !m.rows[0].Selected || m.rows[1].Selected {
		t.Fatalf("row under the initial cursor must be selected, got %+v", m.rows)
	}
	view := m.View()
	for _, want := range []string{"editor", "browser", "0x00000001", "/usr/bin/app", "2 windows"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModel_NavigateAndPin(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = press(m, "down")
	if m.cursor != 1 || !m.rows[1].Selected || m.rows[0].Selected {
		t.Fatalf("expected second row selected, got cursor=%d rows=%+v", m.cursor, m.rows)
	}
	m = press(m, "down")
	if m.cursor != 1 {
		t.Fatalf("cursor must clamp at the last row, got %d", m.cursor)
	}

	m = press(m, "p")
	if !m.rows[1].Pinned || m.statusErr {
		t.Fatalf("expected browser pinned, status=%q", m.status)
	}
	m = press(m, "p")
	if m.rows[1].Pinned {
		t.Fatalf("expected browser unpinned")
	}
	m = press(m, "up")
	if m.cursor != 0 {
		t.Fatalf("expected cursor 0, got %d", m.cursor)
	}
}

func TestModel_GeometryKeys(t *testing.T) {
	m, _, backend := newTestModel(t)

	m = press(m, "down")
	m = press(m, "c")
	if m.statusErr || !strings.Contains(m.status, "1536x960 at 192,120") {
		t.Fatalf("unexpected status %q", m.status)
	}
	restored, moves := backend.Calls()
	if len(restored) != 1 || restored[0] != 2 {
		t.Fatalf("expected minimized window restored, got %v", restored)
	}

	m = press(m, "+")
	m = press(m, "-")
	_, moves = backend.Calls()
	if len(moves) != 3 {
		t.Fatalf("expected 3 moves, got %d", len(moves))
	}
}

func TestModel_SnapshotPurgesBeforeRender(t *testing.T) {
	m, disc, backend := newTestModel(t)
	m = press(m, "down")
	m = press(m, "p")

	backend.Remove(2)
	if err := disc.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	next, cmd := m.Update(snapshotMsg{})
	m = next.(model)

	if len(m.rows) != 1 || m.rows[0].Window.Handle != 1 {
		t.Fatalf("expected only editor left, got %+v", m.rows)
	}
	if m.cursor != 0 {
		t.Fatalf("cursor must clamp after the selected window vanished, got %d", m.cursor)
	}
	if !m.rows[0].Selected {
		t.Fatalf("remaining window must take over the selection")
	}
	if cmd == nil {
		t.Fatalf("expected to keep waiting for snapshots")
	}
	if strings.Contains(m.View(), "browser") {
		t.Fatalf("vanished window still rendered")
	}
}

func TestModel_GeometryFailureShowsStatus(t *testing.T) {
	m, _, backend := newTestModel(t)
	backend.Remove(1)

	m = press(m, "c")
	if !m.statusErr || !strings.Contains(m.status, "geometry") {
		t.Fatalf("expected geometry error status, got %q", m.status)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Fatalf("truncate = %q", got)
	}
}

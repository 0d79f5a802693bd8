package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/wincc/internal/app"
	"github.com/1broseidon/wincc/internal/geometry"
	"github.com/1broseidon/wincc/internal/window"
)

// snapshotMsg reports that discovery published a new snapshot.
type snapshotMsg struct{}

type model struct {
	ctrl    *app.Controller
	updates <-chan struct{}

	rows   []app.Row
	cursor int

	status    string
	statusErr bool

	width  int
	height int
}

func newModel(ctrl *app.Controller, updates <-chan struct{}) model {
	m := model{ctrl: ctrl, updates: updates}
	m.refresh()
	return m
}

func waitForSnapshot(updates <-chan struct{}) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return snapshotMsg{}
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return waitForSnapshot(m.updates)
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.refresh()
		return m, waitForSnapshot(m.updates)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "p":
			m.togglePin()
		case "c":
			m.apply("centered", m.ctrl.Center)
		case "+", "=":
			m.apply("grown", m.ctrl.Grow)
		case "-":
			m.apply("shrunk", m.ctrl.Shrink)
		}
	}
	return m, nil
}

// refresh adopts the latest snapshot, purging state for vanished windows
// before anything is rendered.
func (m *model) refresh() {
	m.ctrl.Refresh()
	m.rows = m.ctrl.Rows()
	for i, r := range m.rows {
		if r.Selected {
			m.cursor = i
			return
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
	// Nothing selected yet, or the selected window vanished: the row under
	// the cursor becomes the selection.
	if len(m.rows) > 0 {
		if err := m.ctrl.Select(m.rows[m.cursor].Window.Handle); err != nil {
			m.setError(err)
			return
		}
		m.rows = m.ctrl.Rows()
	}
}

func (m *model) current() (app.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return app.Row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *model) move(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.rows)-1)
	if err := m.ctrl.Select(m.rows[m.cursor].Window.Handle); err != nil {
		m.setError(err)
		return
	}
	m.rows = m.ctrl.Rows()
}

func (m *model) togglePin() {
	row, ok := m.current()
	if !ok {
		return
	}
	pinned, err := m.ctrl.TogglePin(row.Window.Handle)
	if err != nil {
		m.setError(err)
		return
	}
	verb := "unpinned"
	if pinned {
		verb = "pinned"
	}
	m.setStatus(fmt.Sprintf("%s %s", verb, row.Window.Title))
	m.rows = m.ctrl.Rows()
}

func (m *model) apply(verb string, op func(window.Handle) (geometry.Target, error)) {
	row, ok := m.current()
	if !ok {
		return
	}
	target, err := op(row.Window.Handle)
	if err != nil {
		m.setError(err)
		return
	}
	m.setStatus(fmt.Sprintf("%s %s: %dx%d at %d,%d", verb, row.Window.Title, target.Width, target.Height, target.Left, target.Top))
}

func (m *model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

// View implements tea.Model.
func (m model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("wincc  %d windows", len(m.rows))))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(dimStyle.Render("  waiting for windows..."))
		b.WriteString("\n")
	}
	for i, r := range m.rows {
		line := renderRow(r, m.width)
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.status != "" {
		style := okStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("↑/↓ select  p pin  c center  +/- resize  q quit"))
	return b.String()
}

func renderRow(r app.Row, width int) string {
	pin := "  "
	if r.Pinned {
		pin = pinStyle.Render("* ")
	}
	meta := dimStyle.Render(fmt.Sprintf("  %s  %s", r.Window.Handle, r.Window.Exe))
	line := pin + r.Window.Title + meta
	if width > 0 && lipgloss.Width(line) > width {
		title := truncate(r.Window.Title, max(width-lipgloss.Width(pin+meta), 8))
		line = pin + title + meta
	}
	return line
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// Package tui is an interactive window list driven by in-process discovery.
package tui

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/wincc/internal/app"
)

// Run shows the window list until the user quits or ctx is cancelled. The
// bubbletea update loop is the controller's only user.
func Run(ctx context.Context, ctrl *app.Controller, updates <-chan struct{}) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newModel(ctrl, updates), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

//go:build linux

package platform

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/wincc/internal/geometry"
	"github.com/1broseidon/wincc/internal/x11"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackendFromDisplay opens a fresh X11 connection to display
// ($DISPLAY when empty).
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnectionDisplay(display)
	if err != nil {
		return nil, err
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// QuitEventLoop makes a running EventLoop return.
func (b *LinuxBackend) QuitEventLoop() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

func (b *LinuxBackend) TopLevelWindows() ([]WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	clients, err := conn.ClientList()
	if err != nil {
		return nil, err
	}
	ids := make([]WindowID, len(clients))
	for i, c := range clients {
		ids[i] = WindowID(c)
	}
	return ids, nil
}

func (b *LinuxBackend) IsVisible(windowID WindowID) bool {
	conn, err := b.connection()
	if err != nil {
		return false
	}
	return conn.IsVisible(xproto.Window(windowID))
}

func (b *LinuxBackend) Title(windowID WindowID) string {
	conn, err := b.connection()
	if err != nil {
		return ""
	}
	return conn.WindowTitle(xproto.Window(windowID))
}

func (b *LinuxBackend) Owner(windowID WindowID) WindowID {
	conn, err := b.connection()
	if err != nil {
		return 0
	}
	// Transient-for-root (group dialogs) still counts as owned.
	return WindowID(conn.TransientFor(xproto.Window(windowID)))
}

func (b *LinuxBackend) PID(windowID WindowID) (int32, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	return conn.WindowPID(xproto.Window(windowID))
}

// WorkArea returns the monitor hosting windowID with its dock-free work area.
func (b *LinuxBackend) WorkArea(windowID WindowID) (geometry.Monitor, error) {
	conn, err := b.connection()
	if err != nil {
		return geometry.Monitor{}, err
	}
	mon, err := conn.MonitorForWindow(xproto.Window(windowID))
	if err != nil {
		return geometry.Monitor{}, err
	}
	return monitorFromX11(mon), nil
}

func (b *LinuxBackend) WindowRect(windowID WindowID) (geometry.Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return geometry.Rect{}, err
	}
	x, y, w, h, err := conn.WindowRect(xproto.Window(windowID))
	if err != nil {
		return geometry.Rect{}, err
	}
	return geometry.RectFromXYWH(x, y, w, h), nil
}

func (b *LinuxBackend) IsIconic(windowID WindowID) (bool, error) {
	conn, err := b.connection()
	if err != nil {
		return false, err
	}
	return conn.IsIconic(xproto.Window(windowID))
}

func (b *LinuxBackend) Restore(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.RestoreWindow(xproto.Window(windowID))
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds geometry.Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MoveResizeWindow(
		xproto.Window(windowID),
		bounds.Left,
		bounds.Top,
		bounds.Width(),
		bounds.Height(),
	)
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// Displays returns all active displays ordered by RandR CRTC index.
func (b *LinuxBackend) Displays() ([]geometry.Monitor, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}
	out := make([]geometry.Monitor, 0, len(monitors))
	for _, m := range monitors {
		out = append(out, monitorFromX11(m))
	}
	return out, nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func monitorFromX11(m x11.Monitor) geometry.Monitor {
	return geometry.Monitor{
		ID:     m.ID,
		Name:   m.Name,
		Bounds: m.Bounds,
		Work:   m.Work,
	}
}

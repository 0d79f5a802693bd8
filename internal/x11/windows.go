package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// ClientList returns the managed top-level windows from _NET_CLIENT_LIST.
func (c *Connection) ClientList() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	return clients, nil
}

// IsVisible reports whether a window is shown to the user as an application
// window. Minimized windows count as visible; withdrawn windows and
// docks/desktops do not.
func (c *Connection) IsVisible(windowID xproto.Window) bool {
	if !c.IsNormalWindow(windowID) {
		return false
	}

	if state, err := icccm.WmStateGet(c.XUtil, windowID); err == nil {
		return state.State == icccm.StateNormal || state.State == icccm.StateIconic
	}

	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return false
	}
	return attrs.MapState == xproto.MapStateViewable
}

// WindowTitle returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// TransientFor returns the owner named by WM_TRANSIENT_FOR, or 0.
func (c *Connection) TransientFor(windowID xproto.Window) xproto.Window {
	owner, err := icccm.WmTransientForGet(c.XUtil, windowID)
	if err != nil {
		return 0
	}
	return owner
}

// WindowPID returns _NET_WM_PID.
func (c *Connection) WindowPID(windowID xproto.Window) (int32, error) {
	pid, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0, fmt.Errorf("failed to get pid for window 0x%x: %w", windowID, err)
	}
	return int32(pid), nil
}

// IsIconic reports whether a window is minimized.
func (c *Connection) IsIconic(windowID xproto.Window) (bool, error) {
	if state, err := icccm.WmStateGet(c.XUtil, windowID); err == nil && state.State == icccm.StateIconic {
		return true, nil
	}

	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		// Absent _NET_WM_STATE is normal; make sure the window still exists.
		if _, gerr := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply(); gerr != nil {
			return false, fmt.Errorf("failed to query window 0x%x: %w", windowID, gerr)
		}
		return false, nil
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_HIDDEN" {
			return true, nil
		}
	}
	return false, nil
}

// WindowRect returns a window's client area in root coordinates.
func (c *Connection) WindowRect(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to get geometry: %w", err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to translate coordinates: %w", err)
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

// MoveResizeWindow moves and resizes a window to the specified geometry in a
// single request.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// A maximized window ignores geometry requests on most window managers.
	_ = c.unmaximizeWindow(windowID)

	// Use EWMH MoveResize for better WM compatibility
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// Fallback to a direct ConfigureWindow, still a single request.
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}

	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" || state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state); err != nil {
				return err
			}
		}
	}
	return nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

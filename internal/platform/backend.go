package platform

import "github.com/1broseidon/wincc/internal/geometry"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Enumerator lists top-level windows and answers the per-window questions
// discovery filters on.
type Enumerator interface {
	// TopLevelWindows returns every managed top-level window in stacking
	// order as reported by the window manager.
	TopLevelWindows() ([]WindowID, error)
	IsVisible(windowID WindowID) bool
	Title(windowID WindowID) string
	// Owner returns the window windowID is transient for, or 0.
	Owner(windowID WindowID) WindowID
	PID(windowID WindowID) (int32, error)
}

// Placer reads and changes window placement.
type Placer interface {
	// WorkArea returns the monitor currently hosting windowID, with its work
	// area excluding panels and docks.
	WorkArea(windowID WindowID) (geometry.Monitor, error)
	WindowRect(windowID WindowID) (geometry.Rect, error)
	IsIconic(windowID WindowID) (bool, error)
	Restore(windowID WindowID) error
	// MoveResize applies position and size in one request.
	MoveResize(windowID WindowID, bounds geometry.Rect) error
	ActiveWindow() (WindowID, error)
}

// Backend abstracts the host window system.
type Backend interface {
	Enumerator
	Placer
	Displays() ([]geometry.Monitor, error)
}

package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/wincc/internal/geometry"
)

// Monitor is one active RandR CRTC.
type Monitor struct {
	ID     int
	Name   string
	Bounds geometry.Rect
	// Work is Bounds minus the space reserved by docks and panels.
	Work geometry.Rect
}

// GetMonitors retrieves all active monitors using XRandR. Work equals Bounds;
// MonitorForWindow narrows it.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTC.
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(outputInfo.Name)
		}

		bounds := geometry.RectFromXYWH(int(crtcInfo.X), int(crtcInfo.Y), int(crtcInfo.Width), int(crtcInfo.Height))
		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			Bounds: bounds,
			Work:   bounds,
		})
	}

	return monitors, nil
}

// MonitorForWindow returns the monitor hosting the center of windowID with its
// work area filled in. A window whose center lies off every monitor gets the
// monitor it overlaps most, then the first monitor.
func (c *Connection) MonitorForWindow(windowID xproto.Window) (Monitor, error) {
	x, y, width, height, err := c.WindowRect(windowID)
	if err != nil {
		return Monitor{}, err
	}
	win := geometry.RectFromXYWH(x, y, width, height)

	monitors, err := c.GetMonitors()
	if err != nil {
		return Monitor{}, err
	}
	if len(monitors) == 0 {
		return Monitor{}, fmt.Errorf("no monitors found")
	}

	mon, ok := pickMonitor(monitors, win)
	if !ok {
		mon = monitors[0]
	}
	mon.Work = c.workArea(mon.Bounds)
	return mon, nil
}

func pickMonitor(monitors []Monitor, win geometry.Rect) (Monitor, bool) {
	cx, cy := win.Center()
	for _, mon := range monitors {
		if mon.Bounds.Contains(cx, cy) {
			return mon, true
		}
	}

	var best Monitor
	bestArea := 0
	for _, mon := range monitors {
		isect, ok := mon.Bounds.Intersect(win)
		if !ok {
			continue
		}
		if area := isect.Width() * isect.Height(); area > bestArea {
			best, bestArea = mon, area
		}
	}
	return best, bestArea > 0
}

// workArea excludes dock struts from bounds, falling back to the
// intersection with _NET_WORKAREA for the current desktop.
func (c *Connection) workArea(bounds geometry.Rect) geometry.Rect {
	if work, ok := c.strutWorkArea(bounds); ok {
		return work
	}

	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return bounds
	}
	desktop := 0
	if current, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(current) < len(areas) {
		desktop = int(current)
	}
	wa := areas[desktop]

	if isect, ok := bounds.Intersect(geometry.RectFromXYWH(int(wa.X), int(wa.Y), int(wa.Width), int(wa.Height))); ok {
		return isect
	}
	return bounds
}

type struts struct {
	left, right, top, bottom int
}

// strutWorkArea subtracts the struts of every dock overlapping bounds. It
// reports false when no dock reserves space on this monitor.
func (c *Connection) strutWorkArea(bounds geometry.Rect) (geometry.Rect, bool) {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return bounds, false
	}
	root := geometry.RectFromXYWH(0, 0, int(rootGeom.Width), int(rootGeom.Height))

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return bounds, false
	}

	var acc struts
	for _, windowID := range clients {
		if !c.isDock(windowID) {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			acc.add(bounds, root, sp)
			continue
		}
		// Some docks only set _NET_WM_STRUT; it spans the full root edge.
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			acc.add(bounds, root, &ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftEndY:   uint(root.Bottom - 1),
				RightEndY:  uint(root.Bottom - 1),
				TopEndX:    uint(root.Right - 1),
				BottomEndX: uint(root.Right - 1),
			})
		}
	}

	if acc == (struts{}) {
		return bounds, false
	}

	work := geometry.Rect{
		Left:   bounds.Left + acc.left,
		Top:    bounds.Top + acc.top,
		Right:  bounds.Right - acc.right,
		Bottom: bounds.Bottom - acc.bottom,
	}
	if work.Width() < 1 {
		work.Right = work.Left + 1
	}
	if work.Height() < 1 {
		work.Bottom = work.Top + 1
	}
	return work, true
}

func (c *Connection) isDock(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

// add records how far each reserved root-edge band reaches into mon.
func (s *struts) add(mon, root geometry.Rect, sp *ewmh.WmStrutPartial) {
	if sp.Top > 0 {
		band := geometry.NewRect(int(sp.TopStartX), 0, int(sp.TopEndX)+1, int(sp.Top))
		if isect, ok := mon.Intersect(band); ok {
			s.top = max(s.top, isect.Height())
		}
	}
	if sp.Bottom > 0 {
		band := geometry.NewRect(int(sp.BottomStartX), root.Bottom-int(sp.Bottom), int(sp.BottomEndX)+1, root.Bottom)
		if isect, ok := mon.Intersect(band); ok {
			s.bottom = max(s.bottom, isect.Height())
		}
	}
	if sp.Left > 0 {
		band := geometry.NewRect(0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY)+1)
		if isect, ok := mon.Intersect(band); ok {
			s.left = max(s.left, isect.Width())
		}
	}
	if sp.Right > 0 {
		band := geometry.NewRect(root.Right-int(sp.Right), int(sp.RightStartY), root.Right, int(sp.RightEndY)+1)
		if isect, ok := mon.Intersect(band); ok {
			s.right = max(s.right, isect.Width())
		}
	}
}

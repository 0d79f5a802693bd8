package geometry

import "math"

// Rect is an axis-aligned rectangle in screen coordinates.
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Corners is satisfied by any value that exposes the four rectangle edges.
type Corners interface {
	Edges() (left, top, right, bottom int)
}

// NewRect builds a Rect from its four edges.
func NewRect(left, top, right, bottom int) Rect {
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// RectFromXYWH converts an origin plus size (the X11 geometry shape) into a Rect.
func RectFromXYWH(x, y, width, height int) Rect {
	return Rect{Left: x, Top: y, Right: x + width, Bottom: y + height}
}

// RectFrom builds a Rect from anything exposing its edges.
func RectFrom(c Corners) Rect {
	l, t, r, b := c.Edges()
	return NewRect(l, t, r, b)
}

// Edges implements Corners.
func (r Rect) Edges() (left, top, right, bottom int) {
	return r.Left, r.Top, r.Right, r.Bottom
}

func (r Rect) Width() int {
	return r.Right - r.Left
}

func (r Rect) Height() int {
	return r.Bottom - r.Top
}

// AspectRatio returns width/height. A zero height yields ErrGeometryQuery.
func (r Rect) AspectRatio() (float64, error) {
	if r.Height() == 0 {
		return 0, &QueryError{Op: "aspect ratio", Err: errZeroHeight}
	}
	return float64(r.Width()) / float64(r.Height()), nil
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (x, y int) {
	return r.Left + r.Width()/2, r.Top + r.Height()/2
}

// Intersect returns the overlap of r and o, and false when they do not overlap.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	out := Rect{
		Left:   max(r.Left, o.Left),
		Top:    max(r.Top, o.Top),
		Right:  min(r.Right, o.Right),
		Bottom: min(r.Bottom, o.Bottom),
	}
	if out.Right <= out.Left || out.Bottom <= out.Top {
		return Rect{}, false
	}
	return out, true
}

// Monitor is the usable work area of the monitor hosting a window.
type Monitor struct {
	ID     int
	Name   string
	Bounds Rect
	Work   Rect
}

// DefaultFillRatio is the share of the work area a centered window fills.
const DefaultFillRatio = 0.8

// DefaultResizeStep is the width delta callers use for one grow/shrink step.
const DefaultResizeStep = 10

// Target is the computed size and top-left position for a window.
type Target struct {
	Width  int
	Height int
	Left   int
	Top    int
}

// Rect returns the target as screen edges.
func (t Target) Rect() Rect {
	return RectFromXYWH(t.Left, t.Top, t.Width, t.Height)
}

// CenterTarget sizes a window to ratio of the work area and centers it.
func CenterTarget(work Rect, ratio float64) Target {
	width := int(float64(work.Width()) * ratio)
	height := int(float64(work.Height()) * ratio)
	return centerIn(work, width, height)
}

// ResizeTarget grows (or shrinks, for a negative delta) current by widthDelta
// while keeping its aspect ratio, then centers the result in work.
func ResizeTarget(current, work Rect, widthDelta int) (Target, error) {
	ratio, err := current.AspectRatio()
	if err != nil {
		return Target{}, err
	}
	heightDelta := int(math.Floor(float64(widthDelta) / ratio))
	return centerIn(work, current.Width()+widthDelta, current.Height()+heightDelta), nil
}

// centerIn leaves even gaps on the left and top; truncation may bias the
// result up to one pixel toward the top-left.
func centerIn(work Rect, width, height int) Target {
	return Target{
		Width:  width,
		Height: height,
		Left:   work.Left + (work.Width()-width)/2,
		Top:    work.Top + (work.Height()-height)/2,
	}
}

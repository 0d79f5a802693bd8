package mcp

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	PinnedOnly bool `json:"pinned_only,omitempty" jsonschema:"Only return pinned windows, most recently pinned first"`
}

// WindowSummary describes one discovered window.
type WindowSummary struct {
	Handle   string `json:"handle"`
	Title    string `json:"title"`
	PID      int32  `json:"pid"`
	Exe      string `json:"exe,omitempty"`
	Selected bool   `json:"selected"`
	Pinned   bool   `json:"pinned"`
	PinnedAt string `json:"pinned_at,omitempty" jsonschema:"RFC 3339 time the window was pinned"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowSummary `json:"windows"`
}

// CenterWindowInput is the input for the center_window tool.
type CenterWindowInput struct {
	Window string  `json:"window" jsonschema:"Window handle from list_windows (hex like 0x01400003 or decimal)"`
	Ratio  float64 `json:"ratio,omitempty" jsonschema:"Fraction of the work area to fill, in (0, 1]. Default: the daemon's fill_ratio (0.8)"`
}

// ResizeWindowInput is the input for the resize_window tool.
type ResizeWindowInput struct {
	Window    string `json:"window" jsonschema:"Window handle from list_windows"`
	Delta     int    `json:"delta,omitempty" jsonschema:"Width change in pixels; negative shrinks"`
	Direction string `json:"direction,omitempty" jsonschema:"grow or shrink by the configured resize_step; ignored when delta is set"`
}

// GeometryOutput is the placement a window was moved to.
type GeometryOutput struct {
	Handle string `json:"handle"`
	Left   int    `json:"left"`
	Top    int    `json:"top"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// WindowInput addresses one window.
type WindowInput struct {
	Window string `json:"window" jsonschema:"Window handle from list_windows"`
}

// PinOutput is the output for pin_window and unpin_window.
type PinOutput struct {
	Handle string `json:"handle"`
	Pinned bool   `json:"pinned"`
}

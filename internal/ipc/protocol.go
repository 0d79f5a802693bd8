package ipc

import (
	"encoding/json"
	"fmt"
	"time"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload      CommandType = "RELOAD"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandGetMonitors CommandType = "GET_MONITORS"
	CommandListWindows CommandType = "LIST_WINDOWS"
	CommandCenter      CommandType = "CENTER"
	CommandResize      CommandType = "RESIZE"
	CommandPin         CommandType = "PIN"
	CommandUnpin       CommandType = "UNPIN"
	CommandTogglePin   CommandType = "TOGGLE_PIN"
	CommandSelect      CommandType = "SELECT"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Discovery      string    `json:"discovery"`
	SnapshotSeq    uint64    `json:"snapshot_seq"`
	SnapshotTaken  time.Time `json:"snapshot_taken"`
	WindowCount    int       `json:"window_count"`
	PinnedCount    int       `json:"pinned_count"`
	SelectedWindow uint32    `json:"selected_window,omitempty"`
	UptimeSeconds  int64     `json:"uptime_seconds"`
	DaemonRunning  bool      `json:"daemon_running"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// WindowInfo is one row of LIST_WINDOWS.
type WindowInfo struct {
	Handle           uint32     `json:"handle"`
	PID              int32      `json:"pid"`
	Title            string     `json:"title"`
	Exe              string     `json:"exe,omitempty"`
	ProcessCreatedAt time.Time  `json:"process_created_at"`
	Selected         bool       `json:"selected"`
	Pinned           bool       `json:"pinned"`
	PinnedAt         *time.Time `json:"pinned_at,omitempty"`
}

type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// WindowPayload addresses a single window. Ratio is only read by CENTER;
// zero means the configured fill ratio.
type WindowPayload struct {
	Window uint32  `json:"window"`
	Ratio  float64 `json:"ratio,omitempty"`
}

// ResizeDirection selects the configured step instead of an explicit delta.
type ResizeDirection string

const (
	ResizeGrow   ResizeDirection = "grow"
	ResizeShrink ResizeDirection = "shrink"
)

type ResizePayload struct {
	Window    uint32          `json:"window"`
	Delta     int             `json:"delta,omitempty"`
	Direction ResizeDirection `json:"direction,omitempty"`
}

// TargetData is the geometry a window was moved to.
type TargetData struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type PinData struct {
	Pinned bool `json:"pinned"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

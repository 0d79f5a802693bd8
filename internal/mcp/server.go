// Package mcp exposes the daemon's window operations as MCP tools.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/wincc/internal/ipc"
)

const (
	ServerName    = "wincc"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools call.
type Daemon interface {
	ListWindows() ([]ipc.WindowInfo, error)
	Center(handle uint32, ratio float64) (*ipc.TargetData, error)
	Resize(handle uint32, delta int) (*ipc.TargetData, error)
	Grow(handle uint32) (*ipc.TargetData, error)
	Shrink(handle uint32) (*ipc.TargetData, error)
	Pin(handle uint32) error
	Unpin(handle uint32) error
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server for window control. Every tool forwards to the
// running daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		daemon: daemon,
		logger: logger,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List the visible top-level windows the wincc daemon has discovered, in window-manager order, with their pin and selection state. Window handles are returned as hex strings for use with the other tools.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "center_window",
		Description: "Resize a window to a fraction of its monitor's work area and center it. Minimized windows are restored first.",
	}, s.handleCenterWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_window",
		Description: "Grow or shrink a window by a width delta in pixels, keeping its aspect ratio, and re-center it on its monitor. Pass either delta or direction (grow|shrink uses the configured step).",
	}, s.handleResizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "pin_window",
		Description: "Pin a window. Pinned windows are listed first by most recent pin.",
	}, s.handlePinWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "unpin_window",
		Description: "Clear a window's pin.",
	}, s.handleUnpinWindow)
}

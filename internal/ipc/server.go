package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/wincc/internal/app"
	"github.com/1broseidon/wincc/internal/discovery"
	"github.com/1broseidon/wincc/internal/geometry"
	"github.com/1broseidon/wincc/internal/runtimepath"
	"github.com/1broseidon/wincc/internal/window"
)

const requestTimeout = 5 * time.Second

// DisplayLister reports the active monitors.
type DisplayLister interface {
	Displays() ([]geometry.Monitor, error)
}

// StateReporter reports the discovery service state.
type StateReporter interface {
	State() discovery.State
}

// ServerConfig wires the server to the daemon. SocketPath defaults to
// runtimepath.SocketPath(). Reload may be nil.
type ServerConfig struct {
	SocketPath string
	Loop       *app.Loop
	Displays   DisplayLister
	Discovery  StateReporter
	Reload     func() error
	Logger     *slog.Logger
}

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	listener   net.Listener
	loop       *app.Loop
	displays   DisplayLister
	discovery  StateReporter
	reload     func() error
	logger     *slog.Logger
	startTime  time.Time

	shuttingDown bool
	shutdownMu   sync.Mutex
	conns        sync.WaitGroup
}

// NewServer creates a new IPC server
func NewServer(cfg ServerConfig) (*Server, error) {
	socketPath := cfg.SocketPath
	if socketPath == "" {
		p, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = p
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Remove a stale socket from a previous run.
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		loop:       cfg.Loop,
		displays:   cfg.Displays,
		discovery:  cfg.Discovery,
		reload:     cfg.Reload,
		logger:     logger,
		startTime:  time.Now(),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			closing := s.shuttingDown
			s.shutdownMu.Unlock()
			if closing {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection serves one newline-terminated JSON request.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(requestTimeout))

	data, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	s.send(conn, s.handleCommand(ctx, req))
}

func (s *Server) send(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Warn("failed to send IPC response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)

	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus(ctx)
	case CommandGetMonitors:
		return s.handleGetMonitors()
	case CommandListWindows:
		return s.handleListWindows(ctx)
	case CommandCenter:
		return s.handleCenter(ctx, req.Payload)
	case CommandResize:
		return s.handleResize(ctx, req.Payload)
	case CommandPin, CommandUnpin, CommandTogglePin, CommandSelect:
		return s.handleState(ctx, req.Command, req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleReload() *Response {
	if s.reload == nil {
		return NewErrorResponse("reload is not supported")
	}
	if err := s.reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	s.logger.Info("config reloaded over IPC")
	return okResponse(nil)
}

func (s *Server) handleGetStatus(ctx context.Context) *Response {
	st, err := app.Do(ctx, s.loop, func(c *app.Controller) (app.Status, error) {
		return c.Status(), nil
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
	}

	status := StatusData{
		SnapshotSeq:    st.Seq,
		SnapshotTaken:  st.TakenAt,
		WindowCount:    st.Windows,
		PinnedCount:    st.Pinned,
		SelectedWindow: uint32(st.Selected),
		UptimeSeconds:  int64(time.Since(s.startTime).Seconds()),
		DaemonRunning:  true,
	}
	if s.discovery != nil {
		status.Discovery = s.discovery.State().String()
	}
	return okResponse(status)
}

func (s *Server) handleGetMonitors() *Response {
	if s.displays == nil {
		return NewErrorResponse("monitor listing is not supported")
	}
	displays, err := s.displays.Displays()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get monitors: %v", err))
	}

	infos := make([]MonitorInfo, len(displays))
	for i, d := range displays {
		infos[i] = MonitorInfo{
			ID:     d.ID,
			Name:   d.Name,
			X:      d.Bounds.Left,
			Y:      d.Bounds.Top,
			Width:  d.Bounds.Width(),
			Height: d.Bounds.Height(),
		}
	}
	return okResponse(MonitorsData{Monitors: infos})
}

func (s *Server) handleListWindows(ctx context.Context) *Response {
	rows, err := app.Do(ctx, s.loop, func(c *app.Controller) ([]app.Row, error) {
		return c.Rows(), nil
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to list windows: %v", err))
	}

	infos := make([]WindowInfo, len(rows))
	for i, r := range rows {
		infos[i] = windowInfo(r)
	}
	return okResponse(WindowsData{Windows: infos})
}

func (s *Server) handleCenter(ctx context.Context, payload json.RawMessage) *Response {
	var req WindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid center payload: %v", err))
	}
	if req.Ratio < 0 || req.Ratio > 1 {
		return NewErrorResponse("ratio must be in (0, 1]")
	}

	h := window.Handle(req.Window)
	target, err := app.Do(ctx, s.loop, func(c *app.Controller) (geometry.Target, error) {
		if req.Ratio == 0 {
			return c.Center(h)
		}
		return c.CenterRatio(h, req.Ratio)
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to center window: %v", err))
	}
	return okResponse(targetData(target))
}

func (s *Server) handleResize(ctx context.Context, payload json.RawMessage) *Response {
	var req ResizePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid resize payload: %v", err))
	}

	h := window.Handle(req.Window)
	var op func(*app.Controller) (geometry.Target, error)
	switch {
	case req.Direction == ResizeGrow:
		op = func(c *app.Controller) (geometry.Target, error) { return c.Grow(h) }
	case req.Direction == ResizeShrink:
		op = func(c *app.Controller) (geometry.Target, error) { return c.Shrink(h) }
	case req.Direction != "":
		return NewErrorResponse(fmt.Sprintf("Unknown resize direction: %s", req.Direction))
	case req.Delta == 0:
		return NewErrorResponse("delta or direction is required")
	default:
		op = func(c *app.Controller) (geometry.Target, error) { return c.Resize(h, req.Delta) }
	}

	target, err := app.Do(ctx, s.loop, op)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to resize window: %v", err))
	}
	return okResponse(targetData(target))
}

func (s *Server) handleState(ctx context.Context, cmd CommandType, payload json.RawMessage) *Response {
	var req WindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid %s payload: %v", cmd, err))
	}

	h := window.Handle(req.Window)
	pinned, err := app.Do(ctx, s.loop, func(c *app.Controller) (bool, error) {
		switch cmd {
		case CommandPin:
			return true, c.Pin(h)
		case CommandUnpin:
			return false, c.Unpin(h)
		case CommandTogglePin:
			return c.TogglePin(h)
		default:
			return false, c.Select(h)
		}
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to %s window: %v", cmd, err))
	}
	if cmd == CommandSelect {
		return okResponse(nil)
	}
	return okResponse(PinData{Pinned: pinned})
}

// Stop closes the listener, waits for in-flight requests, and removes the
// socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()
	os.Remove(s.socketPath)
}

func okResponse(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func windowInfo(r app.Row) WindowInfo {
	info := WindowInfo{
		Handle:           uint32(r.Window.Handle),
		PID:              r.Window.PID,
		Title:            r.Window.Title,
		Exe:              r.Window.Exe,
		ProcessCreatedAt: r.Window.ProcessCreatedAt,
		Selected:         r.Selected,
		Pinned:           r.Pinned,
	}
	if r.Pinned {
		at := r.PinnedAt
		info.PinnedAt = &at
	}
	return info
}

func targetData(t geometry.Target) TargetData {
	return TargetData{Left: t.Left, Top: t.Top, Width: t.Width, Height: t.Height}
}

package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/wincc/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default daemon socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithSocket(socketPath)
}

func NewClientWithSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(cmd CommandType, payload interface{}) (*Response, error) {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	respData, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

// call sends a request and decodes the response data into out when non-nil.
func (c *Client) call(cmd CommandType, payload interface{}, out interface{}) error {
	resp, err := c.sendRequest(cmd, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Reload asks the daemon to re-read its config file.
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetMonitors retrieves monitor information
func (c *Client) GetMonitors() (*MonitorsData, error) {
	var monitors MonitorsData
	if err := c.call(CommandGetMonitors, nil, &monitors); err != nil {
		return nil, err
	}
	return &monitors, nil
}

// ListWindows returns the daemon's current windows in enumeration order.
func (c *Client) ListWindows() ([]WindowInfo, error) {
	var data WindowsData
	if err := c.call(CommandListWindows, nil, &data); err != nil {
		return nil, err
	}
	return data.Windows, nil
}

// Center centers a window on its monitor. A zero ratio uses the daemon's
// configured fill ratio.
func (c *Client) Center(handle uint32, ratio float64) (*TargetData, error) {
	var target TargetData
	if err := c.call(CommandCenter, WindowPayload{Window: handle, Ratio: ratio}, &target); err != nil {
		return nil, err
	}
	return &target, nil
}

// Resize changes a window's width by delta pixels, keeping its aspect ratio.
func (c *Client) Resize(handle uint32, delta int) (*TargetData, error) {
	return c.resize(ResizePayload{Window: handle, Delta: delta})
}

// Grow resizes by the daemon's configured step.
func (c *Client) Grow(handle uint32) (*TargetData, error) {
	return c.resize(ResizePayload{Window: handle, Direction: ResizeGrow})
}

func (c *Client) Shrink(handle uint32) (*TargetData, error) {
	return c.resize(ResizePayload{Window: handle, Direction: ResizeShrink})
}

func (c *Client) resize(payload ResizePayload) (*TargetData, error) {
	var target TargetData
	if err := c.call(CommandResize, payload, &target); err != nil {
		return nil, err
	}
	return &target, nil
}

func (c *Client) Pin(handle uint32) error {
	return c.call(CommandPin, WindowPayload{Window: handle}, nil)
}

func (c *Client) Unpin(handle uint32) error {
	return c.call(CommandUnpin, WindowPayload{Window: handle}, nil)
}

// TogglePin flips the pin state and returns the new one.
func (c *Client) TogglePin(handle uint32) (bool, error) {
	var data PinData
	if err := c.call(CommandTogglePin, WindowPayload{Window: handle}, &data); err != nil {
		return false, err
	}
	return data.Pinned, nil
}

func (c *Client) Select(handle uint32) error {
	return c.call(CommandSelect, WindowPayload{Window: handle}, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}

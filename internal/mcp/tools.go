package mcp

import (
	"context"
	"fmt"
	"sort"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/wincc/internal/ipc"
	"github.com/1broseidon/wincc/internal/window"
)

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	infos, err := s.daemon.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}

	if args.PinnedOnly {
		pinned := make([]ipc.WindowInfo, 0, len(infos))
		for _, info := range infos {
			if info.Pinned && info.PinnedAt != nil {
				pinned = append(pinned, info)
			}
		}
		sort.SliceStable(pinned, func(i, j int) bool {
			return pinned[i].PinnedAt.After(*pinned[j].PinnedAt)
		})
		infos = pinned
	}

	out := make([]WindowSummary, 0, len(infos))
	for _, info := range infos {
		summary := WindowSummary{
			Handle:   window.Handle(info.Handle).String(),
			Title:    info.Title,
			PID:      info.PID,
			Exe:      info.Exe,
			Selected: info.Selected,
			Pinned:   info.Pinned,
		}
		if info.PinnedAt != nil {
			summary.PinnedAt = info.PinnedAt.Format(time.RFC3339)
		}
		out = append(out, summary)
	}

	s.logger.Debug("mcp list_windows", "count", len(out), "pinned_only", args.PinnedOnly)
	return nil, ListWindowsOutput{Windows: out}, nil
}

func (s *Server) handleCenterWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CenterWindowInput) (*mcpsdk.CallToolResult, GeometryOutput, error) {
	h, err := window.ParseHandle(args.Window)
	if err != nil {
		return nil, GeometryOutput{}, err
	}
	if args.Ratio < 0 || args.Ratio > 1 {
		return nil, GeometryOutput{}, fmt.Errorf("ratio must be in (0, 1], got %v", args.Ratio)
	}

	target, err := s.daemon.Center(uint32(h), args.Ratio)
	if err != nil {
		return nil, GeometryOutput{}, err
	}
	return nil, geometryOutput(h, target), nil
}

func (s *Server) handleResizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ResizeWindowInput) (*mcpsdk.CallToolResult, GeometryOutput, error) {
	h, err := window.ParseHandle(args.Window)
	if err != nil {
		return nil, GeometryOutput{}, err
	}

	var target *ipc.TargetData
	switch {
	case args.Delta != 0:
		target, err = s.daemon.Resize(uint32(h), args.Delta)
	case args.Direction == string(ipc.ResizeGrow):
		target, err = s.daemon.Grow(uint32(h))
	case args.Direction == string(ipc.ResizeShrink):
		target, err = s.daemon.Shrink(uint32(h))
	default:
		return nil, GeometryOutput{}, fmt.Errorf("resize_window needs a non-zero delta or direction grow|shrink")
	}
	if err != nil {
		return nil, GeometryOutput{}, err
	}
	return nil, geometryOutput(h, target), nil
}

func (s *Server) handlePinWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, PinOutput, error) {
	h, err := window.ParseHandle(args.Window)
	if err != nil {
		return nil, PinOutput{}, err
	}
	if err := s.daemon.Pin(uint32(h)); err != nil {
		return nil, PinOutput{}, err
	}
	return nil, PinOutput{Handle: h.String(), Pinned: true}, nil
}

func (s *Server) handleUnpinWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, PinOutput, error) {
	h, err := window.ParseHandle(args.Window)
	if err != nil {
		return nil, PinOutput{}, err
	}
	if err := s.daemon.Unpin(uint32(h)); err != nil {
		return nil, PinOutput{}, err
	}
	return nil, PinOutput{Handle: h.String(), Pinned: false}, nil
}

func geometryOutput(h window.Handle, t *ipc.TargetData) GeometryOutput {
	return GeometryOutput{
		Handle: h.String(),
		Left:   t.Left,
		Top:    t.Top,
		Width:  t.Width,
		Height: t.Height,
	}
}

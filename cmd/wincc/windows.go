package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/1broseidon/wincc/internal/ipc"
	"github.com/1broseidon/wincc/internal/window"
)

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wincc status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running:  %v\n", status.DaemonRunning)
	fmt.Printf("discovery:       %s\n", status.Discovery)
	fmt.Printf("snapshot_seq:    %d\n", status.SnapshotSeq)
	if !status.SnapshotTaken.IsZero() {
		fmt.Printf("snapshot_taken:  %s\n", status.SnapshotTaken.Format(time.RFC3339))
	}
	fmt.Printf("window_count:    %d\n", status.WindowCount)
	fmt.Printf("pinned_count:    %d\n", status.PinnedCount)
	if status.SelectedWindow != 0 {
		fmt.Printf("selected_window: %s\n", window.Handle(status.SelectedWindow))
	}
	fmt.Printf("uptime_seconds:  %d\n", status.UptimeSeconds)
	return 0
}

func runMonitors(args []string) int {
	fs := flag.NewFlagSet("monitors", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wincc monitors")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	data, err := ipc.NewClient().GetMonitors()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, m := range data.Monitors {
		fmt.Printf("%d  %-10s %dx%d+%d+%d\n", m.ID, m.Name, m.Width, m.Height, m.X, m.Y)
	}
	return 0
}

func runReload(args []string) int {
	if isHelpArg(args) {
		fmt.Fprintln(os.Stdout, "Usage: wincc reload")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Ask the running daemon to reload its configuration.")
		return 0
	}
	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Output as JSON")
	pinnedOnly := fs.Bool("pinned", false, "Only pinned windows, most recently pinned first")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wincc list [--json] [--pinned]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List the windows the daemon currently tracks.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "list takes no arguments")
		fs.Usage()
		return 2
	}

	windows, err := ipc.NewClient().ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *pinnedOnly {
		windows = pinnedNewestFirst(windows)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(windows); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	printWindows(os.Stdout, windows)
	return 0
}

func printWindows(w io.Writer, windows []ipc.WindowInfo) {
	if len(windows) == 0 {
		fmt.Fprintln(w, "no windows")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "HANDLE\tFLAGS\tPID\tEXE\tTITLE")
	for _, info := range windows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", window.Handle(info.Handle), flags(info), info.PID, info.Exe, info.Title)
	}
	tw.Flush()
}

func flags(info ipc.WindowInfo) string {
	out := []byte("--")
	if info.Selected {
		out[0] = '>'
	}
	if info.Pinned {
		out[1] = '*'
	}
	return string(out)
}

func pinnedNewestFirst(windows []ipc.WindowInfo) []ipc.WindowInfo {
	var out []ipc.WindowInfo
	for _, info := range windows {
		if info.Pinned {
			out = append(out, info)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return pinnedAfter(out[i], out[j])
	})
	return out
}

func pinnedAfter(a, b ipc.WindowInfo) bool {
	if a.PinnedAt == nil || b.PinnedAt == nil {
		return a.PinnedAt != nil
	}
	return a.PinnedAt.After(*b.PinnedAt)
}

func runCenter(args []string) int {
	fs := flag.NewFlagSet("center", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	ratio := fs.Float64("ratio", 0, "Fraction of the work area to fill, in (0,1] (default: fill_ratio from config)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wincc center [--ratio R] <id>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	h, ok := handleArg(fs)
	if !ok {
		return 2
	}
	if *ratio < 0 || *ratio > 1 {
		fmt.Fprintln(os.Stderr, "--ratio must be in (0,1]")
		return 2
	}

	target, err := ipc.NewClient().Center(uint32(h), *ratio)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printTarget(h, target)
	return 0
}

func runStep(name string, args []string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wincc %s <id>\n", name)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	h, ok := handleArg(fs)
	if !ok {
		return 2
	}

	client := ipc.NewClient()
	var target *ipc.TargetData
	var err error
	if name == "grow" {
		target, err = client.Grow(uint32(h))
	} else {
		target, err = client.Shrink(uint32(h))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printTarget(h, target)
	return 0
}

func runResize(args []string) int {
	fs := flag.NewFlagSet("resize", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wincc resize <id> <delta>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Change a window's width by delta pixels (negative narrows) and its")
		fmt.Fprintln(os.Stderr, "height proportionally, keeping it centered on its monitor.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 2
	}
	h, err := window.ParseHandle(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	delta, err := strconv.Atoi(fs.Arg(1))
	if err != nil || delta == 0 {
		fmt.Fprintf(os.Stderr, "invalid delta %q\n", fs.Arg(1))
		return 2
	}

	target, err := ipc.NewClient().Resize(uint32(h), delta)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printTarget(h, target)
	return 0
}

func runState(name string, args []string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wincc %s <id>\n", name)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	h, ok := handleArg(fs)
	if !ok {
		return 2
	}

	client := ipc.NewClient()
	var err error
	switch name {
	case "pin":
		err = client.Pin(uint32(h))
	case "unpin":
		err = client.Unpin(uint32(h))
	case "select":
		err = client.Select(uint32(h))
	case "toggle":
		var pinned bool
		if pinned, err = client.TogglePin(uint32(h)); err == nil {
			fmt.Printf("%s pinned: %v\n", h, pinned)
			return 0
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("%s: %s\n", name, h)
	return 0
}

// handleArg reads the single window id positional argument.
func handleArg(fs *flag.FlagSet) (window.Handle, bool) {
	if fs.NArg() != 1 {
		fs.Usage()
		return 0, false
	}
	h, err := window.ParseHandle(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 0, false
	}
	return h, true
}

func printTarget(h window.Handle, t *ipc.TargetData) {
	fmt.Printf("%s -> %dx%d+%d+%d\n", h, t.Width, t.Height, t.Left, t.Top)
}

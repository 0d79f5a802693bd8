package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/1broseidon/wincc/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "center":
		os.Exit(runCenter(os.Args[2:]))
	case "grow", "shrink":
		os.Exit(runStep(os.Args[1], os.Args[2:]))
	case "resize":
		os.Exit(runResize(os.Args[2:]))
	case "pin", "unpin", "toggle", "select":
		os.Exit(runState(os.Args[1], os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wincc <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the wincc daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  monitors            List active monitors")
	fmt.Fprintln(w, "  reload              Reload daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  list                List discovered windows")
	fmt.Fprintln(w, "  center <id>         Center a window on its monitor")
	fmt.Fprintln(w, "  grow <id>           Widen a window by the resize step")
	fmt.Fprintln(w, "  shrink <id>         Narrow a window by the resize step")
	fmt.Fprintln(w, "  resize <id> <delta> Resize a window by an explicit width delta")
	fmt.Fprintln(w, "  pin <id>            Pin a window")
	fmt.Fprintln(w, "  unpin <id>          Unpin a window")
	fmt.Fprintln(w, "  toggle <id>         Toggle a window's pin")
	fmt.Fprintln(w, "  select <id>         Select a window")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open interactive window list")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Window ids are X11 window ids in decimal or 0x hex, as shown by 'wincc list'.")
	fmt.Fprintln(w, "Run 'wincc <command> --help' for command-specific options.")
}

func isHelpArg(args []string) bool {
	return len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help")
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
}

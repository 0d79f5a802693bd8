package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/wincc/internal/app"
	"github.com/1broseidon/wincc/internal/discovery"
	"github.com/1broseidon/wincc/internal/placement"
	"github.com/1broseidon/wincc/internal/platform"
	"github.com/1broseidon/wincc/internal/procinfo"
	"github.com/1broseidon/wincc/internal/tui"
)

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/wincc/config.yaml)")
	logFile := fs.String("log", "", "Write logs to this file (default: discard)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wincc tui [--path PATH] [--log FILE]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive window list backed by its own discovery service.")
		fmt.Fprintln(os.Stderr, "Does not need the daemon.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓  Select window")
		fmt.Fprintln(os.Stderr, "  p         Pin/unpin selected window")
		fmt.Fprintln(os.Stderr, "  c         Center selected window")
		fmt.Fprintln(os.Stderr, "  +, -      Grow/shrink selected window")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C Quit")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config

	// The alternate screen owns the terminal, so logs never go to stderr here.
	var out io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer f.Close()
		out = f
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to display: %v\n", err)
		return 1
	}
	defer backend.Disconnect()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	disc := discovery.New(discovery.Config{
		PollInterval: cfg.PollInterval(),
		StopTimeout:  cfg.StopTimeout(),
		Logger:       logger,
	}, backend, procinfo.Gopsutil{})
	if err := disc.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer func() {
		if err := disc.Stop(); err != nil {
			logger.Warn("discovery did not stop cleanly", "error", err)
		}
	}()

	ctrl := app.NewController(disc, placement.New(backend, logger), app.Options{
		FillRatio:  cfg.FillRatio,
		ResizeStep: cfg.ResizeStep,
		Logger:     logger,
	})
	if err := tui.Run(ctx, ctrl, disc.Updated()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/1broseidon/wincc/internal/app"
	"github.com/1broseidon/wincc/internal/config"
	"github.com/1broseidon/wincc/internal/discovery"
	"github.com/1broseidon/wincc/internal/hotkeys"
	"github.com/1broseidon/wincc/internal/ipc"
	"github.com/1broseidon/wincc/internal/placement"
	"github.com/1broseidon/wincc/internal/platform"
	"github.com/1broseidon/wincc/internal/procinfo"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/wincc/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wincc daemon [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run window discovery, hotkeys and the IPC server in the foreground.")
		fmt.Fprintln(os.Stderr, "SIGHUP reloads the configuration; SIGINT/SIGTERM shut down.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config
	logger := newLogger(cfg)
	logger.Info("configuration loaded", "file", res.File, "poll_interval", cfg.PollInterval(), "fill_ratio", cfg.FillRatio)

	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Disconnect()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	disc := discovery.New(discovery.Config{
		PollInterval: cfg.PollInterval(),
		StopTimeout:  cfg.StopTimeout(),
		Logger:       logger,
	}, backend, procinfo.Gopsutil{})

	ctrl := app.NewController(disc, placement.New(backend, logger), app.Options{
		FillRatio:  cfg.FillRatio,
		ResizeStep: cfg.ResizeStep,
		Logger:     logger,
	})
	loop := app.NewLoop(ctrl, disc.Updated(), logger)
	go loop.Run(ctx)

	hotkeyHandler, err := hotkeys.NewHandler(backend, logger)
	if err != nil {
		log.Fatalf("Failed to set up hotkeys: %v", err)
	}
	runner := hotkeys.NewRunner(backend, loop, logger)
	if err := hotkeyHandler.Bind(cfg.Hotkeys, runner.Run); err != nil {
		logger.Warn("failed to register hotkeys", "error", err)
	}

	r := &reloader{
		path:    *path,
		current: cfg,
		loop:    loop,
		hotkeys: hotkeyHandler,
		runner:  runner,
		logger:  logger,
	}

	ipcServer, err := ipc.NewServer(ipc.ServerConfig{
		Loop:      loop,
		Displays:  backend,
		Discovery: disc,
		Reload:    func() error { return r.reload(ctx) },
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}

	if err := disc.Start(ctx); err != nil {
		log.Fatalf("Failed to start discovery: %v", err)
	}
	logger.Info("wincc daemon started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			if sig == syscall.SIGHUP {
				logger.Info("received SIGHUP, reloading config")
				if err := r.reload(ctx); err != nil {
					logger.Error("config reload failed", "error", err)
				}
				continue
			}

			logger.Info("shutting down wincc daemon", "signal", sig.String())
			if err := disc.Stop(); err != nil {
				// The poll worker is abandoned, not killed; exit anyway.
				logger.Warn("discovery did not stop cleanly", "error", err)
			}
			ipcServer.Stop()
			hotkeyHandler.Unbind()
			cancel()
			backend.QuitEventLoop()
			return
		}
	}()

	logger.Debug("entering X event loop")
	backend.EventLoop()
	signal.Stop(sigCh)
	return 0
}

// reloader applies a freshly loaded config to a running daemon. Discovery
// settings are fixed for the life of the service.
type reloader struct {
	mu      sync.Mutex
	path    string
	current *config.Config
	loop    *app.Loop
	hotkeys *hotkeys.Handler
	runner  *hotkeys.Runner
	logger  *slog.Logger
}

func (r *reloader) reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := loadConfig(r.path)
	if err != nil {
		return err
	}
	next := res.Config

	if err := r.loop.Submit(ctx, func(c *app.Controller) {
		c.SetOptions(next.FillRatio, next.ResizeStep)
	}); err != nil {
		return fmt.Errorf("apply options: %w", err)
	}

	var errs []error
	if next.Hotkeys != r.current.Hotkeys {
		if err := r.hotkeys.Bind(next.Hotkeys, r.runner.Run); err != nil {
			errs = append(errs, fmt.Errorf("rebind hotkeys: %w", err))
		}
	}
	if next.PollInterval() != r.current.PollInterval() || next.StopTimeout() != r.current.StopTimeout() || next.DisplayName() != r.current.DisplayName() {
		r.logger.Warn("discovery and display settings take effect after a daemon restart")
	}

	r.current = next
	r.logger.Info("config reloaded", "fill_ratio", next.FillRatio, "resize_step", next.ResizeStep)
	return errors.Join(errs...)
}

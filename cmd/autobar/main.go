// Copyright 2026 The Autobar Authors
// SPDX-License-Identifier: Apache-2.0

// Autobar keeps per-output Waybar instances synchronized with
// workspace occupancy on Hyprland. It polls compositor state, decides
// which outputs should show a bar (the output's active workspace has
// at least one visible, mapped client), and starts or stops pinned
// Waybar instances to match. An output whose active workspace empties
// loses its bar; one that gains a visible window gets it back.
//
// Designed to run in the background from a Hyprland exec-once line:
//
//	exec-once = autobar
//
// On startup:
//  1. Loads configuration (defaults, or --config / AUTOBAR_CONFIG).
//  2. Verifies the base Waybar config exists and parses as JSONC.
//  3. Enters the polling loop: probe, diff, stop, start, sweep.
//  4. On SIGINT/SIGTERM, stops every managed instance, then exits.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/autobar-wm/autobar/lib/clock"
	"github.com/autobar-wm/autobar/lib/config"
	"github.com/autobar-wm/autobar/lib/hyprland"
	"github.com/autobar-wm/autobar/lib/supervisor"
	"github.com/autobar-wm/autobar/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("autobar", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to autobar.yaml (default: AUTOBAR_CONFIG, then built-in defaults)")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if arguments := flagSet.Args(); len(arguments) > 0 {
		return fmt.Errorf("unexpected argument: %s", arguments[0])
	}

	if showVersion {
		fmt.Printf("autobar %s\n", version.Info())
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Preflight: refuse to start without a usable base config.
	// Without it every Waybar launch would fail silently, forever.
	if err := cfg.CheckBaseConfig(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.Real()
	sup := supervisor.New(supervisor.Options{
		WaybarBinary: cfg.WaybarBinary,
		BaseConfig:   cfg.BaseConfig,
		Stylesheet:   cfg.Stylesheet,
		CacheDir:     cfg.CacheDir,
	}, clk, logger)

	prober := hyprland.NewProber(cfg.HyprctlBinary, logger)
	daemon := &Daemon{
		probe:        prober.Probe,
		supervisor:   sup,
		clock:        clk,
		logger:       logger,
		pollInterval: cfg.PollInterval.Std(),
		errorBackoff: cfg.ErrorBackoff.Std(),
	}

	logger.Info("autobar started",
		"poll_interval", cfg.PollInterval.Std(),
		"base_config", cfg.BaseConfig,
		"cache_dir", cfg.CacheDir,
	)

	daemon.run(ctx)

	// Shutdown: every managed companion gets a best-effort stop
	// before the process exits.
	logger.Info("shutting down")
	sup.StopAll()
	return nil
}

// Daemon drives the reconciliation loop. All fields are set once
// before run and never mutated; the supervisor's table is the only
// state that changes between cycles.
type Daemon struct {
	// probe samples compositor state. Defaults to a Prober's Probe
	// method; tests substitute fixtures.
	probe func(ctx context.Context) ([]hyprland.Monitor, []hyprland.Client)

	supervisor   *supervisor.Supervisor
	clock        clock.Clock
	logger       *slog.Logger
	pollInterval time.Duration
	errorBackoff time.Duration
}

// run executes reconciliation cycles until ctx is cancelled. A failed
// cycle is logged and followed by the error backoff; the loop itself
// never terminates on error. Shutdown is observed between cycles, so
// the cycle in flight always completes.
func (d *Daemon) run(ctx context.Context) {
	ticker := d.clock.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		if err := d.reconcile(ctx); err != nil {
			d.logger.Error("reconciliation failed", "error", err)
			d.clock.Sleep(d.errorBackoff)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

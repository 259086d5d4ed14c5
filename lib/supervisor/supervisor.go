// Copyright 2026 The Autobar Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"golang.org/x/sys/unix"

	"github.com/autobar-wm/autobar/lib/clock"
)

const (
	// terminationWait bounds the graceful-termination poll before
	// escalating to SIGKILL.
	terminationWait = time.Second

	// terminationPollInterval is the liveness re-check interval
	// during the graceful wait.
	terminationPollInterval = 50 * time.Millisecond
)

// Handle is a live companion process. Alive must report the truth
// from the operating system (a reaped child is dead), not a cached
// state.
type Handle interface {
	// Alive reports whether the process is still running.
	Alive() bool

	// Signal delivers sig to the process.
	Signal(sig os.Signal) error
}

// Options configures a Supervisor.
type Options struct {
	// WaybarBinary is the companion executable, resolved via PATH
	// when not absolute.
	WaybarBinary string

	// BaseConfig is the user's Waybar configuration, referenced by
	// every generated artifact via its "include" key.
	BaseConfig string

	// Stylesheet is passed to every Waybar instance with -s.
	Stylesheet string

	// CacheDir holds the generated per-output config artifacts.
	CacheDir string

	// Launch overrides how companion processes are started. Nil
	// launches the configured Waybar binary. Tests inject fake
	// process handles here.
	Launch func(configPath string) (Handle, error)
}

// Supervisor maps output names to running companion processes and
// drives their lifecycle. Not safe for concurrent use; the
// reconciliation loop is its only caller.
type Supervisor struct {
	options Options
	clock   clock.Clock
	logger  *slog.Logger

	// launch starts a companion for the given artifact path. Tests
	// override this to inject fake handles.
	launch func(configPath string) (Handle, error)

	table map[string]Handle
}

// New returns an empty Supervisor.
func New(options Options, clk clock.Clock, logger *slog.Logger) *Supervisor {
	s := &Supervisor{
		options: options,
		clock:   clk,
		logger:  logger,
		table:   make(map[string]Handle),
	}
	s.launch = options.Launch
	if s.launch == nil {
		s.launch = func(configPath string) (Handle, error) {
			return launchWaybar(options.WaybarBinary, configPath, options.Stylesheet)
		}
	}
	return s
}

// Outputs returns the outputs currently in the table, sorted for
// deterministic iteration.
func (s *Supervisor) Outputs() []string {
	outputs := make([]string, 0, len(s.table))
	for output := range s.table {
		outputs = append(outputs, output)
	}
	sort.Strings(outputs)
	return outputs
}

// Start launches a companion for output unless one is already running.
// The liveness of an existing entry is re-checked, so an entry whose
// process died is replaced rather than trusted. A launch failure
// leaves no table entry; the next reconciliation cycle retries while
// the output remains desired.
func (s *Supervisor) Start(output string) error {
	if handle, ok := s.table[output]; ok && handle.Alive() {
		return nil
	}

	configPath, err := s.EnsureConfigArtifact(output)
	if err != nil {
		return fmt.Errorf("writing config artifact for %s: %w", output, err)
	}

	handle, err := s.launch(configPath)
	if err != nil {
		return fmt.Errorf("starting companion for %s: %w", output, err)
	}

	s.table[output] = handle
	s.logger.Info("companion started", "output", output, "config", configPath)
	return nil
}

// Stop terminates the companion for output and removes its table
// entry. No-op without an entry. Graceful first: SIGTERM, then a
// liveness poll every terminationPollInterval up to terminationWait,
// then SIGKILL unconditionally. Signal errors are swallowed — Stop
// runs on shutdown paths where the process may already be gone, and
// the entry must come out of the table regardless.
func (s *Supervisor) Stop(output string) {
	handle, ok := s.table[output]
	if !ok {
		return
	}

	if handle.Alive() {
		if err := handle.Signal(unix.SIGTERM); err == nil {
			for waited := time.Duration(0); waited < terminationWait; waited += terminationPollInterval {
				if !handle.Alive() {
					break
				}
				s.clock.Sleep(terminationPollInterval)
			}
		}
		if handle.Alive() {
			_ = handle.Signal(unix.SIGKILL)
		}
	}

	delete(s.table, output)
	s.logger.Info("companion stopped", "output", output)
}

// SweepDead removes table entries whose process exited on its own.
// Run once per reconciliation cycle so an externally-dying companion
// neither leaks an entry nor blocks a future Start for its output.
func (s *Supervisor) SweepDead() {
	for output, handle := range s.table {
		if handle.Alive() {
			continue
		}
		delete(s.table, output)
		s.logger.Info("companion exited on its own", "output", output)
	}
}

// StopAll stops every companion in the table, best effort. Called on
// daemon shutdown.
func (s *Supervisor) StopAll() {
	for _, output := range s.Outputs() {
		s.Stop(output)
	}
}

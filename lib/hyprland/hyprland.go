// Copyright 2026 The Autobar Authors
// SPDX-License-Identifier: Apache-2.0

package hyprland

import (
	"context"
	"encoding/json"
	"log/slog"
	"os/exec"
	"strconv"
)

// Workspace is the workspace descriptor embedded in monitor and
// client records. Only the numeric id matters for occupancy tracking.
type Workspace struct {
	ID int `json:"id"`
}

// Monitor is one entry of `hyprctl -j monitors`. ActiveWorkspace is a
// pointer so a monitor without one (seen briefly during output
// hotplug) is distinguishable from workspace id 0.
type Monitor struct {
	ID              int        `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Disabled        bool       `json:"disabled"`
	ActiveWorkspace *Workspace `json:"activeWorkspace"`
}

// OutputName returns the identifier used to key this monitor: the
// connector name when present, otherwise the description, otherwise
// the numeric id. The fallback chain is a compatibility shim for
// older Hyprland releases whose monitor records lacked a name field.
func (m Monitor) OutputName() string {
	if m.Name != "" {
		return m.Name
	}
	if m.Description != "" {
		return m.Description
	}
	return strconv.Itoa(m.ID)
}

// Client is one entry of `hyprctl -j clients`. A client counts toward
// its workspace's visible tally only when it is mapped and not hidden.
type Client struct {
	Workspace *Workspace `json:"workspace"`
	Mapped    bool       `json:"mapped"`
	Hidden    bool       `json:"hidden"`
}

// Prober queries Hyprland state via the hyprctl binary.
type Prober struct {
	binary string
	logger *slog.Logger

	// query runs hyprctl with the given arguments and returns its
	// stdout. Tests override this to inject fixture JSON.
	query func(ctx context.Context, args ...string) ([]byte, error)
}

// NewProber returns a Prober that invokes the given hyprctl binary.
func NewProber(binary string, logger *slog.Logger) *Prober {
	p := &Prober{binary: binary, logger: logger}
	p.query = p.runHyprctl
	return p
}

func (p *Prober) runHyprctl(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, p.binary, args...).Output()
}

// Probe returns the current enabled monitors and all known clients.
// Either slice is nil when its query fails; the two queries fail
// independently.
func (p *Prober) Probe(ctx context.Context) ([]Monitor, []Client) {
	return p.Monitors(ctx), p.Clients(ctx)
}

// Monitors returns the enabled monitors, or nil when the query fails
// for any reason.
func (p *Prober) Monitors(ctx context.Context) []Monitor {
	output, err := p.query(ctx, "-j", "monitors")
	if err != nil {
		p.logger.Debug("monitor query failed", "error", err)
		return nil
	}

	var monitors []Monitor
	if err := json.Unmarshal(output, &monitors); err != nil {
		p.logger.Debug("malformed monitor list", "error", err)
		return nil
	}

	enabled := make([]Monitor, 0, len(monitors))
	for _, monitor := range monitors {
		if monitor.Disabled {
			continue
		}
		enabled = append(enabled, monitor)
	}
	return enabled
}

// Clients returns all clients known to the compositor, or nil when
// the query fails for any reason.
func (p *Prober) Clients(ctx context.Context) []Client {
	output, err := p.query(ctx, "-j", "clients")
	if err != nil {
		p.logger.Debug("client query failed", "error", err)
		return nil
	}

	var clients []Client
	if err := json.Unmarshal(output, &clients); err != nil {
		p.logger.Debug("malformed client list", "error", err)
		return nil
	}
	return clients
}

// ActiveWorkspaces maps each monitor's output name to its active
// workspace id. Monitors without an active workspace are dropped —
// they cannot contribute to the desired set.
func ActiveWorkspaces(monitors []Monitor) map[string]int {
	workspaceByOutput := make(map[string]int, len(monitors))
	for _, monitor := range monitors {
		if monitor.ActiveWorkspace == nil {
			continue
		}
		workspaceByOutput[monitor.OutputName()] = monitor.ActiveWorkspace.ID
	}
	return workspaceByOutput
}

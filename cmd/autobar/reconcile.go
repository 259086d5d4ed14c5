// Copyright 2026 The Autobar Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"sort"

	"github.com/autobar-wm/autobar/lib/hyprland"
)

// reconcile runs one cycle: probe compositor state, compute the
// desired set, and converge the supervisor's table toward it.
//
// Stops are issued before starts. An output that flipped from one
// desired identity to another within a single poll interval must have
// its old instance fully torn down first — Waybar instances contend
// for layer-shell surfaces on their output, and an overlapping
// old/new pair renders double bars.
//
// Start errors (typically a missing waybar binary) are joined and
// returned; the loop treats them as a whole-cycle failure and backs
// off. The supervisor recorded no entry for the failed output, so the
// next cycle retries automatically while it remains desired.
func (d *Daemon) reconcile(ctx context.Context) error {
	began := d.clock.Now()

	monitors, clients := d.probe(ctx)
	desired := desiredOutputs(hyprland.ActiveWorkspaces(monitors), clients)

	// Stop companions for outputs that no longer need one (or whose
	// output disappeared entirely).
	for _, output := range d.supervisor.Outputs() {
		if !desired[output] {
			d.supervisor.Stop(output)
		}
	}

	// Start companions for outputs that need one. Sorted for
	// deterministic ordering in logs and tests.
	wanted := make([]string, 0, len(desired))
	for output := range desired {
		wanted = append(wanted, output)
	}
	sort.Strings(wanted)

	var errs []error
	for _, output := range wanted {
		if err := d.supervisor.Start(output); err != nil {
			errs = append(errs, err)
		}
	}

	// Drop table entries whose process exited on its own since the
	// last cycle, so a crashed companion can be restarted next time
	// its output is desired.
	d.supervisor.SweepDead()

	d.logger.Debug("cycle complete",
		"desired", len(desired),
		"running", len(d.supervisor.Outputs()),
		"duration", d.clock.Now().Sub(began),
	)

	return errors.Join(errs...)
}

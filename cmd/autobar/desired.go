// Copyright 2026 The Autobar Authors
// SPDX-License-Identifier: Apache-2.0

package main

import "github.com/autobar-wm/autobar/lib/hyprland"

// desiredOutputs computes which outputs should have a companion
// running: those whose active workspace holds at least one visible
// client. A client is visible when it is mapped and not hidden;
// clients without a workspace are ignored. Pure — the result is
// recomputed fresh every cycle and never retained.
func desiredOutputs(workspaceByOutput map[string]int, clients []hyprland.Client) map[string]bool {
	visibleByWorkspace := make(map[int]int)
	for _, client := range clients {
		if client.Workspace == nil || !client.Mapped || client.Hidden {
			continue
		}
		visibleByWorkspace[client.Workspace.ID]++
	}

	desired := make(map[string]bool)
	for output, workspaceID := range workspaceByOutput {
		if visibleByWorkspace[workspaceID] > 0 {
			desired[output] = true
		}
	}
	return desired
}

// Copyright 2026 The Autobar Authors
// SPDX-License-Identifier: Apache-2.0

// Package hyprland probes compositor state through hyprctl's JSON
// interface. It issues two read-only queries per probe — the monitor
// list and the client (window) list — and normalizes the results for
// the desired-state calculation.
//
// The prober is deliberately failure-tolerant: a missing hyprctl
// binary, a non-zero exit (Hyprland restarting), or malformed JSON
// all degrade to empty results for that cycle. The caller polls, so
// a transient failure self-heals on the next probe. Nothing here
// retries or raises.
package hyprland

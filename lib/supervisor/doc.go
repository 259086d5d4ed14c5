// Copyright 2026 The Autobar Authors
// SPDX-License-Identifier: Apache-2.0

// Package supervisor owns the table of running Waybar companion
// processes, one per output. It is the only stateful component of the
// daemon: the reconciliation loop computes a fresh desired set every
// cycle and calls Start/Stop/SweepDead here to converge the table.
//
// The table has exactly one writer — the reconciliation goroutine —
// so no locking is used. Liveness is always queried from the process
// handle at time of use, never cached: a stale "running" flag is how
// supervisors end up refusing to restart something that died.
//
// Termination is graceful-then-forced: SIGTERM, a bounded liveness
// poll, then SIGKILL. Errors on either signal are swallowed. A leaked
// child is a bounded cost; a leaked table entry would permanently
// block restarts for that output, so the entry is always removed.
package supervisor

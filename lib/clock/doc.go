// Copyright 2026 The Autobar Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the time operations the daemon depends on —
// sleeping between termination polls and ticking the reconciliation
// loop — so they can be driven deterministically in tests.
//
// Production code injects Real(). Tests inject Fake(), whose Sleep
// advances a virtual clock instead of blocking and whose tickers fire
// only when the test calls Tick.
package clock

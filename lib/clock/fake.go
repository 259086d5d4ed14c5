// Copyright 2026 The Autobar Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// Fake returns a FakeClock initialized to the given time. Sleep
// advances the virtual clock immediately instead of blocking, and
// records the requested duration so tests can assert on wait behavior.
// Tickers fire only when the test calls Tick.
//
// FakeClock is safe for concurrent use.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{
		current: initial,
		ticks:   make(chan time.Time, 1),
	}
}

// FakeClock is a deterministic Clock for tests. Time advances only
// through Sleep calls (which advance it by the slept duration) or
// through Advance.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	slept   []time.Duration
	ticks   chan time.Time
}

// Now returns the current virtual time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Sleep advances the virtual clock by d without blocking and records
// the duration.
func (c *FakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	c.slept = append(c.slept, d)
}

// Advance moves the virtual clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Slept returns every duration passed to Sleep, in call order.
func (c *FakeClock) Slept() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.slept...)
}

// TotalSlept returns the sum of all Sleep durations.
func (c *FakeClock) TotalSlept() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total time.Duration
	for _, d := range c.slept {
		total += d
	}
	return total
}

// NewTicker returns a Ticker backed by the fake tick channel. The
// interval is ignored; ticks arrive only when the test calls Tick.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("non-positive interval for NewTicker")
	}
	return &Ticker{C: c.ticks, stopFunc: func() {}}
}

// Tick delivers one tick to the ticker channel, blocking until the
// consumer receives it (or until a previously undelivered tick slot
// frees up). This gives tests a synchronization point with the loop
// under test.
func (c *FakeClock) Tick() {
	c.ticks <- c.Now()
}

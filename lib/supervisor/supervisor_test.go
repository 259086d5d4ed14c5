// Copyright 2026 The Autobar Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/autobar-wm/autobar/lib/clock"
)

// fakeHandle is a scriptable companion process. terminateAfterPolls
// controls how many Alive checks after SIGTERM the process survives;
// a negative value means it ignores SIGTERM entirely.
type fakeHandle struct {
	terminateAfterPolls int
	signalError         error

	alive     bool
	signals   []os.Signal
	pollsLeft int
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{alive: true, terminateAfterPolls: 0, pollsLeft: -1}
}

func (h *fakeHandle) Alive() bool {
	if h.pollsLeft == 0 {
		h.alive = false
	}
	if h.pollsLeft > 0 {
		h.pollsLeft--
	}
	return h.alive
}

func (h *fakeHandle) Signal(sig os.Signal) error {
	h.signals = append(h.signals, sig)
	if h.signalError != nil {
		return h.signalError
	}
	switch sig {
	case unix.SIGTERM:
		if h.terminateAfterPolls >= 0 {
			h.pollsLeft = h.terminateAfterPolls
		}
	case unix.SIGKILL:
		h.alive = false
	}
	return nil
}

// testSupervisor returns a Supervisor with a fake launcher. Each
// Start hands out the next handle from the script; when the script
// runs dry, launches fail.
func testSupervisor(t *testing.T, fake *clock.FakeClock, handles ...*fakeHandle) (*Supervisor, *[]string) {
	t.Helper()
	s := New(Options{
		WaybarBinary: "waybar",
		BaseConfig:   "/home/user/.config/waybar/config.jsonc",
		Stylesheet:   "/home/user/.config/waybar/style.css",
		CacheDir:     t.TempDir(),
	}, fake, slog.New(slog.NewTextHandler(io.Discard, nil)))

	launches := new([]string)
	queue := handles
	s.launch = func(configPath string) (Handle, error) {
		if len(queue) == 0 {
			return nil, fmt.Errorf("waybar: executable file not found in $PATH")
		}
		handle := queue[0]
		queue = queue[1:]
		*launches = append(*launches, configPath)
		return handle, nil
	}
	return s, launches
}

func fakeTestClock() *clock.FakeClock {
	return clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
}

func TestStartCreatesEntry(t *testing.T) {
	s, launches := testSupervisor(t, fakeTestClock(), newFakeHandle())

	if err := s.Start("DP-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := s.Outputs(); len(got) != 1 || got[0] != "DP-1" {
		t.Errorf("Outputs() = %v, want [DP-1]", got)
	}
	if len(*launches) != 1 {
		t.Errorf("launches = %d, want 1", len(*launches))
	}
	if (*launches)[0] != s.ArtifactPath("DP-1") {
		t.Errorf("launched with config %q, want %q", (*launches)[0], s.ArtifactPath("DP-1"))
	}
}

func TestStartIdempotentWhileAlive(t *testing.T) {
	s, launches := testSupervisor(t, fakeTestClock(), newFakeHandle(), newFakeHandle())

	if err := s.Start("DP-1"); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := s.Start("DP-1"); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	if len(*launches) != 1 {
		t.Errorf("launches = %d, want 1 (second Start must be a no-op)", len(*launches))
	}
	if got := s.Outputs(); len(got) != 1 {
		t.Errorf("Outputs() = %v, want exactly one entry", got)
	}
}

func TestStartReplacesDeadEntry(t *testing.T) {
	dead := newFakeHandle()
	dead.alive = false
	s, launches := testSupervisor(t, fakeTestClock(), dead, newFakeHandle())

	if err := s.Start("DP-1"); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	// The liveness re-check must see through the stale entry.
	if err := s.Start("DP-1"); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if len(*launches) != 2 {
		t.Errorf("launches = %d, want 2 (dead entry replaced)", len(*launches))
	}
}

func TestStartLaunchFailureLeavesNoEntry(t *testing.T) {
	s, _ := testSupervisor(t, fakeTestClock()) // empty handle script: launches fail

	err := s.Start("DP-1")
	if err == nil {
		t.Fatal("Start succeeded, want launch error")
	}
	if got := s.Outputs(); len(got) != 0 {
		t.Errorf("Outputs() = %v, want empty table after failed launch", got)
	}
}

func TestStopGraceful(t *testing.T) {
	handle := newFakeHandle()
	handle.terminateAfterPolls = 3
	fake := fakeTestClock()
	s, _ := testSupervisor(t, fake, handle)

	if err := s.Start("DP-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop("DP-1")

	if len(handle.signals) != 1 || handle.signals[0] != unix.SIGTERM {
		t.Errorf("signals = %v, want [SIGTERM] only", handle.signals)
	}
	if got := s.Outputs(); len(got) != 0 {
		t.Errorf("Outputs() = %v, want empty table after Stop", got)
	}
	if total := fake.TotalSlept(); total >= time.Second {
		t.Errorf("slept %v during graceful stop, want < 1s", total)
	}
}

func TestStopEscalatesToKillAfterBoundedWait(t *testing.T) {
	handle := newFakeHandle()
	handle.terminateAfterPolls = -1 // ignores SIGTERM
	fake := fakeTestClock()
	s, _ := testSupervisor(t, fake, handle)

	if err := s.Start("DP-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop("DP-1")

	if len(handle.signals) != 2 || handle.signals[0] != unix.SIGTERM || handle.signals[1] != unix.SIGKILL {
		t.Errorf("signals = %v, want [SIGTERM SIGKILL]", handle.signals)
	}
	if total := fake.TotalSlept(); total != time.Second {
		t.Errorf("slept %v before SIGKILL, want exactly 1s", total)
	}
	if got := s.Outputs(); len(got) != 0 {
		t.Errorf("Outputs() = %v, want empty table", got)
	}
}

func TestStopWithoutEntryIsNoOp(t *testing.T) {
	s, _ := testSupervisor(t, fakeTestClock())

	// Twice, per the idempotence contract. Neither call may panic or
	// mutate anything.
	s.Stop("DP-1")
	s.Stop("DP-1")

	if got := s.Outputs(); len(got) != 0 {
		t.Errorf("Outputs() = %v, want empty", got)
	}
}

func TestStopRemovesEntryDespiteSignalFailure(t *testing.T) {
	handle := newFakeHandle()
	handle.signalError = errors.New("no such process")
	s, _ := testSupervisor(t, fakeTestClock(), handle)

	if err := s.Start("DP-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop("DP-1")

	if got := s.Outputs(); len(got) != 0 {
		t.Errorf("Outputs() = %v, want empty table despite signal failure", got)
	}
}

func TestSweepDeadRemovesExitedProcesses(t *testing.T) {
	dead := newFakeHandle()
	live := newFakeHandle()
	s, _ := testSupervisor(t, fakeTestClock(), dead, live)

	if err := s.Start("DP-1"); err != nil {
		t.Fatalf("Start DP-1: %v", err)
	}
	if err := s.Start("HDMI-A-1"); err != nil {
		t.Fatalf("Start HDMI-A-1: %v", err)
	}

	dead.alive = false // crashed between cycles
	s.SweepDead()

	if got := s.Outputs(); len(got) != 1 || got[0] != "HDMI-A-1" {
		t.Errorf("Outputs() = %v, want [HDMI-A-1]", got)
	}
}

func TestStopAll(t *testing.T) {
	first := newFakeHandle()
	second := newFakeHandle()
	s, _ := testSupervisor(t, fakeTestClock(), first, second)

	if err := s.Start("DP-1"); err != nil {
		t.Fatalf("Start DP-1: %v", err)
	}
	if err := s.Start("HDMI-A-1"); err != nil {
		t.Fatalf("Start HDMI-A-1: %v", err)
	}

	s.StopAll()

	if got := s.Outputs(); len(got) != 0 {
		t.Errorf("Outputs() = %v, want empty table", got)
	}
	for _, handle := range []*fakeHandle{first, second} {
		if len(handle.signals) == 0 || handle.signals[0] != unix.SIGTERM {
			t.Errorf("signals = %v, want SIGTERM first", handle.signals)
		}
	}
}

func TestEnvironmentWithDefault(t *testing.T) {
	env := []string{"PATH=/usr/bin", "WAYBAR_LOG_LEVEL=debug"}
	if got := environmentWithDefault(env, "WAYBAR_LOG_LEVEL", "error"); len(got) != 2 {
		t.Errorf("environmentWithDefault overrode an existing value: %v", got)
	}

	env = []string{"PATH=/usr/bin"}
	got := environmentWithDefault(env, "WAYBAR_LOG_LEVEL", "error")
	if len(got) != 2 || got[1] != "WAYBAR_LOG_LEVEL=error" {
		t.Errorf("environmentWithDefault = %v, want WAYBAR_LOG_LEVEL=error appended", got)
	}
}

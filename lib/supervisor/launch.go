// Copyright 2026 The Autobar Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// waybarLogLevelVariable is defaulted (not overridden) in the
// companion's environment to keep Waybar's stderr quiet. Waybar writes
// its own logs; the supervisor discards them.
const waybarLogLevelVariable = "WAYBAR_LOG_LEVEL"

// launchWaybar starts one Waybar instance pinned to a generated
// config. The child runs in its own session (Setsid) so that signals
// delivered to the supervisor's process group — Ctrl-C in a terminal,
// systemd unit teardown — do not implicitly kill companions before
// the supervisor has run its own stop sequence. Stdout and stderr are
// discarded, matching Waybar's habit of logging every workspace event.
func launchWaybar(binary, configPath, stylePath string) (Handle, error) {
	cmd := exec.Command(binary, "-c", configPath, "-s", stylePath)
	cmd.Env = environmentWithDefault(os.Environ(), waybarLogLevelVariable, "error")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		// Reap the child as soon as it exits. The closed channel is
		// what Alive consults — exactly as current as the OS's view.
		_ = cmd.Wait()
		close(done)
	}()

	return &processHandle{cmd: cmd, done: done}, nil
}

// environmentWithDefault returns env with key set to value unless the
// caller's environment already sets it.
func environmentWithDefault(env []string, key, value string) []string {
	prefix := key + "="
	for _, entry := range env {
		if strings.HasPrefix(entry, prefix) {
			return env
		}
	}
	return append(env, prefix+value)
}

// processHandle wraps a started exec.Cmd. Liveness comes from the
// wait goroutine in launchWaybar: the done channel closes the moment
// the child is reaped.
type processHandle struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func (h *processHandle) Alive() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

func (h *processHandle) Signal(sig os.Signal) error {
	return h.cmd.Process.Signal(sig)
}

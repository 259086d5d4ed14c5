// Copyright 2026 The Autobar Authors
// SPDX-License-Identifier: Apache-2.0

// Package version exposes build-time version information. The
// variables are overridden at link time:
//
//	go build -ldflags "-X github.com/autobar-wm/autobar/lib/version.Version=v0.3.0 ..."
package version

import (
	"fmt"
	"runtime"
)

// Build metadata, injected via -ldflags. Defaults identify an
// untagged development build.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Info returns a one-line version string for --version output.
func Info() string {
	return fmt.Sprintf("%s (%s, %s)", Version, GitCommit, BuildTime)
}

// Full returns detailed version information including the Go runtime
// and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Copyright 2026 The Autobar Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for autobar.
//
// Configuration is a single optional YAML file located via the
// --config flag or the AUTOBAR_CONFIG environment variable. When
// neither is set, built-in defaults apply — the daemon is designed to
// run with zero configuration from a compositor exec-once line. When
// a file IS specified, it must exist and parse; a misspelled path
// failing silently back to defaults would be a debugging trap.
//
// The only expansion performed on values is ${VAR} and ${VAR:-default}
// in paths, for portability of shared config files across machines.
package config

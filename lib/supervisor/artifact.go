// Copyright 2026 The Autobar Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// configArtifact is the generated per-output Waybar config. Waybar
// merges the file named by "include" and restricts itself to the
// single output listed in "output".
type configArtifact struct {
	Include string   `json:"include"`
	Output  []string `json:"output"`
}

// ArtifactPath returns the deterministic artifact location for an
// output. Output names are connector names like "DP-1", but the
// description fallback can contain path separators, so those are
// sanitized.
func (s *Supervisor) ArtifactPath(output string) string {
	sanitized := strings.ReplaceAll(output, string(os.PathSeparator), "-")
	return filepath.Join(s.options.CacheDir, "waybar-"+sanitized+".jsonc")
}

// EnsureConfigArtifact writes the per-output config artifact and
// returns its path. The artifact is regenerated on every call — it is
// cheap, and regenerating picks up a changed base config path without
// restart ordering concerns. The write is atomic (temporary file,
// fsync, rename) so a Waybar instance re-reading its config never
// observes a partial file.
func (s *Supervisor) EnsureConfigArtifact(output string) (string, error) {
	if err := os.MkdirAll(s.options.CacheDir, 0755); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(configArtifact{
		Include: s.options.BaseConfig,
		Output:  []string{output},
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling config artifact: %w", err)
	}
	data = append(data, '\n')

	path := s.ArtifactPath(output)
	temporaryPath := path + ".tmp"

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("creating temporary artifact: %w", err)
	}

	// Write, sync, close — in that order. On failure, remove the
	// temporary file and report the first error.
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return "", fmt.Errorf("writing temporary artifact: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return "", fmt.Errorf("syncing temporary artifact: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return "", fmt.Errorf("closing temporary artifact: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return "", fmt.Errorf("renaming artifact into place: %w", err)
	}

	return path, nil
}

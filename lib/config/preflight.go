// Copyright 2026 The Autobar Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// CheckBaseConfig verifies the user's Waybar base config exists and
// parses as JSONC (JSON extended with comments and trailing commas,
// the format Waybar reads). This is the daemon's only startup
// validation: without a readable base config, every companion launch
// would fail silently forever, so the daemon refuses to enter its
// loop instead.
func (c *Config) CheckBaseConfig() error {
	data, err := os.ReadFile(c.BaseConfig)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("missing base Waybar config at %s", c.BaseConfig)
		}
		return fmt.Errorf("reading base Waybar config: %w", err)
	}

	if !json.Valid(jsonc.ToJSON(data)) {
		return fmt.Errorf("base Waybar config %s is not valid JSONC", c.BaseConfig)
	}
	return nil
}

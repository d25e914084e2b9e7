// Copyright (C) 2026 the codepilot authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"codepilot/internal/tools"
)

// Config represents the application configuration.
type Config struct {
	WindowSize         int               `json:"window_size,omitempty"`
	Command            CommandSettings   `json:"command,omitempty"`
	ToolLimits         ToolLimits        `json:"tool_limits,omitempty"`
	ToolOutputFilters  ToolOutputFilters `json:"tool_output_filters,omitempty"`
	LogFile            string            `json:"log_file,omitempty"`
	CommandHistoryFile string            `json:"command_history_file,omitempty"`
}

// CommandSettings configures the shell execution gateway.
type CommandSettings struct {
	TimeoutSeconds    int      `json:"timeout_seconds,omitempty"`
	MaxOutputBytes    int      `json:"max_output_bytes,omitempty"`
	ExtraDenyPatterns []string `json:"extra_deny_patterns,omitempty"`
}

// ToolLimits configures resource limits for file tool operations.
type ToolLimits struct {
	MaxFileSizeBytes    int64 `json:"max_file_size_bytes,omitempty"`
	MaxDirectoryDepth   int   `json:"max_directory_depth,omitempty"`
	MaxDirectoryEntries int   `json:"max_directory_entries,omitempty"`
}

// ToolOutputFilters configures output sanitization for tool results.
type ToolOutputFilters struct {
	MaxChars     int  `json:"max_chars,omitempty"`
	StripANSI    bool `json:"strip_ansi,omitempty"`
	StripControl bool `json:"strip_control,omitempty"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	limits := tools.DefaultLimits()
	filters := tools.DefaultOutputFilterConfig()
	return &Config{
		WindowSize: tools.DefaultWindowSize,
		Command: CommandSettings{
			TimeoutSeconds: 30,
		},
		ToolLimits: ToolLimits{
			MaxFileSizeBytes:    limits.MaxFileSizeBytes,
			MaxDirectoryDepth:   limits.MaxDirectoryDepth,
			MaxDirectoryEntries: limits.MaxDirectoryEntries,
		},
		ToolOutputFilters: ToolOutputFilters{
			MaxChars:     filters.MaxChars,
			StripANSI:    filters.StripANSI,
			StripControl: filters.StripControl,
		},
		CommandHistoryFile: ".codepilot_history",
	}
}

// Load reads a config file, applying defaults for absent fields. A
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := validateConfigJSON(data); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Apply pushes the global tool settings (limits, output filters) into
// the tools package.
func (c *Config) Apply() {
	tools.ConfigureLimits(tools.Limits{
		MaxFileSizeBytes:    c.ToolLimits.MaxFileSizeBytes,
		MaxDirectoryDepth:   c.ToolLimits.MaxDirectoryDepth,
		MaxDirectoryEntries: c.ToolLimits.MaxDirectoryEntries,
	})
	tools.ConfigureOutputFilters(tools.OutputFilterConfig{
		MaxChars:     c.ToolOutputFilters.MaxChars,
		StripANSI:    c.ToolOutputFilters.StripANSI,
		StripControl: c.ToolOutputFilters.StripControl,
	})
}

// GatewayConfig converts the command settings for the execution gateway.
func (c *Config) GatewayConfig() tools.GatewayConfig {
	return tools.GatewayConfig{
		Timeout:           time.Duration(c.Command.TimeoutSeconds) * time.Second,
		MaxOutputBytes:    c.Command.MaxOutputBytes,
		ExtraDenyPatterns: c.Command.ExtraDenyPatterns,
	}
}

// validateConfigJSON rejects unknown keys so typos surface as errors
// instead of silently falling back to defaults.
func validateConfigJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	allowed := map[string]bool{
		"window_size":          true,
		"command":              true,
		"tool_limits":          true,
		"tool_output_filters":  true,
		"log_file":             true,
		"command_history_file": true,
	}
	for key := range raw {
		if !allowed[key] {
			return fmt.Errorf("unknown config key %q", key)
		}
	}
	if ws, ok := raw["window_size"].(float64); ok && ws < 1 {
		return fmt.Errorf("window_size must be positive")
	}
	if cmd, ok := raw["command"].(map[string]interface{}); ok {
		allowedCmd := map[string]bool{
			"timeout_seconds":     true,
			"max_output_bytes":    true,
			"extra_deny_patterns": true,
		}
		for key := range cmd {
			if !allowedCmd[key] {
				return fmt.Errorf("unknown config key %q", "command."+key)
			}
		}
	}
	return nil
}

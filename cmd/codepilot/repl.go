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

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"codepilot/internal/config"
	"codepilot/internal/tools"
)

func runREPL(registry *tools.Registry, cfg *config.Config, logger zerolog.Logger) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     cfg.CommandHistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize readline")
		fmt.Printf("Failed to initialize input: %v\n", err)
		return
	}
	defer rl.Close()

	fmt.Println("codepilot - type 'tools' to list operations, 'help' for usage, 'exit' to quit")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			logger.Error().Err(err).Msg("readline failed")
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if handleSpecial(line, registry) {
			continue
		}
		if line == "exit" || line == "quit" {
			return
		}

		dispatchLine(registry, line, logger)
	}
}

func runBatch(registry *tools.Registry, logger zerolog.Logger) {
	scanner := newStdinScanner()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		dispatchLine(registry, line, logger)
	}
	if err := scanner.Err(); err != nil {
		logger.Error().Err(err).Msg("failed to read batch input")
	}
}

func dispatchLine(registry *tools.Registry, line string, logger zerolog.Logger) {
	cmd, err := parseCommandLine(line)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	var result *tools.Result
	if len(cmd.Named) == 0 {
		result = registry.ExecutePositional(context.Background(), cmd.Tool, cmd.Positional)
	} else {
		raw, err := mergeArgs(registry, cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		result = registry.Execute(context.Background(), cmd.Tool, raw)
	}

	logger.Debug().Str("tool", cmd.Tool).Str("status", string(result.Status)).Msg("dispatched")
	if result.OK() {
		fmt.Println(result.Message)
	} else {
		fmt.Printf("Error (%s): %s\n", result.ErrorKind, result.Message)
	}
}

// mergeArgs resolves positional values against the tool's schema and
// overlays named arguments, so mixed supply reaches Execute as one map.
func mergeArgs(registry *tools.Registry, cmd *commandLine) (map[string]interface{}, error) {
	schema, err := registry.SchemaFor(cmd.Tool)
	if err != nil {
		return nil, err
	}
	raw, err := schema.Positional(cmd.Positional)
	if err != nil {
		return nil, err
	}
	for key, value := range cmd.Named {
		raw[key] = value
	}
	return raw, nil
}

func handleSpecial(line string, registry *tools.Registry) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "help":
		fmt.Println("Usage: <tool> [args...] [--name=value ...]")
		fmt.Println("Commands: tools, schema <tool>, state, history, exit")
		return true
	case "tools":
		for _, info := range registry.ListTools() {
			fmt.Printf("  %-16s %s\n", info.Name, info.Description)
		}
		return true
	case "schema":
		if len(fields) < 2 {
			fmt.Println("Usage: schema <tool>")
			return true
		}
		schema, err := registry.SchemaFor(fields[1])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return true
		}
		for _, p := range schema.Parameters {
			req := "optional"
			if p.Required {
				req = "required"
			}
			fmt.Printf("  %-12s %-8s %-8s %s\n", p.Name, p.Type, req, p.Description)
		}
		return true
	case "history":
		for _, entry := range registry.History() {
			fmt.Printf("  %s %-14s [%s] %s\n", entry.Time.Format("15:04:05"), entry.Tool, entry.Status, entry.Args)
		}
		return true
	}
	return false
}

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

package tools

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"codepilot/internal/paths"
)

const maxPathLength = 4096

// registerBuiltinTools registers the full built-in tool set.
func registerBuiltinTools(r *Registry) {
	register := func(tool Tool) {
		if err := r.Register(tool); err != nil {
			panic(err)
		}
	}

	registerNavigationTools(register)
	registerSearchTools(register)
	registerEditTools(register)
	registerFileManagementTools(register)

	register(&ToolDefinition{
		NameValue:        "run_command",
		DescriptionValue: "Execute a shell command with deny-list screening, timeout protection and bounded output capture",
		SchemaValue: Schema{Parameters: []Parameter{
			{Name: "command", Type: TypeString, Required: true, Description: "The shell command to execute"},
			{Name: "timeout", Type: TypeInt, Description: "Timeout override in seconds; must be below the configured ceiling"},
		}},
		ExecuteFunc:  r.runCommand,
		ValidateFunc: ChainValidation(RequireNonBlank("command"), RequirePositive("timeout")),
	})

	register(&ToolDefinition{
		NameValue:        "state",
		DescriptionValue: "Display the current session state: open file, view window and recent invocations",
		SchemaValue:      Schema{},
		ExecuteFunc:      stateTool,
	})
}

func (r *Registry) runCommand(ctx context.Context, sess *Session, args Args) (*Output, error) {
	var override time.Duration
	if args.Has("timeout") {
		override = time.Duration(args.Int("timeout")) * time.Second
	}

	out, err := r.gateway.Run(ctx, sess.Workdir(), args.String("command"), override)
	if err != nil {
		return nil, err
	}

	var parts []string
	if out.ExitCode == 0 {
		parts = append(parts, "Command completed (exit code: 0)")
	} else {
		parts = append(parts, fmt.Sprintf("Command completed with exit code %d", out.ExitCode))
	}
	if out.Stdout != "" {
		parts = append(parts, "stdout:\n"+out.Stdout)
	}
	if out.Stderr != "" {
		parts = append(parts, "stderr:\n"+out.Stderr)
	}
	if out.Truncated {
		parts = append(parts, "(output truncated)")
	}

	return TextData(strings.Join(parts, "\n"), map[string]interface{}{
		"exit_code": out.ExitCode,
		"stdout":    out.Stdout,
		"stderr":    out.Stderr,
		"truncated": out.Truncated,
	}), nil
}

func stateTool(ctx context.Context, sess *Session, args Args) (*Output, error) {
	var b strings.Builder
	b.WriteString("Current session state:\n\n")
	b.WriteString(sess.Summary())

	if sess.OpenFile() != "" {
		if window, err := showWindow(sess); err == nil {
			b.WriteString("\nCurrent window:\n")
			b.WriteString(window)
		}
	}

	history := sess.History()
	if n := len(history); n > 0 {
		b.WriteString("\nRecent invocations:\n")
		start := n - 10
		if start < 0 {
			start = 0
		}
		for _, entry := range history[start:] {
			fmt.Fprintf(&b, "  %s %s [%s]\n", entry.Time.Format("15:04:05"), entry.Tool, entry.Status)
		}
	}

	start, end, _ := sess.Window()
	return TextData(b.String(), map[string]interface{}{
		"open_file":     sess.OpenFile(),
		"window_start":  start,
		"window_end":    end,
		"total_lines":   sess.TotalLines(),
		"history_count": len(history),
	}), nil
}

// Shared file helpers for tool bodies.

func resolveToolPath(sess *Session, path string) (string, error) {
	if err := paths.ValidatePathString(path, maxPathLength); err != nil {
		return "", &ArgumentError{Parameter: "path", Reason: err.Error()}
	}
	return paths.Absolutize(path, sess.Workdir()), nil
}

// readLines loads a text file as lines. A file ending in a newline does
// not produce a trailing empty line; an empty file counts as one empty
// line.
func readLines(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path %q is a directory", path)
	}
	limits := getLimits()
	if info.Size() > limits.MaxFileSizeBytes {
		return nil, fmt.Errorf("file %s exceeds maximum size of %d bytes", path, limits.MaxFileSizeBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return splitLines(string(data)), nil
}

func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func writeLines(path string, lines []string) error {
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// showWindow renders the open file's current window with line numbers,
// refreshing the session's line count first in case the file changed on
// disk since it was opened.
func showWindow(sess *Session) (string, error) {
	if sess.OpenFile() == "" {
		return "", ErrNoOpenFile
	}
	lines, err := readLines(sess.OpenFile())
	if err != nil {
		return "", err
	}
	sess.Refresh(len(lines))

	start, end, _ := sess.Window()
	var b strings.Builder
	for i := start; i <= end && i <= len(lines); i++ {
		fmt.Fprintf(&b, "%4d | %s\n", i, lines[i-1])
	}
	return b.String(), nil
}

func windowHeader(sess *Session) string {
	start, end, _ := sess.Window()
	return fmt.Sprintf("[File: %s (%d lines), window %d-%d]\n", sess.OpenFile(), sess.TotalLines(), start, end)
}

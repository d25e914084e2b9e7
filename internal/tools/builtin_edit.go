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
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

func registerEditTools(register func(Tool)) {
	register(&ToolDefinition{
		NameValue:        "create",
		DescriptionValue: "Create and open a new file. Fails if the path already exists",
		SchemaValue: Schema{Parameters: []Parameter{
			{Name: "path", Type: TypeString, Required: true, Description: "Path of the file to create"},
			{Name: "content", Type: TypeString, Description: "Initial file content"},
		}},
		ExecuteFunc:  createFile,
		ValidateFunc: RequireNonBlank("path"),
	})

	register(&ToolDefinition{
		NameValue:        "edit_lines",
		DescriptionValue: "Replace a line range of the currently open file with new content",
		SchemaValue: Schema{Parameters: []Parameter{
			{Name: "start", Type: TypeInt, Required: true, Description: "First line of the range to replace (1-based, inclusive)"},
			{Name: "end", Type: TypeInt, Required: true, Description: "Last line of the range to replace (inclusive)"},
			{Name: "content", Type: TypeString, Required: true, Description: "Replacement text; may span multiple lines"},
		}},
		ExecuteFunc: editLines,
	})

	register(&ToolDefinition{
		NameValue:        "insert_text",
		DescriptionValue: "Insert text before the given line of the currently open file",
		SchemaValue: Schema{Parameters: []Parameter{
			{Name: "line", Type: TypeInt, Required: true, Description: "Line to insert before; one past the last line appends"},
			{Name: "content", Type: TypeString, Required: true, Description: "Text to insert; may span multiple lines"},
		}},
		ExecuteFunc: insertText,
	})

	register(&ToolDefinition{
		NameValue:        "delete_lines",
		DescriptionValue: "Delete a line range from the currently open file",
		SchemaValue: Schema{Parameters: []Parameter{
			{Name: "start", Type: TypeInt, Required: true, Description: "First line to delete (1-based, inclusive)"},
			{Name: "end", Type: TypeInt, Required: true, Description: "Last line to delete (inclusive)"},
		}},
		ExecuteFunc: deleteLines,
	})
}

func createFile(ctx context.Context, sess *Session, args Args) (*Output, error) {
	resolved, err := resolveToolPath(sess, args.String("path"))
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(resolved); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrPathAlreadyExists, resolved)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat %s: %w", resolved, err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create parent directories: %w", err)
	}

	lines := splitLines(args.String("content"))
	if err := writeLines(resolved, lines); err != nil {
		return nil, err
	}
	sess.SetOpenFile(resolved, len(lines))

	window, err := showWindow(sess)
	if err != nil {
		return nil, err
	}
	return Text(fmt.Sprintf("Created %s\n%s%s", resolved, windowHeader(sess), window)), nil
}

func editLines(ctx context.Context, sess *Session, args Args) (*Output, error) {
	return applyLineEdit(sess, args.Int("start"), args.Int("end"), func(lines []string, start, end int) []string {
		replacement := splitLines(args.String("content"))
		out := make([]string, 0, len(lines)-(end-start+1)+len(replacement))
		out = append(out, lines[:start-1]...)
		out = append(out, replacement...)
		out = append(out, lines[end:]...)
		return out
	})
}

func insertText(ctx context.Context, sess *Session, args Args) (*Output, error) {
	if sess.OpenFile() == "" {
		return nil, ErrNoOpenFile
	}
	lines, err := readLines(sess.OpenFile())
	if err != nil {
		return nil, err
	}

	line := args.Int("line")
	if line < 1 || line > len(lines)+1 {
		return nil, fmt.Errorf("%w: line %d, file has %d lines", ErrOutOfRange, line, len(lines))
	}

	inserted := splitLines(args.String("content"))
	updated := make([]string, 0, len(lines)+len(inserted))
	updated = append(updated, lines[:line-1]...)
	updated = append(updated, inserted...)
	updated = append(updated, lines[line-1:]...)

	return finishEdit(sess, lines, updated, line)
}

func deleteLines(ctx context.Context, sess *Session, args Args) (*Output, error) {
	return applyLineEdit(sess, args.Int("start"), args.Int("end"), func(lines []string, start, end int) []string {
		out := make([]string, 0, len(lines)-(end-start+1))
		out = append(out, lines[:start-1]...)
		out = append(out, lines[end:]...)
		return out
	})
}

// applyLineEdit handles the shared open-file range edit flow: bounds
// checks, transformation, write-back and window placement.
func applyLineEdit(sess *Session, start, end int, transform func(lines []string, start, end int) []string) (*Output, error) {
	if sess.OpenFile() == "" {
		return nil, ErrNoOpenFile
	}
	lines, err := readLines(sess.OpenFile())
	if err != nil {
		return nil, err
	}

	if start < 1 || start > len(lines) {
		return nil, fmt.Errorf("%w: start line %d, file has %d lines", ErrOutOfRange, start, len(lines))
	}
	if end < start || end > len(lines) {
		return nil, fmt.Errorf("%w: end line %d (start %d, file has %d lines)", ErrOutOfRange, end, start, len(lines))
	}

	updated := transform(lines, start, end)
	return finishEdit(sess, lines, updated, start)
}

func finishEdit(sess *Session, before, after []string, focusLine int) (*Output, error) {
	if err := writeLines(sess.OpenFile(), after); err != nil {
		return nil, err
	}
	sess.Refresh(len(after))
	if focusLine > len(after) {
		focusLine = len(after)
	}
	if focusLine >= 1 {
		// Cannot fail: focusLine is within the refreshed bounds.
		_ = sess.GotoLine(focusLine)
	}

	diff := renderDiff(strings.Join(before, "\n"), strings.Join(after, "\n"))
	window, err := showWindow(sess)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Edited %s (%d -> %d lines)\n", sess.OpenFile(), len(before), len(after))
	if diff != "" {
		b.WriteString("Changes:\n")
		b.WriteString(diff)
		b.WriteString("\n")
	}
	b.WriteString(windowHeader(sess))
	b.WriteString(window)
	return Text(b.String()), nil
}

// renderDiff produces a compact patch of the edit for the result message.
func renderDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	patches := dmp.PatchMake(before, after)
	if len(patches) == 0 {
		return ""
	}
	return strings.TrimSpace(dmp.PatchToText(patches))
}

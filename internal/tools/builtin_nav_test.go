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
	"testing"
)

// writeNumberedFile creates a file whose line i reads "line i".
func writeNumberedFile(t *testing.T, dir, name string, lines int) string {
	t.Helper()
	var b strings.Builder
	for i := 1; i <= lines; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func newFileRegistry(t *testing.T, lines int) (*Registry, string) {
	t.Helper()
	dir := t.TempDir()
	writeNumberedFile(t, dir, "big.txt", lines)
	registry, err := NewRegistry(Options{Workdir: dir, WindowSize: 50})
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	return registry, dir
}

func TestOpenShowsTopWindow(t *testing.T) {
	registry, _ := newFileRegistry(t, 500)
	result := registry.Execute(context.Background(), "open", map[string]interface{}{"path": "big.txt"})
	if !result.OK() {
		t.Fatalf("open failed: %s", result.Message)
	}
	if !strings.Contains(result.Message, "(500 lines), window 1-50]") {
		t.Fatalf("expected top window header, got: %s", firstLine(result.Message))
	}
	if !strings.Contains(result.Message, "   1 | line 1\n") {
		t.Fatal("expected line 1 in the window")
	}
	if strings.Contains(result.Message, "  51 | ") {
		t.Fatal("window leaked past line 50")
	}
}

func TestOpenAtLine(t *testing.T) {
	registry, _ := newFileRegistry(t, 500)
	result := registry.Execute(context.Background(), "open", map[string]interface{}{"path": "big.txt", "line": 120})
	if !result.OK() {
		t.Fatalf("open failed: %s", result.Message)
	}
	if !strings.Contains(result.Message, " 120 | line 120\n") {
		t.Fatalf("expected line 120 visible, got header: %s", firstLine(result.Message))
	}
}

func TestOpenMissingFile(t *testing.T) {
	registry, _ := newFileRegistry(t, 10)
	result := registry.Execute(context.Background(), "open", map[string]interface{}{"path": "no_such.txt"})
	if result.OK() {
		t.Fatal("expected failure for missing file")
	}
	if result.ErrorKind != KindPathNotFound {
		t.Fatalf("expected kind %q, got %q", KindPathNotFound, result.ErrorKind)
	}
}

func TestGotoLastLineClampsWindow(t *testing.T) {
	registry, _ := newFileRegistry(t, 500)
	registry.Execute(context.Background(), "open", map[string]interface{}{"path": "big.txt"})
	result := registry.Execute(context.Background(), "goto", map[string]interface{}{"line": 500})
	if !result.OK() {
		t.Fatalf("goto failed: %s", result.Message)
	}
	if !strings.Contains(result.Message, "window 451-500]") {
		t.Fatalf("expected window 451-500, got header: %s", firstLine(result.Message))
	}
}

func TestGotoOutOfRange(t *testing.T) {
	registry, _ := newFileRegistry(t, 100)
	registry.Execute(context.Background(), "open", map[string]interface{}{"path": "big.txt"})
	result := registry.Execute(context.Background(), "goto", map[string]interface{}{"line": 101})
	if result.OK() {
		t.Fatal("expected failure past end of file")
	}
	if result.ErrorKind != KindOutOfRange {
		t.Fatalf("expected kind %q, got %q", KindOutOfRange, result.ErrorKind)
	}

	// The window is untouched by the failed goto.
	state := registry.Execute(context.Background(), "state", nil)
	if state.Data["window_start"] != 1 || state.Data["window_end"] != 50 {
		t.Fatalf("window moved on failed goto: %v-%v", state.Data["window_start"], state.Data["window_end"])
	}
}

func TestGotoWithoutOpenFile(t *testing.T) {
	registry, _ := newFileRegistry(t, 10)
	result := registry.Execute(context.Background(), "goto", map[string]interface{}{"line": 1})
	if result.OK() {
		t.Fatal("expected failure without an open file")
	}
	if result.ErrorKind != KindOutOfRange {
		t.Fatalf("expected kind %q, got %q", KindOutOfRange, result.ErrorKind)
	}
}

func TestScrollSequence(t *testing.T) {
	registry, _ := newFileRegistry(t, 120)
	registry.Execute(context.Background(), "open", map[string]interface{}{"path": "big.txt"})

	down := registry.Execute(context.Background(), "scroll_down", nil)
	if !strings.Contains(down.Message, "window 51-100]") {
		t.Fatalf("expected window 51-100, got header: %s", firstLine(down.Message))
	}

	// Second scroll clamps to the end of the file.
	down = registry.Execute(context.Background(), "scroll_down", nil)
	if !strings.Contains(down.Message, "window 71-120]") {
		t.Fatalf("expected window 71-120, got header: %s", firstLine(down.Message))
	}

	// Scrolling past the end stays put.
	down = registry.Execute(context.Background(), "scroll_down", nil)
	if !down.OK() || !strings.Contains(down.Message, "window 71-120]") {
		t.Fatalf("expected clamped no-op, got header: %s", firstLine(down.Message))
	}

	up := registry.Execute(context.Background(), "scroll_up", nil)
	if !strings.Contains(up.Message, "window 21-70]") {
		t.Fatalf("expected window 21-70, got header: %s", firstLine(up.Message))
	}
}

func TestGotoTracksExternalEdit(t *testing.T) {
	registry, dir := newFileRegistry(t, 50)
	registry.Execute(context.Background(), "open", map[string]interface{}{"path": "big.txt"})

	// Grow the file outside the session; goto must see the new bounds.
	writeNumberedFile(t, dir, "big.txt", 80)
	result := registry.Execute(context.Background(), "goto", map[string]interface{}{"line": 75})
	if !result.OK() {
		t.Fatalf("goto failed after external edit: %s", result.Message)
	}
	if !strings.Contains(result.Message, "  75 | line 75\n") {
		t.Fatal("expected line 75 visible after refresh")
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

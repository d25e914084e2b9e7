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
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newSearchRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"main.go":              "package main\n\nfunc main() {\n\tneedle()\n}\n",
		"util.go":              "package main\n\nfunc needle() {}\n",
		"docs/readme.md":       "needle appears here\nand needle again\n",
		"docs/notes.txt":       "nothing to see\n",
		".hidden/secrets.go":   "needle in a hidden dir\n",
		"binary.dat":           "needle\x00binary\n",
		"nested/deep/other.go": "package deep\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	registry, err := NewRegistry(Options{Workdir: dir})
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	return registry, dir
}

func TestFindFileGlob(t *testing.T) {
	registry, _ := newSearchRegistry(t)
	result := registry.Execute(context.Background(), "find_file", map[string]interface{}{"pattern": "*.go"})
	if !result.OK() {
		t.Fatalf("find_file failed: %s", result.Message)
	}
	for _, want := range []string{"main.go", "util.go", "other.go"} {
		if !strings.Contains(result.Message, want) {
			t.Errorf("expected %s in results: %s", want, result.Message)
		}
	}
	if strings.Contains(result.Message, "secrets.go") {
		t.Error("hidden directory was not skipped")
	}
	if strings.Contains(result.Message, "readme.md") {
		t.Error("non-matching file listed")
	}
}

func TestFindFileSubstringFallback(t *testing.T) {
	registry, _ := newSearchRegistry(t)
	// "[util" is an invalid glob; it falls back to substring matching and
	// finds nothing, rather than erroring.
	result := registry.Execute(context.Background(), "find_file", map[string]interface{}{"pattern": "[util"})
	if !result.OK() {
		t.Fatalf("find_file failed: %s", result.Message)
	}
	if !strings.Contains(result.Message, "No files matching") {
		t.Fatalf("expected no matches, got: %s", result.Message)
	}
}

func TestFindFileNoMatches(t *testing.T) {
	registry, _ := newSearchRegistry(t)
	result := registry.Execute(context.Background(), "find_file", map[string]interface{}{"pattern": "*.rs"})
	if !result.OK() {
		t.Fatalf("find_file failed: %s", result.Message)
	}
	if !strings.Contains(result.Message, "No files matching") {
		t.Fatalf("expected empty result message, got: %s", result.Message)
	}
}

func TestSearchFileExplicitPath(t *testing.T) {
	registry, _ := newSearchRegistry(t)
	result := registry.Execute(context.Background(), "search_file", map[string]interface{}{
		"term": "needle",
		"file": "docs/readme.md",
	})
	if !result.OK() {
		t.Fatalf("search_file failed: %s", result.Message)
	}
	if !strings.Contains(result.Message, "Found 2 matches") {
		t.Fatalf("expected 2 matches, got: %s", firstLine(result.Message))
	}
	if !strings.Contains(result.Message, "line 1: needle appears here") {
		t.Fatalf("expected line citation, got: %s", result.Message)
	}
}

func TestSearchFileUsesOpenFile(t *testing.T) {
	registry, _ := newSearchRegistry(t)
	registry.Execute(context.Background(), "open", map[string]interface{}{"path": "util.go"})
	result := registry.Execute(context.Background(), "search_file", map[string]interface{}{"term": "needle"})
	if !result.OK() {
		t.Fatalf("search_file failed: %s", result.Message)
	}
	if !strings.Contains(result.Message, "util.go") {
		t.Fatalf("expected search against open file, got: %s", firstLine(result.Message))
	}
}

func TestSearchFileNoOpenFile(t *testing.T) {
	registry, _ := newSearchRegistry(t)
	result := registry.Execute(context.Background(), "search_file", map[string]interface{}{"term": "needle"})
	if result.OK() {
		t.Fatal("expected failure with neither file argument nor open file")
	}
}

func TestSearchDirCountsPerFile(t *testing.T) {
	registry, _ := newSearchRegistry(t)
	result := registry.Execute(context.Background(), "search_dir", map[string]interface{}{"term": "needle"})
	if !result.OK() {
		t.Fatalf("search_dir failed: %s", result.Message)
	}
	if !strings.Contains(result.Message, "readme.md (2 matches)") {
		t.Fatalf("expected per-file count, got: %s", result.Message)
	}
	if !strings.Contains(result.Message, "main.go (1 matches)") {
		t.Fatalf("expected main.go hit, got: %s", result.Message)
	}
	if strings.Contains(result.Message, "binary.dat") {
		t.Error("binary file was not skipped")
	}
	if strings.Contains(result.Message, "secrets.go") {
		t.Error("hidden directory was not skipped")
	}
}

func TestSearchDirMissingDir(t *testing.T) {
	registry, _ := newSearchRegistry(t)
	result := registry.Execute(context.Background(), "search_dir", map[string]interface{}{
		"term": "needle",
		"dir":  "no/such/dir",
	})
	if result.OK() {
		t.Fatal("expected failure for missing directory")
	}
	if result.ErrorKind != KindPathNotFound {
		t.Fatalf("expected kind %q, got %q", KindPathNotFound, result.ErrorKind)
	}
}

func TestWalkTreeHonorsEntryLimit(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 20; i++ {
		name := filepath.Join(dir, "f"+strings.Repeat("x", i)+".txt")
		if err := os.WriteFile(name, []byte("data\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	prev := getLimits()
	ConfigureLimits(Limits{
		MaxFileSizeBytes:    prev.MaxFileSizeBytes,
		MaxDirectoryDepth:   prev.MaxDirectoryDepth,
		MaxDirectoryEntries: 5,
	})
	defer ConfigureLimits(prev)

	seen := 0
	err := walkTree(dir, func(path string, d os.DirEntry) error {
		seen++
		return nil
	})
	if err != nil {
		t.Fatalf("walkTree failed: %v", err)
	}
	if seen > 5 {
		t.Fatalf("entry limit not honored: visited %d", seen)
	}
}

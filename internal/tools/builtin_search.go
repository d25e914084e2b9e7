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
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const maxSearchMatches = 100

func registerSearchTools(register func(Tool)) {
	register(&ToolDefinition{
		NameValue:        "find_file",
		DescriptionValue: "Find files whose name matches the given glob pattern or substring under dir (default: working directory)",
		SchemaValue: Schema{Parameters: []Parameter{
			{Name: "pattern", Type: TypeString, Required: true, Description: "File name, glob pattern or substring to match"},
			{Name: "dir", Type: TypeString, Description: "Directory to search in"},
		}},
		ExecuteFunc: findFile,
	})

	register(&ToolDefinition{
		NameValue:        "search_file",
		DescriptionValue: "Search for a term in a file. If file is not provided, searches the currently open file",
		SchemaValue: Schema{Parameters: []Parameter{
			{Name: "term", Type: TypeString, Required: true, Description: "Text to search for"},
			{Name: "file", Type: TypeString, Description: "Path of the file to search"},
		}},
		ExecuteFunc: searchFile,
	})

	register(&ToolDefinition{
		NameValue:        "search_dir",
		DescriptionValue: "Search for a term across all files under dir (default: working directory)",
		SchemaValue: Schema{Parameters: []Parameter{
			{Name: "term", Type: TypeString, Required: true, Description: "Text to search for"},
			{Name: "dir", Type: TypeString, Description: "Directory to search in"},
		}},
		ExecuteFunc: searchDir,
	})
}

func findFile(ctx context.Context, sess *Session, args Args) (*Output, error) {
	dir, err := resolveSearchDir(sess, args)
	if err != nil {
		return nil, err
	}
	pattern := args.String("pattern")

	var matches []string
	err = walkTree(dir, func(path string, d fs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		matched, globErr := filepath.Match(pattern, name)
		if globErr != nil {
			// Not a valid glob; fall back to substring matching.
			matched = strings.Contains(name, pattern)
		}
		if matched {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(matches) == 0 {
		return Text(fmt.Sprintf("No files matching %q found in %s", pattern, dir)), nil
	}
	sort.Strings(matches)
	listed := matches
	note := ""
	if len(listed) > maxSearchMatches {
		listed = listed[:maxSearchMatches]
		note = fmt.Sprintf("\n(showing first %d of %d matches)", maxSearchMatches, len(matches))
	}
	return Text(fmt.Sprintf("Found %d files matching %q in %s:\n%s%s",
		len(matches), pattern, dir, strings.Join(listed, "\n"), note)), nil
}

func searchFile(ctx context.Context, sess *Session, args Args) (*Output, error) {
	term := args.String("term")

	var path string
	if args.Has("file") {
		resolved, err := resolveToolPath(sess, args.String("file"))
		if err != nil {
			return nil, err
		}
		path = resolved
	} else {
		if sess.OpenFile() == "" {
			return nil, fmt.Errorf("%w: provide the 'file' parameter or open a file first", ErrNoOpenFile)
		}
		path = sess.OpenFile()
	}

	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	var hits []string
	total := 0
	for i, line := range lines {
		if strings.Contains(line, term) {
			total++
			if total <= maxSearchMatches {
				hits = append(hits, fmt.Sprintf("line %d: %s", i+1, line))
			}
		}
	}

	if total == 0 {
		return Text(fmt.Sprintf("No matches for %q in %s", term, path)), nil
	}
	note := ""
	if total > maxSearchMatches {
		note = fmt.Sprintf("\n(showing first %d of %d matches)", maxSearchMatches, total)
	}
	return Text(fmt.Sprintf("Found %d matches for %q in %s:\n%s%s",
		total, term, path, strings.Join(hits, "\n"), note)), nil
}

func searchDir(ctx context.Context, sess *Session, args Args) (*Output, error) {
	dir, err := resolveSearchDir(sess, args)
	if err != nil {
		return nil, err
	}
	term := args.String("term")
	limits := getLimits()

	type fileHits struct {
		path  string
		count int
	}
	var results []fileHits
	totalMatches := 0

	err = walkTree(dir, func(path string, d fs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		info, statErr := d.Info()
		if statErr != nil || info.Size() > limits.MaxFileSizeBytes {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil || !isTextContent(data) {
			return nil
		}
		count := strings.Count(string(data), term)
		if count > 0 {
			results = append(results, fileHits{path: path, count: count})
			totalMatches += count
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if totalMatches == 0 {
		return Text(fmt.Sprintf("No matches for %q in %s", term, dir)), nil
	}
	sort.Slice(results, func(i, j int) bool { return results[i].path < results[j].path })
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d matches for %q in %d files under %s:\n", totalMatches, term, len(results), dir)
	for _, r := range results {
		fmt.Fprintf(&b, "%s (%d matches)\n", r.path, r.count)
	}
	return Text(b.String()), nil
}

func resolveSearchDir(sess *Session, args Args) (string, error) {
	dir := sess.Workdir()
	if args.Has("dir") {
		resolved, err := resolveToolPath(sess, args.String("dir"))
		if err != nil {
			return "", err
		}
		dir = resolved
	}
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrPathNotFound, dir)
		}
		return "", fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path %q is not a directory", dir)
	}
	return dir, nil
}

// walkTree traverses dir depth-first, honoring the configured depth and
// entry limits and skipping hidden directories.
func walkTree(dir string, visit func(path string, d fs.DirEntry) error) error {
	limits := getLimits()
	visited := 0
	baseDepth := strings.Count(filepath.Clean(dir), string(os.PathSeparator))

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			depth := strings.Count(filepath.Clean(path), string(os.PathSeparator)) - baseDepth
			if depth > limits.MaxDirectoryDepth {
				return filepath.SkipDir
			}
		}
		visited++
		if visited > limits.MaxDirectoryEntries {
			return fs.SkipAll
		}
		return visit(path, d)
	})
}

// isTextContent reports whether data looks like text rather than binary.
func isTextContent(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	sample := data
	if len(sample) > 8000 {
		sample = sample[:8000]
	}
	for _, b := range sample {
		if b == 0 {
			return false
		}
	}
	return true
}

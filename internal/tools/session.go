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
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultWindowSize is the number of lines shown of the open file when no
// size is configured.
const DefaultWindowSize = 50

// maxHistoryEntries bounds the in-memory invocation history. Oldest
// entries are dropped past this point.
const maxHistoryEntries = 1000

// HistoryEntry records one past invocation for diagnostics and for the
// state tool.
type HistoryEntry struct {
	ID      string
	Time    time.Time
	Tool    string
	Args    string
	Status  Status
	Message string
}

// Session is the mutable context shared across tool invocations: the
// currently open file, its view window and the invocation history. The
// registry serializes all access; tool bodies receive the session only
// while holding the registry's session lock.
type Session struct {
	workdir    string
	windowSize int

	openFile   string
	totalLines int
	winStart   int
	winEnd     int

	history []HistoryEntry
}

// NewSession creates a session rooted at workdir. A non-positive
// windowSize falls back to DefaultWindowSize.
func NewSession(workdir string, windowSize int) *Session {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &Session{workdir: workdir, windowSize: windowSize}
}

// Workdir returns the session's working directory.
func (s *Session) Workdir() string {
	return s.workdir
}

// WindowSize returns the configured window size, fixed for the session.
func (s *Session) WindowSize() int {
	return s.windowSize
}

// OpenFile returns the path of the file currently under view, or "" when
// no file has been opened yet.
func (s *Session) OpenFile() string {
	return s.openFile
}

// TotalLines returns the line count of the open file as of the last open
// or refresh.
func (s *Session) TotalLines() int {
	return s.totalLines
}

// Window returns the current view window bounds. ok is false when no
// file is open.
func (s *Session) Window() (start, end int, ok bool) {
	if s.openFile == "" {
		return 0, 0, false
	}
	return s.winStart, s.winEnd, true
}

// SetOpenFile replaces the open file and resets the window to the top of
// the file.
func (s *Session) SetOpenFile(path string, totalLines int) {
	if totalLines < 1 {
		totalLines = 1
	}
	s.openFile = path
	s.totalLines = totalLines
	s.winStart = 1
	s.winEnd = minInt(s.windowSize, totalLines)
}

// Refresh updates the line count of the open file after an edit, keeping
// the window position but clamping it to the new bounds.
func (s *Session) Refresh(totalLines int) {
	if s.openFile == "" {
		return
	}
	if totalLines < 1 {
		totalLines = 1
	}
	s.totalLines = totalLines
	s.clampWindow(s.winStart)
}

// ShiftWindow moves the window by delta lines, positive forward. The
// result is clamped to the file bounds; shifting past a boundary is a
// no-op rather than an error.
func (s *Session) ShiftWindow(delta int) {
	if s.openFile == "" {
		return
	}
	s.clampWindow(s.winStart + delta)
}

// GotoLine recenters the window so line is visible. Fails when line is
// outside the open file.
func (s *Session) GotoLine(line int) error {
	if s.openFile == "" {
		return ErrNoOpenFile
	}
	if line < 1 || line > s.totalLines {
		return fmt.Errorf("%w: line %d, file has %d lines", ErrOutOfRange, line, s.totalLines)
	}
	s.clampWindow(line - s.windowSize/2)
	return nil
}

func (s *Session) clampWindow(start int) {
	maxStart := s.totalLines - s.windowSize + 1
	if maxStart < 1 {
		maxStart = 1
	}
	if start > maxStart {
		start = maxStart
	}
	if start < 1 {
		start = 1
	}
	s.winStart = start
	s.winEnd = minInt(start+s.windowSize-1, s.totalLines)
}

// Record appends an invocation to the history. It never fails; once the
// cap is reached the oldest entry is dropped.
func (s *Session) Record(entry HistoryEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Time.IsZero() {
		entry.Time = time.Now()
	}
	s.history = append(s.history, entry)
	if len(s.history) > maxHistoryEntries {
		s.history = s.history[len(s.history)-maxHistoryEntries:]
	}
}

// History returns a copy of the recorded invocations.
func (s *Session) History() []HistoryEntry {
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// Summary renders the session state for display.
func (s *Session) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Working directory: %s\n", s.workdir)
	if s.openFile == "" {
		b.WriteString("No file currently open\n")
	} else {
		fmt.Fprintf(&b, "Open file: %s\n", s.openFile)
		fmt.Fprintf(&b, "Lines: %d | Window: %d-%d (size: %d)\n",
			s.totalLines, s.winStart, s.winEnd, s.windowSize)
	}
	fmt.Fprintf(&b, "Invocations recorded: %d\n", len(s.history))
	return b.String()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

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
	"reflect"
	"testing"
)

func TestParseCommandLine(t *testing.T) {
	cmd, err := parseCommandLine("open main.go 42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Tool != "open" {
		t.Errorf("expected tool open, got %q", cmd.Tool)
	}
	if !reflect.DeepEqual(cmd.Positional, []string{"main.go", "42"}) {
		t.Errorf("unexpected positional args: %v", cmd.Positional)
	}
	if len(cmd.Named) != 0 {
		t.Errorf("unexpected named args: %v", cmd.Named)
	}
}

func TestParseNamedArguments(t *testing.T) {
	cmd, err := parseCommandLine(`run_command --command="echo hello" --timeout=5`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Named["command"] != "echo hello" {
		t.Errorf("unexpected command value: %v", cmd.Named["command"])
	}
	if cmd.Named["timeout"] != "5" {
		t.Errorf("unexpected timeout value: %v", cmd.Named["timeout"])
	}
}

func TestParseBareFlag(t *testing.T) {
	cmd, err := parseCommandLine("ls --all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Named["all"] != true {
		t.Errorf("expected bare flag true, got %v", cmd.Named["all"])
	}
}

func TestParseQuotedTokens(t *testing.T) {
	cmd, err := parseCommandLine(`search_file "two words" 'single quoted'`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"two words", "single quoted"}
	if !reflect.DeepEqual(cmd.Positional, want) {
		t.Errorf("expected %v, got %v", want, cmd.Positional)
	}
}

func TestParseQuoteAdjacentToText(t *testing.T) {
	cmd, err := parseCommandLine(`create --content="line one"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Named["content"] != "line one" {
		t.Errorf("unexpected content: %v", cmd.Named["content"])
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := parseCommandLine(""); err == nil {
		t.Error("expected error for empty line")
	}
	if _, err := parseCommandLine("   "); err == nil {
		t.Error("expected error for blank line")
	}
	if _, err := parseCommandLine(`open "unterminated`); err == nil {
		t.Error("expected error for unterminated quote")
	}
	if _, err := parseCommandLine("ls --"); err == nil {
		t.Error("expected error for empty argument name")
	}
}

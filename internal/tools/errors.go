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
	"errors"
	"fmt"

	apperrors "codepilot/internal/errors"
)

// Common tool errors
var (
	// ErrUnknownTool indicates the requested tool doesn't exist in the registry.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrDuplicateTool indicates a tool name is already registered.
	ErrDuplicateTool = errors.New("duplicate tool name")

	// ErrInvalidArguments indicates tool arguments are invalid or malformed.
	ErrInvalidArguments = errors.New("invalid tool arguments")

	// ErrOutOfRange indicates a line number outside the open file's bounds.
	ErrOutOfRange = errors.New("line out of range")

	// ErrNoOpenFile indicates a navigation or edit tool ran before any file was opened.
	ErrNoOpenFile = errors.New("no file is currently open")

	// ErrPathNotFound indicates a filesystem path does not exist.
	ErrPathNotFound = errors.New("path not found")

	// ErrPathAlreadyExists indicates a path collision on creation.
	ErrPathAlreadyExists = errors.New("path already exists")

	// ErrCommandRejected indicates a shell command matched the deny-list.
	ErrCommandRejected = errors.New("command rejected by deny-list")

	// ErrTimeout indicates a shell command exceeded its execution deadline.
	ErrTimeout = errors.New("command timed out")
)

// Error kinds surfaced on the result boundary.
const (
	KindUnknownTool       = "unknown_tool"
	KindInvalidArguments  = "invalid_arguments"
	KindOutOfRange        = "out_of_range"
	KindPathNotFound      = "path_not_found"
	KindPathAlreadyExists = "path_already_exists"
	KindCommandRejected   = "command_rejected"
	KindTimeout           = "timeout"
	KindToolExecution     = "tool_execution_error"
)

// ArgumentError reports which parameter failed validation and why.
type ArgumentError struct {
	Parameter string
	Reason    string
}

func (e *ArgumentError) Error() string {
	if e.Parameter == "" {
		return fmt.Sprintf("%v: %s", ErrInvalidArguments, e.Reason)
	}
	return fmt.Sprintf("%v: parameter %q: %s", ErrInvalidArguments, e.Parameter, e.Reason)
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArguments
}

// kindForError maps an error to its result-boundary kind string.
func kindForError(err error) string {
	switch {
	case errors.Is(err, ErrUnknownTool):
		return KindUnknownTool
	case errors.Is(err, ErrInvalidArguments):
		return KindInvalidArguments
	case errors.Is(err, ErrOutOfRange), errors.Is(err, ErrNoOpenFile):
		return KindOutOfRange
	case errors.Is(err, ErrPathNotFound):
		return KindPathNotFound
	case errors.Is(err, ErrPathAlreadyExists):
		return KindPathAlreadyExists
	case errors.Is(err, ErrCommandRejected):
		return KindCommandRejected
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	default:
		return KindToolExecution
	}
}

// NewToolExecutionError wraps a tool execution error with a shared error code.
func NewToolExecutionError(toolName string, err error) *apperrors.Error {
	return apperrors.Wrap(apperrors.CodeToolExecution, fmt.Sprintf("tool %s failed", toolName), err)
}

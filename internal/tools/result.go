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

// Status discriminates invocation outcomes.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is the uniform outcome of one dispatch. Message is always
// present and self-explanatory; Data carries optional structured payload
// on success, ErrorKind classifies failures.
type Result struct {
	Status    Status                 `json:"status"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	ErrorKind string                 `json:"error_kind,omitempty"`
}

// OK reports whether the invocation succeeded.
func (r *Result) OK() bool {
	return r.Status == StatusSuccess
}

func successResult(out *Output) *Result {
	if out == nil {
		out = Text("")
	}
	return &Result{
		Status:  StatusSuccess,
		Message: out.Message,
		Data:    out.Data,
	}
}

func failureResult(err error) *Result {
	return &Result{
		Status:    StatusError,
		Message:   err.Error(),
		ErrorKind: kindForError(err),
	}
}

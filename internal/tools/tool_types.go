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

import "context"

// Output is what a tool body hands back to the registry on success.
type Output struct {
	Message string
	Data    map[string]interface{}
}

// Text builds a plain-text output.
func Text(message string) *Output {
	return &Output{Message: message}
}

// TextData builds an output with a structured payload alongside the message.
func TextData(message string, data map[string]interface{}) *Output {
	return &Output{Message: message, Data: data}
}

// ExecutorFunc is the function signature for tool implementations. The
// session handle is exclusive for the duration of the call; bodies may
// read and mutate it without further synchronization.
type ExecutorFunc func(ctx context.Context, sess *Session, args Args) (*Output, error)

// Tool represents a callable tool/function with validation and execution hooks.
type Tool interface {
	Name() string
	Description() string
	Schema() Schema
	Execute(ctx context.Context, sess *Session, args Args) (*Output, error)
	Validate(args Args) error
}

// ToolDefinition provides a default implementation of Tool.
type ToolDefinition struct {
	NameValue        string
	DescriptionValue string
	SchemaValue      Schema
	ExecuteFunc      ExecutorFunc
	ValidateFunc     func(args Args) error
}

func (t *ToolDefinition) Name() string {
	return t.NameValue
}

func (t *ToolDefinition) Description() string {
	return t.DescriptionValue
}

func (t *ToolDefinition) Schema() Schema {
	return t.SchemaValue
}

func (t *ToolDefinition) Execute(ctx context.Context, sess *Session, args Args) (*Output, error) {
	if t.ExecuteFunc == nil {
		return Text(""), nil
	}
	return t.ExecuteFunc(ctx, sess, args)
}

func (t *ToolDefinition) Validate(args Args) error {
	if t.ValidateFunc == nil {
		return nil
	}
	return t.ValidateFunc(args)
}

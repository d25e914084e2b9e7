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
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// ToolInfo is the (name, description) pair returned by ListTools.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Options configures a registry at construction time.
type Options struct {
	// Workdir is the working tree root. Defaults to the process working
	// directory.
	Workdir string
	// WindowSize is the view window height, fixed for the session.
	WindowSize int
	// Gateway configures shell command execution.
	Gateway GatewayConfig
	// Logger receives dispatch logging. Defaults to a disabled logger.
	Logger zerolog.Logger
}

// Registry owns the mapping from tool name to implementation and the
// single shared session. Dispatch serializes tool bodies through the
// session lock, so at most one body runs against the session at any
// instant; bodies never need their own synchronization.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool

	sessionMu sync.Mutex
	session   *Session

	gateway *Gateway
	logger  zerolog.Logger
}

// NewRegistry creates a registry with the full built-in tool set.
func NewRegistry(opts Options) (*Registry, error) {
	workdir := opts.Workdir
	if workdir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		workdir = wd
	}

	gateway, err := NewGateway(opts.Gateway)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	r := &Registry{
		tools:   make(map[string]Tool),
		session: NewSession(workdir, opts.WindowSize),
		gateway: gateway,
		logger:  logger,
	}

	registerBuiltinTools(r)
	return r, nil
}

// Register adds a tool under its name. Registering the same name twice
// fails with ErrDuplicateTool. A malformed schema panics: that is a
// construction-time bug, not a runtime input problem.
func (r *Registry) Register(tool Tool) error {
	name := tool.Name()
	if strings.TrimSpace(name) == "" {
		panic("tools: registered tool with empty name")
	}
	if err := tool.Schema().check(); err != nil {
		panic(fmt.Sprintf("tools: tool %q: %v", name, err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	r.tools[name] = tool
	return nil
}

// ListTools enumerates registered tools in lexical name order. The order
// is stable across calls.
func (r *Registry) ListTools() []ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]ToolInfo, 0, len(r.tools))
	for _, tool := range r.tools {
		infos = append(infos, ToolInfo{Name: tool.Name(), Description: tool.Description()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// SchemaFor returns the named tool's input schema.
func (r *Registry) SchemaFor(name string) (Schema, error) {
	tool, ok := r.getTool(name)
	if !ok {
		return Schema{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return tool.Schema(), nil
}

// Execute dispatches one invocation. It is a total function: every call
// returns a Result and never panics, whatever the tool body does. The
// session lock is held for the duration of the body, and the invocation
// is recorded in the history whatever the outcome.
func (r *Registry) Execute(ctx context.Context, name string, raw map[string]interface{}) *Result {
	tool, ok := r.getTool(name)
	if !ok {
		result := failureResult(fmt.Errorf("%w: %q (available: %s)", ErrUnknownTool, name, r.toolNameList()))
		r.record(name, raw, result)
		r.log(name, result)
		return result
	}

	args, err := tool.Schema().Validate(raw)
	if err == nil {
		err = tool.Validate(args)
	}
	if err != nil {
		result := failureResult(err)
		r.record(name, raw, result)
		r.log(name, result)
		return result
	}

	result := r.runBody(ctx, tool, raw, args)
	r.log(name, result)
	return result
}

// runBody invokes the tool body under the session lock, converting any
// panic or error into a failure result. The history entry is appended
// inside the same critical section so entry order matches effect order.
func (r *Registry) runBody(ctx context.Context, tool Tool, raw map[string]interface{}, args Args) (result *Result) {
	r.sessionMu.Lock()
	defer r.sessionMu.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			err := NewToolExecutionError(tool.Name(), fmt.Errorf("panic: %v", rec))
			result = failureResult(err)
		}
		r.session.Record(historyEntry(tool.Name(), raw, result))
	}()

	out, err := tool.Execute(ctx, r.session, args)
	if err != nil {
		return failureResult(err)
	}
	if out != nil {
		out.Message, _ = sanitizeToolOutput(out.Message)
	}
	return successResult(out)
}

// ExecutePositional resolves an ordered argument list against the tool's
// schema before dispatching. Positional and named supply produce the same
// validated argument set.
func (r *Registry) ExecutePositional(ctx context.Context, name string, values []string) *Result {
	tool, ok := r.getTool(name)
	if !ok {
		result := failureResult(fmt.Errorf("%w: %q (available: %s)", ErrUnknownTool, name, r.toolNameList()))
		r.record(name, nil, result)
		r.log(name, result)
		return result
	}
	raw, err := tool.Schema().Positional(values)
	if err != nil {
		result := failureResult(err)
		r.record(name, nil, result)
		r.log(name, result)
		return result
	}
	return r.Execute(ctx, name, raw)
}

// OpenAITools exports all schemas as OpenAI function-calling definitions.
func (r *Registry) OpenAITools() []openai.Tool {
	infos := r.ListTools()
	defs := make([]openai.Tool, 0, len(infos))
	for _, info := range infos {
		tool, _ := r.getTool(info.Name)
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters:  tool.Schema().properties(),
			},
		})
	}
	return defs
}

// ExecuteOpenAIToolCall executes an OpenAI tool call payload.
func (r *Registry) ExecuteOpenAIToolCall(ctx context.Context, call openai.ToolCall) *Result {
	name := call.Function.Name
	if name == "" {
		result := failureResult(fmt.Errorf("%w: tool call missing function name", ErrInvalidArguments))
		r.record("unknown_tool", nil, result)
		return result
	}
	raw := map[string]interface{}{}
	if strings.TrimSpace(call.Function.Arguments) != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &raw); err != nil {
			result := failureResult(&ArgumentError{Parameter: "", Reason: fmt.Sprintf("malformed arguments JSON: %v", err)})
			r.record(name, nil, result)
			return result
		}
	}
	return r.Execute(ctx, name, raw)
}

// StateSummary returns the session summary under the session lock, for
// callers outside a tool body.
func (r *Registry) StateSummary() string {
	r.sessionMu.Lock()
	defer r.sessionMu.Unlock()
	return r.session.Summary()
}

// History returns a copy of the invocation history.
func (r *Registry) History() []HistoryEntry {
	r.sessionMu.Lock()
	defer r.sessionMu.Unlock()
	return r.session.History()
}

// record appends a history entry for invocations that never reached a
// tool body (unknown tool, invalid arguments).
func (r *Registry) record(name string, raw map[string]interface{}, result *Result) {
	r.sessionMu.Lock()
	defer r.sessionMu.Unlock()
	r.session.Record(historyEntry(name, raw, result))
}

func historyEntry(name string, raw map[string]interface{}, result *Result) HistoryEntry {
	argsText := ""
	if len(raw) > 0 {
		if data, err := json.Marshal(raw); err == nil {
			argsText = string(data)
		}
	}
	message := result.Message
	if len(message) > 200 {
		message = message[:200]
	}
	return HistoryEntry{
		Tool:    name,
		Args:    argsText,
		Status:  result.Status,
		Message: message,
	}
}

func (r *Registry) log(name string, result *Result) {
	if result.OK() {
		r.logger.Debug().Str("tool", name).Msg("tool dispatched")
		return
	}
	r.logger.Debug().Str("tool", name).Str("kind", result.ErrorKind).Str("error", result.Message).Msg("tool failed")
}

func (r *Registry) getTool(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

func (r *Registry) toolNameList() string {
	infos := r.ListTools()
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return strings.Join(names, ", ")
}

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
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	registry, err := NewRegistry(Options{Workdir: t.TempDir(), WindowSize: 50})
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	return registry
}

func TestExecuteUnknownTool(t *testing.T) {
	registry := newTestRegistry(t)
	result := registry.Execute(context.Background(), "nonexistent_tool", map[string]interface{}{})
	if result.OK() {
		t.Fatal("expected failure for unknown tool")
	}
	if result.ErrorKind != KindUnknownTool {
		t.Fatalf("expected kind %q, got %q", KindUnknownTool, result.ErrorKind)
	}
	if result.Message == "" {
		t.Fatal("expected a failure message")
	}
}

func TestRegisterDuplicateName(t *testing.T) {
	registry := newTestRegistry(t)
	err := registry.Register(&ToolDefinition{NameValue: "open"})
	if err == nil {
		t.Fatal("expected error registering a duplicate tool name")
	}
}

func TestRegisterMalformedSchemaPanics(t *testing.T) {
	registry := newTestRegistry(t)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for malformed schema")
		}
	}()
	_ = registry.Register(&ToolDefinition{
		NameValue: "broken",
		SchemaValue: Schema{Parameters: []Parameter{
			{Name: "x", Type: TypeString},
			{Name: "x", Type: TypeString},
		}},
	})
}

func TestListToolsStableOrder(t *testing.T) {
	registry := newTestRegistry(t)
	first := registry.ListTools()
	if len(first) == 0 {
		t.Fatal("expected a populated tool list")
	}
	second := registry.ListTools()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("tool list order unstable at index %d: %v vs %v", i, first[i], second[i])
		}
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].Name >= first[i].Name {
			t.Fatalf("tool list not in lexical order: %q before %q", first[i-1].Name, first[i].Name)
		}
	}
}

func TestSchemaAndExecuteAgree(t *testing.T) {
	registry := newTestRegistry(t)
	for _, info := range registry.ListTools() {
		schema, err := registry.SchemaFor(info.Name)
		if err != nil {
			t.Fatalf("SchemaFor(%s): %v", info.Name, err)
		}
		for _, p := range schema.Parameters {
			if !p.Required {
				continue
			}
			// Omitting any required parameter must fail validation and
			// never reach the tool body.
			raw := map[string]interface{}{}
			for _, q := range schema.Parameters {
				if q.Required && q.Name != p.Name {
					raw[q.Name] = sampleValue(q.Type)
				}
			}
			result := registry.Execute(context.Background(), info.Name, raw)
			if result.OK() {
				t.Fatalf("tool %s: expected failure without required %q", info.Name, p.Name)
			}
			if result.ErrorKind != KindInvalidArguments {
				t.Fatalf("tool %s: expected kind %q, got %q", info.Name, KindInvalidArguments, result.ErrorKind)
			}
		}
	}
}

func sampleValue(t ParamType) interface{} {
	switch t {
	case TypeInt:
		return 1
	case TypeBool:
		return true
	default:
		return "x"
	}
}

func TestExecuteRecoversPanic(t *testing.T) {
	registry := newTestRegistry(t)
	err := registry.Register(&ToolDefinition{
		NameValue: "panicker",
		ExecuteFunc: func(ctx context.Context, sess *Session, args Args) (*Output, error) {
			panic("boom")
		},
	})
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	result := registry.Execute(context.Background(), "panicker", nil)
	if result.OK() {
		t.Fatal("expected failure from panicking tool")
	}
	if result.ErrorKind != KindToolExecution {
		t.Fatalf("expected kind %q, got %q", KindToolExecution, result.ErrorKind)
	}

	// The registry keeps working after the panic.
	if after := registry.Execute(context.Background(), "state", nil); !after.OK() {
		t.Fatalf("expected registry to survive a tool panic, got %v", after.Message)
	}
}

func TestExecuteRecordsHistory(t *testing.T) {
	registry := newTestRegistry(t)

	registry.Execute(context.Background(), "nonexistent_tool", nil)
	registry.Execute(context.Background(), "goto", map[string]interface{}{"line": 3})
	registry.Execute(context.Background(), "state", nil)

	history := registry.History()
	if len(history) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(history))
	}
	if history[0].Tool != "nonexistent_tool" || history[0].Status != StatusError {
		t.Fatalf("unexpected first entry: %+v", history[0])
	}
	if history[1].Tool != "goto" || history[1].Status != StatusError {
		t.Fatalf("unexpected second entry: %+v", history[1])
	}
	if history[2].Tool != "state" || history[2].Status != StatusSuccess {
		t.Fatalf("unexpected third entry: %+v", history[2])
	}
}

func TestPositionalAndNamedAgree(t *testing.T) {
	registry := newTestRegistry(t)

	named := registry.Execute(context.Background(), "goto", map[string]interface{}{"line": 3})
	positional := registry.ExecutePositional(context.Background(), "goto", []string{"3"})

	// No file is open, so both fail the same way; what matters is that
	// both supplies resolved to the same validated argument set.
	if named.ErrorKind != positional.ErrorKind {
		t.Fatalf("kinds differ: %q vs %q", named.ErrorKind, positional.ErrorKind)
	}
	if named.Message != positional.Message {
		t.Fatalf("messages differ: %q vs %q", named.Message, positional.Message)
	}
}

func TestOpenAIToolsExport(t *testing.T) {
	registry := newTestRegistry(t)
	defs := registry.OpenAITools()
	if len(defs) != len(registry.ListTools()) {
		t.Fatalf("expected %d definitions, got %d", len(registry.ListTools()), len(defs))
	}
	for _, def := range defs {
		if def.Function == nil || def.Function.Name == "" {
			t.Fatalf("definition missing function name: %+v", def)
		}
		if def.Function.Description == "" {
			t.Fatalf("tool %s: missing description", def.Function.Name)
		}
	}
}

func TestConcurrentDispatchSerializes(t *testing.T) {
	registry := newTestRegistry(t)
	err := registry.Register(&ToolDefinition{
		NameValue: "bump",
		ExecuteFunc: func(ctx context.Context, sess *Session, args Args) (*Output, error) {
			// Read-modify-write with a window for lost updates if two
			// bodies ever overlap.
			n := sess.TotalLines()
			time.Sleep(time.Millisecond)
			sess.SetOpenFile("counter", n+1)
			return Text("ok"), nil
		},
	})
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	const perWorker = 20
	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				registry.Execute(context.Background(), "bump", nil)
			}
		}()
	}
	wg.Wait()

	summary := registry.StateSummary()
	want := 2 * perWorker
	if !strings.Contains(summary, "Lines: 40") {
		t.Fatalf("expected %d serialized bumps, summary: %s", want, summary)
	}
}

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
	"math"
	"strconv"
	"strings"
)

// ParamType is the declared type of a schema parameter.
type ParamType string

const (
	TypeString ParamType = "string"
	TypeInt    ParamType = "integer"
	TypeBool   ParamType = "boolean"
)

// Parameter describes one named input of a tool.
type Parameter struct {
	Name        string
	Type        ParamType
	Required    bool
	Description string
}

// Schema is the ordered, declarative input description of a tool. The
// parameter order is significant: positional argument lists are mapped
// onto it left to right.
type Schema struct {
	Parameters []Parameter
}

// Args is a validated, typed argument bundle. Values are guaranteed to
// match their declared parameter types; tool bodies consume them without
// re-validating.
type Args map[string]interface{}

// String returns a string argument, or "" when absent.
func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Int returns an integer argument, or 0 when absent.
func (a Args) Int(key string) int {
	n, _ := a[key].(int)
	return n
}

// Bool returns a boolean argument, or false when absent.
func (a Args) Bool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// Has reports whether the argument was supplied.
func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// check verifies the schema itself is well formed. A malformed schema is
// a construction-time bug; Register panics on it.
func (s Schema) check() error {
	seen := make(map[string]bool, len(s.Parameters))
	for _, p := range s.Parameters {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("schema parameter with empty name")
		}
		if seen[p.Name] {
			return fmt.Errorf("schema parameter %q declared twice", p.Name)
		}
		seen[p.Name] = true
		switch p.Type {
		case TypeString, TypeInt, TypeBool:
		default:
			return fmt.Errorf("schema parameter %q has unknown type %q", p.Name, p.Type)
		}
	}
	return nil
}

// Validate checks raw arguments against the schema and returns a typed
// bundle. Unknown keys are rejected so a mistyped parameter name surfaces
// as an error instead of being silently dropped.
func (s Schema) Validate(raw map[string]interface{}) (Args, error) {
	byName := make(map[string]Parameter, len(s.Parameters))
	for _, p := range s.Parameters {
		byName[p.Name] = p
	}

	for key := range raw {
		if _, ok := byName[key]; !ok {
			return nil, &ArgumentError{Parameter: key, Reason: "unknown parameter"}
		}
	}

	args := make(Args, len(raw))
	for _, p := range s.Parameters {
		value, present := raw[p.Name]
		if !present || value == nil {
			if p.Required {
				return nil, &ArgumentError{Parameter: p.Name, Reason: "required parameter missing"}
			}
			continue
		}
		converted, err := convertValue(value, p.Type)
		if err != nil {
			return nil, &ArgumentError{Parameter: p.Name, Reason: err.Error()}
		}
		args[p.Name] = converted
	}
	return args, nil
}

// Positional maps an ordered argument list onto the schema's parameter
// order, producing the same raw map a named call would supply.
func (s Schema) Positional(values []string) (map[string]interface{}, error) {
	if len(values) > len(s.Parameters) {
		return nil, &ArgumentError{
			Parameter: "",
			Reason:    fmt.Sprintf("too many arguments: got %d, schema has %d parameters", len(values), len(s.Parameters)),
		}
	}
	raw := make(map[string]interface{}, len(values))
	for i, v := range values {
		raw[s.Parameters[i].Name] = v
	}
	return raw, nil
}

func convertValue(value interface{}, t ParamType) (interface{}, error) {
	switch t {
	case TypeString:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("expected string, got %T", value)
	case TypeInt:
		switch v := value.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			// JSON numbers arrive as float64.
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("expected integer, got %v", v)
			}
			return int(v), nil
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("expected integer, got %q", v)
			}
			return n, nil
		default:
			return nil, fmt.Errorf("expected integer, got %T", value)
		}
	case TypeBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("expected boolean, got %q", v)
			}
			return b, nil
		default:
			return nil, fmt.Errorf("expected boolean, got %T", value)
		}
	}
	return nil, fmt.Errorf("unknown parameter type %q", t)
}

// properties renders the schema as a JSON-schema style parameters object
// for function-calling exports.
func (s Schema) properties() map[string]interface{} {
	props := make(map[string]interface{}, len(s.Parameters))
	required := make([]string, 0, len(s.Parameters))
	for _, p := range s.Parameters {
		props[p.Name] = map[string]interface{}{
			"type":        jsonType(p.Type),
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	out := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func jsonType(t ParamType) string {
	switch t {
	case TypeInt:
		return "number"
	case TypeBool:
		return "boolean"
	default:
		return "string"
	}
}

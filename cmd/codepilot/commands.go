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
	"fmt"
	"strings"
)

// commandLine is one parsed invocation: tool name, positional values and
// named --key=value arguments.
type commandLine struct {
	Tool       string
	Positional []string
	Named      map[string]interface{}
}

// parseCommandLine splits an input line into a tool invocation. Tokens
// are whitespace-separated; single or double quotes group tokens; a
// token of the form --key=value supplies a named argument and a bare
// --flag supplies a named boolean true.
func parseCommandLine(line string) (*commandLine, error) {
	tokens, err := tokenize(line)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	cmd := &commandLine{
		Tool:  tokens[0],
		Named: map[string]interface{}{},
	}
	for _, tok := range tokens[1:] {
		if strings.HasPrefix(tok, "--") {
			body := tok[2:]
			if body == "" {
				return nil, fmt.Errorf("empty argument name in %q", tok)
			}
			if eq := strings.IndexByte(body, '='); eq >= 0 {
				cmd.Named[body[:eq]] = body[eq+1:]
			} else {
				cmd.Named[body] = true
			}
			continue
		}
		cmd.Positional = append(cmd.Positional, tok)
	}
	return cmd, nil
}

func tokenize(line string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inToken := false
	var quote byte

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				current.WriteByte(c)
			}
		case c == '\'' || c == '"':
			quote = c
			inToken = true
		case c == ' ' || c == '\t':
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteByte(c)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote")
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}

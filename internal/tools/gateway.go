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
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const (
	defaultCommandTimeout = 30 * time.Second
	defaultMaxOutputBytes = 64 * 1024
	maxCommandLength      = 10000
)

// Deny patterns for shell commands. Pattern matching over shell text
// cannot be made sound against obfuscation; this is a best-effort net,
// not a security boundary.
var defaultDenyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\brm\s+(-[a-zA-Z]*\s+)*(/|/\*)(\s|$)`), // recursive delete of root paths
	regexp.MustCompile(`\brm\s+-[a-zA-Z]*r[a-zA-Z]*f`),         // rm -rf and friends
	regexp.MustCompile(`\bmkfs\b`),
	regexp.MustCompile(`\bdd\s+if=`),
	regexp.MustCompile(`\b(shutdown|reboot|halt|poweroff)\b`),
	regexp.MustCompile(`:\(\)\s*\{.*:\|:`), // fork bomb
	regexp.MustCompile(`>\s*/dev/sd`),
	regexp.MustCompile(`\b(curl|wget)\b.*\|\s*(sh|bash)\b`),
}

// GatewayConfig configures the execution gateway. All fields are
// immutable after NewGateway.
type GatewayConfig struct {
	// Timeout is the execution ceiling; per-call overrides may only go
	// below it. Defaults to 30s.
	Timeout time.Duration
	// MaxOutputBytes bounds captured stdout and stderr, each. Defaults
	// to 64 KiB.
	MaxOutputBytes int
	// ExtraDenyPatterns are additional regular expressions merged into
	// the built-in deny-list.
	ExtraDenyPatterns []string
}

// CommandRejectedError reports a deny-list hit.
type CommandRejectedError struct {
	Pattern string
}

func (e *CommandRejectedError) Error() string {
	return fmt.Sprintf("%v: matched pattern %q", ErrCommandRejected, e.Pattern)
}

func (e *CommandRejectedError) Unwrap() error {
	return ErrCommandRejected
}

// CommandOutput is the captured outcome of a completed command. A
// nonzero exit code is data for the caller, not a dispatch failure.
type CommandOutput struct {
	ExitCode  int
	Stdout    string
	Stderr    string
	Truncated bool
}

// Gateway runs shell commands on behalf of the agent, bounding risk via
// the deny-list and runtime via the timeout. It holds no mutable state.
type Gateway struct {
	deny      []*regexp.Regexp
	timeout   time.Duration
	maxOutput int
}

// NewGateway builds a gateway from config, filling defaults.
func NewGateway(cfg GatewayConfig) (*Gateway, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	maxOutput := cfg.MaxOutputBytes
	if maxOutput <= 0 {
		maxOutput = defaultMaxOutputBytes
	}

	deny := make([]*regexp.Regexp, 0, len(defaultDenyPatterns)+len(cfg.ExtraDenyPatterns))
	deny = append(deny, defaultDenyPatterns...)
	for _, raw := range cfg.ExtraDenyPatterns {
		re, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid deny pattern %q: %w", raw, err)
		}
		deny = append(deny, re)
	}

	return &Gateway{deny: deny, timeout: timeout, maxOutput: maxOutput}, nil
}

// Timeout returns the configured execution ceiling.
func (g *Gateway) Timeout() time.Duration {
	return g.timeout
}

// Check validates a command against the deny-list without running it.
func (g *Gateway) Check(command string) error {
	if strings.TrimSpace(command) == "" {
		return &ArgumentError{Parameter: "command", Reason: "command cannot be empty"}
	}
	if len(command) > maxCommandLength {
		return &ArgumentError{Parameter: "command", Reason: fmt.Sprintf("command exceeds maximum length of %d characters", maxCommandLength)}
	}
	for _, re := range g.deny {
		if re.MatchString(command) {
			return &CommandRejectedError{Pattern: re.String()}
		}
	}
	return nil
}

// Run executes a command through `sh -c` with output capture. A denied
// command is never spawned. timeoutOverride picks a shorter deadline
// than the configured ceiling; zero or larger values keep the ceiling.
func (g *Gateway) Run(ctx context.Context, workdir, command string, timeoutOverride time.Duration) (*CommandOutput, error) {
	if err := g.Check(command); err != nil {
		return nil, err
	}

	timeout := g.timeout
	if timeoutOverride > 0 && timeoutOverride < timeout {
		timeout = timeoutOverride
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = workdir
	stdout := newBoundedBuffer(g.maxOutput)
	stderr := newBoundedBuffer(g.maxOutput)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%w: exceeded %s", ErrTimeout, timeout)
	}

	out := &CommandOutput{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Truncated: stdout.Truncated() || stderr.Truncated(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return nil, fmt.Errorf("failed to spawn command: %w", err)
	}
	return out, nil
}

// boundedBuffer captures writes up to a byte cap and discards the rest,
// remembering that it did.
type boundedBuffer struct {
	buf       strings.Builder
	limit     int
	truncated bool
}

func newBoundedBuffer(limit int) *boundedBuffer {
	return &boundedBuffer{limit: limit}
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	remaining := b.limit - b.buf.Len()
	if remaining <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if len(p) > remaining {
		b.buf.Write(p[:remaining])
		b.truncated = true
		return len(p), nil
	}
	b.buf.Write(p)
	return len(p), nil
}

func (b *boundedBuffer) String() string {
	return b.buf.String()
}

func (b *boundedBuffer) Truncated() bool {
	return b.truncated
}

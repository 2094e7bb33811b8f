package gate

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Outcome classifies a sandboxed run of a candidate's native test runner.
type Outcome string

const (
	OutcomePassed      Outcome = "passed"
	OutcomeFailed      Outcome = "failed"
	OutcomeNoTests     Outcome = "no_tests"
	OutcomeTimeout     Outcome = "timeout"
	OutcomeUnavailable Outcome = "unavailable"
)

// ExecResult carries the classified outcome plus the tail of the combined
// runner output for diagnostics.
type ExecResult struct {
	Outcome Outcome
	Output  string
}

// Sandbox runs a test-runner command in isolation under a hard wall-clock
// timeout. Implementations never retry; retry policy belongs to the caller.
type Sandbox interface {
	Run(ctx context.Context, args []string, timeout time.Duration) ExecResult
}

// pytest uses exit status 5 for "no tests were collected".
const pytestNoTestsExit = 5

type execSandbox struct {
	logger *slog.Logger
}

// NewSandbox returns a Sandbox backed by local process execution.
func NewSandbox(logger *slog.Logger) Sandbox {
	return &execSandbox{logger: logger}
}

func (s *execSandbox) Run(ctx context.Context, args []string, timeout time.Duration) ExecResult {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var buf bytes.Buffer
	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	output := tail(buf.String(), 500)

	if runCtx.Err() == context.DeadlineExceeded {
		return ExecResult{Outcome: OutcomeTimeout, Output: output}
	}
	if err == nil {
		if looksLikeNoTests(output) {
			return ExecResult{Outcome: OutcomeNoTests, Output: output}
		}
		return ExecResult{Outcome: OutcomePassed, Output: output}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ExitCode() == pytestNoTestsExit || looksLikeNoTests(output) {
			return ExecResult{Outcome: OutcomeNoTests, Output: output}
		}
		return ExecResult{Outcome: OutcomeFailed, Output: output}
	}

	// Runner binary missing or not startable.
	s.logger.Warn("test runner unavailable", "command", args[0], "error", err)
	return ExecResult{Outcome: OutcomeUnavailable, Output: err.Error()}
}

func looksLikeNoTests(output string) bool {
	return strings.Contains(output, "no tests ran") ||
		strings.Contains(output, "# tests 0")
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

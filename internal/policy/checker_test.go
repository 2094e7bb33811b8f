package policy

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/testward/internal/core"
	"github.com/sevigo/testward/internal/stack"
)

func newTestChecker(t *testing.T, cfg *Config) *Checker {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	checker, err := NewChecker(cfg, logger)
	require.NoError(t, err)
	return checker
}

func rulesOf(violations []core.Violation) []string {
	rules := make([]string, 0, len(violations))
	for _, v := range violations {
		rules = append(rules, v.Rule)
	}
	return rules
}

func TestCheckerCleanCandidate(t *testing.T) {
	checker := newTestChecker(t, nil)
	cand := core.Candidate{
		Path: "tests/test_orders.py",
		Content: `import json


def test_serialization_roundtrip():
    payload = {"a": 1}
    assert json.loads(json.dumps(payload)) == payload
`,
	}

	violations := checker.Check(context.Background(), cand, stack.Python)
	assert.Empty(t, violations)
}

func TestCheckerRuleFindings(t *testing.T) {
	testCases := []struct {
		name         string
		content      string
		wantRule     string
		wantSeverity core.Severity
	}{
		{
			name: "sleep call is a forbidden pattern",
			content: `import time


def test_eventually_consistent_read():
    time.sleep(0.1)
    assert 1 == 1
`,
			wantRule:     "forbidden_pattern",
			wantSeverity: core.SeverityError,
		},
		{
			name: "sleep import is forbidden",
			content: `from time import sleep


def test_consistency_after_delay():
    assert 1 == 1
`,
			wantRule:     "forbidden_import",
			wantSeverity: core.SeverityError,
		},
		{
			name: "test without assertions",
			content: `def test_configuration_loads():
    value = 1
`,
			wantRule:     "no_assertions",
			wantSeverity: core.SeverityError,
		},
		{
			name: "unfinished-work marker",
			content: `def test_error_path_is_handled():
    # TODO: cover the timeout branch
    assert 1 == 1
`,
			wantRule:     "todo_comment",
			wantSeverity: core.SeverityInfo,
		},
		{
			name: "short test name",
			content: `def test_a():
    assert 1 == 1
`,
			wantRule:     "short_test_name",
			wantSeverity: core.SeverityInfo,
		},
		{
			name:         "file without any test declaration",
			content:      "def helper():\n    return 1\n",
			wantRule:     "no_test_idiom",
			wantSeverity: core.SeverityError,
		},
	}

	checker := newTestChecker(t, nil)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cand := core.Candidate{Path: "tests/test_sample.py", Content: tc.content}
			violations := checker.Check(context.Background(), cand, stack.Python)

			require.NotEmpty(t, violations)
			found := false
			for _, v := range violations {
				if v.Rule == tc.wantRule {
					found = true
					assert.Equal(t, tc.wantSeverity, v.Severity)
					assert.Equal(t, "tests/test_sample.py", v.FilePath)
					assert.GreaterOrEqual(t, v.Line, 1)
				}
			}
			assert.True(t, found, "expected rule %s in %v", tc.wantRule, rulesOf(violations))
		})
	}
}

func TestCheckerParseErrorDegrades(t *testing.T) {
	checker := newTestChecker(t, nil)
	cand := core.Candidate{
		Path:    "tests/test_broken.py",
		Content: "def broken(:\n    time.sleep(1)\n",
	}

	violations := checker.Check(context.Background(), cand, stack.Python)
	rules := rulesOf(violations)
	assert.Contains(t, rules, "parse_error")
	// Text rules still run on the raw lines.
	assert.Contains(t, rules, "forbidden_pattern")
	// Parse-tree rules are skipped.
	assert.NotContains(t, rules, "no_test_idiom")
	assert.NotContains(t, rules, "forbidden_import")
}

func TestCheckerUnknownStack(t *testing.T) {
	checker := newTestChecker(t, nil)
	cand := core.Candidate{Path: "spec/orders_spec.rb", Content: "puts 'hi'\n"}

	violations := checker.Check(context.Background(), cand, stack.Stack("ruby"))
	require.Len(t, violations, 1)
	assert.Equal(t, "unknown_stack", violations[0].Rule)
	assert.Equal(t, core.SeverityError, violations[0].Severity)
}

func TestCheckerFileSizeLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFileSize = 10
	checker := newTestChecker(t, cfg)

	cand := core.Candidate{
		Path: "tests/test_sample.py",
		Content: `def test_limit_is_enforced_somewhere():
    assert 1 == 1
`,
	}
	violations := checker.Check(context.Background(), cand, stack.Python)
	assert.Contains(t, rulesOf(violations), "file_size")
}

func TestRunRuleContainsPanic(t *testing.T) {
	checker := newTestChecker(t, nil)

	violations := checker.runRule("test_structure", "tests/test_orders.py", func() []core.Violation {
		panic("nil surface")
	})

	require.Len(t, violations, 1)
	assert.Equal(t, "tests/test_orders.py", violations[0].FilePath)
	assert.Equal(t, "test_structure", violations[0].Rule)
	assert.Equal(t, core.SeverityError, violations[0].Severity)
	assert.Contains(t, violations[0].Message, "failed to evaluate")
}

func TestNewCheckerRejectsBadPattern(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ForbiddenPatterns = []string{"("}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewChecker(cfg, logger)
	assert.Error(t, err)
}

func TestLoadConfigEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigMergesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	override := `max_test_lines: 5
forbidden_patterns:
  - 'fixme_pattern'
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxTestLines)
	assert.Equal(t, []string{"fixme_pattern"}, cfg.ForbiddenPatterns)
	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultConfig().MaxFileSize, cfg.MaxFileSize)
	assert.Equal(t, DefaultConfig().MinTestNameLen, cfg.MinTestNameLen)
}

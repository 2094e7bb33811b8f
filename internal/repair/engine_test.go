package repair

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/testward/internal/core"
	"github.com/sevigo/testward/internal/stack"
)

func newTestEngine() *Engine {
	return NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRepairLeavesCleanCandidateUntouched(t *testing.T) {
	src := `import json


def test_roundtrip_preserves_payload():
    payload = {"a": 1}
    assert json.loads(json.dumps(payload)) == payload
`
	repaired, fixLog := newTestEngine().Repair(context.Background(), src, Context{Stack: stack.Python})
	assert.Equal(t, src, repaired)
	assert.Empty(t, fixLog)
}

func TestRepairSubstitutesPlaceholderForUnparseable(t *testing.T) {
	src := "def broken(:\n    pass\n"
	repaired, fixLog := newTestEngine().Repair(context.Background(), src, Context{Stack: stack.Python})

	assert.Contains(t, repaired, "def test_placeholder")
	assert.Contains(t, repaired, "# original candidate (unparseable):")
	assert.Contains(t, repaired, "# def broken(:")

	joined := strings.Join(fixLog, "\n")
	assert.Contains(t, joined, "substituted placeholder test")
}

func TestRepairAddsKnownAliasImport(t *testing.T) {
	src := `def test_array_sum_is_positive():
    values = np.array([1, 2, 3])
    assert values.sum() == 6
`
	repaired, fixLog := newTestEngine().Repair(context.Background(), src, Context{Stack: stack.Python})

	assert.True(t, strings.HasPrefix(repaired, "import numpy as np\n"))
	require.Len(t, fixLog, 1)
	assert.Equal(t, "added missing import: import numpy as np", fixLog[0])
}

func TestRepairAddsMockImport(t *testing.T) {
	src := `def test_patched_query_returns_rows():
    with patch("db.query") as q:
        assert q is not None
`
	repaired, fixLog := newTestEngine().Repair(context.Background(), src, Context{Stack: stack.Python})

	assert.Contains(t, repaired, "from unittest.mock import patch")
	assert.Contains(t, strings.Join(fixLog, "\n"), "from unittest.mock import patch")
}

func TestRepairRewritesLocalImport(t *testing.T) {
	src := `import config


def test_config_has_defaults():
    assert config is not None
`
	rctx := Context{
		Stack:        stack.Python,
		Availability: core.Availability{Local: []string{"src.config"}},
	}
	repaired, fixLog := newTestEngine().Repair(context.Background(), src, rctx)

	assert.Contains(t, repaired, "import src.config")
	assert.Contains(t, strings.Join(fixLog, "\n"), "rewrote import: import config -> import src.config")
}

func TestRepairCommentsOutUnresolvableImport(t *testing.T) {
	src := `import flaky_helper


def test_helper_output_is_stable():
    assert 1 == 1
`
	rctx := Context{
		Stack:        stack.Python,
		Availability: core.Availability{Stdlib: []string{"json"}},
	}
	repaired, fixLog := newTestEngine().Repair(context.Background(), src, rctx)

	assert.Contains(t, repaired, "# import flaky_helper")
	assert.Contains(t, repaired, "unresolved import, kept for audit")
	assert.Contains(t, strings.Join(fixLog, "\n"), "commented out unresolvable import")
}

func TestRepairSkipsResolutionWithoutAvailability(t *testing.T) {
	src := `import flaky_helper


def test_helper_output_is_stable():
    assert 1 == 1
`
	repaired, fixLog := newTestEngine().Repair(context.Background(), src, Context{Stack: stack.Python})
	assert.Equal(t, src, repaired)
	assert.Empty(t, fixLog)
}

func TestRepairWrapsBareStatements(t *testing.T) {
	src := "value = 1 + 2\nassert value == 3\n"
	repaired, fixLog := newTestEngine().Repair(context.Background(), src, Context{Stack: stack.Python})

	assert.Contains(t, repaired, "def test_generated():")
	assert.Contains(t, repaired, "    value = 1 + 2")
	assert.Contains(t, strings.Join(fixLog, "\n"), "wrapped body in a test function")
}

func TestRepairNodeCommentsUnresolvedRequire(t *testing.T) {
	src := `const helper = require('smoke-helper');

test('helper responds with data', () => {
  assert.ok(helper());
});
`
	rctx := Context{
		Stack:        stack.Node,
		Availability: core.Availability{External: []string{"lodash"}},
	}
	repaired, fixLog := newTestEngine().Repair(context.Background(), src, rctx)

	assert.Contains(t, repaired, "// const helper = require('smoke-helper');")
	assert.Contains(t, strings.Join(fixLog, "\n"), "commented out unresolvable import")
}

func TestRepairUnknownStackLeavesTextAlone(t *testing.T) {
	src := "whatever source\n"
	repaired, fixLog := newTestEngine().Repair(context.Background(), src, Context{Stack: stack.Stack("ruby")})

	assert.Equal(t, src, repaired)
	require.Len(t, fixLog, 1)
	assert.Contains(t, fixLog[0], "no repair profile")
}

func TestRepairFinalValidationReportsMissingAssertions(t *testing.T) {
	src := `def test_configuration_loads():
    value = 1
`
	_, fixLog := newTestEngine().Repair(context.Background(), src, Context{Stack: stack.Python})
	assert.Contains(t, strings.Join(fixLog, "\n"), `unresolved: test "test_configuration_loads" has no assertions`)
}

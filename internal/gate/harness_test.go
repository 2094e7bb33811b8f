package gate

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/testward/internal/core"
	"github.com/sevigo/testward/internal/policy"
	"github.com/sevigo/testward/internal/storage"
)

type fakeSandbox struct {
	result ExecResult
	delay  time.Duration
	calls  int
}

func (f *fakeSandbox) Run(_ context.Context, _ []string, _ time.Duration) ExecResult {
	f.calls++
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.result
}

type fakeApprovals struct {
	batches []string
	err     error
}

func (f *fakeApprovals) ApprovedBatches(_ context.Context) ([]string, error) {
	return f.batches, f.err
}

func newTestHarness(t *testing.T, cfg *Config, sandbox Sandbox, approvals ApprovalSource) (*Harness, storage.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	checker, err := policy.NewChecker(policy.DefaultConfig(), logger)
	require.NoError(t, err)
	store, err := storage.NewFileStore(t.TempDir(), logger)
	require.NoError(t, err)
	return NewHarness(cfg, checker, sandbox, approvals, store, logger), store
}

const goodCandidate = `import json

def test_serialization_roundtrip():
    assert json.dumps([]) == "[]"
    assert json.loads("[]") == []
`

const flakyCandidate = `import time

def test_slow():
    time.sleep(5)
`

func TestEvaluateHealthyBatch(t *testing.T) {
	sandbox := &fakeSandbox{result: ExecResult{Outcome: OutcomePassed, Output: "1 passed"}}
	harness, store := newTestHarness(t, nil, sandbox, &fakeApprovals{batches: []string{"review_X"}})

	report := harness.Evaluate(context.Background(), &core.EvaluationRequest{
		BatchID: "batch-1",
		Stack:   "python",
		Candidates: []core.Candidate{
			{Path: "tests/test_roundtrip.py", Content: goodCandidate, Kind: core.TestKindUnit},
		},
		Availability: core.Availability{Stdlib: []string{"json"}},
	})

	assert.True(t, report.OverallPassed)
	assert.GreaterOrEqual(t, report.OverallScore, 0.8)
	assert.Equal(t, report.TotalChecks, report.PassedChecks)
	assert.Contains(t, report.Recommendations, "All checks passed, ready for merge")
	assert.Contains(t, report.ID, "eval_")

	// The report is persisted append-only under its own id.
	saved, err := store.GetReport(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.BatchID, saved.BatchID)
}

func TestEvaluateFlakyCandidateFailsGate(t *testing.T) {
	sandbox := &fakeSandbox{result: ExecResult{Outcome: OutcomeFailed, Output: "FAILED"}}
	harness, _ := newTestHarness(t, nil, sandbox, &fakeApprovals{})

	report := harness.Evaluate(context.Background(), &core.EvaluationRequest{
		BatchID: "batch-2",
		Stack:   "python",
		Candidates: []core.Candidate{
			{Path: "tests/test_slow.py", Content: flakyCandidate, Kind: core.TestKindUnit},
		},
		Availability: core.Availability{Stdlib: []string{"time"}},
	})

	assert.False(t, report.OverallPassed)
	assert.NotEmpty(t, report.Summary.CriticalFailures)
	assert.Contains(t, report.Recommendations, "Fix critical validation failures before merging")
	assert.Contains(t, report.Recommendations, "Address policy violations for better test quality")

	// Forbidden pattern plus missing assertion keep the policy score at or
	// below 0.6.
	for _, r := range report.Results {
		if r.CheckName == CheckPolicy {
			assert.False(t, r.Passed)
			assert.LessOrEqual(t, r.Score, 0.6)
		}
	}
}

func TestEvaluateSandboxTimeout(t *testing.T) {
	sandbox := &fakeSandbox{result: ExecResult{Outcome: OutcomeTimeout}}
	harness, _ := newTestHarness(t, nil, sandbox, &fakeApprovals{})

	report := harness.Evaluate(context.Background(), &core.EvaluationRequest{
		BatchID: "batch-3",
		Stack:   "python",
		Candidates: []core.Candidate{
			{Path: "tests/test_hang.py", Content: goodCandidate, Kind: core.TestKindUnit},
		},
	})

	var execution *core.CheckResult
	for i, r := range report.Results {
		if r.CheckName == CheckExecution {
			execution = &report.Results[i]
		}
	}
	require.NotNil(t, execution)
	assert.False(t, execution.Passed)
	assert.Equal(t, 0.0, execution.Score)
	assert.Contains(t, execution.Message, "timed out")
}

func TestEvaluateNoTestsDiscovered(t *testing.T) {
	sandbox := &fakeSandbox{result: ExecResult{Outcome: OutcomeNoTests, Output: "no tests ran"}}
	harness, _ := newTestHarness(t, nil, sandbox, &fakeApprovals{})

	report := harness.Evaluate(context.Background(), &core.EvaluationRequest{
		BatchID: "batch-4",
		Stack:   "python",
		Candidates: []core.Candidate{
			{Path: "tests/test_empty.py", Content: goodCandidate, Kind: core.TestKindUnit},
		},
	})

	for _, r := range report.Results {
		if r.CheckName == CheckExecution {
			assert.False(t, r.Passed)
			assert.Equal(t, 0.5, r.Score)
		}
	}
}

func TestEvaluateUnknownStackStillProducesReport(t *testing.T) {
	sandbox := &fakeSandbox{}
	harness, _ := newTestHarness(t, nil, sandbox, &fakeApprovals{})

	report := harness.Evaluate(context.Background(), &core.EvaluationRequest{
		BatchID: "batch-5",
		Stack:   "ruby",
		Candidates: []core.Candidate{
			{Path: "spec/thing_spec.rb", Content: "describe 'x' do end", Kind: core.TestKindUnit},
		},
	})

	require.NotEmpty(t, report.Results)
	assert.False(t, report.OverallPassed)
	for _, r := range report.Results {
		if r.CheckName == CheckSyntax {
			assert.False(t, r.Passed)
		}
	}
	// No sandbox run for a stack without a wired runner.
	assert.Equal(t, 0, sandbox.calls)
}

func TestEvaluateMissingApprovalRecommendation(t *testing.T) {
	sandbox := &fakeSandbox{result: ExecResult{Outcome: OutcomePassed}}
	harness, _ := newTestHarness(t, nil, sandbox, &fakeApprovals{})

	report := harness.Evaluate(context.Background(), &core.EvaluationRequest{
		BatchID: "batch-6",
		Stack:   "python",
		Candidates: []core.Candidate{
			{Path: "tests/test_ok.py", Content: goodCandidate, Kind: core.TestKindUnit},
		},
		Availability: core.Availability{Stdlib: []string{"json"}},
	})

	assert.Contains(t, report.Recommendations, "Obtain human approval before merging")

	var approval *core.CheckResult
	for i, r := range report.Results {
		if r.CheckName == CheckApproval {
			approval = &report.Results[i]
		}
	}
	require.NotNil(t, approval)
	assert.False(t, approval.Passed)
	assert.Equal(t, 0.0, approval.Score)
	assert.Empty(t, approval.FilePath)
}

func TestStrictModeRaisesThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strict = true
	sandbox := &fakeSandbox{result: ExecResult{Outcome: OutcomePassed}}
	harness, _ := newTestHarness(t, cfg, sandbox, &fakeApprovals{})

	report := harness.Evaluate(context.Background(), &core.EvaluationRequest{
		BatchID: "batch-7",
		Stack:   "python",
		Candidates: []core.Candidate{
			{Path: "tests/test_ok.py", Content: goodCandidate, Kind: core.TestKindUnit},
		},
		Availability: core.Availability{Stdlib: []string{"json"}},
	})

	// The missing approval alone drags the weighted score below 1.0.
	assert.Less(t, report.OverallScore, 1.0)
	assert.False(t, report.OverallPassed)
}

func TestEvaluateSlowExecutionDegradesPerformance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxExecutionTime = time.Millisecond
	sandbox := &fakeSandbox{result: ExecResult{Outcome: OutcomePassed}, delay: 30 * time.Millisecond}
	harness, _ := newTestHarness(t, cfg, sandbox, &fakeApprovals{batches: []string{"review_X"}})

	report := harness.Evaluate(context.Background(), &core.EvaluationRequest{
		BatchID: "batch-8",
		Stack:   "python",
		Candidates: []core.Candidate{
			{Path: "tests/test_ok.py", Content: goodCandidate, Kind: core.TestKindUnit},
		},
		Availability: core.Availability{Stdlib: []string{"json"}},
	})

	var perf *core.CheckResult
	for i, r := range report.Results {
		if r.CheckName == CheckPerformance {
			perf = &report.Results[i]
		}
	}
	require.NotNil(t, perf)
	assert.False(t, perf.Passed)
	assert.Less(t, perf.Score, 1.0)
	assert.GreaterOrEqual(t, perf.Score, 0.0)
	assert.Contains(t, perf.Message, "exceeds")
	assert.Contains(t, perf.Details, "execution_seconds")
}

func TestSlowPerformanceRecommendation(t *testing.T) {
	harness, _ := newTestHarness(t, nil, &fakeSandbox{}, &fakeApprovals{batches: []string{"review_X"}})

	report := &core.EvaluationReport{
		Results: []core.CheckResult{
			{CheckName: CheckPerformance, Passed: false, Score: 0.5},
		},
	}
	recs := harness.recommendations(report)
	assert.Contains(t, recs, "Optimize test performance to reduce execution time")
}

func TestOverallScoreBounds(t *testing.T) {
	harness, _ := newTestHarness(t, nil, &fakeSandbox{}, &fakeApprovals{})

	results := []core.CheckResult{
		{CheckName: "custom_check_a", Score: 1.0},
		{CheckName: "custom_check_b", Score: 0.0},
		{CheckName: CheckSyntax, Score: 0.5},
	}
	score := harness.overallScore(results)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)

	assert.Equal(t, 0.0, harness.overallScore(nil))
}

func TestSummaryAggregation(t *testing.T) {
	harness, _ := newTestHarness(t, nil, &fakeSandbox{}, &fakeApprovals{})

	results := []core.CheckResult{
		{CheckName: CheckSyntax, Passed: true, Score: 1.0},
		{CheckName: CheckSyntax, Passed: false, Score: 0.0},
		{CheckName: CheckCoverage, Passed: true, Score: 0.8},
	}
	summary := harness.summarize(results, time.Second)

	require.Contains(t, summary.ByCategory, CheckSyntax)
	assert.Equal(t, 1, summary.ByCategory[CheckSyntax].Passed)
	assert.Equal(t, 2, summary.ByCategory[CheckSyntax].Total)
	assert.InDelta(t, 0.5, summary.ByCategory[CheckSyntax].AvgScore, 1e-9)
	assert.Equal(t, []string{CheckSyntax}, summary.CriticalFailures)
}

package gate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/sevigo/testward/internal/core"
	"github.com/sevigo/testward/internal/policy"
	"github.com/sevigo/testward/internal/stack"
	"github.com/sevigo/testward/internal/storage"
)

// ApprovalSource answers the batch-scoped human-approval check. The review
// ledger is the production implementation.
type ApprovalSource interface {
	ApprovedBatches(ctx context.Context) ([]string, error)
}

// Harness orchestrates the configured check set over a batch of candidates
// and produces the run's audit report. Evaluate never fails: broken input
// yields the lowest possible scores with full diagnostics, not an error.
type Harness struct {
	cfg       *Config
	checker   *policy.Checker
	sandbox   Sandbox
	approvals ApprovalSource
	store     storage.Store
	logger    *slog.Logger
}

func NewHarness(cfg *Config, checker *policy.Checker, sandbox Sandbox, approvals ApprovalSource, store storage.Store, logger *slog.Logger) *Harness {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Harness{
		cfg:       cfg,
		checker:   checker,
		sandbox:   sandbox,
		approvals: approvals,
		store:     store,
		logger:    logger,
	}
}

// Evaluate runs all configured checks over the batch and persists the
// resulting report. Files are evaluated concurrently; result order follows
// candidate order regardless of completion order.
func (h *Harness) Evaluate(ctx context.Context, req *core.EvaluationRequest) *core.EvaluationReport {
	start := time.Now().UTC()
	h.logger.Info("starting evaluation", "batch", req.BatchID, "stack", req.Stack, "files", len(req.Candidates))

	profile, _ := stack.ProfileFor(stack.Stack(req.Stack))

	perFile := make([][]core.CheckResult, len(req.Candidates))
	g, groupCtx := errgroup.WithContext(ctx)
	if h.cfg.Parallelism > 0 {
		g.SetLimit(h.cfg.Parallelism)
	}
	for i, cand := range req.Candidates {
		g.Go(func() error {
			perFile[i] = h.evaluateFile(groupCtx, cand, profile, req.Availability)
			return nil
		})
	}
	// Per-file goroutines report failure through CheckResults, never errors.
	_ = g.Wait()

	var results []core.CheckResult
	for _, fileResults := range perFile {
		results = append(results, fileResults...)
	}
	if h.checkEnabled(CheckApproval) {
		results = append(results, h.runCheck(CheckApproval, "", func() core.CheckResult {
			return h.checkApproval(ctx)
		}))
	}

	overall := h.overallScore(results)
	report := &core.EvaluationReport{
		ID:            "eval_" + ulid.Make().String(),
		Timestamp:     start,
		BatchID:       req.BatchID,
		Stack:         req.Stack,
		TotalChecks:   len(results),
		PassedChecks:  countPassed(results),
		OverallScore:  overall,
		OverallPassed: overall >= h.cfg.threshold(),
		Results:       results,
		Summary:       h.summarize(results, time.Since(start)),
	}
	report.Recommendations = h.recommendations(report)

	if err := h.store.SaveReport(ctx, report); err != nil {
		h.logger.Error("failed to persist evaluation report", "report", report.ID, "error", err)
	}

	h.logger.Info("evaluation finished",
		"report", report.ID,
		"score", fmt.Sprintf("%.2f", report.OverallScore),
		"passed", report.OverallPassed,
	)
	return report
}

// evaluateFile runs the per-file checks in canonical order. Every check is
// panic-isolated; a panicking check becomes a failing result.
func (h *Harness) evaluateFile(ctx context.Context, cand core.Candidate, profile stack.Profile, avail core.Availability) []core.CheckResult {
	type namedCheck struct {
		name string
		fn   func() core.CheckResult
	}
	checks := []namedCheck{
		{CheckSyntax, func() core.CheckResult { return h.checkSyntax(ctx, cand, profile) }},
		{CheckPolicy, func() core.CheckResult { return h.checkPolicy(ctx, cand, profile) }},
		{CheckImports, func() core.CheckResult { return h.checkImports(ctx, cand, profile, avail) }},
		{CheckExecution, func() core.CheckResult { return h.checkExecution(ctx, cand, profile) }},
		{CheckPerformance, func() core.CheckResult { return h.checkPerformance(ctx, cand, profile) }},
		{CheckCoverage, func() core.CheckResult { return h.checkCoverage(ctx, cand, profile) }},
	}

	var results []core.CheckResult
	for _, check := range checks {
		if !h.checkEnabled(check.name) {
			continue
		}
		results = append(results, h.runCheck(check.name, cand.Path, check.fn))
	}
	return results
}

func (h *Harness) runCheck(name, path string, fn func() core.CheckResult) (result core.CheckResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("check panicked", "check", name, "file", path, "panic", r)
			result = core.CheckResult{
				CheckName: name,
				FilePath:  path,
				Passed:    false,
				Score:     0.0,
				Message:   fmt.Sprintf("%s crashed: %v", name, r),
			}
		}
		result.Elapsed = time.Since(start)
	}()
	result = fn()
	result.CheckName = name
	result.FilePath = path
	return result
}

func (h *Harness) checkEnabled(name string) bool {
	for _, n := range h.cfg.RequiredChecks {
		if n == name {
			return true
		}
	}
	for _, n := range h.cfg.OptionalChecks {
		if n == name {
			return true
		}
	}
	return false
}

// materialize writes candidate content into a scratch directory so the
// native runner can see it. Candidates usually exist only in memory.
func materialize(cand core.Candidate) (path string, cleanup func(), err error) {
	dir, err := os.MkdirTemp("", "testward-sandbox-*")
	if err != nil {
		return "", nil, fmt.Errorf("create sandbox dir: %w", err)
	}
	path = filepath.Join(dir, filepath.Base(cand.Path))
	if err := os.WriteFile(path, []byte(cand.Content), 0o644); err != nil {
		os.RemoveAll(dir)
		return "", nil, fmt.Errorf("write candidate: %w", err)
	}
	return path, func() { os.RemoveAll(dir) }, nil
}

func (h *Harness) overallScore(results []core.CheckResult) float64 {
	var totalWeight, weighted float64
	for _, r := range results {
		w := h.cfg.weight(r.CheckName)
		totalWeight += w
		weighted += r.Score * w
	}
	if totalWeight == 0 {
		return 0.0
	}
	return weighted / totalWeight
}

func (h *Harness) summarize(results []core.CheckResult, elapsed time.Duration) core.ReportSummary {
	byCategory := make(map[string]*core.CategorySummary)
	scoreSums := make(map[string]float64)
	var critical []string

	for _, r := range results {
		cat, ok := byCategory[r.CheckName]
		if !ok {
			cat = &core.CategorySummary{}
			byCategory[r.CheckName] = cat
		}
		cat.Total++
		if r.Passed {
			cat.Passed++
		} else if h.cfg.isRequired(r.CheckName) {
			critical = append(critical, r.CheckName)
		}
		scoreSums[r.CheckName] += r.Score
	}
	for name, cat := range byCategory {
		cat.AvgScore = scoreSums[name] / float64(cat.Total)
	}

	return core.ReportSummary{
		ByCategory:       byCategory,
		TotalElapsed:     elapsed,
		CriticalFailures: critical,
	}
}

func countPassed(results []core.CheckResult) int {
	n := 0
	for _, r := range results {
		if r.Passed {
			n++
		}
	}
	return n
}

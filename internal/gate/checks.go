package gate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sevigo/testward/internal/core"
	"github.com/sevigo/testward/internal/parser"
	"github.com/sevigo/testward/internal/stack"
)

func (h *Harness) checkSyntax(ctx context.Context, cand core.Candidate, profile stack.Profile) core.CheckResult {
	if profile == nil {
		return core.CheckResult{
			Passed:  false,
			Score:   0.0,
			Message: "syntax check unavailable: unknown stack",
		}
	}

	ok, errorLine, err := parser.CheckSyntax(ctx, profile, []byte(cand.Content))
	if err != nil {
		return core.CheckResult{
			Passed:  false,
			Score:   0.0,
			Message: fmt.Sprintf("syntax check failed: %v", err),
		}
	}
	if !ok {
		return core.CheckResult{
			Passed:  false,
			Score:   0.0,
			Message: "syntax error detected",
			Details: map[string]any{"line": errorLine},
		}
	}
	return core.CheckResult{Passed: true, Score: 1.0, Message: "syntax valid"}
}

func (h *Harness) checkPolicy(ctx context.Context, cand core.Candidate, profile stack.Profile) core.CheckResult {
	st := stack.Stack("")
	if profile != nil {
		st = profile.Stack()
	}
	violations := h.checker.Check(ctx, cand, st)
	errors, warnings := core.CountBySeverity(violations)

	score := 1.0 - 0.2*float64(errors) - 0.1*float64(warnings)
	if score < 0 {
		score = 0
	}

	messages := make([]string, 0, len(violations))
	for _, v := range violations {
		messages = append(messages, fmt.Sprintf("L%d [%s] %s: %s", v.Line, v.Severity, v.Rule, v.Message))
	}

	return core.CheckResult{
		Passed:  errors == 0,
		Score:   score,
		Message: fmt.Sprintf("%d errors, %d warnings", errors, warnings),
		Details: map[string]any{
			"errors":     errors,
			"warnings":   warnings,
			"violations": messages,
		},
	}
}

func (h *Harness) checkImports(ctx context.Context, cand core.Candidate, profile stack.Profile, avail core.Availability) core.CheckResult {
	if profile == nil {
		return core.CheckResult{
			Passed:  false,
			Score:   0.0,
			Message: "import check unavailable: unknown stack",
		}
	}
	if len(avail.Stdlib) == 0 && len(avail.Local) == 0 && len(avail.External) == 0 {
		// No availability context supplied: syntax already vouched for the
		// statements, so degrade instead of guessing.
		return core.CheckResult{
			Passed:  true,
			Score:   0.8,
			Message: "import context unavailable, skipping resolution",
		}
	}

	surface, err := parser.Analyze(ctx, profile, []byte(cand.Content))
	if err != nil || !surface.ParseOK {
		return core.CheckResult{
			Passed:  false,
			Score:   0.0,
			Message: "cannot resolve imports of unparseable file",
		}
	}

	var missing []string
	for _, imp := range surface.Imports {
		if !resolvable(imp.Module, avail) {
			missing = append(missing, imp.Module)
		}
	}
	if len(missing) > 0 {
		return core.CheckResult{
			Passed:  false,
			Score:   0.5,
			Message: fmt.Sprintf("%d unresolvable imports", len(missing)),
			Details: map[string]any{"missing": missing},
		}
	}
	return core.CheckResult{
		Passed:  true,
		Score:   1.0,
		Message: fmt.Sprintf("all %d imports resolvable", len(surface.Imports)),
	}
}

// resolvable checks the import's root segment against the availability sets.
// Relative and runtime-prefixed specifiers are always considered local.
func resolvable(module string, avail core.Availability) bool {
	if strings.HasPrefix(module, ".") || strings.HasPrefix(module, "node:") {
		return true
	}
	root := module
	if i := strings.IndexAny(module, "./"); i > 0 {
		root = module[:i]
	}
	if avail.Has(root) || avail.Has(module) {
		return true
	}
	_, ok := avail.ResolveLocal(root)
	return ok
}

func (h *Harness) checkExecution(ctx context.Context, cand core.Candidate, profile stack.Profile) core.CheckResult {
	if profile == nil || profile.RunnerArgs("probe") == nil {
		stackName := "unknown"
		if profile != nil {
			stackName = string(profile.Stack())
		}
		return core.CheckResult{
			Passed:  true,
			Score:   0.7,
			Message: fmt.Sprintf("execution test not available for %s", stackName),
		}
	}

	path, cleanup, err := materialize(cand)
	if err != nil {
		return core.CheckResult{
			Passed:  false,
			Score:   0.0,
			Message: fmt.Sprintf("cannot materialize candidate: %v", err),
		}
	}
	defer cleanup()

	res := h.sandbox.Run(ctx, profile.RunnerArgs(path), h.cfg.SandboxTimeout)
	switch res.Outcome {
	case OutcomePassed:
		return core.CheckResult{
			Passed:  true,
			Score:   1.0,
			Message: "test execution successful",
			Details: map[string]any{"output": res.Output},
		}
	case OutcomeNoTests:
		return core.CheckResult{
			Passed:  false,
			Score:   0.5,
			Message: "execution completed but no tests found",
			Details: map[string]any{"output": res.Output},
		}
	case OutcomeTimeout:
		return core.CheckResult{
			Passed:  false,
			Score:   0.0,
			Message: fmt.Sprintf("test execution timed out after %s", h.cfg.SandboxTimeout),
		}
	case OutcomeUnavailable:
		return core.CheckResult{
			Passed:  true,
			Score:   0.7,
			Message: "test runner unavailable, skipping execution",
			Details: map[string]any{"output": res.Output},
		}
	default:
		return core.CheckResult{
			Passed:  false,
			Score:   0.0,
			Message: "test execution failed",
			Details: map[string]any{"output": res.Output},
		}
	}
}

func (h *Harness) checkPerformance(ctx context.Context, cand core.Candidate, profile stack.Profile) core.CheckResult {
	if profile == nil || profile.RunnerArgs("probe") == nil {
		return core.CheckResult{
			Passed:  true,
			Score:   0.8,
			Message: "performance check not available",
		}
	}

	path, cleanup, err := materialize(cand)
	if err != nil {
		return core.CheckResult{
			Passed:  true,
			Score:   0.5,
			Message: fmt.Sprintf("performance check failed: %v", err),
		}
	}
	defer cleanup()

	start := time.Now()
	res := h.sandbox.Run(ctx, profile.RunnerArgs(path), h.cfg.SandboxTimeout)
	elapsed := time.Since(start)
	if res.Outcome == OutcomeUnavailable {
		return core.CheckResult{
			Passed:  true,
			Score:   0.5,
			Message: "performance check failed: runner unavailable",
		}
	}

	budget := h.cfg.MaxExecutionTime
	if elapsed <= budget {
		return core.CheckResult{
			Passed:  true,
			Score:   1.0,
			Message: fmt.Sprintf("performance acceptable (%.2fs)", elapsed.Seconds()),
			Details: map[string]any{"execution_seconds": elapsed.Seconds()},
		}
	}

	// Each second over budget costs a tenth of the score.
	score := 1.0 - (elapsed.Seconds()-budget.Seconds())/10.0
	if score < 0 {
		score = 0
	}
	return core.CheckResult{
		Passed:  false,
		Score:   score,
		Message: fmt.Sprintf("execution took %.2fs, exceeds %.2fs budget", elapsed.Seconds(), budget.Seconds()),
		Details: map[string]any{"execution_seconds": elapsed.Seconds()},
	}
}

func (h *Harness) checkCoverage(ctx context.Context, cand core.Candidate, profile stack.Profile) core.CheckResult {
	if profile == nil {
		return core.CheckResult{Passed: true, Score: 0.7, Message: "coverage analysis not available"}
	}

	surface, err := parser.Analyze(ctx, profile, []byte(cand.Content))
	if err != nil {
		return core.CheckResult{
			Passed:  true,
			Score:   0.5,
			Message: fmt.Sprintf("coverage check failed: %v", err),
		}
	}
	if !surface.ParseOK || len(surface.Tests) == 0 || surface.TotalAssertions == 0 {
		return core.CheckResult{Passed: true, Score: 0.7, Message: "coverage analysis not available"}
	}

	// Target two or more assertions per test.
	ratio := float64(surface.TotalAssertions) / float64(len(surface.Tests))
	score := ratio / 2.0
	if score > 1.0 {
		score = 1.0
	}
	return core.CheckResult{
		Passed:  true,
		Score:   score,
		Message: fmt.Sprintf("coverage: %d tests, %d assertions", len(surface.Tests), surface.TotalAssertions),
		Details: map[string]any{
			"test_count":   len(surface.Tests),
			"assert_count": surface.TotalAssertions,
		},
	}
}

func (h *Harness) checkApproval(ctx context.Context) core.CheckResult {
	approved, err := h.approvals.ApprovedBatches(ctx)
	if err != nil {
		return core.CheckResult{
			Passed:  false,
			Score:   0.0,
			Message: fmt.Sprintf("approval check failed: %v", err),
		}
	}
	if len(approved) == 0 {
		return core.CheckResult{
			Passed:  false,
			Score:   0.0,
			Message: "no approved review artifact found",
		}
	}
	return core.CheckResult{
		Passed:  true,
		Score:   1.0,
		Message: fmt.Sprintf("human approval recorded (%d approved batches)", len(approved)),
		Details: map[string]any{"approved_batches": approved},
	}
}

// recommendations derives advisory guidance from the result set. They never
// alter the computed score.
func (h *Harness) recommendations(report *core.EvaluationReport) []string {
	var recs []string

	if len(report.Summary.CriticalFailures) > 0 {
		recs = append(recs, "Fix critical validation failures before merging")
	}

	policyIssues := false
	slowTests := false
	approvalMissing := false
	for _, r := range report.Results {
		switch r.CheckName {
		case CheckPolicy:
			if !r.Passed {
				policyIssues = true
			}
		case CheckPerformance:
			if r.Score < 0.8 {
				slowTests = true
			}
		case CheckApproval:
			if !r.Passed {
				approvalMissing = true
			}
		}
	}
	if policyIssues {
		recs = append(recs, "Address policy violations for better test quality")
	}
	if slowTests {
		recs = append(recs, "Optimize test performance to reduce execution time")
	}
	if approvalMissing {
		recs = append(recs, "Obtain human approval before merging")
	}

	if len(recs) == 0 {
		recs = append(recs, "All checks passed, ready for merge")
	}
	return recs
}

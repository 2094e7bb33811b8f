package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/testward/internal/core"
)

// Evaluator is the gate surface the job needs. The evaluation harness is the
// production implementation.
type Evaluator interface {
	Evaluate(ctx context.Context, req *core.EvaluationRequest) *core.EvaluationReport
}

// EvaluationJob is the background job that gates one submitted batch.
type EvaluationJob struct {
	harness Evaluator
	logger  *slog.Logger
}

// NewEvaluationJob creates an EvaluationJob.
func NewEvaluationJob(harness Evaluator, logger *slog.Logger) core.Job {
	if harness == nil {
		panic("harness cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &EvaluationJob{harness: harness, logger: logger}
}

// Run validates the request and evaluates the batch. Evaluation itself never
// fails; only a request that cannot identify a batch is rejected.
func (j *EvaluationJob) Run(ctx context.Context, req *core.EvaluationRequest) error {
	if err := ValidateRequest(req); err != nil {
		j.logger.Error("invalid evaluation request", "error", err)
		return fmt.Errorf("invalid evaluation request: %w", err)
	}

	report := j.harness.Evaluate(ctx, req)
	j.logger.Info("batch evaluated",
		"batch", req.BatchID,
		"report", report.ID,
		"passed", report.OverallPassed,
	)
	return nil
}

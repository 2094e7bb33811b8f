package core

import "time"

// CheckResult captures the outcome of one validation check for one candidate
// file, or one batch-scoped check. Results are created by the evaluation
// harness and never mutated afterwards.
type CheckResult struct {
	CheckName string         `json:"check_name"`
	FilePath  string         `json:"file_path,omitempty"`
	Passed    bool           `json:"passed"`
	Score     float64        `json:"score"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Elapsed   time.Duration  `json:"elapsed"`
}

// CategorySummary aggregates all results of one check name.
type CategorySummary struct {
	Passed   int     `json:"passed"`
	Total    int     `json:"total"`
	AvgScore float64 `json:"avg_score"`
}

// ReportSummary is the per-category rollup attached to every report.
type ReportSummary struct {
	ByCategory       map[string]*CategorySummary `json:"by_category"`
	TotalElapsed     time.Duration               `json:"total_elapsed"`
	CriticalFailures []string                    `json:"critical_failures"`
}

// EvaluationReport is the immutable audit record of one evaluation run.
// Reports are persisted append-only, keyed by a timestamp-derived identifier.
type EvaluationReport struct {
	ID              string        `json:"id"`
	Timestamp       time.Time     `json:"timestamp"`
	BatchID         string        `json:"batch_id"`
	Stack           string        `json:"stack"`
	TotalChecks     int           `json:"total_checks"`
	PassedChecks    int           `json:"passed_checks"`
	OverallScore    float64       `json:"overall_score"`
	OverallPassed   bool          `json:"overall_passed"`
	Results         []CheckResult `json:"validation_results"`
	Summary         ReportSummary `json:"summary"`
	Recommendations []string      `json:"recommendations"`
}

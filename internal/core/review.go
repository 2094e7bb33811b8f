package core

import "time"

// ReviewStatus is the per-item review state. Pending items may transition to
// approved or rejected exactly once; both outcomes are terminal.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// ArtifactStatus is the batch-level review state of a whole artifact.
type ArtifactStatus string

const (
	ArtifactPendingReview ArtifactStatus = "pending_review"
	ArtifactApproved      ArtifactStatus = "approved"
	ArtifactRejected      ArtifactStatus = "rejected"
)

// Terminal reports whether the artifact status admits no further transitions.
func (s ArtifactStatus) Terminal() bool {
	return s == ArtifactApproved || s == ArtifactRejected
}

// ReviewItem is a single generated file presented for human review.
type ReviewItem struct {
	FilePath         string            `json:"file_path"`
	TestKind         TestKind          `json:"test_type"`
	TargetSymbol     string            `json:"target_function"`
	GeneratedContent string            `json:"generated_content"`
	Context          map[string]string `json:"context,omitempty"`
	Checklist        []string          `json:"checklist_items"`
	Status           ReviewStatus      `json:"status"`
	ReviewerNotes    string            `json:"reviewer_notes,omitempty"`
	CreatedAt        time.Time         `json:"timestamp"`
}

// ReviewCriteria is the standardized rubric embedded in each artifact so the
// reviewer and the generated checklist share one source of truth.
type ReviewCriteria struct {
	MustHave   []string `json:"must_have"`
	ShouldHave []string `json:"should_have"`
	NiceToHave []string `json:"nice_to_have"`
	AutoReject []string `json:"automatic_reject"`
}

// ReviewContext carries batch-level metadata about how the candidates were
// produced.
type ReviewContext struct {
	Stack            string `json:"stack"`
	Framework        string `json:"framework,omitempty"`
	GenerationMethod string `json:"generation_method"`
	ContextFile      string `json:"context_file,omitempty"`
}

// ReviewArtifact is the persisted unit of a human-review batch and the only
// mutable state in the subsystem. It is always rewritten in full on status
// change; Version detects concurrent writers.
type ReviewArtifact struct {
	ID              string         `json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	Status          ArtifactStatus `json:"status"`
	Context         ReviewContext  `json:"repository_context"`
	Items           []ReviewItem   `json:"review_items"`
	Criteria        ReviewCriteria `json:"review_criteria"`
	Reviewer        string         `json:"reviewer,omitempty"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	Version         int64          `json:"version"`
}

// Counts tallies item states.
func (a *ReviewArtifact) Counts() (approved, rejected, pending int) {
	for _, item := range a.Items {
		switch item.Status {
		case ReviewApproved:
			approved++
		case ReviewRejected:
			rejected++
		default:
			pending++
		}
	}
	return approved, rejected, pending
}

// Package review implements the human-in-the-loop ledger: one persisted
// artifact per generation batch, with explicit, terminal approve/reject
// transitions and idempotent status queries.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/sevigo/testward/internal/core"
	"github.com/sevigo/testward/internal/storage"
)

var (
	// ErrAlreadyResolved is returned when a reviewer acts on an artifact
	// whose batch status is already terminal.
	ErrAlreadyResolved = errors.New("review artifact is already resolved")
	// ErrReasonRequired is returned when a rejection carries no reason.
	ErrReasonRequired = errors.New("rejection requires a reason")
	// ErrNoMatchingFiles is returned when a filtered approval names only
	// unknown file paths.
	ErrNoMatchingFiles = errors.New("no review items match the given files")
)

// Summary is the idempotent, side-effect-free status view of one artifact.
type Summary struct {
	ID            string              `json:"id"`
	Status        core.ArtifactStatus `json:"status"`
	TotalItems    int                 `json:"total_items"`
	ApprovedItems int                 `json:"approved_items"`
	RejectedItems int                 `json:"rejected_items"`
	PendingItems  int                 `json:"pending_items"`
	Reviewer      string              `json:"reviewer,omitempty"`
	Stack         string              `json:"stack,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// Ledger coordinates review-artifact state changes over a Store. The mutex
// serializes in-process writers; cross-process races are caught by the
// store's version check, so a lost update surfaces as ErrStaleArtifact
// instead of silently winning.
type Ledger struct {
	store  storage.Store
	logger *slog.Logger
	mu     sync.Mutex
}

func NewLedger(store storage.Store, logger *slog.Logger) *Ledger {
	return &Ledger{store: store, logger: logger}
}

// Create builds a pending artifact from the generated items, persists it, and
// writes the human-readable companion document. It returns the artifact id.
func (l *Ledger) Create(ctx context.Context, items []core.ReviewItem, rctx core.ReviewContext) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("review artifact needs at least one item")
	}

	now := time.Now().UTC()
	artifact := &core.ReviewArtifact{
		ID:        "review_" + ulid.Make().String(),
		CreatedAt: now,
		Status:    core.ArtifactPendingReview,
		Context:   rctx,
		Criteria:  defaultCriteria(),
	}

	for _, item := range items {
		item.Status = core.ReviewPending
		item.CreatedAt = now
		if len(item.Checklist) == 0 {
			item.Checklist = buildChecklist(item.TestKind, item.GeneratedContent)
		}
		artifact.Items = append(artifact.Items, item)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.SaveArtifact(ctx, artifact); err != nil {
		return "", fmt.Errorf("persist review artifact: %w", err)
	}
	if err := l.store.SaveCompanion(ctx, artifact.ID, renderMarkdown(artifact)); err != nil {
		// The artifact is the source of truth; a missing companion only
		// costs readability.
		l.logger.Warn("failed to write review document", "artifact", artifact.ID, "error", err)
	}

	l.logger.Info("created review artifact", "artifact", artifact.ID, "items", len(artifact.Items))
	return artifact.ID, nil
}

// Approve resolves items to approved. An empty files list approves every
// item; a non-empty list approves only the named paths, and the batch status
// flips to approved only once no pending items remain.
func (l *Ledger) Approve(ctx context.Context, id, reviewer string, files []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	artifact, err := l.store.GetArtifact(ctx, id)
	if err != nil {
		return err
	}
	if artifact.Status.Terminal() {
		return fmt.Errorf("artifact %s is %s: %w", id, artifact.Status, ErrAlreadyResolved)
	}

	matched := 0
	for i := range artifact.Items {
		if len(files) > 0 && !containsPath(files, artifact.Items[i].FilePath) {
			continue
		}
		if artifact.Items[i].Status == core.ReviewPending {
			artifact.Items[i].Status = core.ReviewApproved
		}
		matched++
	}
	if matched == 0 {
		return fmt.Errorf("artifact %s: %w", id, ErrNoMatchingFiles)
	}

	_, _, pending := artifact.Counts()
	if pending == 0 {
		now := time.Now().UTC()
		artifact.Status = core.ArtifactApproved
		artifact.Reviewer = reviewer
		artifact.ReviewedAt = &now
	}

	if err := l.store.SaveArtifact(ctx, artifact); err != nil {
		return fmt.Errorf("persist approval: %w", err)
	}
	if err := l.store.SaveCompanion(ctx, artifact.ID, renderMarkdown(artifact)); err != nil {
		l.logger.Warn("failed to refresh review document", "artifact", artifact.ID, "error", err)
	}

	l.logger.Info("review approval recorded",
		"artifact", id,
		"reviewer", reviewer,
		"items", matched,
		"batch_status", artifact.Status,
	)
	return nil
}

// Reject resolves the whole artifact to rejected. The reason is mandatory and
// is propagated to every item's notes.
func (l *Ledger) Reject(ctx context.Context, id, reviewer, reason string) error {
	if reason == "" {
		return ErrReasonRequired
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	artifact, err := l.store.GetArtifact(ctx, id)
	if err != nil {
		return err
	}
	if artifact.Status.Terminal() {
		return fmt.Errorf("artifact %s is %s: %w", id, artifact.Status, ErrAlreadyResolved)
	}

	now := time.Now().UTC()
	artifact.Status = core.ArtifactRejected
	artifact.Reviewer = reviewer
	artifact.ReviewedAt = &now
	artifact.RejectionReason = reason
	for i := range artifact.Items {
		artifact.Items[i].Status = core.ReviewRejected
		artifact.Items[i].ReviewerNotes = reason
	}

	if err := l.store.SaveArtifact(ctx, artifact); err != nil {
		return fmt.Errorf("persist rejection: %w", err)
	}
	if err := l.store.SaveCompanion(ctx, artifact.ID, renderMarkdown(artifact)); err != nil {
		l.logger.Warn("failed to refresh review document", "artifact", artifact.ID, "error", err)
	}

	l.logger.Info("review rejection recorded", "artifact", id, "reviewer", reviewer, "reason", reason)
	return nil
}

// Status returns the summary for one artifact.
func (l *Ledger) Status(ctx context.Context, id string) (*Summary, error) {
	artifact, err := l.store.GetArtifact(ctx, id)
	if err != nil {
		return nil, err
	}
	return summarize(artifact), nil
}

// ListPending returns summaries of all artifacts still awaiting review.
func (l *Ledger) ListPending(ctx context.Context) ([]*Summary, error) {
	artifacts, err := l.store.ListArtifacts(ctx)
	if err != nil {
		return nil, err
	}
	var pending []*Summary
	for _, artifact := range artifacts {
		if artifact.Status == core.ArtifactPendingReview {
			pending = append(pending, summarize(artifact))
		}
	}
	return pending, nil
}

// ApprovedBatches returns the ids of all artifacts with batch-level approval.
// The gate's human-approval check is satisfied only by this list being
// non-empty; pending and rejected artifacts never satisfy it.
func (l *Ledger) ApprovedBatches(ctx context.Context) ([]string, error) {
	artifacts, err := l.store.ListArtifacts(ctx)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, artifact := range artifacts {
		if artifact.Status == core.ArtifactApproved {
			ids = append(ids, artifact.ID)
		}
	}
	return ids, nil
}

func summarize(artifact *core.ReviewArtifact) *Summary {
	approved, rejected, pending := artifact.Counts()
	return &Summary{
		ID:            artifact.ID,
		Status:        artifact.Status,
		TotalItems:    len(artifact.Items),
		ApprovedItems: approved,
		RejectedItems: rejected,
		PendingItems:  pending,
		Reviewer:      artifact.Reviewer,
		Stack:         artifact.Context.Stack,
		CreatedAt:     artifact.CreatedAt,
	}
}

func containsPath(files []string, path string) bool {
	for _, f := range files {
		if f == path {
			return true
		}
	}
	return false
}

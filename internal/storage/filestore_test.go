package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/testward/internal/core"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := NewFileStore(dir, logger)
	require.NoError(t, err)
	return store, dir
}

func TestFileStoreReportRoundtrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	report := &core.EvaluationReport{
		ID:            "eval_01ABC",
		Timestamp:     time.Now().UTC().Truncate(time.Second),
		BatchID:       "batch_1",
		Stack:         "python",
		TotalChecks:   3,
		PassedChecks:  3,
		OverallScore:  0.95,
		OverallPassed: true,
	}
	require.NoError(t, store.SaveReport(ctx, report))

	got, err := store.GetReport(ctx, "eval_01ABC")
	require.NoError(t, err)
	assert.Equal(t, report.BatchID, got.BatchID)
	assert.Equal(t, report.OverallScore, got.OverallScore)
	assert.True(t, got.OverallPassed)
}

func TestFileStoreReportIsAppendOnly(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	report := &core.EvaluationReport{ID: "eval_dup"}
	require.NoError(t, store.SaveReport(ctx, report))

	err := store.SaveReport(ctx, report)
	assert.ErrorIs(t, err, ErrReportExists)
}

func TestFileStoreReportNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.GetReport(context.Background(), "eval_missing")
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestFileStoreArtifactVersioning(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	artifact := &core.ReviewArtifact{
		ID:        "review_1",
		CreatedAt: time.Now().UTC(),
		Status:    core.ArtifactPendingReview,
	}
	require.NoError(t, store.SaveArtifact(ctx, artifact))

	stored, err := store.GetArtifact(ctx, "review_1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)

	stored.Status = core.ArtifactApproved
	require.NoError(t, store.SaveArtifact(ctx, stored))

	// A writer still holding version 1 must lose.
	stale := &core.ReviewArtifact{ID: "review_1", Version: 1}
	err = store.SaveArtifact(ctx, stale)
	assert.ErrorIs(t, err, ErrStaleArtifact)

	latest, err := store.GetArtifact(ctx, "review_1")
	require.NoError(t, err)
	assert.Equal(t, core.ArtifactApproved, latest.Status)
	assert.Equal(t, int64(2), latest.Version)
}

func TestFileStoreArtifactNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.GetArtifact(context.Background(), "review_missing")
	assert.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestFileStoreCorruptArtifact(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	good := &core.ReviewArtifact{
		ID:        "review_good",
		CreatedAt: time.Now().UTC(),
		Status:    core.ArtifactPendingReview,
	}
	require.NoError(t, store.SaveArtifact(ctx, good))

	bad := filepath.Join(dir, "hitl_review_review_bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o640))

	_, err := store.GetArtifact(ctx, "review_bad")
	assert.ErrorIs(t, err, ErrArtifactCorrupt)

	// Listing skips the corrupt document instead of failing.
	artifacts, err := store.ListArtifacts(ctx)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "review_good", artifacts[0].ID)
}

func TestFileStoreListSortsByCreation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	older := &core.ReviewArtifact{ID: "review_older", CreatedAt: time.Now().UTC().Add(-time.Hour)}
	newer := &core.ReviewArtifact{ID: "review_newer", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.SaveArtifact(ctx, newer))
	require.NoError(t, store.SaveArtifact(ctx, older))

	artifacts, err := store.ListArtifacts(ctx)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, "review_older", artifacts[0].ID)
	assert.Equal(t, "review_newer", artifacts[1].ID)
}

func TestFileStoreCompanionDocument(t *testing.T) {
	store, dir := newTestStore(t)

	require.NoError(t, store.SaveCompanion(context.Background(), "review_1", "# Test Review\n"))

	content, err := os.ReadFile(filepath.Join(dir, "hitl_review_review_1.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "# Test Review")
}

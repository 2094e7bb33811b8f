// Package storage persists the two document kinds of the subsystem:
// append-only evaluation reports and fully-rewritten review artifacts.
package storage

import (
	"context"
	"errors"

	"github.com/sevigo/testward/internal/core"
)

var (
	// ErrReportNotFound is returned when no report exists for the id.
	ErrReportNotFound = errors.New("evaluation report not found")
	// ErrReportExists guards the append-only contract: a report id is
	// written exactly once and never overwritten.
	ErrReportExists = errors.New("evaluation report already exists")
	// ErrArtifactNotFound is returned when no artifact exists for the id.
	ErrArtifactNotFound = errors.New("review artifact not found")
	// ErrArtifactCorrupt marks an artifact that exists but cannot be
	// decoded. Callers must surface it as invalid, never as absent.
	ErrArtifactCorrupt = errors.New("review artifact is corrupt")
	// ErrStaleArtifact signals a concurrent writer updated the artifact
	// since it was read.
	ErrStaleArtifact = errors.New("review artifact was modified concurrently")
)

//go:generate mockgen -destination=../../mocks/mock_storage.go -package=mocks . Store

// Store defines the interface for all persistence operations.
type Store interface {
	// SaveReport persists a report exactly once; a second save of the same
	// id fails with ErrReportExists.
	SaveReport(ctx context.Context, report *core.EvaluationReport) error
	GetReport(ctx context.Context, id string) (*core.EvaluationReport, error)

	// SaveArtifact rewrites the artifact document in full. The artifact's
	// Version must match the persisted one; on success the stored version
	// is incremented. A mismatch fails with ErrStaleArtifact.
	SaveArtifact(ctx context.Context, artifact *core.ReviewArtifact) error
	GetArtifact(ctx context.Context, id string) (*core.ReviewArtifact, error)
	ListArtifacts(ctx context.Context) ([]*core.ReviewArtifact, error)

	// SaveCompanion stores the human-readable review document rendered
	// alongside an artifact.
	SaveCompanion(ctx context.Context, artifactID, content string) error
}

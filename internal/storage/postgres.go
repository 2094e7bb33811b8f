package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sevigo/testward/internal/core"
)

// postgresStore keeps each document as one JSONB payload row, mirroring the
// file layout: reports are insert-only, artifacts are rewritten in full with
// a version guard.
type postgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a Store backed by Postgres.
func NewPostgresStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) SaveReport(ctx context.Context, report *core.EvaluationReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report %s: %w", report.ID, err)
	}

	query := `INSERT INTO evaluation_reports (id, batch_id, created_at, payload) VALUES ($1, $2, $3, $4)`
	_, err = s.db.ExecContext(ctx, query, report.ID, report.BatchID, report.Timestamp, payload)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("report %s: %w", report.ID, ErrReportExists)
		}
		return fmt.Errorf("insert report %s: %w", report.ID, err)
	}
	return nil
}

func (s *postgresStore) GetReport(ctx context.Context, id string) (*core.EvaluationReport, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM evaluation_reports WHERE id = $1`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("report %s: %w", id, ErrReportNotFound)
		}
		return nil, fmt.Errorf("query report %s: %w", id, err)
	}

	var report core.EvaluationReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &report, nil
}

func (s *postgresStore) SaveArtifact(ctx context.Context, artifact *core.ReviewArtifact) error {
	expected := artifact.Version
	artifact.Version++
	payload, err := json.Marshal(artifact)
	if err != nil {
		artifact.Version = expected
		return fmt.Errorf("marshal artifact %s: %w", artifact.ID, err)
	}

	query := `
		INSERT INTO review_artifacts (id, status, created_at, updated_at, version, payload)
		VALUES ($1, $2, $3, $4, 1, $5)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    updated_at = EXCLUDED.updated_at,
		    version = review_artifacts.version + 1,
		    payload = EXCLUDED.payload
		WHERE review_artifacts.version = $6`

	res, err := s.db.ExecContext(ctx, query,
		artifact.ID, string(artifact.Status), artifact.CreatedAt, time.Now().UTC(), payload, expected)
	if err != nil {
		artifact.Version = expected
		return fmt.Errorf("upsert artifact %s: %w", artifact.ID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		artifact.Version = expected
		return fmt.Errorf("upsert artifact %s: %w", artifact.ID, err)
	}
	if rows == 0 {
		artifact.Version = expected
		return fmt.Errorf("artifact %s: %w", artifact.ID, ErrStaleArtifact)
	}
	return nil
}

func (s *postgresStore) GetArtifact(ctx context.Context, id string) (*core.ReviewArtifact, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM review_artifacts WHERE id = $1`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("artifact %s: %w", id, ErrArtifactNotFound)
		}
		return nil, fmt.Errorf("query artifact %s: %w", id, err)
	}

	var artifact core.ReviewArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, fmt.Errorf("artifact %s: %v: %w", id, err, ErrArtifactCorrupt)
	}
	return &artifact, nil
}

func (s *postgresStore) ListArtifacts(ctx context.Context) ([]*core.ReviewArtifact, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM review_artifacts ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*core.ReviewArtifact
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		var artifact core.ReviewArtifact
		if err := json.Unmarshal(payload, &artifact); err != nil {
			continue
		}
		artifacts = append(artifacts, &artifact)
	}
	return artifacts, rows.Err()
}

func (s *postgresStore) SaveCompanion(ctx context.Context, artifactID, content string) error {
	query := `
		INSERT INTO review_documents (artifact_id, content, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (artifact_id) DO UPDATE
		SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at`
	if _, err := s.db.ExecContext(ctx, query, artifactID, content, time.Now().UTC()); err != nil {
		return fmt.Errorf("save review document %s: %w", artifactID, err)
	}
	return nil
}

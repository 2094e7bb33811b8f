package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sevigo/testward/internal/core"
)

const (
	reportPrefix   = "evaluation_report_"
	artifactPrefix = "hitl_review_"
)

// FileStore keeps every document as one JSON file in a flat artifacts
// directory: `evaluation_report_<id>.json` and `hitl_review_<id>.json`.
// Artifact updates are written to a temp file and renamed so readers never
// observe a partial document.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// NewFileStore creates the artifacts directory if needed.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create artifacts dir: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) reportPath(id string) string {
	return filepath.Join(s.dir, reportPrefix+id+".json")
}

func (s *FileStore) artifactPath(id string) string {
	return filepath.Join(s.dir, artifactPrefix+id+".json")
}

// SaveReport creates the report file exclusively, enforcing append-only
// semantics at the filesystem level.
func (s *FileStore) SaveReport(_ context.Context, report *core.EvaluationReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report %s: %w", report.ID, err)
	}

	f, err := os.OpenFile(s.reportPath(report.ID), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("report %s: %w", report.ID, ErrReportExists)
		}
		return fmt.Errorf("create report %s: %w", report.ID, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write report %s: %w", report.ID, err)
	}
	return nil
}

func (s *FileStore) GetReport(_ context.Context, id string) (*core.EvaluationReport, error) {
	data, err := os.ReadFile(s.reportPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("report %s: %w", id, ErrReportNotFound)
		}
		return nil, fmt.Errorf("read report %s: %w", id, err)
	}

	var report core.EvaluationReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &report, nil
}

// SaveArtifact rewrites the document in full after checking the optimistic
// version counter against the persisted copy.
func (s *FileStore) SaveArtifact(ctx context.Context, artifact *core.ReviewArtifact) error {
	existing, err := s.GetArtifact(ctx, artifact.ID)
	switch {
	case err == nil:
		if existing.Version != artifact.Version {
			return fmt.Errorf("artifact %s: expected version %d, found %d: %w",
				artifact.ID, artifact.Version, existing.Version, ErrStaleArtifact)
		}
	case errors.Is(err, ErrArtifactNotFound):
		// first write
	default:
		return err
	}

	artifact.Version++
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact %s: %w", artifact.ID, err)
	}

	tmp, err := os.CreateTemp(s.dir, artifactPrefix+"*.tmp")
	if err != nil {
		return fmt.Errorf("create temp artifact file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write artifact %s: %w", artifact.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close artifact %s: %w", artifact.ID, err)
	}
	if err := os.Rename(tmp.Name(), s.artifactPath(artifact.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace artifact %s: %w", artifact.ID, err)
	}
	return nil
}

func (s *FileStore) GetArtifact(_ context.Context, id string) (*core.ReviewArtifact, error) {
	data, err := os.ReadFile(s.artifactPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("artifact %s: %w", id, ErrArtifactNotFound)
		}
		return nil, fmt.Errorf("read artifact %s: %w", id, err)
	}

	var artifact core.ReviewArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("artifact %s: %v: %w", id, err, ErrArtifactCorrupt)
	}
	return &artifact, nil
}

// ListArtifacts returns all decodable artifacts sorted by creation time.
// Corrupt documents are logged and skipped; they can still be inspected
// individually via GetArtifact, which reports the corruption.
func (s *FileStore) ListArtifacts(ctx context.Context) ([]*core.ReviewArtifact, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read artifacts dir: %w", err)
	}

	var artifacts []*core.ReviewArtifact
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, artifactPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, artifactPrefix), ".json")
		artifact, err := s.GetArtifact(ctx, id)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("skipping unreadable review artifact", "id", id, "error", err)
			}
			continue
		}
		artifacts = append(artifacts, artifact)
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].CreatedAt.Before(artifacts[j].CreatedAt)
	})
	return artifacts, nil
}

// SaveCompanion writes the human-readable review document next to the
// artifact as `hitl_review_<id>.md`.
func (s *FileStore) SaveCompanion(_ context.Context, artifactID, content string) error {
	path := filepath.Join(s.dir, artifactPrefix+artifactID+".md")
	if err := os.WriteFile(path, []byte(content), 0o640); err != nil {
		return fmt.Errorf("write review document %s: %w", artifactID, err)
	}
	return nil
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/testward/internal/core"
	"github.com/sevigo/testward/internal/review"
	"github.com/sevigo/testward/internal/storage"
)

type stubDispatcher struct {
	dispatched []*core.EvaluationRequest
	err        error
}

func (s *stubDispatcher) Dispatch(_ context.Context, req *core.EvaluationRequest) error {
	if s.err != nil {
		return s.err
	}
	s.dispatched = append(s.dispatched, req)
	return nil
}

func newTestRouter(t *testing.T) (http.Handler, *stubDispatcher, storage.Store, *review.Ledger) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := storage.NewFileStore(t.TempDir(), logger)
	require.NoError(t, err)
	ledger := review.NewLedger(store, logger)
	dispatcher := &stubDispatcher{}
	return NewRouter(dispatcher, store, ledger, logger), dispatcher, store, ledger
}

func TestHealthEndpoint(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestSubmitEvaluation(t *testing.T) {
	router, dispatcher, _, _ := newTestRouter(t)

	body, _ := json.Marshal(core.EvaluationRequest{
		Stack: "python",
		Candidates: []core.Candidate{
			{Path: "tests/test_a.py", Content: "def test_a():\n    assert True\n"},
		},
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/evaluations", bytes.NewReader(body)))

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["batch_id"], "batch_")
	require.Len(t, dispatcher.dispatched, 1)
	assert.Equal(t, resp["batch_id"], dispatcher.dispatched[0].BatchID)
}

func TestSubmitEvaluationRejectsBadStack(t *testing.T) {
	router, dispatcher, _, _ := newTestRouter(t)

	body, _ := json.Marshal(core.EvaluationRequest{
		Stack: "ruby",
		Candidates: []core.Candidate{
			{Path: "spec/a_spec.rb", Content: "x"},
		},
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/evaluations", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, dispatcher.dispatched)
}

func TestGetReport(t *testing.T) {
	router, _, store, _ := newTestRouter(t)

	report := &core.EvaluationReport{ID: "eval_TEST", BatchID: "batch-1", Stack: "python"}
	require.NoError(t, store.SaveReport(context.Background(), report))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/eval_TEST", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got core.EvaluationReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "batch-1", got.BatchID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/eval_MISSING", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviewWorkflow(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	create := map[string]any{
		"items": []core.ReviewItem{
			{
				FilePath:         "tests/test_a.py",
				TestKind:         core.TestKindUnit,
				TargetSymbol:     "f",
				GeneratedContent: "def test_a():\n    assert True\n",
			},
		},
		"context": core.ReviewContext{Stack: "python", GenerationMethod: "llm_assisted"},
	}
	body, _ := json.Marshal(create)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reviews", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created["artifact_id"]
	require.NotEmpty(t, id)

	// Pending listing includes the new artifact.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reviews/pending", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []review.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	require.Len(t, pending, 1)

	// Approve it.
	body, _ = json.Marshal(map[string]any{"reviewer": "alice"})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reviews/"+id+"/approve", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var summary review.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, core.ArtifactApproved, summary.Status)

	// A second resolution attempt conflicts.
	body, _ = json.Marshal(map[string]any{"reviewer": "bob", "reason": "late"})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reviews/"+id+"/reject", bytes.NewReader(body)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReviewRejectRequiresReason(t *testing.T) {
	router, _, _, ledger := newTestRouter(t)

	id, err := ledger.Create(context.Background(), []core.ReviewItem{
		{FilePath: "tests/test_a.py", GeneratedContent: "def test_a():\n    assert True\n"},
	}, core.ReviewContext{Stack: "python"})
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]any{"reviewer": "bob"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reviews/"+id+"/reject", bytes.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewStatusUnknownArtifact(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reviews/review_MISSING", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

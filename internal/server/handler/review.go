package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sevigo/testward/internal/core"
	"github.com/sevigo/testward/internal/review"
	"github.com/sevigo/testward/internal/storage"
)

// ReviewHandler drives the human-review workflow over the ledger.
type ReviewHandler struct {
	ledger *review.Ledger
	logger *slog.Logger
}

func NewReviewHandler(ledger *review.Ledger, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{ledger: ledger, logger: logger}
}

type createReviewRequest struct {
	Items   []core.ReviewItem  `json:"items"`
	Context core.ReviewContext `json:"context"`
}

// Create registers a new pending review artifact for a generation batch.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id, err := h.ledger.Create(r.Context(), req.Items, req.Context)
	if err != nil {
		h.logger.Error("failed to create review artifact", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"artifact_id": id})
}

type approveRequest struct {
	Reviewer string   `json:"reviewer"`
	Files    []string `json:"files,omitempty"`
}

// Approve resolves an artifact (or a file subset of it) to approved.
func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Reviewer == "" {
		http.Error(w, "reviewer is required", http.StatusBadRequest)
		return
	}

	if err := h.ledger.Approve(r.Context(), id, req.Reviewer, req.Files); err != nil {
		h.writeLedgerError(w, id, err)
		return
	}
	h.status(w, r, id)
}

type rejectRequest struct {
	Reviewer string `json:"reviewer"`
	Reason   string `json:"reason"`
}

// Reject resolves an artifact to rejected with a mandatory reason.
func (h *ReviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Reviewer == "" {
		http.Error(w, "reviewer is required", http.StatusBadRequest)
		return
	}

	if err := h.ledger.Reject(r.Context(), id, req.Reviewer, req.Reason); err != nil {
		h.writeLedgerError(w, id, err)
		return
	}
	h.status(w, r, id)
}

// Status serves the idempotent summary of one artifact.
func (h *ReviewHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.status(w, r, chi.URLParam(r, "id"))
}

// ListPending serves summaries of all artifacts still awaiting review.
func (h *ReviewHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.ledger.ListPending(r.Context())
	if err != nil {
		h.logger.Error("failed to list pending reviews", "error", err)
		http.Error(w, "failed to list pending reviews", http.StatusInternalServerError)
		return
	}
	if pending == nil {
		pending = []*review.Summary{}
	}
	writeJSON(w, http.StatusOK, pending)
}

func (h *ReviewHandler) status(w http.ResponseWriter, r *http.Request, id string) {
	summary, err := h.ledger.Status(r.Context(), id)
	if err != nil {
		h.writeLedgerError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *ReviewHandler) writeLedgerError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, storage.ErrArtifactNotFound), errors.Is(err, storage.ErrArtifactCorrupt):
		// Corrupt state surfaces as not-found/invalid, never as silently absent.
		http.Error(w, "review artifact not found or invalid", http.StatusNotFound)
	case errors.Is(err, review.ErrAlreadyResolved):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, review.ErrReasonRequired), errors.Is(err, review.ErrNoMatchingFiles):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, storage.ErrStaleArtifact):
		http.Error(w, "artifact was modified concurrently, retry", http.StatusConflict)
	default:
		h.logger.Error("review operation failed", "artifact", id, "error", err)
		http.Error(w, "review operation failed", http.StatusInternalServerError)
	}
}

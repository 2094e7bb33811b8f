// Package handler provides HTTP handlers for the testward service.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/sevigo/testward/internal/core"
	"github.com/sevigo/testward/internal/jobs"
	"github.com/sevigo/testward/internal/storage"
)

// EvaluationHandler accepts batch submissions and serves persisted reports.
type EvaluationHandler struct {
	dispatcher core.JobDispatcher
	store      storage.Store
	logger     *slog.Logger
}

func NewEvaluationHandler(dispatcher core.JobDispatcher, store storage.Store, logger *slog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		dispatcher: dispatcher,
		store:      store,
		logger:     logger,
	}
}

// Submit queues a batch for asynchronous evaluation. A missing batch id is
// generated server-side so the caller can poll for the report.
func (h *EvaluationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req core.EvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.BatchID == "" {
		req.BatchID = "batch_" + ulid.Make().String()
	}

	if err := jobs.ValidateRequest(&req); err != nil {
		h.logger.Warn("rejecting evaluation request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.dispatcher.Dispatch(r.Context(), &req); err != nil {
		h.logger.Error("failed to dispatch evaluation job", "batch", req.BatchID, "error", err)
		http.Error(w, "evaluation queue is full", http.StatusServiceUnavailable)
		return
	}

	h.logger.Info("evaluation job dispatched", "batch", req.BatchID, "files", len(req.Candidates))
	writeJSON(w, http.StatusAccepted, map[string]any{
		"batch_id": req.BatchID,
		"files":    len(req.Candidates),
	})
}

// GetReport serves one persisted evaluation report by id.
func (h *EvaluationHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := h.store.GetReport(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrReportNotFound) {
			http.Error(w, "report not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load report", "report", id, "error", err)
		http.Error(w, "failed to load report", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

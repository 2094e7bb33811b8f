package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevigo/testward/internal/core"
	"github.com/sevigo/testward/internal/review"
	"github.com/sevigo/testward/internal/server/handler"
	"github.com/sevigo/testward/internal/storage"
)

// NewRouter creates and configures a new HTTP router with middleware and API routes.
func NewRouter(dispatcher core.JobDispatcher, store storage.Store, ledger *review.Ledger, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Configure middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		evaluations := handler.NewEvaluationHandler(dispatcher, store, logger)
		r.Post("/evaluations", evaluations.Submit)
		r.Get("/reports/{id}", evaluations.GetReport)

		reviews := handler.NewReviewHandler(ledger, logger)
		r.Post("/reviews", reviews.Create)
		r.Get("/reviews/pending", reviews.ListPending)
		r.Get("/reviews/{id}", reviews.Status)
		r.Post("/reviews/{id}/approve", reviews.Approve)
		r.Post("/reviews/{id}/reject", reviews.Reject)
	})

	return r
}

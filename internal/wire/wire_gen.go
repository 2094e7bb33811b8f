// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"fmt"

	"github.com/sevigo/testward/internal/app"
	"github.com/sevigo/testward/internal/config"
	"github.com/sevigo/testward/internal/gate"
	"github.com/sevigo/testward/internal/jobs"
	"github.com/sevigo/testward/internal/logger"
	"github.com/sevigo/testward/internal/review"
	"github.com/sevigo/testward/internal/server"
)

// InitializeApp creates and wires all application dependencies.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	slogLogger := logger.NewLogger(provideLoggerConfig(cfg), provideLogWriter(cfg))

	// Storage (file or postgres, per config)
	store, storeCleanup, err := provideStore(cfg, slogLogger)
	if err != nil {
		return nil, nil, err
	}

	// Policy rule engine
	checker, err := providePolicyChecker(cfg, slogLogger)
	if err != nil {
		storeCleanup()
		return nil, nil, err
	}

	// Review ledger
	ledger := review.NewLedger(store, slogLogger)

	// Evaluation harness
	sandbox := gate.NewSandbox(slogLogger)
	harness := gate.NewHarness(provideGateConfig(cfg), checker, sandbox, ledger, store, slogLogger)

	// Background evaluation pipeline
	evaluationJob := jobs.NewEvaluationJob(harness, slogLogger)
	dispatcher := jobs.NewDispatcher(evaluationJob, cfg.MaxWorkers, slogLogger)

	// HTTP server
	srv := server.NewServer(ctx, cfg, dispatcher, store, ledger, slogLogger)

	// App
	application := app.NewApp(ctx, cfg, srv, dispatcher, slogLogger)

	cleanup := func() {
		storeCleanup()
	}

	return application, cleanup, nil
}

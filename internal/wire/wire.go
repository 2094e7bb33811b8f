//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"github.com/sevigo/testward/internal/app"
	"github.com/sevigo/testward/internal/config"
	"github.com/sevigo/testward/internal/core"
	"github.com/sevigo/testward/internal/gate"
	"github.com/sevigo/testward/internal/jobs"
	"github.com/sevigo/testward/internal/logger"
	"github.com/sevigo/testward/internal/review"
	"github.com/sevigo/testward/internal/server"
)

func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	wire.Build(
		app.NewApp,
		server.NewServer,
		config.LoadConfig,
		logger.NewLogger,
		review.NewLedger,
		gate.NewHarness,
		gate.NewSandbox,
		jobs.NewEvaluationJob,
		jobs.NewDispatcher,
		provideStore,
		providePolicyChecker,
		provideGateConfig,
		provideLoggerConfig,
		provideLogWriter,
		provideApprovalSource,
		provideJobDispatcher,
		provideMaxWorkers,
	)
	return &app.App{}, nil, nil
}

func provideApprovalSource(ledger *review.Ledger) gate.ApprovalSource {
	return ledger
}

func provideJobDispatcher(d *jobs.Dispatcher) core.JobDispatcher {
	return d
}

func provideMaxWorkers(cfg *config.Config) int {
	return cfg.MaxWorkers
}

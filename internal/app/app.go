// Package app orchestrates the main components of the testward service:
// configuration, storage, the evaluation pipeline, and the HTTP server.
package app

import (
	"context"
	"log/slog"

	"github.com/sevigo/testward/internal/config"
	"github.com/sevigo/testward/internal/jobs"
	"github.com/sevigo/testward/internal/server"
)

// App holds the main application components.
type App struct {
	ctx        context.Context
	cfg        *config.Config
	server     *server.Server
	dispatcher *jobs.Dispatcher
	logger     *slog.Logger
}

// NewApp assembles the application from its wired dependencies.
func NewApp(ctx context.Context, cfg *config.Config, srv *server.Server, dispatcher *jobs.Dispatcher, logger *slog.Logger) *App {
	return &App{
		ctx:        ctx,
		cfg:        cfg,
		server:     srv,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Start runs the HTTP server and blocks until shutdown.
func (a *App) Start() error {
	a.logger.Info("starting testward",
		"server_port", a.cfg.ServerPort,
		"storage_driver", a.cfg.StorageDriver,
		"max_workers", a.cfg.MaxWorkers)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly.
func (a *App) Stop() error {
	a.logger.Info("shutting down testward services")

	// Stop the HTTP server first to prevent new incoming requests.
	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
		// Continue to stop other components even if the server failed.
	}

	// Stop the job dispatcher, allowing in-flight evaluations to finish.
	a.dispatcher.Stop()

	if serverErr != nil {
		a.logger.Error("testward stopped with errors", "error", serverErr)
		return serverErr
	}

	a.logger.Info("testward stopped successfully")
	return nil
}

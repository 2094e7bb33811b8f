// Package wire assembles the application object graph for the server binary.
package wire

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sevigo/testward/internal/config"
	"github.com/sevigo/testward/internal/db"
	"github.com/sevigo/testward/internal/gate"
	"github.com/sevigo/testward/internal/logger"
	"github.com/sevigo/testward/internal/policy"
	"github.com/sevigo/testward/internal/storage"
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Log
}

func provideLogWriter(cfg *config.Config) io.Writer {
	switch cfg.Log.Output {
	case "stderr":
		return os.Stderr
	case "file":
		f, _ := os.OpenFile(logger.LogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
		return f
	default:
		return os.Stdout
	}
}

// provideStore selects the storage backend by configured driver. The cleanup
// function closes the database pool for the postgres driver and is a no-op
// for the file driver.
func provideStore(cfg *config.Config, slogLogger *slog.Logger) (storage.Store, func(), error) {
	switch cfg.StorageDriver {
	case "postgres":
		dbConn, dbCleanup, err := db.NewDatabase(cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return storage.NewPostgresStore(dbConn.DB), dbCleanup, nil
	default:
		store, err := storage.NewFileStore(cfg.ArtifactsDir, slogLogger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open artifact directory: %w", err)
		}
		return store, func() {}, nil
	}
}

func providePolicyChecker(cfg *config.Config, slogLogger *slog.Logger) (*policy.Checker, error) {
	rules, err := policy.LoadConfig(cfg.PolicyRulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy rules: %w", err)
	}
	return policy.NewChecker(rules, slogLogger)
}

func provideGateConfig(cfg *config.Config) *gate.Config {
	gateCfg := gate.DefaultConfig()
	gateCfg.PassThreshold = cfg.PassThreshold
	gateCfg.Strict = cfg.StrictMode
	gateCfg.SandboxTimeout = cfg.SandboxTimeout
	gateCfg.MaxExecutionTime = cfg.MaxExecutionTime
	if cfg.MaxWorkers > 0 {
		gateCfg.Parallelism = cfg.MaxWorkers
	}
	return gateCfg
}

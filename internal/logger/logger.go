// Package logger builds the shared slog logger from configuration.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// LogFile is the destination for the "file" output setting.
const LogFile = "testward.log"

// Config holds the logger configuration.
type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// NewLogger initializes a slog logger from the configuration. A non-nil
// output overrides the configured destination, which keeps CLI logging on
// stderr while command output stays parseable on stdout.
func NewLogger(cfg Config, output io.Writer) *slog.Logger {
	if output == nil {
		output = resolveWriter(cfg.Output)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(output, opts))
	}
	return slog.New(slog.NewTextHandler(output, opts))
}

func resolveWriter(name string) io.Writer {
	switch name {
	case "stderr":
		return os.Stderr
	case "file":
		file, err := os.OpenFile(LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			return os.Stdout
		}
		return file
	default:
		return os.Stdout
	}
}

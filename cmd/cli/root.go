package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/testward/internal/logger"
	"github.com/sevigo/testward/internal/policy"
	"github.com/sevigo/testward/internal/review"
	"github.com/sevigo/testward/internal/stack"
	"github.com/sevigo/testward/internal/storage"
)

var (
	stackFlag    string
	rulesFile    string
	artifactsDir string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "testward",
	Short: "testward gates LLM-generated test files before merge.",
	Long:  `A CLI for checking, repairing, evaluating, and reviewing generated test candidates against the project's validation policy.`,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&stackFlag, "stack", "s", "python", "Target stack (python, node, java)")
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "YAML file overriding the built-in policy rules")
	rootCmd.PersistentFlags().StringVar(&artifactsDir, "artifacts-dir", "genai_artifacts", "Directory holding reports and review artifacts")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	if err := viper.BindPFlag("ARTIFACTS_DIR", rootCmd.PersistentFlags().Lookup("artifacts-dir")); err != nil {
		slog.Error("Error binding flag", "error", err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("TW")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// newCLILogger logs to stderr so command output on stdout stays parseable.
func newCLILogger() *slog.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	var out io.Writer = os.Stderr
	return logger.NewLogger(logger.Config{Level: level, Format: "text"}, out)
}

func resolveStack() (stack.Stack, stack.Profile, error) {
	st, err := stack.Parse(stackFlag)
	if err != nil {
		return "", nil, err
	}
	profile, _ := stack.ProfileFor(st)
	return st, profile, nil
}

func newChecker(log *slog.Logger) (*policy.Checker, error) {
	rules, err := policy.LoadConfig(rulesFile)
	if err != nil {
		return nil, err
	}
	return policy.NewChecker(rules, log)
}

func newLedger(log *slog.Logger) (*review.Ledger, storage.Store, error) {
	store, err := storage.NewFileStore(viper.GetString("ARTIFACTS_DIR"), log)
	if err != nil {
		return nil, nil, err
	}
	return review.NewLedger(store, log), store, nil
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevigo/testward/internal/core"
	"github.com/sevigo/testward/internal/gate"
)

var (
	evalBatchID string
	evalStrict  bool
	evalFormat  string
	evalAvail   []string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [files...]",
	Short: "Run the full evaluation gate over generated test files.",
	Long:  `Evaluates one or more generated test files through every gate check and prints the report. The command exits non-zero when the gate fails.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newCLILogger()
		st, _, err := resolveStack()
		if err != nil {
			return err
		}
		checker, err := newChecker(log)
		if err != nil {
			return err
		}
		ledger, store, err := newLedger(log)
		if err != nil {
			return err
		}

		candidates := make([]core.Candidate, 0, len(args))
		for _, path := range args {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			candidates = append(candidates, core.Candidate{Path: path, Content: string(content)})
		}

		cfg := gate.DefaultConfig()
		cfg.Strict = evalStrict
		harness := gate.NewHarness(cfg, checker, gate.NewSandbox(log), ledger, store, log)

		req := &core.EvaluationRequest{
			BatchID:      evalBatchID,
			Stack:        string(st),
			Candidates:   candidates,
			Availability: core.Availability{External: evalAvail},
		}
		report := harness.Evaluate(cmd.Context(), req)

		if evalFormat == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			printReport(report)
		}

		if !report.OverallPassed {
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			return fmt.Errorf("evaluation gate failed")
		}
		return nil
	},
}

func init() { //nolint:gochecknoinits
	evaluateCmd.Flags().StringVar(&evalBatchID, "batch", "", "Batch identifier linking this run to a review artifact")
	evaluateCmd.Flags().BoolVar(&evalStrict, "strict", false, "Require every check to pass")
	evaluateCmd.Flags().StringVar(&evalFormat, "format", "text", "Output format (text, json)")
	evaluateCmd.Flags().StringSliceVar(&evalAvail, "available", nil, "External modules known to be installed")
	rootCmd.AddCommand(evaluateCmd)
}

func printReport(report *core.EvaluationReport) {
	fmt.Printf("Report %s (batch %s, stack %s)\n\n", report.ID, report.BatchID, report.Stack)

	table := newTable([]string{"Check", "File", "Result", "Score", "Message"})
	for _, r := range report.Results {
		table.Append([]string{
			r.CheckName,
			r.FilePath,
			passColor(r.Passed),
			fmt.Sprintf("%.2f", r.Score),
			r.Message,
		})
	}
	table.Render()

	fmt.Println()
	for _, failure := range report.Summary.CriticalFailures {
		fmt.Printf("%s %s\n", red("critical:"), failure)
	}
	for _, rec := range report.Recommendations {
		fmt.Printf("%s %s\n", cyan("->"), rec)
	}
	fmt.Printf("\n%s  score %.2f, %d/%d checks passed in %s\n",
		passColor(report.OverallPassed), report.OverallScore,
		report.PassedChecks, report.TotalChecks, report.Summary.TotalElapsed)
}

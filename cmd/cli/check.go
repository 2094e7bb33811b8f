package main

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sevigo/testward/internal/core"
	"github.com/sevigo/testward/internal/stack"
)

var (
	checkFormat string
	checkStrict bool
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Check test files against the validation policy.",
	Long:  `Scans a file or directory for test files and reports every policy violation. Exits non-zero when errors are found (or warnings, with --strict).`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newCLILogger()
		st, profile, err := resolveStack()
		if err != nil {
			return err
		}
		checker, err := newChecker(log)
		if err != nil {
			return err
		}

		files, err := collectTestFiles(args[0], profile)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Printf("no test files found under %s\n", args[0])
			return nil
		}

		var all []core.Violation
		for _, path := range files {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			cand := core.Candidate{Path: path, Content: string(content)}
			all = append(all, checker.Check(cmd.Context(), cand, st)...)
		}

		errors, warnings := core.CountBySeverity(all)
		passed := errors == 0 && (!checkStrict || warnings == 0)

		if checkFormat == "json" {
			return printCheckJSON(files, all, errors, warnings, passed)
		}
		printCheckTable(files, all, errors, warnings, passed)

		if !passed {
			// Diagnostics already printed; signal failure without re-printing.
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			return fmt.Errorf("policy check failed")
		}
		return nil
	},
}

func init() { //nolint:gochecknoinits
	checkCmd.Flags().StringVar(&checkFormat, "format", "text", "Output format (text, json)")
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Treat warnings as failures")
	rootCmd.AddCommand(checkCmd)
}

// collectTestFiles returns path itself for a regular file, or every file under
// it matching the profile's test-file patterns for a directory.
func collectTestFiles(path string, profile stack.Profile) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		for _, glob := range profile.TestFileGlobs() {
			if ok, _ := filepath.Match(glob, d.Name()); ok {
				files = append(files, p)
				break
			}
		}
		return nil
	})
	return files, err
}

func printCheckTable(files []string, violations []core.Violation, errors, warnings int, passed bool) {
	if len(violations) > 0 {
		table := newTable([]string{"File", "Line", "Severity", "Rule", "Message"})
		for _, v := range violations {
			table.Append([]string{
				v.FilePath,
				strconv.Itoa(v.Line),
				severityColor(string(v.Severity)),
				v.Rule,
				v.Message,
			})
		}
		table.Render()
		fmt.Println()
	}

	fmt.Printf("%s  %d files, %d violations (%d errors, %d warnings)\n",
		passColor(passed), len(files), len(violations), errors, warnings)
}

func printCheckJSON(files []string, violations []core.Violation, errors, warnings int, passed bool) error {
	if violations == nil {
		violations = []core.Violation{}
	}
	payload := map[string]any{
		"files":      files,
		"violations": violations,
		"errors":     errors,
		"warnings":   warnings,
		"passed":     passed,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

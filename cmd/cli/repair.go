package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevigo/testward/internal/core"
	"github.com/sevigo/testward/internal/repair"
)

var (
	repairWrite bool
	repairAvail []string
)

var repairCmd = &cobra.Command{
	Use:   "repair [file]",
	Short: "Run the auto-repair pipeline over a test file.",
	Long:  `Applies the ordered repair passes (syntax, imports, undefined names, mocks, structure) to a generated test file. Prints the repaired text to stdout unless --write is given.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newCLILogger()
		st, _, err := resolveStack()
		if err != nil {
			return err
		}

		path := args[0]
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		engine := repair.NewEngine(log)
		repaired, fixLog := engine.Repair(cmd.Context(), string(content), repair.Context{
			Stack:        st,
			TargetPath:   path,
			Availability: core.Availability{External: repairAvail},
		})

		for _, entry := range fixLog {
			fmt.Fprintf(os.Stderr, "%s %s\n", cyan("fix:"), entry)
		}

		if repairWrite {
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(repaired), info.Mode().Perm()); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(os.Stderr, "wrote %s (%d fixes)\n", path, len(fixLog))
			return nil
		}

		fmt.Print(repaired)
		return nil
	},
}

func init() { //nolint:gochecknoinits
	repairCmd.Flags().BoolVarP(&repairWrite, "write", "w", false, "Rewrite the file in place")
	repairCmd.Flags().StringSliceVar(&repairAvail, "available", nil, "External modules known to be installed")
	rootCmd.AddCommand(repairCmd)
}

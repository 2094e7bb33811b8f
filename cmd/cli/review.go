package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	reviewReviewer string
	reviewReason   string
	reviewFiles    []string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Manage human review artifacts.",
}

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List review artifacts awaiting a decision.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger, _, err := newLedger(newCLILogger())
		if err != nil {
			return err
		}
		pending, err := ledger.ListPending(cmd.Context())
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Println("no pending reviews")
			return nil
		}

		table := newTable([]string{"ID", "Stack", "Items", "Approved", "Rejected", "Created"})
		for _, s := range pending {
			table.Append([]string{
				s.ID,
				s.Stack,
				strconv.Itoa(s.TotalItems),
				strconv.Itoa(s.ApprovedItems),
				strconv.Itoa(s.RejectedItems),
				s.CreatedAt.Format("2006-01-02 15:04"),
			})
		}
		table.Render()
		return nil
	},
}

var reviewApproveCmd = &cobra.Command{
	Use:   "approve [artifact-id]",
	Short: "Approve a review artifact, or a subset of its files.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger, _, err := newLedger(newCLILogger())
		if err != nil {
			return err
		}
		if err := ledger.Approve(cmd.Context(), args[0], reviewReviewer, reviewFiles); err != nil {
			return err
		}
		return printReviewStatus(cmd, args[0])
	},
}

var reviewRejectCmd = &cobra.Command{
	Use:   "reject [artifact-id]",
	Short: "Reject a review artifact with a reason.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger, _, err := newLedger(newCLILogger())
		if err != nil {
			return err
		}
		if err := ledger.Reject(cmd.Context(), args[0], reviewReviewer, reviewReason); err != nil {
			return err
		}
		return printReviewStatus(cmd, args[0])
	},
}

var reviewStatusCmd = &cobra.Command{
	Use:   "status [artifact-id]",
	Short: "Show the current state of a review artifact.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printReviewStatus(cmd, args[0])
	},
}

func printReviewStatus(cmd *cobra.Command, id string) error {
	ledger, _, err := newLedger(newCLILogger())
	if err != nil {
		return err
	}
	s, err := ledger.Status(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Printf("%s  status=%s  items=%d approved=%d rejected=%d pending=%d\n",
		s.ID, s.Status, s.TotalItems, s.ApprovedItems, s.RejectedItems, s.PendingItems)
	if s.Reviewer != "" {
		fmt.Printf("reviewed by %s\n", s.Reviewer)
	}
	return nil
}

func init() { //nolint:gochecknoinits
	reviewApproveCmd.Flags().StringVar(&reviewReviewer, "reviewer", "", "Name of the human reviewer")
	reviewApproveCmd.Flags().StringSliceVar(&reviewFiles, "files", nil, "Approve only these file paths")
	reviewRejectCmd.Flags().StringVar(&reviewReviewer, "reviewer", "", "Name of the human reviewer")
	reviewRejectCmd.Flags().StringVar(&reviewReason, "reason", "", "Reason for rejection")
	_ = reviewApproveCmd.MarkFlagRequired("reviewer")
	_ = reviewRejectCmd.MarkFlagRequired("reviewer")
	_ = reviewRejectCmd.MarkFlagRequired("reason")

	reviewCmd.AddCommand(reviewListCmd, reviewApproveCmd, reviewRejectCmd, reviewStatusCmd)
	rootCmd.AddCommand(reviewCmd)
}

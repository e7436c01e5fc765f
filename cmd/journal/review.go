// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/internal/review"
	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/pkg/types"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Submit and inspect referee reviews",
	Long: `Review operations for assigned referees. A submitted review is written
to a local durable cache before the backend call, so your report
survives a lost or dropped backend write; the cached copy is what
"review show" displays for your own review. Use "review clear" to
discard the cached copy and submit a replacement.`,
}

// newReviewFlow wires the submission flow with its local cache. The
// caller must Close the returned store.
func newReviewFlow(cmd *cobra.Command) (*review.Flow, func(), error) {
	client := newClient(cmd)
	if err := requireIdentity(client); err != nil {
		return nil, nil, err
	}
	store, err := openCache()
	if err != nil {
		return nil, nil, err
	}
	return &review.Flow{API: client, Cache: store}, func() { store.Close() }, nil
}

// --- submit subcommand ---

var reviewSubmitCmd = &cobra.Command{
	Use:   "submit [manuscript-id]",
	Short: "Submit your review for a manuscript under referee review",
	Long: `Submit records your report and verdict. Verdicts: ACCEPT, REJECT,
ACCEPT_WITH_REVISIONS. If you have a cached review for this manuscript
already, clear it first with "review clear".`,
	Args: cobra.ExactArgs(1),
	RunE: runReviewSubmit,
}

func runReviewSubmit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	report, _ := cmd.Flags().GetString("report")
	reportFile, _ := cmd.Flags().GetString("report-file")
	if reportFile != "" {
		data, err := os.ReadFile(reportFile)
		if err != nil {
			return fmt.Errorf("reading report file: %w", err)
		}
		report = string(data)
	}
	verdictFlag, _ := cmd.Flags().GetString("verdict")
	verdict := types.Verdict(strings.ToUpper(verdictFlag))

	flow, done, err := newReviewFlow(cmd)
	if err != nil {
		return err
	}
	defer done()

	m, err := flow.API.Manuscript(ctx, args[0])
	if err != nil {
		return err
	}

	if cached, _ := flow.Cache.Get(ctx, m.ID, flow.API.UserEmail); cached != nil {
		return fmt.Errorf("a review for %s is already cached; run \"journal review clear %s\" to replace it", m.ID, m.ID)
	}

	err = flow.Submit(ctx, m, report, verdict, os.Stderr)
	if errors.Is(err, review.ErrBackendUnconfirmed) {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		fmt.Println("Review saved locally; the backend did not confirm the write.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Review submitted for %s (%s).\n", m.ID, verdict.DisplayLabel())
	return nil
}

// --- show subcommand ---

var reviewShowCmd = &cobra.Command{
	Use:   "show [manuscript-id]",
	Short: "Show your review for a manuscript",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewShow,
}

func runReviewShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	flow, done, err := newReviewFlow(cmd)
	if err != nil {
		return err
	}
	defer done()

	m, err := flow.API.Manuscript(ctx, args[0])
	if err != nil {
		return err
	}

	rec, source := flow.Display(ctx, m, os.Stderr)
	if rec == nil {
		fmt.Printf("No review on record for %s on manuscript %s.\n", flow.API.UserEmail, m.ID)
		return nil
	}

	fmt.Printf("Review for %s (from %s):\n", m.ID, source)
	fmt.Printf("Verdict: %s\n", rec.Verdict.DisplayLabel())
	if !rec.SubmittedAt.IsZero() {
		fmt.Printf("Submitted: %s\n", rec.SubmittedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Printf("\n%s\n", rec.Report)
	return nil
}

// --- clear subcommand ---

var reviewClearCmd = &cobra.Command{
	Use:   "clear [manuscript-id]",
	Short: "Discard your cached review to allow a resubmission",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewClear,
}

func runReviewClear(cmd *cobra.Command, args []string) error {
	if !confirm(cmd, fmt.Sprintf("Discard your cached review for manuscript %s? A new submission will replace it.", args[0])) {
		fmt.Println("Cancelled.")
		return nil
	}

	flow, done, err := newReviewFlow(cmd)
	if err != nil {
		return err
	}
	defer done()

	if err := flow.Clear(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Cached review for %s cleared.\n", args[0])
	return nil
}

func init() {
	reviewSubmitCmd.Flags().String("report", "", "review report text")
	reviewSubmitCmd.Flags().String("report-file", "", "read the review report from a file")
	reviewSubmitCmd.Flags().String("verdict", "", "verdict: ACCEPT, REJECT, or ACCEPT_WITH_REVISIONS")

	reviewCmd.AddCommand(reviewSubmitCmd)
	reviewCmd.AddCommand(reviewShowCmd)
	reviewCmd.AddCommand(reviewClearCmd)

	rootCmd.AddCommand(reviewCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/internal/workflow"
)

var refereeCmd = &cobra.Command{
	Use:   "referee",
	Short: "Assign and remove manuscript referees (editors only)",
	Long: `Referee operations are the editor-only side channel of the pipeline:
attach or detach a referee identity on a manuscript, or list the users
eligible for assignment. Being an assigned referee is what enables the
referee accept/reject actions during REFEREE_REVIEW.`,
}

// --- assign subcommand ---

var refereeAssignCmd = &cobra.Command{
	Use:   "assign [manuscript-id] [referee-email]",
	Short: "Assign a referee to a manuscript",
	Args:  cobra.ExactArgs(2),
	RunE:  runRefereeAssign,
}

func runRefereeAssign(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	ctrl := newController(cmd)
	if err := requireIdentity(ctrl.API); err != nil {
		return err
	}

	roles, err := actingRoles(ctx, ctrl.API)
	if err != nil {
		return err
	}
	m, err := ctrl.LoadManuscript(ctx, args[0])
	if err != nil {
		return err
	}

	updated, err := ctrl.AssignReferee(ctx, m, args[1], roles)
	if err != nil {
		return err
	}
	fmt.Printf("Referee %s assigned to %s.\n", args[1], updated.ID)
	fmt.Printf("Assigned referees: %s\n", strings.Join(updated.RefereeEmails(), ", "))
	return nil
}

// --- remove subcommand ---

var refereeRemoveCmd = &cobra.Command{
	Use:   "remove [manuscript-id] [referee-email]",
	Short: "Remove a referee from a manuscript",
	Args:  cobra.ExactArgs(2),
	RunE:  runRefereeRemove,
}

func runRefereeRemove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	ctrl := newController(cmd)
	if err := requireIdentity(ctrl.API); err != nil {
		return err
	}

	if !confirm(cmd, fmt.Sprintf("Remove referee %s from manuscript %s?", args[1], args[0])) {
		fmt.Println("Cancelled.")
		return nil
	}

	roles, err := actingRoles(ctx, ctrl.API)
	if err != nil {
		return err
	}
	m, err := ctrl.LoadManuscript(ctx, args[0])
	if err != nil {
		return err
	}

	updated, err := ctrl.RemoveReferee(ctx, m, args[1], roles)
	if err != nil {
		return err
	}
	fmt.Printf("Referee %s removed from %s.\n", args[1], updated.ID)
	return nil
}

// --- candidates subcommand ---

var refereeCandidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List users eligible for referee assignment",
	RunE:  runRefereeCandidates,
}

func runRefereeCandidates(cmd *cobra.Command, args []string) error {
	client := newClient(cmd)
	users, err := client.Users(context.Background())
	if err != nil {
		return err
	}

	candidates := workflow.RefereeCandidates(users)
	if len(candidates) == 0 {
		fmt.Println("No referees found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-32s  %s\n", "Email", "Name")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 60))
	for _, u := range candidates {
		fmt.Fprintf(os.Stdout, "%-32s  %s\n", u.Email, u.Name)
	}
	fmt.Fprintf(os.Stdout, "\n%d candidates\n", len(candidates))
	return nil
}

func init() {
	refereeCmd.AddCommand(refereeAssignCmd)
	refereeCmd.AddCommand(refereeRemoveCmd)
	refereeCmd.AddCommand(refereeCandidatesCmd)

	rootCmd.AddCommand(refereeCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/internal/state"
	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/pkg/types"
)

var manuscriptCmd = &cobra.Command{
	Use:   "manuscript",
	Short: "Submit and manage manuscripts through the editorial pipeline",
	Long: `Manuscript operations: list and inspect manuscripts, submit a new one,
move one through the lifecycle, edit it under author revisions, or
withdraw it. The actions subcommand shows what you may do to a
manuscript given your roles and ownership.`,
}

// --- list subcommand ---

var manuscriptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all manuscripts",
	RunE:  runManuscriptList,
}

func runManuscriptList(cmd *cobra.Command, args []string) error {
	client := newClient(cmd)
	all, err := client.Manuscripts(context.Background())
	if err != nil {
		return err
	}

	manuscripts := make([]types.Manuscript, 0, len(all))
	for _, m := range all {
		manuscripts = append(manuscripts, m)
	}
	sort.Slice(manuscripts, func(i, j int) bool {
		return manuscripts[i].ID < manuscripts[j].ID
	})

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(manuscripts)
	}

	if len(manuscripts) == 0 {
		fmt.Println("No manuscripts found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-12s  %-40s  %-24s  %s\n", "ID", "Title", "Author", "State")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 96))
	for _, m := range manuscripts {
		fmt.Fprintf(os.Stdout, "%-12s  %-40s  %-24s  %s\n",
			truncate(m.ID, 12), truncate(m.Title, 40), truncate(m.Author, 24), m.State)
	}
	fmt.Fprintf(os.Stdout, "\n%d manuscripts\n", len(manuscripts))
	return nil
}

// --- show subcommand ---

var manuscriptShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one manuscript in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runManuscriptShow,
}

func runManuscriptShow(cmd *cobra.Command, args []string) error {
	ctrl := newController(cmd)
	m, err := ctrl.LoadManuscript(context.Background(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}
	if yamlOutput, _ := cmd.Flags().GetBool("yaml"); yamlOutput {
		data, err := yaml.Marshal(m)
		if err != nil {
			return fmt.Errorf("encoding manuscript: %w", err)
		}
		os.Stdout.Write(data)
		return nil
	}

	fmt.Printf("ID:       %s\n", m.ID)
	fmt.Printf("Title:    %s\n", m.Title)
	fmt.Printf("Author:   %s <%s>\n", m.Author, m.AuthorEmail)
	if m.AuthorAffiliation != "" {
		fmt.Printf("Affil.:   %s\n", m.AuthorAffiliation)
	}
	fmt.Printf("State:    %s\n", m.State)
	if m.Version > 0 {
		fmt.Printf("Version:  %d\n", m.Version)
	}

	referees := m.RefereeEmails()
	if len(referees) > 0 {
		fmt.Printf("Referees: %s\n", strings.Join(referees, ", "))
	} else {
		fmt.Println("Referees: none assigned")
	}
	for email, report := range m.Referees {
		if report.Report == "" && report.Verdict == "" {
			continue
		}
		fmt.Printf("  %s: %s\n", email, report.Verdict.DisplayLabel())
	}

	fmt.Printf("\nAbstract:\n%s\n", m.Abstract)
	return nil
}

// --- create subcommand ---

var manuscriptCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Submit a new manuscript",
	Long: `Create submits a new manuscript in state SUBMITTED. The backend assigns
the manuscript ID. All of --title, --author, --author-email, --abstract,
and manuscript text (--text or --text-file) are required.`,
	RunE: runManuscriptCreate,
}

func runManuscriptCreate(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	author, _ := cmd.Flags().GetString("author")
	authorEmail, _ := cmd.Flags().GetString("author-email")
	affiliation, _ := cmd.Flags().GetString("affiliation")
	abstract, _ := cmd.Flags().GetString("abstract")

	text, err := textFromFlags(cmd)
	if err != nil {
		return err
	}

	if title == "" || author == "" || authorEmail == "" || abstract == "" || text == "" {
		return fmt.Errorf("all fields are required: --title, --author, --author-email, --abstract, and --text or --text-file")
	}

	client := newClient(cmd)
	if client.UserEmail == "" {
		client.UserEmail = authorEmail
	}

	m := &types.Manuscript{
		Title:             title,
		Author:            author,
		AuthorEmail:       authorEmail,
		AuthorAffiliation: affiliation,
		Abstract:          abstract,
		Text:              text,
	}
	if err := client.Create(context.Background(), m); err != nil {
		return err
	}
	fmt.Printf("Manuscript %q submitted.\n", title)
	return nil
}

// --- set-state subcommand ---

var manuscriptSetStateCmd = &cobra.Command{
	Use:   "set-state [id] [state]",
	Short: "Move a manuscript to a new lifecycle state",
	Long: `Set-state requests a lifecycle transition. The transition is validated
against the state machine for your roles before any network call; an
illegal one is rejected locally. Destructive transitions (reject,
withdraw) ask for confirmation.

States: SUBMITTED, REFEREE_REVIEW, AUTHOR_REVISIONS, EDITOR_REVIEW,
COPY_EDIT, AUTHOR_REVIEW, FORMATTING, PUBLISHED, REJECTED, WITHDRAWN.`,
	Args: cobra.ExactArgs(2),
	RunE: runManuscriptSetState,
}

func runManuscriptSetState(cmd *cobra.Command, args []string) error {
	target := types.State(strings.ToUpper(args[1]))
	if !state.Valid(target) {
		return fmt.Errorf("unknown state %q", args[1])
	}
	return transition(cmd, args[0], target)
}

// --- withdraw subcommand ---

var manuscriptWithdrawCmd = &cobra.Command{
	Use:   "withdraw [id]",
	Short: "Withdraw your own manuscript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transition(cmd, args[0], types.StateWithdrawn)
	},
}

// transition runs the shared load / validate / confirm / request flow.
func transition(cmd *cobra.Command, id string, target types.State) error {
	ctx := context.Background()
	ctrl := newController(cmd)
	if err := requireIdentity(ctrl.API); err != nil {
		return err
	}

	roles, err := actingRoles(ctx, ctrl.API)
	if err != nil {
		return err
	}
	m, err := ctrl.LoadManuscript(ctx, id)
	if err != nil {
		return err
	}

	if action := state.Find(m, ctrl.API.UserEmail, roles, target); action != nil && action.RequiresConfirmation {
		if !confirm(cmd, fmt.Sprintf("Change manuscript %s to state %s?", id, target)) {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	result, err := ctrl.RequestTransition(ctx, m, target, roles)
	if err != nil {
		return err
	}
	if result.Warning != "" {
		fmt.Fprintf(os.Stderr, "warning: %s\n", result.Warning)
	}
	if result.NoOp {
		return nil
	}
	fmt.Printf("Manuscript %s is now %s.\n", id, result.Manuscript.State)
	return nil
}

// --- edit subcommand ---

var manuscriptEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a manuscript's text and abstract under author revisions",
	Long: `Edit saves new text and abstract for your manuscript while it is in
AUTHOR_REVISIONS. The state does not change; follow up with
"set-state [id] EDITOR_REVIEW" to submit the revisions.`,
	Args: cobra.ExactArgs(1),
	RunE: runManuscriptEdit,
}

func runManuscriptEdit(cmd *cobra.Command, args []string) error {
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

	newText, err := textFromFlags(cmd)
	if err != nil {
		return err
	}
	if newText == "" {
		newText = m.Text
	}
	newAbstract, _ := cmd.Flags().GetString("abstract")
	if newAbstract == "" {
		newAbstract = m.Abstract
	}

	updated, err := ctrl.UpdateContent(ctx, m, newText, newAbstract, roles)
	if err != nil {
		return err
	}
	fmt.Printf("Manuscript %s updated (state unchanged: %s).\n", updated.ID, updated.State)
	return nil
}

// --- actions subcommand ---

var manuscriptActionsCmd = &cobra.Command{
	Use:   "actions [id]",
	Short: "Show the lifecycle actions available to you on a manuscript",
	Args:  cobra.ExactArgs(1),
	RunE:  runManuscriptActions,
}

func runManuscriptActions(cmd *cobra.Command, args []string) error {
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

	actions := state.AvailableActions(m, ctrl.API.UserEmail, roles)
	fmt.Printf("Manuscript %s is in state %s.\n", m.ID, m.State)
	if len(actions) == 0 {
		if state.Terminal(m.State) {
			fmt.Println("Terminal state: no further actions for anyone.")
		} else {
			fmt.Println("No actions available to you in this state.")
		}
		return nil
	}

	fmt.Println("Available actions:")
	for _, a := range actions {
		switch {
		case a.Edit:
			fmt.Printf("  %-24s (content edit, no state change)\n", a.Label)
		case a.RequiresConfirmation:
			fmt.Printf("  %-24s -> %s (asks for confirmation)\n", a.Label, a.Target)
		default:
			fmt.Printf("  %-24s -> %s\n", a.Label, a.Target)
		}
	}
	return nil
}

// --- shared helpers ---

// textFromFlags reads manuscript text from --text or --text-file.
func textFromFlags(cmd *cobra.Command) (string, error) {
	text, _ := cmd.Flags().GetString("text")
	textFile, _ := cmd.Flags().GetString("text-file")
	if text != "" && textFile != "" {
		return "", fmt.Errorf("--text and --text-file are mutually exclusive")
	}
	if textFile != "" {
		data, err := os.ReadFile(textFile)
		if err != nil {
			return "", fmt.Errorf("reading text file: %w", err)
		}
		return string(data), nil
	}
	return text, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	manuscriptListCmd.Flags().Bool("json", false, "output as JSON")

	manuscriptShowCmd.Flags().Bool("json", false, "output as JSON")
	manuscriptShowCmd.Flags().Bool("yaml", false, "output as YAML")

	manuscriptCreateCmd.Flags().String("title", "", "manuscript title")
	manuscriptCreateCmd.Flags().String("author", "", "author name")
	manuscriptCreateCmd.Flags().String("author-email", "", "author email (owner identity, immutable)")
	manuscriptCreateCmd.Flags().String("affiliation", "", "author affiliation")
	manuscriptCreateCmd.Flags().String("abstract", "", "manuscript abstract")
	manuscriptCreateCmd.Flags().String("text", "", "manuscript full text")
	manuscriptCreateCmd.Flags().String("text-file", "", "read manuscript full text from a file")

	manuscriptEditCmd.Flags().String("abstract", "", "replacement abstract (default: keep current)")
	manuscriptEditCmd.Flags().String("text", "", "replacement full text (default: keep current)")
	manuscriptEditCmd.Flags().String("text-file", "", "read replacement full text from a file")

	manuscriptCmd.AddCommand(manuscriptListCmd)
	manuscriptCmd.AddCommand(manuscriptShowCmd)
	manuscriptCmd.AddCommand(manuscriptCreateCmd)
	manuscriptCmd.AddCommand(manuscriptSetStateCmd)
	manuscriptCmd.AddCommand(manuscriptWithdrawCmd)
	manuscriptCmd.AddCommand(manuscriptEditCmd)
	manuscriptCmd.AddCommand(manuscriptActionsCmd)

	rootCmd.AddCommand(manuscriptCmd)
}

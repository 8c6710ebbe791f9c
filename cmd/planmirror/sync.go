package main

import (
	"fmt"
	"os"

	"github.com/planmirror/planmirror/core/mirror"
	"github.com/spf13/cobra"
)

var (
	syncDryRun bool
	syncConfig string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Post the current plan to its Linear mirror issue",
	Long: `Sync runs one pass from the current directory: locate the plan, extract
the ticket id from the git branch, resolve the mirror issue, and post the
plan as a comment. With --dry-run the mirror issue is still looked up but
nothing is created or posted.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "resolve the plan and mirror issue without posting")
	syncCmd.Flags().StringVar(&syncConfig, "config", "", "settings file path (default {git root}/.claude/linear-sync.json)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}

	result, err := mirror.Run(cmd.Context(), mirror.Options{
		Dir:        dir,
		ConfigPath: syncConfig,
		DryRun:     syncDryRun,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch result.Status {
	case mirror.StatusPosted:
		if result.IssueCreated {
			fmt.Fprintln(out, successStyle.Render("✓")+" created mirror issue "+result.IssueIdentifier)
		}
		fmt.Fprintln(out, successStyle.Render("✓")+" plan posted to "+result.IssueIdentifier)
		fmt.Fprintln(out, "  "+result.URL)

	case mirror.StatusDryRun:
		fmt.Fprintln(out, labelStyle.Render("plan:")+" "+result.PlanTitle+" ("+result.PlanPath+")")
		fmt.Fprintln(out, labelStyle.Render("ticket:")+" "+result.TicketID)
		mirrorLine := "none"
		if result.IssueIdentifier != "" {
			mirrorLine = result.IssueIdentifier
		}
		fmt.Fprintln(out, labelStyle.Render("mirror:")+" "+mirrorLine)
		fmt.Fprintln(out, dimStyle.Render(result.Reason))

	case mirror.StatusSkipped:
		fmt.Fprintln(out, warnStyle.Render("skipped:")+" "+result.Reason)
	}
	return nil
}

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/planmirror/planmirror/core/claude"
	"github.com/planmirror/planmirror/core/config"
	"github.com/planmirror/planmirror/core/git"
	"github.com/planmirror/planmirror/core/plan"
	"github.com/planmirror/planmirror/core/ticket"
	"github.com/spf13/cobra"
)

var statusConfig string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show resolved settings, plan, ticket, and hook registration",
	Long: `Status reports what a sync pass would work with: the resolved settings
(API key redacted), the plan document, the ticket id extracted from the
current branch, and whether the hook is registered. No Linear calls are
made.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusConfig, "config", "", "settings file path (default {git root}/.claude/linear-sync.json)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	root, err := git.TopLevel(ctx, dir)
	if err != nil {
		root = ""
	}
	base := root
	if base == "" {
		base = dir
	}

	printSettings(out, base)
	printPlan(out, root)

	branch, err := git.CurrentBranch(ctx, dir)
	if err != nil {
		branch = ""
	}
	branchLine := branch
	if branchLine == "" {
		branchLine = dimStyle.Render("(none)")
	}
	fmt.Fprintln(out, labelStyle.Render("branch:")+" "+branchLine)
	fmt.Fprintln(out, labelStyle.Render("ticket:")+" "+ticket.FromBranch(branch))

	printHookState(out, "project", claude.SettingsPath(base))
	if home, err := os.UserHomeDir(); err == nil {
		printHookState(out, "user", claude.SettingsPath(home))
	}
	return nil
}

func printSettings(out io.Writer, base string) {
	path := statusConfig
	if path == "" {
		path = config.Path(base)
	}

	settings, err := config.Load(path)
	if err != nil {
		fmt.Fprintln(out, labelStyle.Render("settings:")+" "+warnStyle.Render(err.Error()))
		return
	}

	key := "absent"
	if settings.APIKey != "" {
		key = "present"
	}
	team := settings.TeamID
	if team == "" {
		team = dimStyle.Render("(unset)")
	}
	fmt.Fprintln(out, labelStyle.Render("settings:")+" "+path)
	fmt.Fprintf(out, "  team %s, api key %s, create mirrors %v\n", team, key, settings.CreateMirror)
	fmt.Fprintf(out, "  title format %q, comment header %q\n", settings.TitleFormat, settings.CommentHeader)
	if err := settings.Validate(); err != nil {
		fmt.Fprintln(out, "  "+warnStyle.Render("not ready: "+err.Error()))
	}
}

func printPlan(out io.Writer, root string) {
	plansDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		plansDir = filepath.Join(home, ".claude", "plans")
	}

	doc, err := plan.Locate(root, plansDir)
	switch {
	case err != nil:
		fmt.Fprintln(out, labelStyle.Render("plan:")+" "+warnStyle.Render(err.Error()))
	case doc == nil:
		fmt.Fprintln(out, labelStyle.Render("plan:")+" "+dimStyle.Render("none found"))
	default:
		fmt.Fprintln(out, labelStyle.Render("plan:")+" "+doc.Title()+" ("+doc.Path+")")
	}
}

func printHookState(out io.Writer, scope, path string) {
	installed, err := claude.HookInstalled(path)
	state := "not installed"
	switch {
	case err != nil:
		state = warnStyle.Render(err.Error())
	case installed:
		state = successStyle.Render("installed")
	}
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("hook ("+scope+"):"), state)
}

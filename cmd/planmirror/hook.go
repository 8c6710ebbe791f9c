package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/planmirror/planmirror/core/claude"
	"github.com/planmirror/planmirror/core/mirror"
	"github.com/spf13/cobra"
)

// hookCmd is the entrypoint Claude Code invokes after ExitPlanMode. Every
// outcome short of a failed Linear call exits 0 so the hook never blocks
// the session.
var hookCmd = &cobra.Command{
	Use:    "hook",
	Short:  "Handle a PostToolUse hook event from stdin",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE:   runHook,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

func runHook(cmd *cobra.Command, args []string) error {
	event, err := claude.ReadHookEvent(cmd.InOrStdin())
	if err != nil {
		fmt.Fprintf(os.Stderr, "planmirror: ignoring hook input: %v\n", err)
		return nil
	}
	slog.Debug("hook event received",
		"event", event.HookEventName,
		"tool", event.ToolName,
		"session", event.SessionID,
		"cwd", event.CWD)

	dir := event.CWD
	if dir == "" {
		dir, err = os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "planmirror: cannot resolve working directory: %v\n", err)
			return nil
		}
	}

	result, err := mirror.Run(cmd.Context(), mirror.Options{Dir: dir})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Status == mirror.StatusPosted {
		fmt.Fprintf(out, "Plan posted to %s: %s\n", result.IssueIdentifier, result.URL)
		return nil
	}
	fmt.Fprintf(out, "planmirror: %s\n", result.Reason)
	return nil
}

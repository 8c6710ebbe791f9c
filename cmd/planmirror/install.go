package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/planmirror/planmirror/core/claude"
	"github.com/planmirror/planmirror/core/git"
	"github.com/spf13/cobra"
)

var (
	installUser   bool
	uninstallUser bool
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Register the ExitPlanMode hook in Claude Code settings",
	Long: `Install adds a PostToolUse hook for ExitPlanMode to .claude/settings.json
at the git top level (or the current directory outside a repository).
With --user the hook is registered in ~/.claude/settings.json instead.
Existing settings content is preserved.`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the hook from Claude Code settings",
	Args:  cobra.NoArgs,
	RunE:  runUninstall,
}

func init() {
	installCmd.Flags().BoolVar(&installUser, "user", false, "register in ~/.claude/settings.json")
	uninstallCmd.Flags().BoolVar(&uninstallUser, "user", false, "remove from ~/.claude/settings.json")
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
}

func hookSettingsPath(ctx context.Context, user bool) (string, error) {
	if user {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return claude.SettingsPath(home), nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	if root, err := git.TopLevel(ctx, dir); err == nil {
		dir = root
	}
	return claude.SettingsPath(dir), nil
}

func runInstall(cmd *cobra.Command, args []string) error {
	path, err := hookSettingsPath(cmd.Context(), installUser)
	if err != nil {
		return err
	}

	bin, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve own executable path: %w", err)
	}
	bin, err = filepath.Abs(bin)
	if err != nil {
		return fmt.Errorf("failed to resolve own executable path: %w", err)
	}

	if err := claude.InstallHook(path, bin); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, successStyle.Render("✓")+" hook registered in "+path)
	fmt.Fprintln(out, dimStyle.Render("  runs "+claude.HookCommand(bin)+" after ExitPlanMode"))
	if _, err := exec.LookPath("claude"); err != nil {
		fmt.Fprintln(out, warnStyle.Render("warning:")+" no claude executable on PATH; the hook will fire once Claude Code is installed")
	}
	return nil
}

func runUninstall(cmd *cobra.Command, args []string) error {
	path, err := hookSettingsPath(cmd.Context(), uninstallUser)
	if err != nil {
		return err
	}

	removed, err := claude.UninstallHook(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if removed {
		fmt.Fprintln(out, successStyle.Render("✓")+" hook removed from "+path)
		return nil
	}
	fmt.Fprintln(out, "no hook registered in "+path)
	return nil
}

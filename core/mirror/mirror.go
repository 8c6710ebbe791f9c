// Package mirror runs one plan-to-tracker sync pass: resolve settings,
// locate the plan, derive the ticket identifier, find or create the
// mirror issue, and post the plan as a comment.
package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/planmirror/planmirror/core/config"
	"github.com/planmirror/planmirror/core/git"
	"github.com/planmirror/planmirror/core/linear"
	"github.com/planmirror/planmirror/core/plan"
	"github.com/planmirror/planmirror/core/ticket"
)

// requestTimeout bounds each remote call. A timeout is the same
// fatal class as a non-success response.
const requestTimeout = 10 * time.Second

// attributionLine trails every posted comment.
const attributionLine = "🤖 Auto-posted from plan mode by planmirror"

// Status classifies the outcome of a pass.
type Status string

const (
	// StatusPosted means the plan comment was created.
	StatusPosted Status = "posted"
	// StatusSkipped means the pass ended early as a clean no-op:
	// missing configuration or missing context, never a failure.
	StatusSkipped Status = "skipped"
	// StatusDryRun means the pass stopped before its first mutation.
	StatusDryRun Status = "dry-run"
)

// Options configures one pass.
type Options struct {
	// Dir is the working directory the sync is anchored to, usually
	// the hook event's cwd.
	Dir string
	// ConfigPath overrides the settings file location. Empty means
	// the workspace default.
	ConfigPath string
	// PlansDir overrides the global plans directory. Empty means
	// ~/.claude/plans.
	PlansDir string
	// DryRun stops the pass before any mutation is issued. The issue
	// search still runs.
	DryRun bool
}

// Result is the outcome of a pass that did not hard-fail. Skips are a
// distinct variant, not errors: a misconfigured or empty workspace
// must never break the caller's workflow.
type Result struct {
	Status Status
	// Reason explains a skipped or dry-run outcome.
	Reason string
	// URL is the posted comment's canonical URL.
	URL string
	// IssueIdentifier is the human identifier of the mirror issue.
	IssueIdentifier string
	// IssueCreated reports whether this pass created the mirror issue.
	IssueCreated bool
	// TicketID is the identifier derived from the branch name.
	TicketID string
	// PlanPath and PlanTitle describe the synced document.
	PlanPath  string
	PlanTitle string
}

func skipped(reason string) *Result {
	return &Result{Status: StatusSkipped, Reason: reason}
}

// Run executes one sync pass. Remote failures are returned as errors;
// every other outcome is a Result. No step is retried.
func Run(ctx context.Context, opts Options) (*Result, error) {
	root, err := git.TopLevel(ctx, opts.Dir)
	if err != nil {
		slog.Debug("No git top-level directory", "dir", opts.Dir, "error", err)
		root = ""
	}

	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		base := root
		if base == "" {
			base = opts.Dir
		}
		cfgPath = config.Path(base)
	}

	settings, err := config.Load(cfgPath)
	if err != nil {
		return skipped(fmt.Sprintf("settings not usable: %v", err)), nil
	}
	if err := settings.Validate(); err != nil {
		return skipped(err.Error()), nil
	}

	plansDir := opts.PlansDir
	if plansDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return skipped(fmt.Sprintf("no home directory for the global plans lookup: %v", err)), nil
		}
		plansDir = filepath.Join(home, ".claude", "plans")
	}

	doc, err := plan.Locate(root, plansDir)
	if err != nil {
		return skipped(fmt.Sprintf("plan not readable: %v", err)), nil
	}
	if doc == nil {
		return skipped("no plan document found"), nil
	}

	branch, err := git.CurrentBranch(ctx, opts.Dir)
	if err != nil {
		slog.Debug("No branch name available", "dir", opts.Dir, "error", err)
		branch = ""
	}
	ticketID := ticket.FromBranch(branch)
	slog.Debug("Sync context assembled",
		"plan", doc.Path, "branch", branch, "ticket", ticketID)

	result := &Result{
		TicketID:  ticketID,
		PlanPath:  doc.Path,
		PlanTitle: doc.Title(),
	}

	client := linear.NewClient(settings.APIKey)

	issue, err := findIssue(ctx, client, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to search for a mirror issue: %w", err)
	}

	switch {
	case issue != nil:
		result.IssueIdentifier = issue.Identifier
		slog.Debug("Mirror issue found", "identifier", issue.Identifier)

	case !settings.CreateMirror:
		result.Status = StatusSkipped
		result.Reason = fmt.Sprintf("no mirror issue matches %s and mirror creation is disabled", ticketID)
		return result, nil

	case opts.DryRun:
		result.Status = StatusDryRun
		result.Reason = fmt.Sprintf("would create mirror issue %q and post the plan comment", settings.IssueTitle(ticketID))
		return result, nil

	default:
		issue, err = createIssue(ctx, client, settings.TeamID, settings.IssueTitle(ticketID))
		if err != nil {
			return nil, fmt.Errorf("failed to create a mirror issue: %w", err)
		}
		result.IssueIdentifier = issue.Identifier
		result.IssueCreated = true
		slog.Debug("Mirror issue created", "identifier", issue.Identifier)
	}

	if opts.DryRun {
		result.Status = StatusDryRun
		result.Reason = fmt.Sprintf("would post the plan comment to mirror issue %s", issue.Identifier)
		return result, nil
	}

	url, err := postComment(ctx, client, issue.ID, commentBody(settings.CommentHeader, doc.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to post the plan comment: %w", err)
	}

	result.Status = StatusPosted
	result.URL = url
	slog.Debug("Plan comment posted", "url", url)
	return result, nil
}

// commentBody assembles the exact comment payload: header, blank line,
// untouched plan text, blank line, rule, attribution.
func commentBody(header, planText string) string {
	return header + "\n\n" + planText + "\n\n---\n" + attributionLine
}

func findIssue(ctx context.Context, client *linear.Client, ticketID string) (*linear.Issue, error) {
	callCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	return client.FindIssueByTitle(callCtx, ticketID)
}

func createIssue(ctx context.Context, client *linear.Client, teamID, title string) (*linear.Issue, error) {
	callCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	return client.CreateIssue(callCtx, teamID, title)
}

func postComment(ctx context.Context, client *linear.Client, issueID, body string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	return client.CreateComment(callCtx, issueID, body)
}

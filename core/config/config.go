// Package config resolves the effective sync settings from a workspace
// settings file and the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// TicketPlaceholder is the token in a title format that is replaced by
// the ticket identifier.
const TicketPlaceholder = "{TICKET_ID}"

const (
	defaultTitleFormat   = "{TICKET_ID}: Plan Documentation"
	defaultCommentHeader = "## Implementation Plan"
)

const (
	envAPIKey        = "LINEAR_API_KEY"
	envTeamID        = "LINEAR_TEAM_ID"
	envCreateMirror  = "LINEAR_CREATE_MIRROR"
	envTitleFormat   = "LINEAR_TITLE_FORMAT"
	envCommentHeader = "LINEAR_COMMENT_HEADER"
)

// Settings is the effective configuration for one sync pass. It is
// built once per invocation and passed around by value; nothing reads
// the file or the environment after Load returns.
type Settings struct {
	// TeamID is the Linear team that owns created mirror issues.
	TeamID string
	// CreateMirror controls whether a missing mirror issue is created.
	CreateMirror bool
	// TitleFormat is the mirror issue title template; see TicketPlaceholder.
	TitleFormat string
	// CommentHeader opens every posted comment body.
	CommentHeader string
	// APIKey authenticates against the Linear API.
	APIKey string
}

// fileSettings mirrors the JSON settings file. Pointer fields tell an
// absent key apart from an explicit zero value.
type fileSettings struct {
	TeamID        *string `json:"teamId"`
	CreateMirror  *bool   `json:"createMirrorTickets"`
	TitleFormat   *string `json:"ticketTitleFormat"`
	CommentHeader *string `json:"commentHeader"`
	APIKey        *string `json:"apiKey"`
}

// Path returns the settings file location for a workspace root.
func Path(root string) string {
	return filepath.Join(root, ".claude", "linear-sync.json")
}

// Load resolves the effective settings. When the file at path exists
// its fields win and the non-secret environment variables are ignored;
// when it does not, the LINEAR_* environment variables are read
// instead. LINEAR_API_KEY is consulted on both paths and overrides any
// key found in the file. The file may carry JSONC comments and
// trailing commas.
func Load(path string) (Settings, error) {
	settings := Settings{
		CreateMirror:  true,
		TitleFormat:   defaultTitleFormat,
		CommentHeader: defaultCommentHeader,
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var file fileSettings
		if err := json.Unmarshal(jsonc.ToJSON(data), &file); err != nil {
			return Settings{}, fmt.Errorf("failed to parse settings file %s: %w", path, err)
		}
		if file.TeamID != nil {
			settings.TeamID = *file.TeamID
		}
		if file.CreateMirror != nil {
			settings.CreateMirror = *file.CreateMirror
		}
		if file.TitleFormat != nil {
			settings.TitleFormat = *file.TitleFormat
		}
		if file.CommentHeader != nil {
			settings.CommentHeader = *file.CommentHeader
		}
		if file.APIKey != nil {
			settings.APIKey = *file.APIKey
		}
		slog.Debug("Settings loaded from file", "path", path)

	case os.IsNotExist(err):
		settings.TeamID = os.Getenv(envTeamID)
		settings.CreateMirror = boolFromEnv(os.Getenv(envCreateMirror), true)
		if v := os.Getenv(envTitleFormat); v != "" {
			settings.TitleFormat = v
		}
		if v := os.Getenv(envCommentHeader); v != "" {
			settings.CommentHeader = v
		}
		slog.Debug("Settings loaded from environment", "missingFile", path)

	default:
		return Settings{}, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	// The secret always comes from the environment when present there.
	if key := os.Getenv(envAPIKey); key != "" {
		settings.APIKey = key
	}

	return settings, nil
}

// Validate checks that the fields required to reach the tracker are
// present. A failure here is a clean no-op for the caller, never a
// reason to break the surrounding workflow.
func (s Settings) Validate() error {
	var errs []error
	if s.APIKey == "" {
		errs = append(errs, errors.New("no API key configured (set LINEAR_API_KEY)"))
	}
	if s.TeamID == "" {
		errs = append(errs, errors.New("no team id configured (set teamId in the settings file or LINEAR_TEAM_ID)"))
	}
	return errors.Join(errs...)
}

// IssueTitle expands the configured title format for a ticket identifier.
func (s Settings) IssueTitle(ticketID string) string {
	return strings.ReplaceAll(s.TitleFormat, TicketPlaceholder, ticketID)
}

// boolFromEnv interprets an environment toggle. Only an explicit
// "false", "0", or "no" disables; anything else, including unset,
// keeps the fallback.
func boolFromEnv(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "false", "0", "no":
		return false
	case "":
		return fallback
	default:
		return true
	}
}

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	err := rootCmd.Execute()
	return out.String(), err
}

func blankEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"LINEAR_API_KEY", "LINEAR_TEAM_ID", "LINEAR_CREATE_MIRROR", "LINEAR_TITLE_FORMAT", "LINEAR_COMMENT_HEADER"} {
		t.Setenv(key, "")
	}
}

func TestHook_MalformedInputNeverBlocks(t *testing.T) {
	_, err := execute(t, "not json at all", "hook")
	assert.NoError(t, err)
}

func TestHook_UnconfiguredWorkspaceIsASoftSkip(t *testing.T) {
	blankEnv(t)
	dir := t.TempDir()

	event := fmt.Sprintf(`{"session_id": "s1", "cwd": %q, "hook_event_name": "PostToolUse", "tool_name": "ExitPlanMode"}`, dir)
	out, err := execute(t, event, "hook")
	require.NoError(t, err)
	assert.Contains(t, out, "planmirror:")
	assert.Contains(t, out, "LINEAR_API_KEY")
}

func TestUninstall_NothingRegistered(t *testing.T) {
	dir := t.TempDir()
	settings := filepath.Join(dir, ".claude", "settings.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(settings), 0o755))
	require.NoError(t, os.WriteFile(settings, []byte(`{"permissions": {}}`), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	out, err := execute(t, "", "uninstall")
	require.NoError(t, err)
	assert.Contains(t, out, "no hook registered")
}

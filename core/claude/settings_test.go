package claude

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settingsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".claude", "settings.json")
	if content != "" {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return path
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func postToolUseEntries(t *testing.T, m map[string]any) []any {
	t.Helper()
	hooks, ok := m["hooks"].(map[string]any)
	require.True(t, ok, "expected hooks object")
	entries, ok := hooks["PostToolUse"].([]any)
	require.True(t, ok, "expected PostToolUse array")
	return entries
}

func TestInstallHook_CreatesFile(t *testing.T) {
	path := settingsFile(t, "")

	require.NoError(t, InstallHook(path, "/usr/local/bin/planmirror"))

	entries := postToolUseEntries(t, readJSON(t, path))
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]any)
	assert.Equal(t, "ExitPlanMode", entry["matcher"])
	cmds := entry["hooks"].([]any)
	require.Len(t, cmds, 1)
	cmd := cmds[0].(map[string]any)
	assert.Equal(t, "command", cmd["type"])
	assert.Equal(t, "/usr/local/bin/planmirror hook", cmd["command"])
	assert.Equal(t, float64(10), cmd["timeout"])
}

func TestInstallHook_IsIdempotent(t *testing.T) {
	path := settingsFile(t, "")

	require.NoError(t, InstallHook(path, "/old/place/planmirror"))
	require.NoError(t, InstallHook(path, "/new/place/planmirror"))

	entries := postToolUseEntries(t, readJSON(t, path))
	require.Len(t, entries, 1)
	cmd := entries[0].(map[string]any)["hooks"].([]any)[0].(map[string]any)
	assert.Equal(t, "/new/place/planmirror hook", cmd["command"])
}

func TestInstallHook_PreservesForeignContent(t *testing.T) {
	path := settingsFile(t, `{
		"permissions": {"allow": ["Bash(ls)"]},
		"hooks": {
			"PostToolUse": [
				{"matcher": "Write", "hooks": [{"type": "command", "command": "fmt-on-save"}]}
			],
			"SessionStart": [
				{"hooks": [{"type": "command", "command": "greet"}]}
			]
		}
	}`)

	require.NoError(t, InstallHook(path, "/bin/planmirror"))

	m := readJSON(t, path)
	perms, ok := m["permissions"].(map[string]any)
	require.True(t, ok, "permissions lost")
	assert.Equal(t, []any{"Bash(ls)"}, perms["allow"])

	hooks := m["hooks"].(map[string]any)
	assert.Contains(t, hooks, "SessionStart")

	entries := postToolUseEntries(t, m)
	require.Len(t, entries, 2)
	first := entries[0].(map[string]any)
	assert.Equal(t, "Write", first["matcher"])
}

func TestInstallHook_MalformedSettingsIsAnError(t *testing.T) {
	path := settingsFile(t, `{"hooks": `)

	err := InstallHook(path, "/bin/planmirror")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse settings")
}

func TestInstallHook_HooksNotAnObject(t *testing.T) {
	path := settingsFile(t, `{"hooks": "what"}`)

	err := InstallHook(path, "/bin/planmirror")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"hooks" is not an object`)
}

func TestUninstallHook(t *testing.T) {
	path := settingsFile(t, "")
	require.NoError(t, InstallHook(path, "/bin/planmirror"))

	removed, err := UninstallHook(path)
	require.NoError(t, err)
	assert.True(t, removed)

	m := readJSON(t, path)
	assert.NotContains(t, m, "hooks")
}

func TestUninstallHook_KeepsForeignEntries(t *testing.T) {
	path := settingsFile(t, `{
		"hooks": {
			"PostToolUse": [
				{"matcher": "ExitPlanMode", "hooks": [
					{"type": "command", "command": "/bin/planmirror hook", "timeout": 10},
					{"type": "command", "command": "other-tool notify"}
				]},
				{"matcher": "Write", "hooks": [{"type": "command", "command": "fmt-on-save"}]}
			]
		}
	}`)

	removed, err := UninstallHook(path)
	require.NoError(t, err)
	assert.True(t, removed)

	entries := postToolUseEntries(t, readJSON(t, path))
	require.Len(t, entries, 2)

	shared := entries[0].(map[string]any)
	assert.Equal(t, "ExitPlanMode", shared["matcher"])
	cmds := shared["hooks"].([]any)
	require.Len(t, cmds, 1)
	assert.Equal(t, "other-tool notify", cmds[0].(map[string]any)["command"])
}

func TestUninstallHook_NothingToRemove(t *testing.T) {
	path := settingsFile(t, `{"hooks": {"PostToolUse": [{"matcher": "Write", "hooks": [{"type": "command", "command": "fmt"}]}]}}`)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	removed, err := UninstallHook(path)
	require.NoError(t, err)
	assert.False(t, removed)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "file must not be rewritten when nothing changed")
}

func TestUninstallHook_MissingFile(t *testing.T) {
	removed, err := UninstallHook(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestHookInstalled(t *testing.T) {
	path := settingsFile(t, "")

	installed, err := HookInstalled(path)
	require.NoError(t, err)
	assert.False(t, installed)

	require.NoError(t, InstallHook(path, "/bin/planmirror"))

	installed, err = HookInstalled(path)
	require.NoError(t, err)
	assert.True(t, installed)
}

func TestIsOwnCommand(t *testing.T) {
	assert.True(t, isOwnCommand("/usr/local/bin/planmirror hook"))
	assert.True(t, isOwnCommand("planmirror hook"))
	assert.True(t, isOwnCommand("/tools/planmirror.exe hook"))
	assert.False(t, isOwnCommand("/usr/local/bin/planmirror sync"))
	assert.False(t, isOwnCommand("other-tool hook"))
	assert.False(t, isOwnCommand("planmirror"))
	assert.False(t, isOwnCommand(""))
}

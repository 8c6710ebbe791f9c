package claude

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

const (
	hookEventName = "PostToolUse"
	hookMatcher   = "ExitPlanMode"
	// hookTimeoutSeconds is the per-invocation bound Claude Code applies
	// to the registered command.
	hookTimeoutSeconds = 10
)

// SettingsPath returns the Claude Code settings file under root, which
// may be a project directory or the user's home directory.
func SettingsPath(root string) string {
	return filepath.Join(root, ".claude", "settings.json")
}

// HookCommand returns the shell command registered for the hook.
func HookCommand(binPath string) string {
	return binPath + " hook"
}

// InstallHook registers binPath as the plan-mode hook in the settings
// file at path, creating the file if needed. Everything else in the
// file is preserved; a previously registered entry for this tool is
// replaced rather than duplicated.
func InstallHook(path, binPath string) error {
	settings, err := readSettings(path)
	if err != nil {
		return err
	}
	hooks, err := hooksObject(settings, true)
	if err != nil {
		return err
	}
	entries, err := eventEntries(hooks)
	if err != nil {
		return err
	}

	entries, _ = stripOwnEntries(entries)
	entries = append(entries, map[string]any{
		"matcher": hookMatcher,
		"hooks": []any{map[string]any{
			"type":    "command",
			"command": HookCommand(binPath),
			"timeout": hookTimeoutSeconds,
		}},
	})

	hooks[hookEventName] = entries
	settings["hooks"] = hooks
	return writeSettings(path, settings)
}

// UninstallHook removes this tool's hook entries from the settings file
// at path, pruning levels left empty. It reports whether anything was
// removed. A missing file is not an error.
func UninstallHook(path string) (bool, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	settings, err := readSettings(path)
	if err != nil {
		return false, err
	}
	hooks, err := hooksObject(settings, false)
	if err != nil || hooks == nil {
		return false, err
	}
	entries, err := eventEntries(hooks)
	if err != nil {
		return false, err
	}

	entries, removed := stripOwnEntries(entries)
	if !removed {
		return false, nil
	}

	if len(entries) == 0 {
		delete(hooks, hookEventName)
	} else {
		hooks[hookEventName] = entries
	}
	if len(hooks) == 0 {
		delete(settings, "hooks")
	}
	if err := writeSettings(path, settings); err != nil {
		return false, err
	}
	return true, nil
}

// HookInstalled reports whether the settings file at path carries a
// hook entry registered by this tool.
func HookInstalled(path string) (bool, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	settings, err := readSettings(path)
	if err != nil {
		return false, err
	}
	hooks, err := hooksObject(settings, false)
	if err != nil || hooks == nil {
		return false, err
	}
	entries, err := eventEntries(hooks)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if m, ok := entry.(map[string]any); ok && len(ownCommands(m)) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// readSettings parses the settings file into a generic map so unknown
// fields survive a rewrite. The file may carry JSONC comments.
func readSettings(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}
	var settings map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	if settings == nil {
		settings = map[string]any{}
	}
	return settings, nil
}

func writeSettings(path string, settings map[string]any) error {
	b, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	b = append(b, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("failed to write settings %s: %w", path, err)
	}
	return nil
}

// hooksObject returns settings["hooks"] as a map, optionally creating
// it. A present non-object value is an error rather than something to
// silently overwrite.
func hooksObject(settings map[string]any, create bool) (map[string]any, error) {
	raw, ok := settings["hooks"]
	if !ok {
		if !create {
			return nil, nil
		}
		hooks := map[string]any{}
		settings["hooks"] = hooks
		return hooks, nil
	}
	hooks, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("settings field \"hooks\" is not an object")
	}
	return hooks, nil
}

func eventEntries(hooks map[string]any) ([]any, error) {
	raw, ok := hooks[hookEventName]
	if !ok {
		return nil, nil
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("settings field \"hooks.%s\" is not an array", hookEventName)
	}
	return entries, nil
}

// stripOwnEntries drops every command registered by this tool from the
// matcher entries, removing entries that end up with no commands left.
// Foreign entries pass through untouched.
func stripOwnEntries(entries []any) ([]any, bool) {
	removed := false
	kept := make([]any, 0, len(entries))
	for _, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			kept = append(kept, entry)
			continue
		}
		own := ownCommands(m)
		if len(own) == 0 {
			kept = append(kept, entry)
			continue
		}
		removed = true
		remaining := foreignCommands(m)
		if len(remaining) == 0 {
			continue
		}
		m["hooks"] = remaining
		kept = append(kept, m)
	}
	return kept, removed
}

func ownCommands(entry map[string]any) []any {
	return filterCommands(entry, true)
}

func foreignCommands(entry map[string]any) []any {
	return filterCommands(entry, false)
}

func filterCommands(entry map[string]any, own bool) []any {
	raw, ok := entry["hooks"].([]any)
	if !ok {
		return nil
	}
	var out []any
	for _, h := range raw {
		m, isMap := h.(map[string]any)
		cmd, _ := m["command"].(string)
		if isMap && isOwnCommand(cmd) == own {
			out = append(out, h)
		} else if !isMap && !own {
			out = append(out, h)
		}
	}
	return out
}

// isOwnCommand recognizes the commands this tool registers: an
// invocation of the planmirror binary's hook mode, wherever the binary
// lives.
func isOwnCommand(cmd string) bool {
	fields := strings.Fields(cmd)
	if len(fields) != 2 || fields[1] != "hook" {
		return false
	}
	base := filepath.Base(fields[0])
	return base == "planmirror" || base == "planmirror.exe"
}

// Package claude covers the Claude Code surfaces of the sync: the hook
// event delivered on stdin and the settings file where the hook is
// registered.
package claude

import (
	"encoding/json"
	"fmt"
	"io"
)

// HookEvent is the JSON payload Claude Code writes to a hook's stdin.
// Only CWD participates in sync behavior; the remaining fields are
// decoded for debug logging. Event filtering is the registered
// matcher's job, not this binary's.
type HookEvent struct {
	SessionID     string          `json:"session_id"`
	CWD           string          `json:"cwd"`
	HookEventName string          `json:"hook_event_name"`
	ToolName      string          `json:"tool_name"`
	ToolInput     json.RawMessage `json:"tool_input,omitempty"`
	ToolResponse  json.RawMessage `json:"tool_response,omitempty"`
}

// maxEventBytes caps the stdin read; hook payloads are small.
const maxEventBytes = 1 << 20

// ReadHookEvent decodes one hook event from r, reading at most
// maxEventBytes.
func ReadHookEvent(r io.Reader) (*HookEvent, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxEventBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read hook input: %w", err)
	}
	var event HookEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to parse hook input: %w", err)
	}
	return &event, nil
}

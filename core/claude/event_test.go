package claude

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadHookEvent(t *testing.T) {
	input := `{
		"session_id": "abc123",
		"cwd": "/work/repo",
		"hook_event_name": "PostToolUse",
		"tool_name": "ExitPlanMode",
		"tool_input": {"plan": "do the thing"},
		"tool_response": {"success": true}
	}`

	event, err := ReadHookEvent(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "abc123", event.SessionID)
	assert.Equal(t, "/work/repo", event.CWD)
	assert.Equal(t, "PostToolUse", event.HookEventName)
	assert.Equal(t, "ExitPlanMode", event.ToolName)
	assert.JSONEq(t, `{"plan": "do the thing"}`, string(event.ToolInput))
}

func TestReadHookEvent_UnknownFieldsIgnored(t *testing.T) {
	event, err := ReadHookEvent(strings.NewReader(`{"cwd": "/work", "transcript_path": "/tmp/t.jsonl"}`))
	require.NoError(t, err)
	assert.Equal(t, "/work", event.CWD)
	assert.Empty(t, event.ToolName)
}

func TestReadHookEvent_Malformed(t *testing.T) {
	_, err := ReadHookEvent(strings.NewReader("not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse hook input")
}

func TestReadHookEvent_OversizedInputRejected(t *testing.T) {
	// Padding pushes the document past the read cap, so the decoder
	// sees a truncated object.
	huge := `{"cwd": "/work", "tool_input": {"plan": "` + strings.Repeat("x", maxEventBytes) + `"}}`
	_, err := ReadHookEvent(strings.NewReader(huge))
	require.Error(t, err)
}

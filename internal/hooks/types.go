// Package hooks implements the legacy, shell-command-based hook system
// (hooks.yml): a tool runs an external command at defined lifecycle events
// and can block or annotate the turn based on that command's JSON output.
// It predates the Yaegi-based extension system in internal/extensions and
// is kept working through extensions.HooksAsExtension.
package hooks

import "encoding/json"

// EventName identifies a point in the agent's lifecycle at which hooks can
// fire. Names and semantics mirror Claude Code's own hooks.yml schema, so
// existing hook scripts written for it work here unmodified.
type EventName string

const (
	// UserPromptSubmit fires once per user turn, before the prompt reaches
	// the model.
	UserPromptSubmit EventName = "UserPromptSubmit"
	// PreToolUse fires before a tool call executes.
	PreToolUse EventName = "PreToolUse"
	// PostToolUse fires after a tool call completes.
	PostToolUse EventName = "PostToolUse"
	// Stop fires when a turn finishes, whether by completion, error, or
	// cancellation.
	Stop EventName = "Stop"
	// SubagentStop fires when a sub-agent turn finishes.
	SubagentStop EventName = "SubagentStop"
	// SessionStart fires once when a session begins.
	SessionStart EventName = "SessionStart"
	// SessionEnd fires once when a session ends.
	SessionEnd EventName = "SessionEnd"
	// Notification fires for out-of-band status notifications (e.g. a
	// long-running tool call).
	Notification EventName = "Notification"
	// PreCompact fires before the conversation history is compacted.
	PreCompact EventName = "PreCompact"
)

// CommonInput carries the fields present on every hook invocation,
// regardless of event type.
type CommonInput struct {
	SessionID      string    `json:"session_id"`
	TranscriptPath string    `json:"transcript_path"`
	Cwd            string    `json:"cwd"`
	HookEventName  EventName `json:"hook_event_name"`
}

// UserPromptSubmitInput is sent to UserPromptSubmit hooks.
type UserPromptSubmitInput struct {
	CommonInput
	Prompt string `json:"prompt"`
}

// PreToolUseInput is sent to PreToolUse hooks.
type PreToolUseInput struct {
	CommonInput
	ToolName  string          `json:"tool_name"`
	ToolInput json.RawMessage `json:"tool_input"`
}

// HookToolName implements toolMatchable for matcher filtering.
func (i *PreToolUseInput) HookToolName() string { return i.ToolName }

// PostToolUseInput is sent to PostToolUse hooks.
type PostToolUseInput struct {
	CommonInput
	ToolName     string          `json:"tool_name"`
	ToolInput    json.RawMessage `json:"tool_input"`
	ToolResponse json.RawMessage `json:"tool_response"`
}

// HookToolName implements toolMatchable for matcher filtering.
func (i *PostToolUseInput) HookToolName() string { return i.ToolName }

// StopInput is sent to Stop hooks.
type StopInput struct {
	CommonInput
	StopHookActive bool            `json:"stop_hook_active"`
	Response       string          `json:"response"`
	StopReason     string          `json:"stop_reason"`
	Meta           json.RawMessage `json:"meta,omitempty"`
}

// toolMatchable is implemented by input types that carry a tool name, so
// Executor.ExecuteHooks can filter by a matcher's tool-name pattern.
type toolMatchable interface {
	HookToolName() string
}

// HookOutput is the JSON a hook command prints to stdout. An empty or
// unparseable response is treated as "no opinion" rather than an error.
type HookOutput struct {
	// Decision is "block" to stop the action/turn, or empty/"approve" to
	// let it proceed.
	Decision string `json:"decision,omitempty"`
	// Reason is shown to the user (and, for PreToolUse, to the model) when
	// Decision is "block".
	Reason string `json:"reason,omitempty"`
	// SuppressOutput hides this hook's stdout from the transcript even
	// when it doesn't block.
	SuppressOutput bool `json:"suppressOutput,omitempty"`
}

package hooks

import (
	"context"
	"testing"
	"time"
)

func TestNewSessionID_Unique(t *testing.T) {
	a := newSessionID()
	b := newSessionID()
	if a == "" || b == "" {
		t.Fatal("expected non-empty session IDs")
	}
	if a == b {
		t.Fatal("expected two calls to newSessionID to produce different values")
	}
	if len(a) != 16 {
		t.Errorf("newSessionID() length = %d, want 16", len(a))
	}
}

func TestExecutor_PopulateCommonFields(t *testing.T) {
	e := NewExecutor(nil, "/work/dir", "/tmp/transcript.jsonl")
	common := e.PopulateCommonFields(PreToolUse)

	if common.Cwd != "/work/dir" {
		t.Errorf("Cwd = %q, want /work/dir", common.Cwd)
	}
	if common.TranscriptPath != "/tmp/transcript.jsonl" {
		t.Errorf("TranscriptPath = %q", common.TranscriptPath)
	}
	if common.HookEventName != PreToolUse {
		t.Errorf("HookEventName = %q, want PreToolUse", common.HookEventName)
	}
	if common.SessionID == "" {
		t.Error("expected a non-empty session ID")
	}
}

func TestExecutor_ExecuteHooks_NilExecutorIsNoop(t *testing.T) {
	var e *Executor
	output, err := e.ExecuteHooks(context.Background(), PreToolUse, &PreToolUseInput{ToolName: "Edit"})
	if err != nil || output != nil {
		t.Fatalf("expected (nil, nil) from a nil Executor, got (%v, %v)", output, err)
	}
}

func TestExecutor_ExecuteHooks_NilConfigIsNoop(t *testing.T) {
	e := NewExecutor(nil, "", "")
	output, err := e.ExecuteHooks(context.Background(), PreToolUse, &PreToolUseInput{ToolName: "Edit"})
	if err != nil || output != nil {
		t.Fatalf("expected (nil, nil) with no config, got (%v, %v)", output, err)
	}
}

func TestExecutor_ExecuteHooks_NoMatcherForEvent(t *testing.T) {
	cfg := &HookConfig{Hooks: map[EventName][]HookMatcher{}}
	e := NewExecutor(cfg, "", "")

	output, err := e.ExecuteHooks(context.Background(), PreToolUse, &PreToolUseInput{ToolName: "Edit"})
	if err != nil || output != nil {
		t.Fatalf("expected (nil, nil) with no matchers, got (%v, %v)", output, err)
	}
}

func TestExecutor_ExecuteHooks_BlockDecision(t *testing.T) {
	cfg := &HookConfig{
		Hooks: map[EventName][]HookMatcher{
			PreToolUse: {
				{
					Matcher: "Edit",
					Hooks: []HookCommand{
						{Command: `echo '{"decision":"block","reason":"no edits allowed"}'`},
					},
				},
			},
		},
	}
	e := NewExecutor(cfg, "", "")

	output, err := e.ExecuteHooks(context.Background(), PreToolUse, &PreToolUseInput{ToolName: "Edit"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output == nil || output.Decision != "block" || output.Reason != "no edits allowed" {
		t.Fatalf("unexpected output: %+v", output)
	}
}

func TestExecutor_ExecuteHooks_MatcherFiltersByToolName(t *testing.T) {
	cfg := &HookConfig{
		Hooks: map[EventName][]HookMatcher{
			PreToolUse: {
				{
					Matcher: "Write",
					Hooks: []HookCommand{
						{Command: `echo '{"decision":"block"}'`},
					},
				},
			},
		},
	}
	e := NewExecutor(cfg, "", "")

	// Tool name "Edit" doesn't match the "Write" matcher, so this should be
	// a no-op, not a block.
	output, err := e.ExecuteHooks(context.Background(), PreToolUse, &PreToolUseInput{ToolName: "Edit"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output != nil {
		t.Fatalf("expected no output for a non-matching tool, got %+v", output)
	}
}

func TestExecutor_ExecuteHooks_EmptyStdoutIsNotAnError(t *testing.T) {
	cfg := &HookConfig{
		Hooks: map[EventName][]HookMatcher{
			UserPromptSubmit: {
				{Hooks: []HookCommand{{Command: "true"}}},
			},
		},
	}
	e := NewExecutor(cfg, "", "")

	output, err := e.ExecuteHooks(context.Background(), UserPromptSubmit, &UserPromptSubmitInput{Prompt: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output != nil {
		t.Fatalf("expected nil output for a silent observer hook, got %+v", output)
	}
}

func TestExecutor_ExecuteHooks_CommandTimeout(t *testing.T) {
	cfg := &HookConfig{
		Hooks: map[EventName][]HookMatcher{
			Stop: {
				{Hooks: []HookCommand{{Command: "sleep 2", Timeout: 1}}},
			},
		},
	}
	e := NewExecutor(cfg, "", "")

	start := time.Now()
	_, err := e.ExecuteHooks(context.Background(), Stop, &StopInput{})
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("ExecuteHooks took too long to time out: %v", time.Since(start))
	}
}

func TestMatcherMatches(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   any
		want    bool
	}{
		{"wildcard matches anything", "*", &PreToolUseInput{ToolName: "Edit"}, true},
		{"empty matches anything", "", &PreToolUseInput{ToolName: "Edit"}, true},
		{"exact match", "Edit", &PreToolUseInput{ToolName: "Edit"}, true},
		{"pipe list match", "Read|Edit|Write", &PreToolUseInput{ToolName: "Edit"}, true},
		{"no match", "Read|Write", &PreToolUseInput{ToolName: "Edit"}, false},
		{"non-tool-scoped input always matches", "Edit", &UserPromptSubmitInput{Prompt: "hi"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matcherMatches(tt.pattern, tt.input); got != tt.want {
				t.Errorf("matcherMatches(%q, %T) = %v, want %v", tt.pattern, tt.input, got, tt.want)
			}
		})
	}
}

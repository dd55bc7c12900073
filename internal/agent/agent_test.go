package agent

import (
	"context"
	"errors"
	"testing"

	"charm.land/fantasy"
)

// fakeTool is a minimal fantasy.AgentTool for exercising runToolCall without
// a real model or MCP connection.
type fakeTool struct {
	name    string
	result  string
	isError bool
	runErr  error
}

func (t *fakeTool) Info() fantasy.ToolInfo {
	return fantasy.ToolInfo{Name: t.name}
}

func (t *fakeTool) Run(_ context.Context, _ fantasy.ToolCall) (fantasy.ToolResponse, error) {
	if t.runErr != nil {
		return fantasy.ToolResponse{}, t.runErr
	}
	return fantasy.ToolResponse{Content: t.result, IsError: t.isError}, nil
}

func newTestAgent(toolList ...fantasy.AgentTool) *Agent {
	return &Agent{
		maxSteps:   defaultMaxSteps,
		agentTools: toolList,
	}
}

func TestNewAgent_RequiresModelConfig(t *testing.T) {
	if _, err := NewAgent(context.Background(), nil); err == nil {
		t.Fatal("expected an error for a nil AgentConfig")
	}
	if _, err := NewAgent(context.Background(), &AgentConfig{}); err == nil {
		t.Fatal("expected an error when ModelConfig is nil")
	}
}

func TestRunToolCall_UnknownTool(t *testing.T) {
	a := newTestAgent(&fakeTool{name: "known"})

	result, isError := a.runToolCall(context.Background(), fantasy.ToolCallPart{ToolName: "missing"}, "{}", nil)
	if !isError {
		t.Fatal("expected isError=true for an unknown tool")
	}
	if result == "" {
		t.Fatal("expected a non-empty error message")
	}
}

func TestRunToolCall_Success(t *testing.T) {
	a := newTestAgent(&fakeTool{name: "echo", result: "hello"})

	result, isError := a.runToolCall(context.Background(), fantasy.ToolCallPart{ToolName: "echo"}, "{}", nil)
	if isError {
		t.Fatalf("expected success, got error result: %q", result)
	}
	if result != "hello" {
		t.Errorf("result = %q, want %q", result, "hello")
	}
}

func TestRunToolCall_ToolError(t *testing.T) {
	a := newTestAgent(&fakeTool{name: "broken", runErr: errors.New("boom")})

	result, isError := a.runToolCall(context.Background(), fantasy.ToolCallPart{ToolName: "broken"}, "{}", nil)
	if !isError {
		t.Fatal("expected isError=true when the tool returns an error")
	}
	if result != "boom" {
		t.Errorf("result = %q, want %q", result, "boom")
	}
}

func TestRunToolCall_ApprovalRejected(t *testing.T) {
	a := newTestAgent(&fakeTool{name: "echo", result: "hello"})

	onApproval := func(toolName, toolArgs string) (bool, error) { return false, nil }
	result, isError := a.runToolCall(context.Background(), fantasy.ToolCallPart{ToolName: "echo"}, "{}", onApproval)
	if !isError {
		t.Fatal("expected isError=true when approval is rejected")
	}
	if result == "" {
		t.Fatal("expected a non-empty rejection message")
	}
}

func TestRunToolCall_ApprovalErrors(t *testing.T) {
	a := newTestAgent(&fakeTool{name: "echo", result: "hello"})

	onApproval := func(toolName, toolArgs string) (bool, error) { return false, errors.New("check failed") }
	result, isError := a.runToolCall(context.Background(), fantasy.ToolCallPart{ToolName: "echo"}, "{}", onApproval)
	if !isError {
		t.Fatal("expected isError=true when the approval callback itself errors")
	}
	if result == "" {
		t.Fatal("expected a non-empty error message")
	}
}

func TestRunToolCall_ApprovalAllowed(t *testing.T) {
	a := newTestAgent(&fakeTool{name: "echo", result: "hello"})

	onApproval := func(toolName, toolArgs string) (bool, error) { return true, nil }
	result, isError := a.runToolCall(context.Background(), fantasy.ToolCallPart{ToolName: "echo"}, "{}", onApproval)
	if isError {
		t.Fatalf("expected success when approval is granted, got error: %q", result)
	}
	if result != "hello" {
		t.Errorf("result = %q, want %q", result, "hello")
	}
}

func TestAddUsage(t *testing.T) {
	a := fantasy.Usage{InputTokens: 10, OutputTokens: 5, CacheReadTokens: 1, CacheCreationTokens: 2}
	b := fantasy.Usage{InputTokens: 3, OutputTokens: 7, CacheReadTokens: 4, CacheCreationTokens: 0}

	sum := addUsage(a, b)
	if sum.InputTokens != 13 || sum.OutputTokens != 12 || sum.CacheReadTokens != 5 || sum.CacheCreationTokens != 2 {
		t.Errorf("addUsage() = %+v, want {13 12 5 2}", sum)
	}
}

func TestAgent_Accessors(t *testing.T) {
	a := &Agent{
		agentTools:     []fantasy.AgentTool{&fakeTool{name: "t1"}},
		loadingMessage: "falling back to CPU",
		mcpToolCount:   1,
		extToolCount:   2,
		loadedServers:  []string{"server-a"},
	}

	if len(a.GetTools()) != 1 {
		t.Errorf("GetTools() returned %d tools, want 1", len(a.GetTools()))
	}
	if a.GetLoadingMessage() != "falling back to CPU" {
		t.Errorf("GetLoadingMessage() = %q", a.GetLoadingMessage())
	}
	if a.GetMCPToolCount() != 1 {
		t.Errorf("GetMCPToolCount() = %d, want 1", a.GetMCPToolCount())
	}
	if a.GetExtensionToolCount() != 2 {
		t.Errorf("GetExtensionToolCount() = %d, want 2", a.GetExtensionToolCount())
	}
	if got := a.GetLoadedServerNames(); len(got) != 1 || got[0] != "server-a" {
		t.Errorf("GetLoadedServerNames() = %v", got)
	}
}

func TestAgent_Close_NilFieldsSafe(t *testing.T) {
	a := &Agent{}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() on a bare Agent returned error: %v", err)
	}
}

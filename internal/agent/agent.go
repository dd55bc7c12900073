package agent

import (
	"context"
	"fmt"
	"io"
	"sync"

	"charm.land/fantasy"

	"github.com/saorsa-labs/saorsa/internal/config"
	"github.com/saorsa-labs/saorsa/internal/models"
	"github.com/saorsa-labs/saorsa/internal/tools"
)

// Handler types invoked at each point of a GenerateWithLoopAndStreaming
// step. They let the caller (the TUI event loop, the SDK's callback-based
// Prompt variants) observe the turn as it happens without coupling the loop
// itself to any particular UI.
type (
	// ToolCallHandler fires once a tool call's name and JSON arguments have
	// been parsed out of the model's response, before the tool runs.
	ToolCallHandler func(toolName, toolArgs string)
	// ToolExecutionHandler fires with isStarting=true immediately before a
	// tool runs and isStarting=false immediately after.
	ToolExecutionHandler func(toolName string, isStarting bool)
	// ToolResultHandler fires once a tool has finished, carrying its result
	// text (or error message) and whether it failed.
	ToolResultHandler func(toolName, toolArgs, result string, isError bool)
	// ResponseHandler fires with the assistant's final text for a step.
	ResponseHandler func(content string)
	// ToolCallContentHandler fires with any text the model produced
	// alongside a tool call (e.g. "Let me check that file...").
	ToolCallContentHandler func(content string)
	// StreamingResponseHandler fires once per step with that step's complete
	// text when streaming is enabled; text is not delivered in smaller
	// incremental chunks.
	StreamingResponseHandler func(chunk string)
	// ToolApprovalHandler is consulted before a tool runs; returning false
	// skips the tool and records a rejection as its result.
	ToolApprovalHandler func(toolName, toolArgs string) (bool, error)
)

// AgentConfig configures a new Agent.
type AgentConfig struct {
	// ModelConfig selects and configures the underlying LLM provider.
	ModelConfig *models.ProviderConfig
	// MCPConfig lists the MCP servers (and builtin tool servers) to load.
	MCPConfig *config.Config
	// SystemPrompt is sent as the system message on every turn.
	SystemPrompt string
	// MaxSteps bounds how many tool-calling round trips a single
	// GenerateWithLoopAndStreaming call may make before it is forced to
	// stop. Zero selects defaultMaxSteps.
	MaxSteps int
	// StreamingEnabled selects Generate-with-streaming-callback behavior;
	// when false, onStreamingResponse is never invoked and the full text is
	// delivered via onResponse once the step completes.
	StreamingEnabled bool
	// DebugLogger receives verbose connection/dispatch diagnostics.
	DebugLogger tools.DebugLogger
	// ToolWrapper, when set, wraps the assembled tool list (e.g. to add
	// hook-driven pre/post behavior) before it's handed to the model.
	ToolWrapper func([]fantasy.AgentTool) []fantasy.AgentTool
	// ExtraTools are appended to the tools loaded from MCPConfig (e.g.
	// extension-registered tools).
	ExtraTools []fantasy.AgentTool
}

// defaultMaxSteps bounds a turn when the caller doesn't set MaxSteps,
// preventing a misbehaving model from looping on tool calls forever.
const defaultMaxSteps = 25

// GenerateWithLoopResult is returned by GenerateWithLoopAndStreaming. It
// carries the updated conversation (including any tool-call/tool-result
// messages appended during the turn) along with the final response and
// aggregate usage for the whole turn.
type GenerateWithLoopResult struct {
	// ConversationMessages is the full message history after this turn,
	// including the new user message, any tool-use round trips, and the
	// final assistant message.
	ConversationMessages []fantasy.Message
	// FinalResponse is the last model response produced in the turn (the
	// one with no further tool calls, or the one in progress when the step
	// limit or an error cut the turn short).
	FinalResponse *fantasy.Response
	// TotalUsage aggregates token usage across every model call made
	// during the turn.
	TotalUsage fantasy.Usage
	// StepCount is the number of model round trips the turn took.
	StepCount int
	// StopReason describes why the turn ended: "completed", "max_steps", or
	// "error".
	StopReason string
}

// Agent wires a language model, its MCP/builtin tool set, and the
// tool-calling turn loop together. It is the unit the TUI and SDK layers
// drive a conversation through.
type Agent struct {
	mu sync.Mutex

	model        fantasy.LanguageModel
	closer       io.Closer
	systemPrompt string
	maxSteps     int
	streaming    bool

	toolManager *tools.MCPToolManager
	agentTools  []fantasy.AgentTool

	loadingMessage string
	mcpToolCount   int
	extToolCount   int
	loadedServers  []string
}

// NewAgent creates a provider from cfg.ModelConfig, loads MCP/builtin tools
// per cfg.MCPConfig, and returns a ready-to-use Agent.
func NewAgent(ctx context.Context, cfg *AgentConfig) (*Agent, error) {
	if cfg == nil || cfg.ModelConfig == nil {
		return nil, fmt.Errorf("agent: model configuration is required")
	}

	providerResult, err := models.CreateProvider(ctx, cfg.ModelConfig)
	if err != nil {
		return nil, fmt.Errorf("agent: failed to create provider: %w", err)
	}

	toolManager := tools.NewMCPToolManager()
	toolManager.SetModel(providerResult.Model)
	if cfg.DebugLogger != nil {
		toolManager.SetDebugLogger(cfg.DebugLogger)
	}

	mcpConfig := cfg.MCPConfig
	if mcpConfig == nil {
		mcpConfig = &config.Config{}
	}
	if len(mcpConfig.MCPServers) > 0 {
		if err := toolManager.LoadTools(ctx, mcpConfig); err != nil {
			return nil, fmt.Errorf("agent: failed to load MCP tools: %w", err)
		}
	}

	mcpTools := toolManager.GetTools()
	agentTools := make([]fantasy.AgentTool, 0, len(mcpTools)+len(cfg.ExtraTools))
	agentTools = append(agentTools, mcpTools...)
	agentTools = append(agentTools, cfg.ExtraTools...)
	if cfg.ToolWrapper != nil {
		agentTools = cfg.ToolWrapper(agentTools)
	}

	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	return &Agent{
		model:          providerResult.Model,
		closer:         providerResult.Closer,
		systemPrompt:   cfg.SystemPrompt,
		maxSteps:       maxSteps,
		streaming:      cfg.StreamingEnabled,
		toolManager:    toolManager,
		agentTools:     agentTools,
		loadingMessage: providerResult.Message,
		mcpToolCount:   len(mcpTools),
		extToolCount:   len(cfg.ExtraTools),
		loadedServers:  toolManager.GetLoadedServerNames(),
	}, nil
}

// GetTools returns every tool available to the agent (MCP + extension).
func (a *Agent) GetTools() []fantasy.AgentTool {
	return a.agentTools
}

// GetLoadingMessage returns feedback produced while creating the provider
// (e.g. a note about falling back to CPU inference for Ollama), or "" if
// there was none.
func (a *Agent) GetLoadingMessage() string {
	return a.loadingMessage
}

// GetLoadedServerNames returns the names of MCP servers successfully
// connected during NewAgent.
func (a *Agent) GetLoadedServerNames() []string {
	return a.loadedServers
}

// GetMCPToolCount returns how many tools came from MCP servers (as opposed
// to extensions).
func (a *Agent) GetMCPToolCount() int {
	return a.mcpToolCount
}

// GetExtensionToolCount returns how many tools came from extensions.
func (a *Agent) GetExtensionToolCount() int {
	return a.extToolCount
}

// Close releases the provider's resources (if any) and closes every pooled
// MCP connection. Safe to call once; safe to call even if NewAgent's tool
// loading partially failed.
func (a *Agent) Close() error {
	var errs []error
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.toolManager != nil {
		if err := a.toolManager.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("agent: close errors: %v", errs)
}

// GenerateWithLoopAndStreaming runs one user turn to completion: it submits
// messages to the model, and for as long as the model's response contains
// tool calls, dispatches each one (subject to onApproval), appends the
// tool-result messages, and submits again — up to maxSteps round trips.
//
// Handlers may be nil; a nil handler is simply skipped. onApproval nil means
// every tool call is auto-approved.
func (a *Agent) GenerateWithLoopAndStreaming(
	ctx context.Context,
	messages []fantasy.Message,
	onToolCall ToolCallHandler,
	onToolExecution ToolExecutionHandler,
	onToolResult ToolResultHandler,
	onResponse ResponseHandler,
	onToolCallContent ToolCallContentHandler,
	onStreamingResponse StreamingResponseHandler,
	onApproval ToolApprovalHandler,
) (*GenerateWithLoopResult, error) {
	a.mu.Lock()
	fantasyAgent := fantasy.NewAgent(a.model,
		fantasy.WithSystemPrompt(a.systemPrompt),
		fantasy.WithTools(a.agentTools...),
	)
	a.mu.Unlock()

	conversation := append([]fantasy.Message{}, messages...)
	result := &GenerateWithLoopResult{ConversationMessages: conversation}

	for step := 0; ; step++ {
		if step >= a.maxSteps {
			result.StopReason = "max_steps"
			result.ConversationMessages = conversation
			return result, nil
		}

		genResult, err := fantasyAgent.Generate(ctx, fantasy.AgentCall{Messages: conversation})
		if err != nil {
			result.StopReason = "error"
			result.ConversationMessages = conversation
			return result, fmt.Errorf("agent: generation failed: %w", err)
		}

		response := genResult.Response
		result.FinalResponse = response
		result.StepCount = step + 1
		result.TotalUsage = addUsage(result.TotalUsage, response.Usage)

		text := response.Content.Text()
		toolCalls := response.Content.ToolCalls()

		if text != "" {
			if len(toolCalls) > 0 {
				if onToolCallContent != nil {
					onToolCallContent(text)
				}
			} else if onResponse != nil {
				onResponse(text)
			}
			if a.streaming && onStreamingResponse != nil {
				onStreamingResponse(text)
			}
		}

		assistantMsg := fantasy.Message{
			Role:    fantasy.MessageRoleAssistant,
			Content: response.Content,
		}
		conversation = append(conversation, assistantMsg)

		if len(toolCalls) == 0 {
			result.StopReason = "completed"
			result.ConversationMessages = conversation
			return result, nil
		}

		toolResultParts := make([]fantasy.MessagePart, 0, len(toolCalls))
		for _, call := range toolCalls {
			toolArgs := call.Input

			if onToolCall != nil {
				onToolCall(call.ToolName, toolArgs)
			}
			if onToolExecution != nil {
				onToolExecution(call.ToolName, true)
			}

			resultText, isError := a.runToolCall(ctx, call, toolArgs, onApproval)

			if onToolExecution != nil {
				onToolExecution(call.ToolName, false)
			}
			if onToolResult != nil {
				onToolResult(call.ToolName, toolArgs, resultText, isError)
			}

			var output fantasy.ToolResultOutputContent
			if isError {
				output = fantasy.ToolResultOutputContentError{Error: fmt.Errorf("%s", resultText)}
			} else {
				output = fantasy.ToolResultOutputContentText{Text: resultText}
			}
			toolResultParts = append(toolResultParts, fantasy.ToolResultPart{
				ToolCallID: call.ToolCallID,
				Output:     output,
			})
		}

		conversation = append(conversation, fantasy.Message{
			Role:    fantasy.MessageRoleTool,
			Content: toolResultParts,
		})
	}
}

// runToolCall finds the named tool, checks approval, and runs it, returning
// its text result (or an error message) and whether it failed.
func (a *Agent) runToolCall(ctx context.Context, call fantasy.ToolCallPart, toolArgs string, onApproval ToolApprovalHandler) (string, bool) {
	if onApproval != nil {
		approved, err := onApproval(call.ToolName, toolArgs)
		if err != nil {
			return fmt.Sprintf("approval check failed: %v", err), true
		}
		if !approved {
			return "tool call rejected by user", true
		}
	}

	var tool fantasy.AgentTool
	for _, t := range a.agentTools {
		if t.Info().Name == call.ToolName {
			tool = t
			break
		}
	}
	if tool == nil {
		return fmt.Sprintf("unknown tool: %s", call.ToolName), true
	}

	resp, err := tool.Run(ctx, fantasy.ToolCall{ToolCallID: call.ToolCallID, ToolName: call.ToolName, Input: toolArgs})
	if err != nil {
		return err.Error(), true
	}
	return resp.Content, resp.IsError
}

// addUsage sums two usage snapshots field by field.
func addUsage(a, b fantasy.Usage) fantasy.Usage {
	return fantasy.Usage{
		InputTokens:         a.InputTokens + b.InputTokens,
		OutputTokens:        a.OutputTokens + b.OutputTokens,
		CacheReadTokens:     a.CacheReadTokens + b.CacheReadTokens,
		CacheCreationTokens: a.CacheCreationTokens + b.CacheCreationTokens,
	}
}

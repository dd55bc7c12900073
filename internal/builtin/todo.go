package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// TodoItem is a single entry in the agent's scratch task list.
type TodoItem struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Status   string `json:"status"` // "pending", "in_progress", "completed"
	ActiveForm string `json:"active_form,omitempty"`
}

// todoStore holds the current task list for one server instance. It is
// deliberately process-local and unpersisted — the list is a working
// scratchpad for a single session, not session state worth writing to disk.
type todoStore struct {
	mu    sync.Mutex
	items []TodoItem
}

// NewTodoServer creates an in-process MCP server exposing "todo_write" and
// "todo_read" tools, giving the agent a place to track multi-step plans
// without polluting the conversation with a manually maintained list.
func NewTodoServer() (*server.MCPServer, error) {
	s := server.NewMCPServer("builtin-todo", "1.0.0")
	store := &todoStore{}

	writeTool := mcp.NewTool("todo_write",
		mcp.WithDescription("Replace the current task list with a new one. Pass the full list every time, not just changed items."),
		mcp.WithString("todos", mcp.Required(), mcp.Description("JSON array of {id, content, status, active_form}")),
	)
	s.AddTool(writeTool, store.handleWrite)

	readTool := mcp.NewTool("todo_read",
		mcp.WithDescription("Return the current task list."),
	)
	s.AddTool(readTool, store.handleRead)

	return s, nil
}

func (t *todoStore) handleWrite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("todos")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var items []TodoItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid todos JSON: %v", err)), nil
	}

	t.mu.Lock()
	t.items = items
	t.mu.Unlock()

	return mcp.NewToolResultText(fmt.Sprintf("Saved %d task(s).", len(items))), nil
}

func (t *todoStore) handleRead(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	items := append([]TodoItem{}, t.items...)
	t.mu.Unlock()

	data, err := json.Marshal(items)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode todos: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

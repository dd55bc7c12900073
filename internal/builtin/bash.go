package builtin

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// bashServerTimeout bounds how long a single command may run before it is
// killed, independent of any per-call timeout the caller requests.
const bashServerTimeout = 120 * time.Second

// NewBashServer creates an in-process MCP server exposing a single "bash"
// tool, for configs that want the bash capability reachable through the MCP
// tool-call path (schema validation, connection pooling) instead of the
// direct fantasy.AgentTool in internal/core.
func NewBashServer() (*server.MCPServer, error) {
	s := server.NewMCPServer("builtin-bash", "1.0.0")

	tool := mcp.NewTool("bash",
		mcp.WithDescription("Execute a bash command and return its combined stdout/stderr output."),
		mcp.WithString("command", mcp.Required(), mcp.Description("Shell command to execute")),
	)
	s.AddTool(tool, handleBashCall)

	return s, nil
}

func handleBashCall(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command, err := request.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(command) == "" {
		return mcp.NewToolResultError("command must not be empty"), nil
	}

	cmdCtx, cancel := context.WithTimeout(ctx, bashServerTimeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "bash", "-c", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	var out strings.Builder
	out.WriteString(stdout.String())
	if stderr.Len() > 0 {
		if out.Len() > 0 {
			out.WriteString("\n")
		}
		out.WriteString("STDERR:\n")
		out.WriteString(stderr.String())
	}

	if runErr != nil {
		if cmdCtx.Err() == context.DeadlineExceeded {
			return mcp.NewToolResultError(fmt.Sprintf("command timed out after %v", bashServerTimeout)), nil
		}
		if out.Len() == 0 {
			out.WriteString(runErr.Error())
		}
		return mcp.NewToolResultError(out.String()), nil
	}

	text := out.String()
	if text == "" {
		text = "(no output)"
	}
	return mcp.NewToolResultText(text), nil
}

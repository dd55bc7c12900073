package builtin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	fetchTimeout  = 30 * time.Second
	fetchMaxBytes = 200_000
)

// NewFetchServer creates an in-process MCP server exposing a "fetch" tool
// that retrieves a URL over HTTP(S) and returns its body as text, truncated
// to a safe size for inclusion in a prompt.
func NewFetchServer() (*server.MCPServer, error) {
	s := server.NewMCPServer("builtin-fetch", "1.0.0")

	tool := mcp.NewTool("fetch",
		mcp.WithDescription("Fetch a URL over HTTP(S) and return its response body as text."),
		mcp.WithString("url", mcp.Required(), mcp.Description("URL to fetch")),
	)
	s.AddTool(tool, handleFetchCall)

	return s, nil
}

func handleFetchCall(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return mcp.NewToolResultError("url must start with http:// or https://"), nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid request: %v", err)), nil
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetch failed: %v", err)), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, fetchMaxBytes))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
	}

	text := string(body)
	if len(body) == fetchMaxBytes {
		text += fmt.Sprintf("\n[truncated: response exceeded %d bytes]", fetchMaxBytes)
	}

	return mcp.NewToolResultText(fmt.Sprintf("HTTP %d\n\n%s", resp.StatusCode, text)), nil
}

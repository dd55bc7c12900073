package builtin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"charm.land/fantasy"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	httpRequestTimeout = 30 * time.Second
	httpMaxBodyBytes   = 200_000
)

// NewHTTPServer creates an in-process MCP server exposing a general
// "http_request" tool (method/url/headers/body) and, when model is
// non-nil, an "http_summarize" tool that fetches a URL and asks model to
// summarize the result — useful for pulling a long page into the
// conversation without spending its full token cost.
func NewHTTPServer(model fantasy.LanguageModel) (*server.MCPServer, error) {
	s := server.NewMCPServer("builtin-http", "1.0.0")

	requestTool := mcp.NewTool("http_request",
		mcp.WithDescription("Make an HTTP request with a chosen method, optional headers and body, and return the response."),
		mcp.WithString("method", mcp.Required(), mcp.Description("HTTP method, e.g. GET, POST, PUT, DELETE")),
		mcp.WithString("url", mcp.Required(), mcp.Description("URL to request")),
		mcp.WithString("headers", mcp.Description("Headers as \"Key: Value\" lines, one per line")),
		mcp.WithString("body", mcp.Description("Request body, if any")),
	)
	s.AddTool(requestTool, handleHTTPRequest)

	if model != nil {
		summarizer := &httpSummarizer{model: model}
		summarizeTool := mcp.NewTool("http_summarize",
			mcp.WithDescription("Fetch a URL and return a model-generated summary of its content instead of the raw body."),
			mcp.WithString("url", mcp.Required(), mcp.Description("URL to fetch and summarize")),
		)
		s.AddTool(summarizeTool, summarizer.handle)
	}

	return s, nil
}

func handleHTTPRequest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	method, err := request.RequireString("method")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	headersRaw := request.GetString("headers", "")
	body := request.GetString("body", "")

	reqCtx, cancel := context.WithTimeout(ctx, httpRequestTimeout)
	defer cancel()

	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(reqCtx, strings.ToUpper(method), url, bodyReader)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid request: %v", err)), nil
	}
	for _, line := range strings.Split(headersRaw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		httpReq.Header.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("request failed: %v", err)), nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, httpMaxBodyBytes))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("HTTP %d\n\n%s", resp.StatusCode, string(respBody))), nil
}

// httpSummarizer fetches a URL and hands the body to model for a
// short-form summary, bounding what the agent's context has to hold.
type httpSummarizer struct {
	model fantasy.LanguageModel
}

func (h *httpSummarizer) handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, httpRequestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid url: %v", err)), nil
	}
	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetch failed: %v", err)), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, httpMaxBodyBytes))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
	}

	prompt := fmt.Sprintf("Summarize the following page content in a few sentences:\n\n%s", string(body))
	agent := fantasy.NewAgent(h.model)
	result, err := agent.Generate(ctx, fantasy.AgentCall{
		Messages: []fantasy.Message{{
			Role:    fantasy.MessageRoleUser,
			Content: []fantasy.MessagePart{fantasy.TextPart{Text: prompt}},
		}},
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("summarization failed: %v", err)), nil
	}

	return mcp.NewToolResultText(result.Response.Content.Text()), nil
}

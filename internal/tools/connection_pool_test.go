package tools

import (
	"context"
	"testing"

	"github.com/saorsa-labs/saorsa/internal/config"
)

func TestParseHeaders(t *testing.T) {
	headers := parseHeaders([]string{"Authorization: Bearer abc", "X-Custom:value"})
	if headers["Authorization"] != "Bearer abc" {
		t.Errorf("Authorization = %q, want %q", headers["Authorization"], "Bearer abc")
	}
	if headers["X-Custom"] != "value" {
		t.Errorf("X-Custom = %q, want %q", headers["X-Custom"], "value")
	}
}

func TestParseHeaders_Empty(t *testing.T) {
	if headers := parseHeaders(nil); headers != nil {
		t.Fatalf("expected nil for no headers, got %v", headers)
	}
}

func TestParseHeaders_MalformedEntryIgnored(t *testing.T) {
	headers := parseHeaders([]string{"not-a-header"})
	if len(headers) != 0 {
		t.Fatalf("expected malformed entries to be skipped, got %v", headers)
	}
}

func TestMCPConnectionPool_EmptyPoolOperations(t *testing.T) {
	pool := NewMCPConnectionPool(DefaultConnectionPoolConfig(), nil, false)

	if clients := pool.GetClients(); len(clients) != 0 {
		t.Fatalf("expected no clients in a fresh pool, got %v", clients)
	}

	// Evicting a connection that was never established should be a no-op.
	pool.HandleConnectionError("unknown-server", context.DeadlineExceeded)

	if err := pool.Close(); err != nil {
		t.Fatalf("Close on empty pool returned error: %v", err)
	}
}

func TestMCPConnectionPool_CreateClient_StdioNonexistentCommand(t *testing.T) {
	pool := NewMCPConnectionPool(DefaultConnectionPoolConfig(), nil, false)

	// GetTransportType infers "stdio" from Command; starting it should fail
	// fast since the executable doesn't exist.
	_, err := pool.createClient(context.Background(), "broken", config.MCPServerConfig{
		Command: []string{"this-command-does-not-exist-anywhere"},
	})
	if err == nil {
		t.Fatal("expected an error starting a nonexistent stdio command")
	}
}

func TestMCPConnectionPool_SetDebugLogger(t *testing.T) {
	pool := NewMCPConnectionPool(DefaultConnectionPoolConfig(), nil, false)
	logger := NewBufferedDebugLogger(true)
	pool.SetDebugLogger(logger)

	pool.logDebug("test message %d", 1)

	msgs := logger.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 debug message, got %d", len(msgs))
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestGetTransportType_ExplicitType(t *testing.T) {
	tests := []struct {
		typeValue string
		want      string
	}{
		{"stdio", "stdio"},
		{"SSE", "sse"},
		{"streamable", "streamable"},
		{"streamable-http", "streamable"},
		{"HTTP", "streamable"},
		{"builtin", "inprocess"},
		{"inprocess", "inprocess"},
	}
	for _, tt := range tests {
		cfg := MCPServerConfig{Type: tt.typeValue}
		if got := cfg.GetTransportType(); got != tt.want {
			t.Errorf("Type=%q: GetTransportType() = %q, want %q", tt.typeValue, got, tt.want)
		}
	}
}

func TestGetTransportType_Inferred(t *testing.T) {
	if got := (MCPServerConfig{Command: []string{"foo"}}).GetTransportType(); got != "stdio" {
		t.Errorf("Command-only config: GetTransportType() = %q, want stdio", got)
	}
	if got := (MCPServerConfig{Name: "fs"}).GetTransportType(); got != "inprocess" {
		t.Errorf("Name-only config: GetTransportType() = %q, want inprocess", got)
	}
	if got := (MCPServerConfig{URL: "http://localhost"}).GetTransportType(); got != "streamable" {
		t.Errorf("URL-only config: GetTransportType() = %q, want streamable", got)
	}
	if got := (MCPServerConfig{}).GetTransportType(); got != "stdio" {
		t.Errorf("empty config: GetTransportType() = %q, want stdio (fallback)", got)
	}
}

func TestSetAndGetConfigPath(t *testing.T) {
	defer SetConfigPath(GetConfigPath())

	SetConfigPath("/tmp/example.yaml")
	if got := GetConfigPath(); got != "/tmp/example.yaml" {
		t.Errorf("GetConfigPath() = %q, want /tmp/example.yaml", got)
	}
}

func TestLoadSystemPrompt_EmptyReturnsEmpty(t *testing.T) {
	got, err := LoadSystemPrompt("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("LoadSystemPrompt(\"\") = %q, want empty string", got)
	}
}

func TestLoadSystemPrompt_LiteralText(t *testing.T) {
	got, err := LoadSystemPrompt("you are a helpful assistant")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "you are a helpful assistant" {
		t.Errorf("LoadSystemPrompt() = %q, want the literal text back", got)
	}
}

func TestLoadSystemPrompt_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.txt")
	if err := os.WriteFile(path, []byte("be concise"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	got, err := LoadSystemPrompt(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "be concise" {
		t.Errorf("LoadSystemPrompt(path) = %q, want file contents", got)
	}
}

func TestLoadAndValidateConfig_RejectsStdioWithoutCommand(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("mcpServers", map[string]any{
		"broken": map[string]any{"type": "stdio"},
	})

	if _, err := LoadAndValidateConfig(); err == nil {
		t.Fatal("expected an error for a stdio server with no command")
	}
}

func TestLoadAndValidateConfig_RejectsURLlessRemote(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("mcpServers", map[string]any{
		"broken": map[string]any{"type": "sse"},
	})

	if _, err := LoadAndValidateConfig(); err == nil {
		t.Fatal("expected an error for an sse server with no url")
	}
}

func TestLoadAndValidateConfig_Valid(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("mcpServers", map[string]any{
		"local": map[string]any{
			"type":    "stdio",
			"command": []string{"my-server"},
		},
	})

	cfg, err := LoadAndValidateConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.MCPServers) != 1 {
		t.Fatalf("expected 1 server, got %d", len(cfg.MCPServers))
	}
}

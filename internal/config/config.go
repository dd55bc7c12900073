package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// MCPServerConfig describes how to reach a single MCP server, whether it is
// a local stdio subprocess, a remote SSE/StreamableHTTP endpoint, or an
// in-process builtin server (filesystem, bash, todo, fetch).
type MCPServerConfig struct {
	// Type explicitly selects the transport ("stdio", "sse", "streamable",
	// "streamable-http", "builtin"). Leave empty to let GetTransportType
	// infer it from the other fields.
	Type string `mapstructure:"type" yaml:"type,omitempty" json:"type,omitempty"`

	// Command is the subprocess to launch for a stdio server; Command[0] is
	// the executable and the rest are its arguments.
	Command []string `mapstructure:"command" yaml:"command,omitempty" json:"command,omitempty"`
	// Args supplies additional arguments appended when Command has only an
	// executable and no embedded args.
	Args []string `mapstructure:"args" yaml:"args,omitempty" json:"args,omitempty"`
	// Environment holds legacy string-valued environment variables for the
	// subprocess.
	Environment map[string]string `mapstructure:"environment" yaml:"environment,omitempty" json:"environment,omitempty"`
	// Env holds environment variables that may come from config as
	// non-string scalars (numbers, bools) and are stringified on use.
	Env map[string]any `mapstructure:"env" yaml:"env,omitempty" json:"env,omitempty"`

	// URL is the endpoint for SSE/StreamableHTTP servers.
	URL string `mapstructure:"url" yaml:"url,omitempty" json:"url,omitempty"`
	// Headers holds "Key: Value" strings sent with every request to a
	// remote server.
	Headers []string `mapstructure:"headers" yaml:"headers,omitempty" json:"headers,omitempty"`

	// Name selects which builtin server to mount in-process (e.g. "todo",
	// "fs", "bash").
	Name string `mapstructure:"name" yaml:"name,omitempty" json:"name,omitempty"`
	// Options configures the builtin server (e.g. a root directory).
	Options map[string]any `mapstructure:"options" yaml:"options,omitempty" json:"options,omitempty"`

	// AllowedTools restricts which of the server's tools are loaded. Empty
	// means all tools are allowed.
	AllowedTools []string `mapstructure:"allowedTools" yaml:"allowedTools,omitempty" json:"allowedTools,omitempty"`
	// ExcludedTools removes specific tools even if AllowedTools would
	// otherwise include them.
	ExcludedTools []string `mapstructure:"excludedTools" yaml:"excludedTools,omitempty" json:"excludedTools,omitempty"`
}

// GetTransportType resolves the transport to use for this server. An
// explicit Type takes precedence (after normalizing known aliases);
// otherwise the transport is inferred from which fields are populated.
func (c MCPServerConfig) GetTransportType() string {
	switch strings.ToLower(c.Type) {
	case "stdio":
		return "stdio"
	case "sse":
		return "sse"
	case "streamable", "streamable-http", "streamablehttp", "http":
		return "streamable"
	case "builtin", "inprocess":
		return "inprocess"
	}

	if len(c.Command) > 0 {
		return "stdio"
	}
	if c.Name != "" {
		return "inprocess"
	}
	if c.URL != "" {
		return "streamable"
	}
	return "stdio"
}

// Config is the complete application configuration: MCP server
// definitions plus the global flags that affect how they're loaded.
type Config struct {
	// MCPServers maps a user-chosen server name to its connection config.
	MCPServers map[string]MCPServerConfig `mapstructure:"mcpServers" yaml:"mcpServers,omitempty" json:"mcpServers,omitempty"`
	// Debug enables verbose logging while loading and calling MCP tools.
	Debug bool `mapstructure:"debug" yaml:"debug,omitempty" json:"debug,omitempty"`
}

// activeConfigPath records the path of the last config file loaded via
// SetConfigPath, used to resolve config-relative paths (e.g. a
// "system-prompt" value that names a file next to the config).
var activeConfigPath string

// SetConfigPath records the path of the config file currently in use.
func SetConfigPath(path string) {
	activeConfigPath = path
}

// GetConfigPath returns the path set by the most recent SetConfigPath call,
// or the empty string if none has been set.
func GetConfigPath() string {
	return activeConfigPath
}

// LoadAndValidateConfig builds a Config from the current viper state
// (populated by InitConfig's config-file + KIT_ env var loading) and
// validates that every configured server has a recognized transport.
func LoadAndValidateConfig() (*Config, error) {
	cfg := &Config{Debug: viper.GetBool("debug")}

	if err := viper.UnmarshalKey("mcpServers", &cfg.MCPServers); err != nil {
		return nil, fmt.Errorf("failed to parse mcpServers: %w", err)
	}

	for name, server := range cfg.MCPServers {
		switch server.GetTransportType() {
		case "stdio":
			if len(server.Command) == 0 {
				return nil, fmt.Errorf("mcp server %q: stdio transport requires a command", name)
			}
		case "sse", "streamable":
			if server.URL == "" {
				return nil, fmt.Errorf("mcp server %q: %s transport requires a url", name, server.GetTransportType())
			}
		case "inprocess":
			if server.Name == "" {
				return nil, fmt.Errorf("mcp server %q: builtin transport requires a name", name)
			}
		}
	}

	return cfg, nil
}

// EnsureConfigExists creates a minimal default config file in the user's
// home directory (~/.kit.yaml) if no config file exists yet at the
// standard search locations. It is a no-op if one is already present.
func EnsureConfigExists() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("error finding home directory: %w", err)
	}

	for _, candidate := range []string{
		filepath.Join(".", ".kit.yaml"),
		filepath.Join(".", ".kit.json"),
		filepath.Join(home, ".kit.yaml"),
		filepath.Join(home, ".kit.json"),
	} {
		if _, err := os.Stat(candidate); err == nil {
			return nil
		}
	}

	defaultPath := filepath.Join(home, ".kit.yaml")
	const defaultContents = "mcpServers: {}\n"
	if err := os.WriteFile(defaultPath, []byte(defaultContents), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	return nil
}

// LoadSystemPrompt resolves the "system-prompt" setting: if it names a file
// that exists on disk, its contents are read and returned; otherwise the
// value itself is used verbatim as the prompt text.
func LoadSystemPrompt(promptOrPath string) (string, error) {
	if promptOrPath == "" {
		return "", nil
	}

	if info, err := os.Stat(promptOrPath); err == nil && !info.IsDir() {
		data, err := os.ReadFile(promptOrPath)
		if err != nil {
			return "", fmt.Errorf("failed to read system prompt file %q: %w", promptOrPath, err)
		}
		return string(data), nil
	}

	return promptOrPath, nil
}

// ColorPair holds a light-background and dark-background variant of a
// single color used by the markdown renderer.
type ColorPair struct {
	Light string `mapstructure:"light" yaml:"light,omitempty" json:"light,omitempty"`
	Dark  string `mapstructure:"dark" yaml:"dark,omitempty" json:"dark,omitempty"`
}

// MarkdownTheme overrides the colors used when rendering markdown in the
// TUI, loaded from the "markdown-theme" config key.
type MarkdownTheme struct {
	Text    ColorPair `mapstructure:"text" yaml:"text,omitempty" json:"text,omitempty"`
	Muted   ColorPair `mapstructure:"muted" yaml:"muted,omitempty" json:"muted,omitempty"`
	Heading ColorPair `mapstructure:"heading" yaml:"heading,omitempty" json:"heading,omitempty"`
	Emph    ColorPair `mapstructure:"emph" yaml:"emph,omitempty" json:"emph,omitempty"`
	Strong  ColorPair `mapstructure:"strong" yaml:"strong,omitempty" json:"strong,omitempty"`
	Link    ColorPair `mapstructure:"link" yaml:"link,omitempty" json:"link,omitempty"`
	Code    ColorPair `mapstructure:"code" yaml:"code,omitempty" json:"code,omitempty"`
	Error   ColorPair `mapstructure:"error" yaml:"error,omitempty" json:"error,omitempty"`
	Keyword ColorPair `mapstructure:"keyword" yaml:"keyword,omitempty" json:"keyword,omitempty"`
	String  ColorPair `mapstructure:"string" yaml:"string,omitempty" json:"string,omitempty"`
	Number  ColorPair `mapstructure:"number" yaml:"number,omitempty" json:"number,omitempty"`
	Comment ColorPair `mapstructure:"comment" yaml:"comment,omitempty" json:"comment,omitempty"`
}

// FilepathOr decodes the viper value at key into out. The name reflects its
// origin as a small helper for settings that are "a file path, or else the
// struct described inline in the config" (e.g. markdown-theme); this
// implementation only needs the inline-struct half, since no caller
// currently passes a bare file path for these keys.
func FilepathOr(key string, out any) error {
	if !viper.IsSet(key) {
		return fmt.Errorf("config key %q not set", key)
	}
	return viper.UnmarshalKey(key, out)
}

package hooks

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// HookCommand is a single command run for a matched event.
type HookCommand struct {
	// Type is always "command" today; kept for forward compatibility with
	// other hook mechanisms.
	Type string `yaml:"type"`
	// Command is run through "sh -c", with the event's JSON input piped to
	// its stdin.
	Command string `yaml:"command"`
	// Timeout bounds the command's execution, in seconds. Zero selects
	// defaultHookTimeout.
	Timeout int `yaml:"timeout,omitempty"`
}

// HookMatcher pairs a tool-name pattern with the commands to run when it
// matches. Matcher is ignored for events that aren't tool-scoped
// (UserPromptSubmit, Stop, SessionStart, SessionEnd, Notification,
// PreCompact); use "" or "*" there.
type HookMatcher struct {
	// Matcher is a pipe-separated list of tool names (e.g. "Edit|Write"),
	// or "*"/"" to match any tool.
	Matcher string        `yaml:"matcher,omitempty"`
	Hooks   []HookCommand `yaml:"hooks"`
}

// HookConfig is the parsed contents of a hooks.yml file.
type HookConfig struct {
	Hooks map[EventName][]HookMatcher `yaml:"hooks"`
}

// hooksConfigCandidates are searched in order; the first one found is used.
func hooksConfigCandidates() []string {
	candidates := []string{filepath.Join(".", ".kit", "hooks.yml")}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".kit", "hooks.yml"))
	}
	return candidates
}

// LoadHooksConfig reads and parses the first hooks.yml found at the
// standard search locations. It returns (nil, nil) — not an error — when no
// config file exists, since legacy hooks are entirely optional.
func LoadHooksConfig() (*HookConfig, error) {
	for _, path := range hooksConfigCandidates() {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read hooks config %q: %w", path, err)
		}

		var cfg HookConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse hooks config %q: %w", path, err)
		}
		return &cfg, nil
	}
	return nil, nil
}

package hooks

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadHooksConfig_NoFilePresent(t *testing.T) {
	dir := t.TempDir()
	restore := chdir(t, dir)
	defer restore()
	t.Setenv("HOME", dir)

	cfg, err := LoadHooksConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Fatalf("expected nil config when no hooks.yml exists, got %+v", cfg)
	}
}

func TestLoadHooksConfig_ParsesFile(t *testing.T) {
	dir := t.TempDir()
	restore := chdir(t, dir)
	defer restore()
	t.Setenv("HOME", dir)

	hooksDir := filepath.Join(dir, ".kit")
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		t.Fatalf("failed to create .kit dir: %v", err)
	}

	contents := `
hooks:
  PreToolUse:
    - matcher: "Edit|Write"
      hooks:
        - type: command
          command: "echo hi"
          timeout: 5
`
	if err := os.WriteFile(filepath.Join(hooksDir, "hooks.yml"), []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write hooks.yml: %v", err)
	}

	cfg, err := LoadHooksConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected a parsed config, got nil")
	}
	matchers := cfg.Hooks[PreToolUse]
	if len(matchers) != 1 || matchers[0].Matcher != "Edit|Write" {
		t.Fatalf("unexpected matchers: %+v", matchers)
	}
	if len(matchers[0].Hooks) != 1 || matchers[0].Hooks[0].Command != "echo hi" {
		t.Fatalf("unexpected hook commands: %+v", matchers[0].Hooks)
	}
	if matchers[0].Hooks[0].Timeout != 5 {
		t.Errorf("Timeout = %d, want 5", matchers[0].Hooks[0].Timeout)
	}
}

// chdir switches the working directory to dir for the duration of a test and
// returns a func to restore it.
func chdir(t *testing.T, dir string) func() {
	t.Helper()
	original, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir to %q: %v", dir, err)
	}
	return func() {
		_ = os.Chdir(original)
	}
}

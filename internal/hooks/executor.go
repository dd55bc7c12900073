package hooks

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const defaultHookTimeout = 60 * time.Second

// Executor runs the commands configured for each event against a fixed
// session context (cwd, transcript path). A nil *Executor is valid and
// executes no hooks — callers can hold one unconditionally and only check
// for a nil HookConfig at construction time.
type Executor struct {
	config         *HookConfig
	cwd            string
	transcriptPath string
	sessionID      string
}

// NewExecutor creates an Executor bound to a session's cwd and transcript
// path, used to populate CommonInput on every hook call. config may be nil
// (or have no matchers for a given event), in which case ExecuteHooks is a
// no-op returning (nil, nil).
func NewExecutor(config *HookConfig, cwd, transcriptPath string) *Executor {
	return &Executor{
		config:         config,
		cwd:            cwd,
		transcriptPath: transcriptPath,
		sessionID:      newSessionID(),
	}
}

// PopulateCommonFields builds the CommonInput shared by every hook input
// struct for the given event.
func (e *Executor) PopulateCommonFields(event EventName) CommonInput {
	return CommonInput{
		SessionID:      e.sessionID,
		TranscriptPath: e.transcriptPath,
		Cwd:            e.cwd,
		HookEventName:  event,
	}
}

// ExecuteHooks runs every matcher configured for event whose pattern
// matches input's tool name (if any), in configuration order. The first
// command that returns a "block" decision short-circuits the rest and is
// returned immediately; otherwise the last non-nil output is returned.
func (e *Executor) ExecuteHooks(ctx context.Context, event EventName, input any) (*HookOutput, error) {
	if e == nil || e.config == nil {
		return nil, nil
	}
	matchers := e.config.Hooks[event]
	if len(matchers) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("hooks: failed to marshal %s input: %w", event, err)
	}

	var last *HookOutput
	for _, m := range matchers {
		if !matcherMatches(m.Matcher, input) {
			continue
		}
		for _, cmd := range m.Hooks {
			output, err := runHookCommand(ctx, cmd, payload)
			if err != nil {
				return nil, fmt.Errorf("hooks: %s command failed: %w", event, err)
			}
			if output == nil {
				continue
			}
			last = output
			if output.Decision == "block" {
				return output, nil
			}
		}
	}
	return last, nil
}

// matcherMatches reports whether pattern (a "*"/""-or-pipe-separated tool
// name list) matches input's tool name. Inputs with no tool name (e.g.
// UserPromptSubmit, Stop) always match, since the matcher is meaningless
// for them.
func matcherMatches(pattern string, input any) bool {
	if pattern == "" || pattern == "*" {
		return true
	}
	named, ok := input.(toolMatchable)
	if !ok {
		return true
	}
	toolName := named.HookToolName()
	for _, candidate := range strings.Split(pattern, "|") {
		if strings.TrimSpace(candidate) == toolName {
			return true
		}
	}
	return false
}

// runHookCommand runs a single hook command with payload on its stdin and
// parses its stdout as a HookOutput. Unparseable or empty stdout is treated
// as "no opinion" (nil, nil) rather than an error — a hook that only wants
// to observe (e.g. logging) need not print anything.
func runHookCommand(ctx context.Context, cmd HookCommand, payload []byte) (*HookOutput, error) {
	timeout := defaultHookTimeout
	if cmd.Timeout > 0 {
		timeout = time.Duration(cmd.Timeout) * time.Second
	}

	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	execCmd := exec.CommandContext(cmdCtx, "sh", "-c", cmd.Command)
	execCmd.Stdin = bytes.NewReader(payload)

	var stdout bytes.Buffer
	execCmd.Stdout = &stdout

	if err := execCmd.Run(); err != nil {
		if cmdCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("command timed out after %v: %s", timeout, cmd.Command)
		}
		// A nonzero exit isn't itself fatal — the command may simply be a
		// non-blocking observer that exited unexpectedly. The exit error is
		// not returned; stdout is still parsed below for a decision.
	}

	trimmed := bytes.TrimSpace(stdout.Bytes())
	if len(trimmed) == 0 {
		return nil, nil
	}

	var output HookOutput
	if err := json.Unmarshal(trimmed, &output); err != nil {
		return nil, nil
	}
	return &output, nil
}

// newSessionID creates a unique identifier (16 hex chars) used to correlate
// a run's hook invocations in logs.
func newSessionID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

package tools

import "log"

// DebugLogger receives diagnostic messages emitted while loading and
// dispatching MCP tools. Implementations decide where the messages go;
// the manager and connection pool only check IsDebugEnabled before
// bothering to format a message.
type DebugLogger interface {
	IsDebugEnabled() bool
	LogDebug(message string)
}

// SimpleDebugLogger writes debug lines to the standard logger when enabled.
// It is the default logger used by MCPToolManager.LoadTools when the caller
// hasn't installed one of its own (e.g. the TUI's status-line logger).
type SimpleDebugLogger struct {
	enabled bool
}

// NewSimpleDebugLogger returns a DebugLogger that writes to log.Default()
// when debug is true, and discards messages otherwise.
func NewSimpleDebugLogger(debug bool) *SimpleDebugLogger {
	return &SimpleDebugLogger{enabled: debug}
}

func (l *SimpleDebugLogger) IsDebugEnabled() bool {
	return l.enabled
}

func (l *SimpleDebugLogger) LogDebug(message string) {
	if !l.enabled {
		return
	}
	log.Println(message)
}

package tools

import "testing"

func TestSimpleDebugLogger_Disabled(t *testing.T) {
	logger := NewSimpleDebugLogger(false)
	if logger.IsDebugEnabled() {
		t.Fatal("expected disabled logger to report IsDebugEnabled() == false")
	}
	// Should not panic even though nothing is captured to verify.
	logger.LogDebug("should be discarded")
}

func TestSimpleDebugLogger_Enabled(t *testing.T) {
	logger := NewSimpleDebugLogger(true)
	if !logger.IsDebugEnabled() {
		t.Fatal("expected enabled logger to report IsDebugEnabled() == true")
	}
	logger.LogDebug("hello")
}

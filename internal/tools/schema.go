package tools

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// compileInputSchema converts a tool's raw JSON Schema (as reported by an
// MCP server's InputSchema) into an openapi3.Schema, usable to validate
// incoming tool-call arguments before they're dispatched to the server. It
// returns nil when schemaJSON doesn't unmarshal into a schema, in which case
// validateToolArguments is a no-op rather than rejecting every call.
func compileInputSchema(schemaJSON []byte) *openapi3.Schema {
	var schema openapi3.Schema
	if err := json.Unmarshal(schemaJSON, &schema); err != nil {
		return nil
	}
	return &schema
}

// validateToolArguments checks args (a JSON object, or "" for no arguments)
// against schema. A nil schema, or empty args, always passes: most builtin
// and zero-argument tools have nothing worth validating.
func validateToolArguments(schema *openapi3.Schema, args string) error {
	if schema == nil || args == "" || args == "{}" {
		return nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(args), &decoded); err != nil {
		return fmt.Errorf("invalid JSON arguments: %w", err)
	}
	if err := schema.VisitJSON(decoded); err != nil {
		return fmt.Errorf("arguments do not match tool schema: %w", err)
	}
	return nil
}

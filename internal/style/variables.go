package style

import "strings"

// VariableEnv is the three-layer variable environment: globals from
// `:root`, the active theme's layer, and a local scope. Lookup queries
// local, then theme, then global.
type VariableEnv struct {
	Global map[string]string
	Theme  map[string]string
	Local  map[string]string
}

// NewVariableEnv creates an empty environment.
func NewVariableEnv() *VariableEnv {
	return &VariableEnv{Global: map[string]string{}, Theme: map[string]string{}, Local: map[string]string{}}
}

// Lookup resolves name (without the leading `--` or `$`) through local,
// theme, then global layers.
func (e *VariableEnv) Lookup(name string) (string, bool) {
	if v, ok := e.Local[name]; ok {
		return v, true
	}
	if v, ok := e.Theme[name]; ok {
		return v, true
	}
	if v, ok := e.Global[name]; ok {
		return v, true
	}
	return "", false
}

// SetTheme replaces the theme layer wholesale, as happens when the active
// theme changes.
func (e *VariableEnv) SetTheme(vars map[string]string) {
	e.Theme = vars
}

// varRefKind distinguishes how a declaration value referenced a variable.
type varRefKind int

const (
	notVarRef varRefKind = iota
	varRefLonghand        // var(--name) or var(--name, default)
	varRefShorthand       // $name
)

// parseVarRef recognizes `var(--name)`, `var(--name, default)`, and the
// `$name` shorthand. Returns ok=false if raw is not a variable reference at
// all (a literal value), in which case the caller uses raw verbatim.
func parseVarRef(raw string) (name, fallback string, hasFallback bool, ok bool) {
	trimmed := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(trimmed, "var(") && strings.HasSuffix(trimmed, ")"):
		inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, "var("), ")")
		parts := strings.SplitN(inner, ",", 2)
		name = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(parts[0]), "--"))
		if len(parts) == 2 {
			fallback = strings.TrimSpace(parts[1])
			hasFallback = true
		}
		return name, fallback, hasFallback, true
	case strings.HasPrefix(trimmed, "$"):
		return strings.TrimPrefix(trimmed, "$"), "", false, true
	}
	return "", "", false, false
}

// ResolveValue resolves a raw declaration value against env. If raw is a
// variable reference that cannot be resolved, the declaration's specified
// fallback (var(...,fallback)) is used if present; otherwise resolution
// fails and the caller should drop the declaration and surface a warning.
func ResolveValue(raw string, env *VariableEnv) (string, bool) {
	name, fallback, hasFallback, isRef := parseVarRef(raw)
	if !isRef {
		return raw, true
	}
	if v, ok := env.Lookup(name); ok {
		return v, true
	}
	if hasFallback {
		return fallback, true
	}
	return "", false
}

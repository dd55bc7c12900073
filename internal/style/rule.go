package style

// Declaration is one `property: value` (or `--var: value`) pair inside a
// rule body. Important marks a `!important` suffix, which is promoted
// above all non-important declarations during cascade regardless of
// specificity.
type Declaration struct {
	Property  Property
	IsVar     bool
	VarName   string
	RawValue  string // unresolved; may contain var(--x) / $x references
	Important bool
}

// Rule is a selector list plus its declarations. SourceOrder is the rule's
// position within the stylesheet and participates in cascade tie-breaking
// (later wins among equal specificity).
type Rule struct {
	Selectors   SelectorList
	Decls       []Declaration
	SourceOrder int
}

// Stylesheet is an ordered set of parsed rules plus the :root declarations,
// which seed the global variable layer.
type Stylesheet struct {
	Rules    []Rule
	RootVars map[string]string
}

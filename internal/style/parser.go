package style

import (
	"fmt"
	"strings"
)

// propertyNames maps TCSS declaration property names to Property values.
var propertyNames = map[string]Property{
	"display":               PropDisplay,
	"flex-direction":        PropFlexDirection,
	"flex-wrap":             PropFlexWrap,
	"flex-grow":             PropFlexGrow,
	"flex-shrink":           PropFlexShrink,
	"flex-basis":            PropFlexBasis,
	"justify-content":       PropJustifyContent,
	"align-items":           PropAlignItems,
	"align-self":            PropAlignSelf,
	"gap":                   PropGap,
	"width":                 PropWidth,
	"height":                PropHeight,
	"min-width":             PropMinWidth,
	"min-height":            PropMinHeight,
	"max-width":             PropMaxWidth,
	"max-height":            PropMaxHeight,
	"margin-top":            PropMarginTop,
	"margin-right":          PropMarginRight,
	"margin-bottom":         PropMarginBottom,
	"margin-left":           PropMarginLeft,
	"padding-top":           PropPaddingTop,
	"padding-right":         PropPaddingRight,
	"padding-bottom":        PropPaddingBottom,
	"padding-left":          PropPaddingLeft,
	"border-top":            PropBorderTop,
	"border-right":          PropBorderRight,
	"border-bottom":         PropBorderBottom,
	"border-left":           PropBorderLeft,
	"overflow":              PropOverflow,
	"overflow-x":            PropOverflowX,
	"overflow-y":            PropOverflowY,
	"grid-template-rows":    PropGridTemplateRows,
	"grid-template-columns": PropGridTemplateColumns,
	"grid-row":              PropGridRow,
	"grid-column":           PropGridColumn,
	"color":                 PropColor,
	"background":            PropBackground,
	"bold":                  PropBold,
	"italic":                PropItalic,
	"underline":             PropUnderline,
}

// marginShorthand, paddingShorthand and borderShorthand list the properties
// that the margin, padding and border shorthands always expand to, one
// declaration per side when given as a single shorthand value, per §4.4:
// "Borders declared as shorthand always expand to one-cell width per side."
var marginShorthand = []Property{PropMarginTop, PropMarginRight, PropMarginBottom, PropMarginLeft}
var paddingShorthand = []Property{PropPaddingTop, PropPaddingRight, PropPaddingBottom, PropPaddingLeft}
var borderShorthand = []Property{PropBorderTop, PropBorderRight, PropBorderBottom, PropBorderLeft}

// ParseStylesheet parses TCSS source into a Stylesheet. Parse failures
// return an error and the caller (the hot-reload path) is responsible for
// retaining the previous stylesheet rather than applying a partial one.
func ParseStylesheet(src string) (*Stylesheet, error) {
	src = stripComments(src)
	sheet := &Stylesheet{RootVars: map[string]string{}}

	blocks, err := splitBlocks(src)
	if err != nil {
		return nil, err
	}

	order := 0
	for _, block := range blocks {
		header := strings.TrimSpace(block.header)
		decls, err := parseDeclarations(block.body)
		if err != nil {
			return nil, fmt.Errorf("style: rule %q: %w", header, err)
		}

		if header == ":root" {
			for _, d := range decls {
				if d.IsVar {
					sheet.RootVars[d.VarName] = d.RawValue
				}
			}
			continue
		}

		selectors, err := ParseSelectorList(header)
		if err != nil {
			return nil, fmt.Errorf("style: selector %q: %w", header, err)
		}
		sheet.Rules = append(sheet.Rules, Rule{Selectors: selectors, Decls: decls, SourceOrder: order})
		order++
	}

	return sheet, nil
}

type rawBlock struct {
	header string
	body   string
}

// splitBlocks scans `selector { decls }` blocks at the top level, respecting
// brace nesting (TCSS has none in practice, but the guard is cheap and
// gives a clear error instead of silently misparsing unbalanced input).
func splitBlocks(src string) ([]rawBlock, error) {
	var blocks []rawBlock
	depth := 0
	start := 0
	headerStart := 0
	for i, r := range src {
		switch r {
		case '{':
			if depth == 0 {
				headerStart = start
			}
			depth++
			if depth == 1 {
				start = i + 1
			}
		case '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("style: unmatched '}' at byte %d", i)
			}
			if depth == 0 {
				blocks = append(blocks, rawBlock{header: src[headerStart:indexByteBefore(src, headerStart, '{')], body: src[start:i]})
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("style: unclosed '{'")
	}
	return blocks, nil
}

func indexByteBefore(src string, from int, b byte) int {
	idx := strings.IndexByte(src[from:], b)
	if idx < 0 {
		return len(src)
	}
	return from + idx
}

// parseDeclarations splits a rule body on top-level semicolons and parses
// each `property: value` (or `--name: value`) pair, recognizing a trailing
// `!important` marker.
func parseDeclarations(body string) ([]Declaration, error) {
	var decls []Declaration
	for _, stmt := range strings.Split(body, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		colon := strings.IndexByte(stmt, ':')
		if colon < 0 {
			return nil, fmt.Errorf("malformed declaration %q", stmt)
		}
		name := strings.TrimSpace(stmt[:colon])
		value := strings.TrimSpace(stmt[colon+1:])

		important := false
		if idx := strings.Index(value, "!important"); idx >= 0 {
			important = true
			value = strings.TrimSpace(value[:idx])
		}

		if strings.HasPrefix(name, "--") {
			decls = append(decls, Declaration{IsVar: true, VarName: strings.TrimPrefix(name, "--"), RawValue: value, Important: important})
			continue
		}

		if group, ok := shorthandGroup(name); ok {
			for _, p := range group {
				decls = append(decls, Declaration{Property: p, RawValue: value, Important: important})
			}
			continue
		}

		prop, ok := propertyNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown property %q", name)
		}

		decls = append(decls, Declaration{Property: prop, RawValue: value, Important: important})
	}
	return decls, nil
}

func shorthandGroup(name string) ([]Property, bool) {
	switch name {
	case "margin":
		return marginShorthand, true
	case "padding":
		return paddingShorthand, true
	case "border":
		return borderShorthand, true
	}
	return nil, false
}

// stripComments removes /* ... */ comments, which TCSS inherits from CSS.
func stripComments(src string) string {
	var sb strings.Builder
	for {
		start := strings.Index(src, "/*")
		if start < 0 {
			sb.WriteString(src)
			break
		}
		end := strings.Index(src[start:], "*/")
		if end < 0 {
			sb.WriteString(src[:start])
			break
		}
		sb.WriteString(src[:start])
		src = src[start+end+2:]
	}
	return sb.String()
}

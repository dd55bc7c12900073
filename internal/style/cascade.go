package style

import (
	"fmt"
	"os"
	"sort"
)

// MatchedRule is the specificity, source order, and declarations of one
// rule that matched a widget — the unit the cascade sorts and applies.
type MatchedRule struct {
	Specificity Specificity
	SourceOrder int
	Decls       []Declaration
}

// MatchRules evaluates every rule in the stylesheet against target and
// returns the ones that match, each carrying the highest specificity among
// the selectors in its list that matched (per §4.3: "the rule's
// contribution uses the highest specificity among them").
func MatchRules(sheet *Stylesheet, target MatchTarget) []MatchedRule {
	var out []MatchedRule
	for _, rule := range sheet.Rules {
		sp, ok := rule.Selectors.BestSpecificity(target)
		if !ok {
			continue
		}
		out = append(out, MatchedRule{Specificity: sp, SourceOrder: rule.SourceOrder, Decls: rule.Decls})
	}
	return out
}

// Cascade resolves a widget's matched rules into a ComputedStyle: rules are
// stable-sorted by (specificity ascending, source order ascending) so later
// declarations win ties, except that any !important declaration is
// promoted above every non-important one regardless of specificity.
// Variable references are resolved against env; unresolved references with
// no default drop the declaration and print a warning, matching the
// teacher's preference for stderr diagnostics over a logging framework.
// Finally, the fixed Inheritable property subset falls back to parentStyle
// when the widget declared no value itself.
func Cascade(matched []MatchedRule, env *VariableEnv, parentStyle ComputedStyle) ComputedStyle {
	sorted := make([]MatchedRule, len(matched))
	copy(sorted, matched)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Specificity != sorted[j].Specificity {
			return sorted[i].Specificity.Less(sorted[j].Specificity)
		}
		return sorted[i].SourceOrder < sorted[j].SourceOrder
	})

	normal := ComputedStyle{}
	important := ComputedStyle{}

	apply := func(dest ComputedStyle, d Declaration) {
		if d.IsVar {
			return
		}
		resolved, ok := ResolveValue(d.RawValue, env)
		if !ok {
			fmt.Fprintf(os.Stderr, "style: warning: unresolved variable in declaration for property %v\n", d.Property)
			return
		}
		dest[d.Property] = parseLiteralValue(resolved)
	}

	for _, rule := range sorted {
		for _, d := range rule.Decls {
			if d.Important {
				apply(important, d)
			} else {
				apply(normal, d)
			}
		}
	}

	result := ComputedStyle{}
	for k, v := range normal {
		result[k] = v
	}
	for k, v := range important {
		result[k] = v
	}

	for prop := range Inheritable {
		if _, declared := result[prop]; !declared {
			if parentStyle != nil {
				if pv, ok := parentStyle[prop]; ok {
					result[prop] = pv
				}
			}
		}
	}

	return result
}

package style

import "strconv"

// SimpleKind discriminates one atom of a compound selector.
type SimpleKind int

const (
	SimpleType SimpleKind = iota
	SimpleClass
	SimpleID
	SimpleUniversal
	SimplePseudo
)

// SimpleSelector is one atom: a type name, a class, an id, the universal
// selector, or a pseudo-class (optionally parameterized, for :nth-child(N)).
type SimpleSelector struct {
	Kind  SimpleKind
	Value string // type name / class name / id name / pseudo name
	Arg   int    // :nth-child(N) argument; unused otherwise
}

// Combinator joins two compound selectors in a chain.
type Combinator int

const (
	CombinatorDescendant Combinator = iota // whitespace
	CombinatorChild                        // >
)

// CompoundSelector is a sequence of SimpleSelectors with no separator
// between them (e.g. `Label.error#main:focus`).
type CompoundSelector struct {
	Simples []SimpleSelector
}

// ChainLink is one step to the left of a compound selector, reached via a
// combinator.
type ChainLink struct {
	Combinator Combinator
	Compound   CompoundSelector
}

// Selector is one compound selector chain: the rightmost compound plus,
// reading right-to-left, the ancestor compounds required to match via their
// combinators.
type Selector struct {
	Rightmost CompoundSelector
	Ancestors []ChainLink // ordered rightmost-ancestor first
}

// Specificity is the (id_count, class_count, type_count) lexicographic
// triple used to order matched rules. Pseudo-classes count alongside type
// selectors, per §4.3.
type Specificity struct {
	IDs, Classes, Types int
}

// Less reports whether s is strictly less specific than o.
func (s Specificity) Less(o Specificity) bool {
	if s.IDs != o.IDs {
		return s.IDs < o.IDs
	}
	if s.Classes != o.Classes {
		return s.Classes < o.Classes
	}
	return s.Types < o.Types
}

// Specificity computes the selector's specificity by summing every simple
// selector across every compound in the chain.
func (sel Selector) Specificity() Specificity {
	var sp Specificity
	accumulate := func(c CompoundSelector) {
		for _, s := range c.Simples {
			switch s.Kind {
			case SimpleID:
				sp.IDs++
			case SimpleClass:
				sp.Classes++
			case SimpleType, SimplePseudo:
				sp.Types++
			}
		}
	}
	accumulate(sel.Rightmost)
	for _, link := range sel.Ancestors {
		accumulate(link.Compound)
	}
	return sp
}

// SelectorList is a comma-separated list of alternative selectors.
type SelectorList []Selector

// BestSpecificity returns the highest specificity among every selector in
// the list that matches target, and whether any did.
func (list SelectorList) BestSpecificity(target MatchTarget) (Specificity, bool) {
	var best Specificity
	matched := false
	for _, sel := range list {
		if Matches(sel, target) {
			sp := sel.Specificity()
			if !matched || best.Less(sp) {
				best = sp
			}
			matched = true
		}
	}
	return best, matched
}

// ParseSelectorList parses a comma-separated selector list, e.g.
// `Label, .error#main:focus`.
func ParseSelectorList(src string) (SelectorList, error) {
	groups, err := splitTopLevel(src, ',')
	if err != nil {
		return nil, err
	}
	var out SelectorList
	for _, g := range groups {
		sel, err := parseSelector(g)
		if err != nil {
			return nil, err
		}
		out = append(out, sel)
	}
	return out, nil
}

// parseSelector parses one selector (no top-level commas) into its
// compound chain, reading combinator tokens left-to-right and keeping the
// rightmost compound distinguished as required by Matches.
func parseSelector(src string) (Selector, error) {
	toks := tokenizeSelector(src)
	var compounds []CompoundSelector
	var combinators []Combinator

	i := 0
	for i < len(toks) {
		compound, next, err := parseCompound(toks, i)
		if err != nil {
			return Selector{}, err
		}
		compounds = append(compounds, compound)
		i = next
		if i < len(toks) && toks[i].kind == tokCombinator {
			if toks[i].text == ">" {
				combinators = append(combinators, CombinatorChild)
			} else {
				combinators = append(combinators, CombinatorDescendant)
			}
			i++
		}
	}

	if len(compounds) == 0 {
		return Selector{}, errEmptySelector
	}

	sel := Selector{Rightmost: compounds[len(compounds)-1]}
	for i := len(compounds) - 2; i >= 0; i-- {
		sel.Ancestors = append(sel.Ancestors, ChainLink{Combinator: combinators[i], Compound: compounds[i]})
	}
	return sel, nil
}

func parseCompound(toks []token, start int) (CompoundSelector, int, error) {
	var c CompoundSelector
	i := start
	for i < len(toks) {
		switch toks[i].kind {
		case tokType:
			c.Simples = append(c.Simples, SimpleSelector{Kind: SimpleType, Value: toks[i].text})
			i++
		case tokUniversal:
			c.Simples = append(c.Simples, SimpleSelector{Kind: SimpleUniversal})
			i++
		case tokClass:
			c.Simples = append(c.Simples, SimpleSelector{Kind: SimpleClass, Value: toks[i].text})
			i++
		case tokID:
			c.Simples = append(c.Simples, SimpleSelector{Kind: SimpleID, Value: toks[i].text})
			i++
		case tokPseudo:
			arg := 0
			name := toks[i].text
			if toks[i].arg != "" {
				arg, _ = strconv.Atoi(toks[i].arg)
			}
			c.Simples = append(c.Simples, SimpleSelector{Kind: SimplePseudo, Value: name, Arg: arg})
			i++
		case tokCombinator:
			return c, i, nil
		default:
			return c, i, errUnexpectedToken
		}
	}
	return c, i, nil
}

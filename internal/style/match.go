package style

// MatchTarget is the minimal view of a widget tree node the selector
// matcher needs: attributes plus enough tree context to resolve
// combinators and structural pseudo-classes.
type MatchTarget interface {
	TypeName() string
	Classes() []string
	ID() string
	HasPseudo(name string) bool // focus, hover, disabled, active
	SiblingIndex() int          // 1-based position among parent's children
	IsRoot() bool
	Parent() (MatchTarget, bool)
}

// Matches reports whether sel matches target: the rightmost compound must
// match target itself, and then, walking the combinator chain right to
// left, each required ancestor must be found (child: the immediate parent;
// descendant: the nearest matching ancestor, which may be several levels
// up).
func Matches(sel Selector, target MatchTarget) bool {
	if !matchesCompound(sel.Rightmost, target) {
		return false
	}

	current := target
	for _, link := range sel.Ancestors {
		switch link.Combinator {
		case CombinatorChild:
			parent, ok := current.Parent()
			if !ok || !matchesCompound(link.Compound, parent) {
				return false
			}
			current = parent
		case CombinatorDescendant:
			found, ok := nearestMatchingAncestor(current, link.Compound)
			if !ok {
				return false
			}
			current = found
		}
	}
	return true
}

func nearestMatchingAncestor(from MatchTarget, compound CompoundSelector) (MatchTarget, bool) {
	cur := from
	for {
		parent, ok := cur.Parent()
		if !ok {
			return nil, false
		}
		if matchesCompound(compound, parent) {
			return parent, true
		}
		cur = parent
	}
}

func matchesCompound(c CompoundSelector, target MatchTarget) bool {
	for _, s := range c.Simples {
		if !matchesSimple(s, target) {
			return false
		}
	}
	return true
}

func matchesSimple(s SimpleSelector, target MatchTarget) bool {
	switch s.Kind {
	case SimpleUniversal:
		return true
	case SimpleType:
		return target.TypeName() == s.Value
	case SimpleClass:
		for _, c := range target.Classes() {
			if c == s.Value {
				return true
			}
		}
		return false
	case SimpleID:
		return target.ID() == s.Value
	case SimplePseudo:
		return matchesPseudo(s, target)
	}
	return false
}

func matchesPseudo(s SimpleSelector, target MatchTarget) bool {
	switch s.Value {
	case "focus", "hover", "disabled", "active":
		return target.HasPseudo(s.Value)
	case "root":
		return target.IsRoot()
	case "first-child":
		return target.SiblingIndex() == 1
	case "last-child":
		parent, ok := target.Parent()
		if !ok {
			return target.SiblingIndex() == 1
		}
		return isLastChild(target, parent)
	case "even":
		return target.SiblingIndex()%2 == 0
	case "odd":
		return target.SiblingIndex()%2 == 1
	case "nth-child":
		return target.SiblingIndex() == s.Arg
	}
	return false
}

// ChildCounter is implemented by a MatchTarget whose parent can report the
// total number of children, used to resolve :last-child.
type ChildCounter interface {
	ChildCount() int
}

func isLastChild(target MatchTarget, parent MatchTarget) bool {
	if cc, ok := parent.(ChildCounter); ok {
		return target.SiblingIndex() == cc.ChildCount()
	}
	return false
}

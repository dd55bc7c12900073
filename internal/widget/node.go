package widget

import "github.com/saorsa-labs/saorsa/internal/style"

// PseudoState is the mutable subset of a node's flags the cascade's
// :focus/:hover/:disabled/:active pseudo-classes read.
type PseudoState struct {
	Focused  bool
	Hovered  bool
	Disabled bool
	Active   bool
}

func (p PseudoState) has(name string) bool {
	switch name {
	case "focus":
		return p.Focused
	case "hover":
		return p.Hovered
	case "disabled":
		return p.Disabled
	case "active":
		return p.Active
	}
	return false
}

// Node is one entry in the widget tree: identity and cascade-matchable
// attributes, tree links, pseudo-state, and the Widget instance itself.
// Node carries no geometry — the layout engine owns rects, keyed by Node
// id.
type Node struct {
	ID       uint64
	TypeName string
	Classes  []string
	NodeID   string // CSS `#id`; need not be unique
	State    PseudoState
	Widget   Widget

	parent   *Node
	children []*Node
}

// NewNode creates a detached node wrapping w.
func NewNode(id uint64, typeName string, w Widget) *Node {
	return &Node{ID: id, TypeName: typeName, Widget: w}
}

// CacheKey implements style.Keyed for the per-node match cache.
func (n *Node) CacheKey() uint64 { return n.ID }

// AppendChild attaches child to n. The caller (the DOM runtime) is
// responsible for lifecycle (on_mount) and layout/cache invalidation;
// Node itself only maintains tree shape.
func (n *Node) AppendChild(child *Node) {
	child.parent = n
	n.children = append(n.children, child)
}

// RemoveChild detaches child from n, if present.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Children returns n's children in order.
func (n *Node) Children() []*Node { return n.children }

// Parent returns n's parent, or nil if n is unattached or the DOM root.
func (n *Node) Parent() *Node { return n.parent }

// PreOrder appends n and its descendants, in pre-order, to out.
func (n *Node) PreOrder(out []*Node) []*Node {
	out = append(out, n)
	for _, c := range n.children {
		out = c.PreOrder(out)
	}
	return out
}

// matchTarget adapts a Node's fields to style.MatchTarget, whose method
// names (TypeName/Classes/ID) would otherwise collide with Node's plain
// data fields of almost the same name.
type matchTarget struct{ *Node }

func (t matchTarget) TypeName() string        { return t.Node.TypeName }
func (t matchTarget) Classes() []string       { return t.Node.Classes }
func (t matchTarget) ID() string              { return t.Node.NodeID }
func (t matchTarget) HasPseudo(n string) bool { return t.Node.State.has(n) }
func (t matchTarget) IsRoot() bool            { return t.Node.parent == nil }
func (t matchTarget) ChildCount() int         { return len(t.Node.children) }

func (t matchTarget) SiblingIndex() int {
	if t.Node.parent == nil {
		return 1
	}
	for i, c := range t.Node.parent.children {
		if c == t.Node {
			return i + 1
		}
	}
	return 1
}

func (t matchTarget) Parent() (style.MatchTarget, bool) {
	if t.Node.parent == nil {
		return nil, false
	}
	return matchTarget{t.Node.parent}, true
}

// AsMatchTarget returns the style.MatchTarget view of n.
func (n *Node) AsMatchTarget() style.MatchTarget { return matchTarget{n} }

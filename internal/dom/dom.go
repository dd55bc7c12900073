// Package dom wires the widget tree, style cascade, layout engine, and
// renderer into a single retained-mode runtime: mount/unmount lifecycle,
// focus management, input dispatch, and the per-frame
// style->layout->render->diff->emit cycle.
package dom

import (
	"github.com/saorsa-labs/saorsa/internal/widget"
)

// Dom owns the widget tree's node identities and provides the structural
// operations (mount, remove, traversal) the Runtime drives lifecycle and
// layout from.
type Dom struct {
	root   *widget.Node
	nodes  map[uint64]*widget.Node
	nextID uint64
}

// NewDom creates a Dom with a single root node wrapping rootWidget.
func NewDom(typeName string, rootWidget widget.Widget) *Dom {
	d := &Dom{nodes: map[uint64]*widget.Node{}}
	root := widget.NewNode(d.allocID(), typeName, rootWidget)
	d.root = root
	d.nodes[root.ID] = root
	return d
}

func (d *Dom) allocID() uint64 {
	d.nextID++
	return d.nextID
}

// NewNode allocates a new, unparented node wrapping w. Call Mount to attach
// it to the tree.
func (d *Dom) NewNode(typeName string, w widget.Widget) *widget.Node {
	n := widget.NewNode(d.allocID(), typeName, w)
	d.nodes[n.ID] = n
	return n
}

// Root returns the DOM's root node.
func (d *Dom) Root() *widget.Node { return d.root }

// Contains reports whether id names a node currently in the tree.
func (d *Dom) Contains(id uint64) bool {
	_, ok := d.nodes[id]
	return ok
}

// NodeByID looks up a node by id.
func (d *Dom) NodeByID(id uint64) (*widget.Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// NodeIDs returns every node id currently in the tree, in no particular
// order.
func (d *Dom) NodeIDs() []uint64 {
	ids := make([]uint64, 0, len(d.nodes))
	for id := range d.nodes {
		ids = append(ids, id)
	}
	return ids
}

// PreOrder returns every node in the tree in pre-order (root first, then
// each child's subtree in order).
func (d *Dom) PreOrder() []*widget.Node {
	return d.root.PreOrder(nil)
}

// subtreePreOrder returns n and its descendants in pre-order.
func subtreePreOrder(n *widget.Node) []*widget.Node {
	return n.PreOrder(nil)
}

// Mount attaches child to parent and runs on_mount over child's subtree in
// pre-order. It errors if child already has a parent, to prevent
// double-parenting a node that is still attached elsewhere.
func (d *Dom) Mount(parent, child *widget.Node) error {
	if child.Parent() != nil {
		return errAlreadyMounted
	}
	parent.AppendChild(child)
	for _, n := range subtreePreOrder(child) {
		d.nodes[n.ID] = n
		n.Widget.OnMount()
	}
	return nil
}

// RemoveSubtree detaches node from its parent, running on_unmount over its
// subtree in pre-order first. Removing the DOM root is an error.
func (d *Dom) RemoveSubtree(node *widget.Node) error {
	if node == d.root {
		return errCannotRemoveRoot
	}
	parent := node.Parent()
	if parent == nil {
		return nil
	}
	for _, n := range subtreePreOrder(node) {
		n.Widget.OnUnmount()
	}
	parent.RemoveChild(node)
	for _, n := range subtreePreOrder(node) {
		delete(d.nodes, n.ID)
	}
	return nil
}

type domError string

func (e domError) Error() string { return string(e) }

const (
	errAlreadyMounted   domError = "dom: child already has a parent"
	errCannotRemoveRoot domError = "dom: cannot remove root node"
)

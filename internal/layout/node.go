package layout

// Node is one layout tree node, keyed by the widget id it was computed
// from. The tree shape is rebuilt each frame from the DOM/widget tree;
// Style is produced by FromComputed.
type Node struct {
	ID       uint64
	Style    Style
	Children []*Node
}

// Measurer optionally reports a node's intrinsic content size (e.g. text
// wrapped to a given width). Node carries no Measurer: the Engine takes
// intrinsic sizes from its Measure callback, consulted when a node's size
// on an axis is auto. A zero Size there sizes the node to zero content,
// matching widgets with no measurable content of their own (pure layout
// containers).
type Measurer interface {
	Measure(availableWidth float64) Size
}

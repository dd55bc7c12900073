package layout

// HitTest returns the id of the deepest node whose rect contains (x, y),
// and whether any node matched. Depth is the node's distance from root;
// among overlapping candidates the deepest wins, with no z-index
// tie-breaking beyond that.
func HitTest(root *Node, rects map[uint64]Rect, x, y int) (uint64, bool) {
	var best uint64
	bestDepth := -1
	found := false

	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if r, ok := rects[n.ID]; ok && r.Contains(x, y) {
			if depth > bestDepth {
				best = n.ID
				bestDepth = depth
				found = true
			}
		}
		for _, child := range n.Children {
			walk(child, depth+1)
		}
	}
	walk(root, 0)
	return best, found
}

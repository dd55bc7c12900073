package layout

// Engine computes layout for a tree of Nodes. It holds no state between
// calls to Compute beyond the optional Measure callback; the DOM runtime
// is responsible for layout-cache invalidation (clearing its own cached
// Rects) on resize or tree mutation.
type Engine struct {
	// Measure reports a node's intrinsic content size when its size is
	// auto on an axis the flex/grid algorithm cannot otherwise resolve
	// (e.g. unwrapped text width). A nil Measure treats every node's
	// intrinsic size as zero.
	Measure func(n *Node, availableWidth float64) Size
}

// NewEngine creates an Engine with a zero-size default Measurer.
func NewEngine() *Engine {
	return &Engine{Measure: func(*Node, float64) Size { return Size{} }}
}

// Compute lays out the tree rooted at root against viewport, returning the
// final integer-cell Rect for every node id in the tree. The root's outer
// size is forced to the viewport regardless of its own style, per the
// computation rule that the root's style size is overridden each frame.
func (e *Engine) Compute(root *Node, viewport Size) map[uint64]Rect {
	floats := map[uint64]floatRect{}
	rootRect := floatRect{X: 0, Y: 0, Width: viewport.Width, Height: viewport.Height}
	floats[root.ID] = rootRect
	e.layoutSubtree(root, rootRect, floats)

	rounded := make(map[uint64]Rect, len(floats))
	for id, fr := range floats {
		rounded[id] = fr.round()
	}
	enforceNonOverlap(root, rounded)
	return rounded
}

// layoutSubtree lays out n's children within box (n's own already-resolved
// outer rect) and recurses.
func (e *Engine) layoutSubtree(n *Node, box floatRect, out map[uint64]floatRect) {
	if n.Style.Display == DisplayNone || len(n.Children) == 0 {
		return
	}

	contentBox := floatRect{
		X:      box.X + n.Style.Border.Left + n.Style.Padding.Left,
		Y:      box.Y + n.Style.Border.Top + n.Style.Padding.Top,
		Width:  maxF(0, box.Width-n.Style.Border.Left-n.Style.Border.Right-n.Style.Padding.Left-n.Style.Padding.Right),
		Height: maxF(0, box.Height-n.Style.Border.Top-n.Style.Border.Bottom-n.Style.Padding.Top-n.Style.Padding.Bottom),
	}

	switch n.Style.Display {
	case DisplayGrid:
		layoutGrid(n, contentBox, out)
	default:
		measure := e.Measure
		if measure == nil {
			measure = func(*Node, float64) Size { return Size{} }
		}
		layoutFlex(n, contentBox, out, measure)
	}

	for _, child := range n.Children {
		if fr, ok := out[child.ID]; ok {
			e.layoutSubtree(child, fr, out)
		}
	}
}

// enforceNonOverlap walks each container's children in flow order and, if
// rounding left a sibling overlapping the previous one, moves its start to
// the previous sibling's end and shortens it by the overlap rather than
// letting the overlap stand. It also clamps every child rect
// to its parent's content box so a rounded child never extends past
// (x+width) of its parent.
func enforceNonOverlap(root *Node, rects map[uint64]Rect) {
	var walk func(n *Node)
	walk = func(n *Node) {
		parentRect, ok := rects[n.ID]
		if !ok {
			return
		}
		ax := axisFor(n.Style.FlexDirection)
		prevEnd := -1
		for _, child := range n.Children {
			cr, ok := rects[child.ID]
			if !ok {
				continue
			}
			cr = clampToParent(cr, parentRect, n.Style)

			if n.Style.Display != DisplayNone {
				if ax.mainIsWidth {
					if prevEnd >= 0 && cr.X < prevEnd {
						shift := prevEnd - cr.X
						cr.X += shift
						cr.Width = maxIntClamp(cr.Width - shift)
					}
					prevEnd = cr.Right()
				} else {
					if prevEnd >= 0 && cr.Y < prevEnd {
						shift := prevEnd - cr.Y
						cr.Y += shift
						cr.Height = maxIntClamp(cr.Height - shift)
					}
					prevEnd = cr.Bottom()
				}
			}

			rects[child.ID] = cr
			walk(child)
		}
	}
	walk(root)
}

func clampToParent(r, parent Rect, s Style) Rect {
	contentRight := parent.X + parent.Width - int(s.Border.Right) - int(s.Padding.Right)
	contentBottom := parent.Y + parent.Height - int(s.Border.Bottom) - int(s.Padding.Bottom)
	if r.Right() > contentRight {
		r.Width = maxIntClamp(contentRight - r.X)
	}
	if r.Bottom() > contentBottom {
		r.Height = maxIntClamp(contentBottom - r.Y)
	}
	return r
}

func maxIntClamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

package widget

import (
	"github.com/mattn/go-runewidth"

	"github.com/saorsa-labs/saorsa/internal/buffer"
	"github.com/saorsa-labs/saorsa/internal/layout"
	"github.com/saorsa-labs/saorsa/internal/style"
)

// TreeNode is a node in a Tree's forest: data plus children, an expanded
// flag, and whether the node can ever have children.
type TreeNode[T any] struct {
	Data     T
	Children []TreeNode[T]
	Expanded bool
	IsLeaf   bool
}

// NewTreeLeaf creates a leaf node.
func NewTreeLeaf[T any](data T) TreeNode[T] {
	return TreeNode[T]{Data: data, IsLeaf: true}
}

// NewTreeBranch creates a branch node with no children yet (for lazy load).
func NewTreeBranch[T any](data T) TreeNode[T] {
	return TreeNode[T]{Data: data, IsLeaf: false}
}

type visibleNode struct {
	depth    int
	path     []int
	expanded bool
	isLeaf   bool
}

// Tree is a hierarchical widget that flattens a forest of TreeNode values
// into an indented, scrollable list with expand/collapse navigation.
type Tree[T any] struct {
	Roots      []TreeNode[T]
	RenderNode func(data T, depth int, expanded, isLeaf bool) string
	LazyLoad   func(data T) []TreeNode[T]
	OnActivate func(data T)

	selected     int
	scrollOffset int

	nodeStyle     buffer.Style
	selectedStyle buffer.Style
}

// NewTree creates a Tree over the given forest.
func NewTree[T any](roots []TreeNode[T]) *Tree[T] {
	return &Tree[T]{
		Roots:      roots,
		RenderNode: func(T, int, bool, bool) string { return "???" },
	}
}

func (t *Tree[T]) buildVisible() []visibleNode {
	var out []visibleNode
	for idx, root := range t.Roots {
		t.collectVisible(root, 0, []int{idx}, &out)
	}
	return out
}

func (t *Tree[T]) collectVisible(n TreeNode[T], depth int, path []int, out *[]visibleNode) {
	*out = append(*out, visibleNode{depth: depth, path: path, expanded: n.Expanded, isLeaf: n.IsLeaf})
	if n.Expanded {
		for ci, child := range n.Children {
			childPath := append(append([]int{}, path...), ci)
			t.collectVisible(child, depth+1, childPath, out)
		}
	}
}

func (t *Tree[T]) nodeAtPath(path []int) *TreeNode[T] {
	if len(path) == 0 {
		return nil
	}
	if path[0] >= len(t.Roots) {
		return nil
	}
	cur := &t.Roots[path[0]]
	for _, idx := range path[1:] {
		if idx >= len(cur.Children) {
			return nil
		}
		cur = &cur.Children[idx]
	}
	return cur
}

// ToggleSelected flips expanded/collapsed on the selected node.
func (t *Tree[T]) ToggleSelected() {
	visible := t.buildVisible()
	if t.selected >= len(visible) {
		return
	}
	if n := t.nodeAtPath(visible[t.selected].path); n != nil && !n.IsLeaf {
		n.Expanded = !n.Expanded
	}
}

// ExpandSelected expands the selected node, lazily loading children first
// if LazyLoad is set and the node has none yet.
func (t *Tree[T]) ExpandSelected() {
	visible := t.buildVisible()
	if t.selected >= len(visible) {
		return
	}
	v := visible[t.selected]
	if v.isLeaf {
		return
	}
	if t.LazyLoad != nil {
		if n := t.nodeAtPath(v.path); n != nil && len(n.Children) == 0 && !n.IsLeaf {
			n.Children = t.LazyLoad(n.Data)
		}
	}
	if n := t.nodeAtPath(v.path); n != nil {
		n.Expanded = true
	}
}

// CollapseSelected collapses the selected node, or moves selection to its
// parent if it is already collapsed.
func (t *Tree[T]) CollapseSelected() {
	visible := t.buildVisible()
	if t.selected >= len(visible) {
		return
	}
	v := visible[t.selected]
	if n := t.nodeAtPath(v.path); n != nil && n.Expanded {
		n.Expanded = false
		return
	}
	if len(v.path) > 1 {
		parentPath := v.path[:len(v.path)-1]
		for idx, other := range visible {
			if intSliceEqual(other.path, parentPath) {
				t.selected = idx
				break
			}
		}
	}
}

func intSliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SelectedData returns the data of the selected visible node.
func (t *Tree[T]) SelectedData() (T, bool) {
	var zero T
	visible := t.buildVisible()
	if t.selected >= len(visible) {
		return zero, false
	}
	if n := t.nodeAtPath(visible[t.selected].path); n != nil {
		return n.Data, true
	}
	return zero, false
}

func (t *Tree[T]) visibleCount() int { return len(t.buildVisible()) }

func (t *Tree[T]) ensureSelectedVisible(height int) {
	if height <= 0 {
		return
	}
	if t.selected < t.scrollOffset {
		t.scrollOffset = t.selected
	}
	if t.selected >= t.scrollOffset+height {
		t.scrollOffset = t.selected - (height - 1)
		if t.scrollOffset < 0 {
			t.scrollOffset = 0
		}
	}
}

func (t *Tree[T]) Render(area layout.Rect, buf *buffer.Buffer) {
	if area.Width == 0 || area.Height == 0 {
		return
	}
	height := area.Height
	width := area.Width
	visible := t.buildVisible()
	count := len(visible)

	maxOffset := count - height
	if maxOffset < 0 {
		maxOffset = 0
	}
	scroll := t.scrollOffset
	if scroll > maxOffset {
		scroll = maxOffset
	}
	visEnd := scroll + height
	if visEnd > count {
		visEnd = count
	}

	for row, visIdx := 0, scroll; visIdx < visEnd; row, visIdx = row+1, visIdx+1 {
		y := area.Y + row
		v := visible[visIdx]
		isSelected := visIdx == t.selected
		st := t.nodeStyle
		if isSelected {
			st = t.selectedStyle
			for col := 0; col < width; col++ {
				buf.Set(area.X+col, y, buffer.Cell{Grapheme: " ", Width: 1, Style: st})
			}
		}

		indent := v.depth * 2
		indicator := " "
		if !v.isLeaf {
			if v.expanded {
				indicator = "▼"
			} else {
				indicator = "▶"
			}
		}

		col := 0
		for i := 0; i < indent && col < width; i++ {
			buf.Set(area.X+col, y, buffer.Cell{Grapheme: " ", Width: 1, Style: st})
			col++
		}
		if col < width {
			buf.Set(area.X+col, y, buffer.Cell{Grapheme: indicator, Width: 1, Style: st})
			col++
		}
		if col < width {
			buf.Set(area.X+col, y, buffer.Cell{Grapheme: " ", Width: 1, Style: st})
			col++
		}

		n := t.nodeAtPath(v.path)
		if n == nil {
			continue
		}
		text := t.RenderNode(n.Data, v.depth, v.expanded, v.isLeaf)
		for _, r := range text {
			if col >= width {
				break
			}
			w := runewidth.RuneWidth(r)
			if col+w > width {
				break
			}
			buf.Set(area.X+col, y, buffer.Cell{Grapheme: string(r), Width: w, Style: st})
			col += w
		}
	}
}

func (t *Tree[T]) HandleEvent(ev Event) EventResult {
	if ev.Kind != EventKey {
		return Ignored
	}
	const page = 20
	count := t.visibleCount()
	switch ev.Key.Code {
	case KeyUp:
		if t.selected > 0 {
			t.selected--
			t.ensureSelectedVisible(page)
		}
		return Consumed
	case KeyDown:
		if count > 0 && t.selected < count-1 {
			t.selected++
			t.ensureSelectedVisible(page)
		}
		return Consumed
	case KeyRight:
		t.ExpandSelected()
		return Consumed
	case KeyLeft:
		t.CollapseSelected()
		return Consumed
	case KeyEnter:
		t.ToggleSelected()
		if t.OnActivate != nil {
			if data, ok := t.SelectedData(); ok {
				t.OnActivate(data)
			}
		}
		return Consumed
	case KeyPageUp:
		t.selected -= page
		if t.selected < 0 {
			t.selected = 0
		}
		t.ensureSelectedVisible(page)
		return Consumed
	case KeyPageDown:
		if count > 0 {
			t.selected += page
			if t.selected > count-1 {
				t.selected = count - 1
			}
			t.ensureSelectedVisible(page)
		}
		return Consumed
	case KeyHome:
		t.selected = 0
		t.scrollOffset = 0
		return Consumed
	case KeyEnd:
		if count > 0 {
			t.selected = count - 1
			t.ensureSelectedVisible(page)
		}
		return Consumed
	}
	return Ignored
}

func (t *Tree[T]) ApplyComputedStyle(cs style.ComputedStyle) {
	t.nodeStyle = computedToCellStyle(cs)
	t.selectedStyle = t.nodeStyle
	t.selectedStyle.Reverse = true
}

func (t *Tree[T]) OnMount()        {}
func (t *Tree[T]) OnUnmount()      {}
func (t *Tree[T]) Focusable() bool { return true }

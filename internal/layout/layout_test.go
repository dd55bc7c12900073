package layout

import "testing"

func leaf(id uint64) *Node {
	return &Node{ID: id, Style: Style{Width: Auto(), Height: Auto(), FlexShrink: 1}}
}

func TestCompute_RootForcedToViewport(t *testing.T) {
	root := &Node{ID: 1, Style: Style{Display: DisplayFlex, Width: Cells(5), Height: Cells(5)}}
	e := NewEngine()
	rects := e.Compute(root, Size{Width: 80, Height: 24})
	got := rects[1]
	want := Rect{X: 0, Y: 0, Width: 80, Height: 24}
	if got != want {
		t.Errorf("root rect = %+v, want %+v (style size must be overridden)", got, want)
	}
}

func TestCompute_RowChildrenSplitFixedWidths(t *testing.T) {
	a := leaf(2)
	a.Style.Width = Cells(10)
	a.Style.Height = Cells(1)
	b := leaf(3)
	b.Style.Width = Cells(20)
	b.Style.Height = Cells(1)
	root := &Node{ID: 1, Style: Style{Display: DisplayFlex, FlexDirection: DirectionRow}, Children: []*Node{a, b}}

	e := NewEngine()
	rects := e.Compute(root, Size{Width: 80, Height: 24})

	if rects[2].X != 0 || rects[2].Width != 10 {
		t.Errorf("child a rect = %+v, want X=0 Width=10", rects[2])
	}
	if rects[3].X != 10 || rects[3].Width != 20 {
		t.Errorf("child b rect = %+v, want X=10 Width=20", rects[3])
	}
}

func TestCompute_FlexGrowDistributesFreeSpace(t *testing.T) {
	a := leaf(2)
	a.Style.Width = Cells(10)
	a.Style.Height = Cells(1)
	a.Style.FlexGrow = 1
	b := leaf(3)
	b.Style.Width = Cells(10)
	b.Style.Height = Cells(1)
	b.Style.FlexGrow = 1
	root := &Node{ID: 1, Style: Style{Display: DisplayFlex, FlexDirection: DirectionRow}, Children: []*Node{a, b}}

	e := NewEngine()
	rects := e.Compute(root, Size{Width: 100, Height: 24})

	// free space = 100 - 20 = 80, split evenly -> each child gets +40
	if rects[2].Width != 50 {
		t.Errorf("child a width = %d, want 50", rects[2].Width)
	}
	if rects[3].Width != 50 {
		t.Errorf("child b width = %d, want 50", rects[3].Width)
	}
}

func TestCompute_NonOverlapInvariant(t *testing.T) {
	a := leaf(2)
	a.Style.Width = Cells(3.4)
	a.Style.Height = Cells(1)
	b := leaf(3)
	b.Style.Width = Cells(3.4)
	b.Style.Height = Cells(1)
	c := leaf(4)
	c.Style.Width = Cells(3.4)
	c.Style.Height = Cells(1)
	root := &Node{ID: 1, Style: Style{Display: DisplayFlex, FlexDirection: DirectionRow}, Children: []*Node{a, b, c}}

	e := NewEngine()
	rects := e.Compute(root, Size{Width: 10, Height: 24})

	for i := 2; i <= 3; i++ {
		if rects[uint64(i+1)].X < rects[uint64(i)].Right() {
			t.Errorf("sibling %d overlaps sibling %d: %+v vs %+v", i+1, i, rects[uint64(i+1)], rects[uint64(i)])
		}
	}
}

func TestCompute_ChildNeverExceedsParentContentBox(t *testing.T) {
	child := leaf(2)
	child.Style.Width = Cells(1000)
	child.Style.Height = Cells(1)
	root := &Node{ID: 1, Style: Style{Display: DisplayFlex}, Children: []*Node{child}}

	e := NewEngine()
	rects := e.Compute(root, Size{Width: 50, Height: 10})

	if rects[2].Right() > rects[1].Right() {
		t.Errorf("child rect %+v exceeds parent rect %+v", rects[2], rects[1])
	}
}

func TestCompute_ZeroViewport(t *testing.T) {
	child := leaf(2)
	root := &Node{ID: 1, Style: Style{Display: DisplayFlex}, Children: []*Node{child}}

	e := NewEngine()
	rects := e.Compute(root, Size{Width: 0, Height: 0})

	if rects[1] != (Rect{0, 0, 0, 0}) {
		t.Errorf("root rect = %+v, want zero rect", rects[1])
	}
}

func TestCompute_DeterministicAcrossCalls(t *testing.T) {
	build := func() *Node {
		a := leaf(2)
		a.Style.Width = Cells(10)
		a.Style.Height = Cells(1)
		return &Node{ID: 1, Style: Style{Display: DisplayFlex}, Children: []*Node{a}}
	}
	e := NewEngine()
	r1 := e.Compute(build(), Size{Width: 80, Height: 24})
	r2 := e.Compute(build(), Size{Width: 80, Height: 24})
	if r1[2] != r2[2] {
		t.Errorf("layout not deterministic: %+v vs %+v", r1[2], r2[2])
	}
}

func TestHitTest_DeepestWins(t *testing.T) {
	child := &Node{ID: 2}
	root := &Node{ID: 1, Children: []*Node{child}}
	rects := map[uint64]Rect{
		1: {X: 0, Y: 0, Width: 10, Height: 10},
		2: {X: 2, Y: 2, Width: 4, Height: 4},
	}
	id, ok := HitTest(root, rects, 3, 3)
	if !ok || id != 2 {
		t.Errorf("HitTest = %d, %v; want 2, true", id, ok)
	}
	id, ok = HitTest(root, rects, 8, 8)
	if !ok || id != 1 {
		t.Errorf("HitTest = %d, %v; want 1, true", id, ok)
	}
	_, ok = HitTest(root, rects, 20, 20)
	if ok {
		t.Errorf("HitTest outside every rect should miss")
	}
}

func TestScrollState_ClampToContentRange(t *testing.T) {
	s := &ScrollState{Content: 100, Viewport: 20}
	s.ScrollBy(1000)
	if s.Offset != 80 {
		t.Errorf("Offset = %v, want 80", s.Offset)
	}
	s.ScrollBy(-1000)
	if s.Offset != 0 {
		t.Errorf("Offset = %v, want 0", s.Offset)
	}
}

func TestScrollState_ContentSmallerThanViewportClampsToZero(t *testing.T) {
	s := &ScrollState{Content: 5, Viewport: 20}
	s.ScrollBy(50)
	if s.Offset != 0 {
		t.Errorf("Offset = %v, want 0 when content < viewport", s.Offset)
	}
}

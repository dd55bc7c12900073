package buffer

import "testing"

func TestSetWideCellWritesContinuation(t *testing.T) {
	b := New(4, 1)
	b.Set(0, 0, Cell{Grapheme: "你", Width: 2})

	head := b.At(0, 0)
	if head.Grapheme != "你" || head.Width != 2 {
		t.Fatalf("head cell = %+v, want wide 你", head)
	}
	cont := b.At(1, 0)
	if !cont.IsContinuation() {
		t.Fatalf("expected continuation cell at (1,0), got %+v", cont)
	}
}

func TestSetOverwritesHalfOfWidePair(t *testing.T) {
	b := New(4, 1)
	b.Set(0, 0, Cell{Grapheme: "你", Width: 2})
	b.Set(1, 0, Cell{Grapheme: "x", Width: 1})

	head := b.At(0, 0)
	if head.Grapheme != " " {
		t.Fatalf("expected head cleared to space, got %+v", head)
	}
	second := b.At(1, 0)
	if second.Grapheme != "x" {
		t.Fatalf("expected x written, got %+v", second)
	}
}

func TestResizePreservesOverlap(t *testing.T) {
	b := New(3, 2)
	b.Set(0, 0, Cell{Grapheme: "a", Width: 1})
	b.Resize(5, 1)

	if b.Width() != 5 || b.Height() != 1 {
		t.Fatalf("resize dims = %dx%d", b.Width(), b.Height())
	}
	if got := b.At(0, 0); got.Grapheme != "a" {
		t.Fatalf("expected preserved cell, got %+v", got)
	}
	if got := b.At(4, 0); got.Grapheme != " " {
		t.Fatalf("expected new cell to be space, got %+v", got)
	}
}

func TestIterYieldsExactlyWidthTimesHeight(t *testing.T) {
	b := New(7, 3)
	count := 0
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			_ = b.At(x, y)
			count++
		}
	}
	if count != 21 {
		t.Fatalf("count = %d, want 21", count)
	}
}

func TestDiffFindsChangedCells(t *testing.T) {
	front := New(3, 1)
	back := New(3, 1)
	back.Set(1, 0, Cell{Grapheme: "x", Width: 1})

	changes := Diff(front, back)
	if len(changes) != 1 {
		t.Fatalf("len(changes) = %d, want 1", len(changes))
	}
	if changes[0].X != 1 || changes[0].Y != 0 {
		t.Fatalf("change position = (%d,%d), want (1,0)", changes[0].X, changes[0].Y)
	}
}

func TestDiffIdempotentOnEqualBuffers(t *testing.T) {
	a := New(4, 2)
	a.Set(2, 1, Cell{Grapheme: "q", Width: 1})
	b := a.Clone()

	if changes := Diff(a, b); len(changes) != 0 {
		t.Fatalf("expected no changes between identical buffers, got %d", len(changes))
	}
}

func TestBatchGroupsConsecutiveSameRowChanges(t *testing.T) {
	changes := []CellChange{
		{X: 0, Y: 0, Cell: Cell{Grapheme: "a", Width: 1}},
		{X: 1, Y: 0, Cell: Cell{Grapheme: "b", Width: 1}},
		{X: 5, Y: 0, Cell: Cell{Grapheme: "c", Width: 1}},
	}
	batches := Batch(changes)
	if len(batches) != 2 {
		t.Fatalf("len(batches) = %d, want 2", len(batches))
	}
	if len(batches[0].Cells) != 2 {
		t.Fatalf("first batch cells = %d, want 2", len(batches[0].Cells))
	}
}

func TestBatchWideGraphemeAdvancesTwoColumns(t *testing.T) {
	changes := []CellChange{
		{X: 0, Y: 0, Cell: Cell{Grapheme: "你", Width: 2}},
		{X: 1, Y: 0, Cell: Cell{Grapheme: "", Width: 0}},
		{X: 2, Y: 0, Cell: Cell{Grapheme: "好", Width: 2}},
	}
	batches := Batch(changes)
	if len(batches) != 1 {
		t.Fatalf("len(batches) = %d, want 1 (wide grapheme should chain)", len(batches))
	}
}

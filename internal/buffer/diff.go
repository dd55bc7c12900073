package buffer

// CellChange is one position where the front and back buffers differ.
type CellChange struct {
	X, Y int
	Cell Cell
}

// DeltaBatch groups consecutive CellChanges in the same row into a single
// cursor-move followed by a run of cells, so the renderer can emit one
// cursor-position sequence per batch instead of one per cell.
type DeltaBatch struct {
	X, Y  int
	Cells []Cell
}

// Diff compares front against back, both assumed to be the same size
// (mismatched sizes are compared over their shared top-left region), and
// returns every position whose cell differs, in row-major order.
// Continuation cells are included in the stream; callers that emit visible
// output (the renderer) must skip them — they produce no characters.
func Diff(front, back *Buffer) []CellChange {
	w := min(front.width, back.width)
	h := min(front.height, back.height)

	var changes []CellChange
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fc := front.At(x, y)
			bc := back.At(x, y)
			if fc.Grapheme != bc.Grapheme || fc.Width != bc.Width || !fc.Style.Equal(bc.Style) {
				changes = append(changes, CellChange{X: x, Y: y, Cell: bc})
			}
		}
	}
	return changes
}

// Batch groups an ordered CellChange stream (as produced by Diff, or any
// stream already sorted row-major then by x) into DeltaBatches. A change
// starts a new batch unless it is on the same row and its x equals the
// previous change's x plus the previous cell's display width, i.e. it is
// the cell immediately following the last one written. The continuation
// cell of a wide cell (one column after its head) joins the head's batch.
func Batch(changes []CellChange) []DeltaBatch {
	var batches []DeltaBatch
	for _, c := range changes {
		if n := len(batches); n > 0 {
			last := &batches[n-1]
			expectedX := last.X
			for _, cell := range last.Cells {
				expectedX += cellAdvance(cell)
			}
			sameRow := c.Y == last.Y
			prev := last.Cells[len(last.Cells)-1]
			trailingHalf := c.Cell.IsContinuation() && prev.Width == 2 && c.X == expectedX-1
			if sameRow && (c.X == expectedX || trailingHalf) {
				last.Cells = append(last.Cells, c.Cell)
				continue
			}
		}
		batches = append(batches, DeltaBatch{X: c.X, Y: c.Y, Cells: []Cell{c.Cell}})
	}
	return batches
}

// cellAdvance returns how many columns a cell occupies for batching
// purposes: continuation cells (width 0) contribute 0, everything else
// contributes its own width (1 or 2).
func cellAdvance(c Cell) int {
	if c.IsContinuation() {
		return 0
	}
	if c.Width == 0 {
		return 1
	}
	return c.Width
}

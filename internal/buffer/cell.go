package buffer

// Cell is a single terminal grid position: a grapheme cluster (possibly
// multi-codepoint), its display width in {0,1,2}, and the Style to paint it
// with. A Cell with width 0 and an empty grapheme is a continuation cell —
// the second column of the wide grapheme immediately to its left.
type Cell struct {
	Grapheme string
	Width    int
	Style    Style
}

// EmptyCell is the default space-filled, unstyled cell used to initialize
// and clear buffer positions.
var EmptyCell = Cell{Grapheme: " ", Width: 1}

// IsContinuation reports whether c is the trailing half of a wide grapheme.
func (c Cell) IsContinuation() bool {
	return c.Width == 0 && c.Grapheme == ""
}

// continuationCell is written into the column following a wide cell.
func continuationCell(style Style) Cell {
	return Cell{Grapheme: "", Width: 0, Style: style}
}

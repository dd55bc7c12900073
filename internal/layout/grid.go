package layout

// trackSizes resolves a grid's track list into concrete cell sizes:
// fixed/percent tracks take their resolved length; `fr` tracks share
// whatever space remains after fixed tracks, proportional to their share
// value, per CSS Grid's fractional unit.
func trackSizes(tracks []Dimension, avail float64, gap float64) []float64 {
	if len(tracks) == 0 {
		return nil
	}
	sizes := make([]float64, len(tracks))
	fixedTotal := 0.0
	frTotal := 0.0
	for i, t := range tracks {
		switch t.Kind {
		case DimFraction:
			frTotal += t.Value
		default:
			if v, ok := resolveLength(t, avail); ok {
				sizes[i] = v
				fixedTotal += v
			}
		}
	}
	gapTotal := gap * float64(maxInt(len(tracks)-1, 0))
	remaining := maxF(0, avail-fixedTotal-gapTotal)
	if frTotal > 0 {
		for i, t := range tracks {
			if t.Kind == DimFraction {
				sizes[i] = remaining * t.Value / frTotal
			}
		}
	}
	return sizes
}

// trackOffsets returns the leading offset of each track given its size and
// a uniform gap between tracks.
func trackOffsets(sizes []float64, gap float64) []float64 {
	offsets := make([]float64, len(sizes))
	cursor := 0.0
	for i, s := range sizes {
		offsets[i] = cursor
		cursor += s + gap
	}
	return offsets
}

// spanRect computes the rect covering grid tracks [start, end) (one-
// indexed, exclusive end) along one axis, given track offsets/sizes and
// gap. A zero placement (not explicitly placed) defaults to the single
// next auto-flow cell, which the caller assigns before calling spanRect.
func spanRect(offsets, sizes []float64, placement GridPlacement, gap float64) (pos, size float64) {
	start := placement.Start - 1
	end := placement.End - 1
	if start < 0 {
		start = 0
	}
	if end <= start {
		end = start + 1
	}
	if end > len(sizes) {
		end = len(sizes)
	}
	if start >= len(offsets) {
		return 0, 0
	}
	pos = offsets[start]
	for i := start; i < end; i++ {
		size += sizes[i]
		if i > start {
			size += gap
		}
	}
	return pos, size
}

// layoutGrid lays out n's children into n's grid-template-rows/columns,
// auto-placing children with no explicit GridRow/GridColumn into
// successive cells in row-major order.
func layoutGrid(n *Node, contentBox floatRect, out map[uint64]floatRect) {
	cols := n.Style.GridTemplateColumns
	rows := n.Style.GridTemplateRows
	if len(cols) == 0 {
		cols = []Dimension{Fraction(1)}
	}
	if len(rows) == 0 {
		rows = []Dimension{Fraction(1)}
	}

	colSizes := trackSizes(cols, contentBox.Width, n.Style.Gap)
	rowSizes := trackSizes(rows, contentBox.Height, n.Style.Gap)
	colOffsets := trackOffsets(colSizes, n.Style.Gap)
	rowOffsets := trackOffsets(rowSizes, n.Style.Gap)

	autoCol, autoRow := 0, 0
	for _, child := range n.Children {
		colPlacement := child.Style.GridColumn
		rowPlacement := child.Style.GridRow
		if colPlacement.Start == 0 {
			colPlacement = GridPlacement{Start: autoCol + 1, End: autoCol + 2}
		}
		if rowPlacement.Start == 0 {
			rowPlacement = GridPlacement{Start: autoRow + 1, End: autoRow + 2}
		}

		x, w := spanRect(colOffsets, colSizes, colPlacement, n.Style.Gap)
		y, h := spanRect(rowOffsets, rowSizes, rowPlacement, n.Style.Gap)
		out[child.ID] = floatRect{X: contentBox.X + x, Y: contentBox.Y + y, Width: w, Height: h}

		autoCol++
		if autoCol >= len(cols) {
			autoCol = 0
			autoRow++
		}
	}
}

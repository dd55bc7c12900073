package layout

// resolveLength resolves a Dimension against an available main-axis
// quantity. Percent resolves as a fraction of avail; fractional ("fr")
// units and auto both return ok=false so the caller falls through to
// measurement or to stretch/fill behavior.
func resolveLength(d Dimension, avail float64) (float64, bool) {
	switch d.Kind {
	case DimCells:
		return d.Value, true
	case DimPercent:
		return avail * d.Value / 100, true
	case DimFraction:
		return 0, false
	}
	return 0, false
}

type axis struct {
	mainIsWidth bool
}

func axisFor(dir Direction) axis {
	return axis{mainIsWidth: dir == DirectionRow}
}

func (a axis) main(s Size) float64 {
	if a.mainIsWidth {
		return s.Width
	}
	return s.Height
}

func (a axis) cross(s Size) float64 {
	if a.mainIsWidth {
		return s.Height
	}
	return s.Width
}

func (a axis) makeSize(mainV, crossV float64) Size {
	if a.mainIsWidth {
		return Size{Width: mainV, Height: crossV}
	}
	return Size{Width: crossV, Height: mainV}
}

func (a axis) mainDim(s Style) Dimension {
	if a.mainIsWidth {
		return s.Width
	}
	return s.Height
}

func (a axis) crossDim(s Style) Dimension {
	if a.mainIsWidth {
		return s.Height
	}
	return s.Width
}

type flexItem struct {
	node      *Node
	basis     float64
	crossSize float64
	grow      float64
	shrink    float64
	final     float64 // resolved main-axis size, after grow/shrink
}

// layoutFlex lays out n's children within contentBox (n's own content box,
// already net of n's padding/border) per the Flexbox algorithm: resolve
// each child's basis, distribute remaining main-axis space via grow or
// shrink, align the cross axis per align-items/align-self, and position
// per justify-content. Wrapping splits children across multiple lines,
// each sized to the tallest (cross-axis) item in it.
func layoutFlex(n *Node, contentBox floatRect, out map[uint64]floatRect, measure func(*Node, float64) Size) {
	ax := axisFor(n.Style.FlexDirection)
	mainAvail := ax.main(Size{Width: contentBox.Width, Height: contentBox.Height})
	crossAvail := ax.cross(Size{Width: contentBox.Width, Height: contentBox.Height})
	gap := n.Style.Gap

	lines := splitLines(n.Children, ax, mainAvail, gap, n.Style.FlexWrap, measure)

	crossCursor := 0.0
	for _, line := range lines {
		items := make([]flexItem, len(line))
		totalBasis := 0.0
		for i, child := range line {
			basis, crossSize := resolveItemBasis(child, ax, mainAvail, crossAvail, measure)
			items[i] = flexItem{
				node:      child,
				basis:     basis,
				crossSize: crossSize,
				grow:      child.Style.FlexGrow,
				shrink:    child.Style.FlexShrink,
				final:     basis,
			}
			totalBasis += basis
		}

		gapTotal := gap * float64(maxInt(len(items)-1, 0))
		free := mainAvail - totalBasis - gapTotal
		distributeFreeSpace(items, free)

		lineCross := 0.0
		for _, it := range items {
			if it.crossSize > lineCross {
				lineCross = it.crossSize
			}
		}
		if n.Style.AlignItems == AlignStretch {
			lineCross = crossAvail
			if len(lines) > 1 {
				lineCross = maxF(lineCross/float64(len(lines)), lineCross)
			}
		}

		positionLine(n, items, ax, contentBox, crossCursor, lineCross, mainAvail, gap, out)
		crossCursor += lineCross + gap
	}
}

func resolveItemBasis(n *Node, ax axis, mainAvail, crossAvail float64, measure func(*Node, float64) Size) (basis, crossSize float64) {
	s := n.Style
	if v, ok := resolveLength(s.FlexBasis, mainAvail); ok {
		basis = v
	} else if v, ok := resolveLength(ax.mainDim(s), mainAvail); ok {
		basis = v
	} else {
		m := measure(n, mainAvail)
		basis = ax.main(m)
	}

	if v, ok := resolveLength(ax.crossDim(s), crossAvail); ok {
		crossSize = v
	} else if s.AlignSelf == AlignStretch {
		crossSize = crossAvail
	} else {
		m := measure(n, mainAvail)
		crossSize = ax.cross(m)
	}

	basis = clampDim(basis, ax.minDim(s, true), ax.maxDim(s, true), mainAvail)
	crossSize = clampDim(crossSize, ax.minDim(s, false), ax.maxDim(s, false), crossAvail)
	return basis, crossSize
}

func (a axis) minDim(s Style, isMain bool) Dimension {
	if isMain == a.mainIsWidth {
		return s.MinWidth
	}
	return s.MinHeight
}

func (a axis) maxDim(s Style, isMain bool) Dimension {
	if isMain == a.mainIsWidth {
		return s.MaxWidth
	}
	return s.MaxHeight
}

func clampDim(v float64, minD, maxD Dimension, avail float64) float64 {
	if mv, ok := resolveLength(minD, avail); ok && v < mv {
		v = mv
	}
	if mv, ok := resolveLength(maxD, avail); ok && v > mv {
		v = mv
	}
	if v < 0 {
		v = 0
	}
	return v
}

func distributeFreeSpace(items []flexItem, free float64) {
	if free > 0 {
		totalGrow := 0.0
		for _, it := range items {
			totalGrow += it.grow
		}
		if totalGrow <= 0 {
			return
		}
		for i := range items {
			items[i].final = items[i].basis + free*items[i].grow/totalGrow
		}
	} else if free < 0 {
		totalShrink := 0.0
		for _, it := range items {
			totalShrink += it.shrink * it.basis
		}
		if totalShrink <= 0 {
			return
		}
		for i := range items {
			items[i].final = maxF(0, items[i].basis+free*(items[i].shrink*items[i].basis)/totalShrink)
		}
	}
}

func positionLine(n *Node, items []flexItem, ax axis, contentBox floatRect, crossCursor, lineCross, mainAvail, gap float64, out map[uint64]floatRect) {
	used := 0.0
	for i, it := range items {
		used += it.final
		if i > 0 {
			used += gap
		}
	}
	free := mainAvail - used

	var mainCursor, between float64
	switch n.Style.JustifyContent {
	case JustifyEnd:
		mainCursor = free
	case JustifyCenter:
		mainCursor = free / 2
	case JustifySpaceBetween:
		if len(items) > 1 {
			between = free / float64(len(items)-1)
		}
	case JustifySpaceAround:
		if len(items) > 0 {
			between = free / float64(len(items))
			mainCursor = between / 2
		}
	}

	for i, it := range items {
		align := n.Style.AlignItems
		if it.node.Style.AlignSelf != AlignStart {
			align = it.node.Style.AlignSelf
		}
		crossPos := crossCursor
		switch align {
		case AlignEnd:
			crossPos = crossCursor + (lineCross - it.crossSize)
		case AlignCenter:
			crossPos = crossCursor + (lineCross-it.crossSize)/2
		case AlignStretch:
			it.crossSize = lineCross
		}

		mainSize := it.final
		crossSize := it.crossSize
		var fr floatRect
		if ax.mainIsWidth {
			fr = floatRect{X: contentBox.X + mainCursor, Y: contentBox.Y + crossPos, Width: mainSize, Height: crossSize}
		} else {
			fr = floatRect{X: contentBox.X + crossPos, Y: contentBox.Y + mainCursor, Width: crossSize, Height: mainSize}
		}
		out[it.node.ID] = fr

		mainCursor += mainSize + gap + between
	}
}

// splitLines partitions children into flex lines, respecting wrap.
func splitLines(children []*Node, ax axis, mainAvail, gap float64, wrap Wrap, measure func(*Node, float64) Size) [][]*Node {
	if wrap == NoWrap || len(children) == 0 {
		return [][]*Node{children}
	}
	var lines [][]*Node
	var current []*Node
	used := 0.0
	for _, child := range children {
		basis, _ := resolveItemBasis(child, ax, mainAvail, mainAvail, measure)
		add := basis
		if len(current) > 0 {
			add += gap
		}
		if len(current) > 0 && used+add > mainAvail {
			lines = append(lines, current)
			current = nil
			used = 0
			add = basis
		}
		current = append(current, child)
		used += add
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}
	return lines
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

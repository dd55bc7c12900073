// Package layout implements Taffy-style Flexbox and Grid computation over
// an integer-cell terminal viewport: a tree of layout nodes keyed by widget
// id, style conversion from the cascade's ComputedStyle, floor/round-
// nearest rounding with a non-overlap invariant, hit testing, and scroll
// region bookkeeping.
package layout

import "github.com/saorsa-labs/saorsa/internal/style"

// Display selects the box model an node's children are laid out with.
type Display int

const (
	DisplayFlex Display = iota
	DisplayGrid
	DisplayNone
)

// Direction is the Flexbox main axis direction.
type Direction int

const (
	DirectionRow Direction = iota
	DirectionColumn
)

// Wrap controls whether a flex container wraps its children onto new lines.
type Wrap int

const (
	NoWrap Wrap = iota
	DoWrap
)

// Justify distributes free space along the main axis.
type Justify int

const (
	JustifyStart Justify = iota
	JustifyEnd
	JustifyCenter
	JustifySpaceBetween
	JustifySpaceAround
)

// Align distributes items along the cross axis.
type Align int

const (
	AlignStart Align = iota
	AlignEnd
	AlignCenter
	AlignStretch
)

// Overflow controls whether a node's content beyond its box is clipped,
// scrollable, or left visible.
type Overflow int

const (
	OverflowVisible Overflow = iota
	OverflowHidden
	OverflowScroll
	OverflowAuto
	OverflowClip
)

// Dimension is a layout length: a fixed cell count, a percentage of the
// parent's corresponding axis, a fractional ("fr") grid/flex share, or
// auto (engine decides from content/free space).
type Dimension struct {
	Kind  DimensionKind
	Value float64
}

type DimensionKind int

const (
	DimAuto DimensionKind = iota
	DimCells
	DimPercent
	DimFraction
)

func Auto() Dimension             { return Dimension{Kind: DimAuto} }
func Cells(n float64) Dimension   { return Dimension{Kind: DimCells, Value: n} }
func Percent(n float64) Dimension { return Dimension{Kind: DimPercent, Value: n} }
func Fraction(n float64) Dimension { return Dimension{Kind: DimFraction, Value: n} }

// Edges holds a per-side quantity (margin, padding, border width).
type Edges struct {
	Top, Right, Bottom, Left float64
}

// Style is the layout-affecting subset of a widget's computed style, after
// conversion from style.ComputedStyle.
type Style struct {
	Display       Display
	FlexDirection Direction
	FlexWrap      Wrap
	FlexGrow      float64
	FlexShrink    float64
	FlexBasis     Dimension
	JustifyContent Justify
	AlignItems    Align
	AlignSelf     Align
	Gap           float64

	Width, Height       Dimension
	MinWidth, MinHeight Dimension
	MaxWidth, MaxHeight Dimension

	Margin, Padding, Border Edges

	OverflowX, OverflowY Overflow

	GridTemplateRows, GridTemplateColumns []Dimension
	GridRow, GridColumn                   GridPlacement
}

// GridPlacement is a one-indexed [start, end) track span; zero means
// "not placed" (auto-flow).
type GridPlacement struct {
	Start, End int
}

// FromComputed converts a cascaded ComputedStyle into a layout Style,
// mapping cell lengths to numeric values, percentages to Percent with the
// same number,
// fractional units through unchanged, and `auto` to the auto dimension,
// per the style-conversion rules.
func FromComputed(cs style.ComputedStyle) Style {
	var s Style
	s.FlexGrow = 0
	s.FlexShrink = 1
	s.FlexBasis = Auto()
	s.Width = Auto()
	s.Height = Auto()
	s.MinWidth = Auto()
	s.MinHeight = Auto()
	s.MaxWidth = Auto()
	s.MaxHeight = Auto()

	if v, ok := cs.Get(style.PropDisplay); ok {
		switch v.Keyword {
		case "grid":
			s.Display = DisplayGrid
		case "none":
			s.Display = DisplayNone
		default:
			s.Display = DisplayFlex
		}
	}
	if v, ok := cs.Get(style.PropFlexDirection); ok && v.Keyword == "column" {
		s.FlexDirection = DirectionColumn
	}
	if v, ok := cs.Get(style.PropFlexWrap); ok && v.Keyword == "wrap" {
		s.FlexWrap = DoWrap
	}
	if v, ok := cs.Get(style.PropFlexGrow); ok {
		s.FlexGrow = v.Number
	}
	if v, ok := cs.Get(style.PropFlexShrink); ok {
		s.FlexShrink = v.Number
	}
	if v, ok := cs.Get(style.PropFlexBasis); ok {
		s.FlexBasis = toDimension(v)
	}
	if v, ok := cs.Get(style.PropJustifyContent); ok {
		s.JustifyContent = toJustify(v.Keyword)
	}
	if v, ok := cs.Get(style.PropAlignItems); ok {
		s.AlignItems = toAlign(v.Keyword)
	}
	if v, ok := cs.Get(style.PropAlignSelf); ok {
		s.AlignSelf = toAlign(v.Keyword)
	}
	if v, ok := cs.Get(style.PropGap); ok {
		s.Gap = v.Number
	}

	if v, ok := cs.Get(style.PropWidth); ok {
		s.Width = toDimension(v)
	}
	if v, ok := cs.Get(style.PropHeight); ok {
		s.Height = toDimension(v)
	}
	if v, ok := cs.Get(style.PropMinWidth); ok {
		s.MinWidth = toDimension(v)
	}
	if v, ok := cs.Get(style.PropMinHeight); ok {
		s.MinHeight = toDimension(v)
	}
	if v, ok := cs.Get(style.PropMaxWidth); ok {
		s.MaxWidth = toDimension(v)
	}
	if v, ok := cs.Get(style.PropMaxHeight); ok {
		s.MaxHeight = toDimension(v)
	}

	s.Margin = Edges{
		Top:    cellsOf(cs, style.PropMarginTop),
		Right:  cellsOf(cs, style.PropMarginRight),
		Bottom: cellsOf(cs, style.PropMarginBottom),
		Left:   cellsOf(cs, style.PropMarginLeft),
	}
	s.Padding = Edges{
		Top:    cellsOf(cs, style.PropPaddingTop),
		Right:  cellsOf(cs, style.PropPaddingRight),
		Bottom: cellsOf(cs, style.PropPaddingBottom),
		Left:   cellsOf(cs, style.PropPaddingLeft),
	}
	// Borders declared as shorthand always expand to one-cell width per
	// side: any declared border side (regardless of its value) occupies
	// exactly one cell.
	s.Border = Edges{
		Top:    borderWidth(cs, style.PropBorderTop),
		Right:  borderWidth(cs, style.PropBorderRight),
		Bottom: borderWidth(cs, style.PropBorderBottom),
		Left:   borderWidth(cs, style.PropBorderLeft),
	}

	s.OverflowX = overflowOf(cs, style.PropOverflowX, cs)
	s.OverflowY = overflowOf(cs, style.PropOverflowY, cs)

	return s
}

func toDimension(v style.Value) Dimension {
	switch v.Kind {
	case style.ValueCells, style.ValueInt, style.ValueFloat:
		return Cells(v.Number)
	case style.ValuePercent:
		return Percent(v.Number)
	case style.ValueFraction:
		return Fraction(v.Number)
	case style.ValueAuto:
		return Auto()
	}
	if v.Keyword == "auto" {
		return Auto()
	}
	return Auto()
}

func cellsOf(cs style.ComputedStyle, p style.Property) float64 {
	if v, ok := cs.Get(p); ok {
		return v.Number
	}
	return 0
}

func borderWidth(cs style.ComputedStyle, p style.Property) float64 {
	if _, ok := cs.Get(p); ok {
		return 1
	}
	return 0
}

func overflowOf(cs style.ComputedStyle, axisProp style.Property, full style.ComputedStyle) Overflow {
	if v, ok := cs.Get(axisProp); ok {
		return toOverflow(v.Keyword)
	}
	if v, ok := full.Get(style.PropOverflow); ok {
		return toOverflow(v.Keyword)
	}
	return OverflowVisible
}

func toOverflow(kw string) Overflow {
	switch kw {
	case "hidden":
		return OverflowHidden
	case "scroll":
		return OverflowScroll
	case "auto":
		return OverflowAuto
	case "clip":
		return OverflowClip
	}
	return OverflowVisible
}

func toJustify(kw string) Justify {
	switch kw {
	case "end", "flex-end":
		return JustifyEnd
	case "center":
		return JustifyCenter
	case "space-between":
		return JustifySpaceBetween
	case "space-around":
		return JustifySpaceAround
	}
	return JustifyStart
}

func toAlign(kw string) Align {
	switch kw {
	case "end", "flex-end":
		return AlignEnd
	case "center":
		return AlignCenter
	case "stretch":
		return AlignStretch
	}
	return AlignStart
}

// Package style implements the TCSS cascade: selector parsing and matching,
// specificity-ordered cascade with !important promotion, a three-layer
// variable environment (local -> theme -> global), inheritance of a fixed
// property subset, a per-widget match cache, and hot reload of the
// stylesheet source.
package style

import "github.com/saorsa-labs/saorsa/internal/buffer"

// Property identifies one cascadable style property. Layout-affecting
// properties never inherit; the Inheritable set below names the ones that
// do (colors, text attributes).
type Property int

const (
	PropDisplay Property = iota
	PropFlexDirection
	PropFlexWrap
	PropFlexGrow
	PropFlexShrink
	PropFlexBasis
	PropJustifyContent
	PropAlignItems
	PropAlignSelf
	PropGap
	PropWidth
	PropHeight
	PropMinWidth
	PropMinHeight
	PropMaxWidth
	PropMaxHeight
	PropMarginTop
	PropMarginRight
	PropMarginBottom
	PropMarginLeft
	PropPaddingTop
	PropPaddingRight
	PropPaddingBottom
	PropPaddingLeft
	PropBorderTop
	PropBorderRight
	PropBorderBottom
	PropBorderLeft
	PropOverflow
	PropOverflowX
	PropOverflowY
	PropGridTemplateRows
	PropGridTemplateColumns
	PropGridRow
	PropGridColumn
	PropColor
	PropBackground
	PropBold
	PropItalic
	PropUnderline
)

// Inheritable lists the properties that, when left undeclared on a widget,
// take the value from the parent's computed style instead of the default.
var Inheritable = map[Property]bool{
	PropColor:     true,
	PropBold:      true,
	PropItalic:    true,
	PropUnderline: true,
}

// ValueKind discriminates the payload carried by a Value.
type ValueKind int

const (
	ValueAuto ValueKind = iota
	ValueCells
	ValuePercent
	ValueFraction // CSS Grid "fr" unit
	ValueInt
	ValueFloat
	ValueColor
	ValueKeyword
	ValueList
)

// Value is a typed cascaded property value. Exactly one of the fields
// matching Kind is meaningful.
type Value struct {
	Kind    ValueKind
	Number  float64
	Keyword string
	Color   buffer.Color
	List    []Value
}

func Auto() Value                 { return Value{Kind: ValueAuto} }
func Cells(n float64) Value       { return Value{Kind: ValueCells, Number: n} }
func Percent(n float64) Value     { return Value{Kind: ValuePercent, Number: n} }
func Fraction(n float64) Value    { return Value{Kind: ValueFraction, Number: n} }
func Int(n int) Value             { return Value{Kind: ValueInt, Number: float64(n)} }
func Float(n float64) Value       { return Value{Kind: ValueFloat, Number: n} }
func ColorValue(c buffer.Color) Value { return Value{Kind: ValueColor, Color: c} }
func Keyword(k string) Value      { return Value{Kind: ValueKeyword, Keyword: k} }
func List(vs ...Value) Value      { return Value{Kind: ValueList, List: vs} }

// ComputedStyle is the result of cascading all matched rules for one widget:
// a mapping from property to its resolved value.
type ComputedStyle map[Property]Value

// Get returns the value for p and whether it was present.
func (cs ComputedStyle) Get(p Property) (Value, bool) {
	v, ok := cs[p]
	return v, ok
}

// Clone returns a shallow copy (values are themselves immutable).
func (cs ComputedStyle) Clone() ComputedStyle {
	out := make(ComputedStyle, len(cs))
	for k, v := range cs {
		out[k] = v
	}
	return out
}

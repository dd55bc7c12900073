// Package buffer implements the retained-mode screen buffer: a 2D grid of
// styled cells and the differential comparison between two frames that the
// renderer turns into ANSI output.
package buffer

// ColorKind distinguishes the representation carried by a Color value.
type ColorKind uint8

const (
	ColorNone ColorKind = iota
	ColorNamed
	ColorIndexed
	ColorRGB
	ColorReset
)

// Color is one of: unset, named (16-entry palette), indexed (0..255), RGB,
// or an explicit reset. Zero value is ColorNone (no color set).
type Color struct {
	Kind  ColorKind
	Named uint8 // 0..15, valid when Kind == ColorNamed
	Index uint8 // 0..255, valid when Kind == ColorIndexed
	R, G, B uint8 // valid when Kind == ColorRGB
}

// Named color indices, matching the classic 16-entry ANSI palette order.
const (
	Black = iota
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
	BrightBlack
	BrightRed
	BrightGreen
	BrightYellow
	BrightBlue
	BrightMagenta
	BrightCyan
	BrightWhite
)

func NamedColor(n uint8) Color { return Color{Kind: ColorNamed, Named: n} }
func IndexedColor(i uint8) Color { return Color{Kind: ColorIndexed, Index: i} }
func RGBColor(r, g, b uint8) Color { return Color{Kind: ColorRGB, R: r, G: g, B: b} }
func ResetColor() Color { return Color{Kind: ColorReset} }

// IsSet reports whether the color carries any value (including reset).
func (c Color) IsSet() bool { return c.Kind != ColorNone }

// Style is the set of visual attributes a Cell may carry. Colors are
// optional; booleans are independent (not mutually exclusive).
type Style struct {
	Fg Color
	Bg Color

	Bold          bool
	Dim           bool
	Italic        bool
	Underline     bool
	Reverse       bool
	Strikethrough bool
}

// Equal reports whether two styles are attribute-for-attribute identical.
func (s Style) Equal(o Style) bool {
	return s.Fg == o.Fg && s.Bg == o.Bg &&
		s.Bold == o.Bold && s.Dim == o.Dim && s.Italic == o.Italic &&
		s.Underline == o.Underline && s.Reverse == o.Reverse && s.Strikethrough == o.Strikethrough
}

// IsZero reports whether the style has no attributes and no colors set.
func (s Style) IsZero() bool {
	return s.Equal(Style{})
}

// Merge returns a copy of s with every non-zero/non-unset field of o applied
// on top. Used when cascading inherited text attributes onto a widget's
// render style.
func (s Style) Merge(o Style) Style {
	out := s
	if o.Fg.IsSet() {
		out.Fg = o.Fg
	}
	if o.Bg.IsSet() {
		out.Bg = o.Bg
	}
	out.Bold = out.Bold || o.Bold
	out.Dim = out.Dim || o.Dim
	out.Italic = out.Italic || o.Italic
	out.Underline = out.Underline || o.Underline
	out.Reverse = out.Reverse || o.Reverse
	out.Strikethrough = out.Strikethrough || o.Strikethrough
	return out
}

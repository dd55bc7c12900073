package widget

import (
	"github.com/mattn/go-runewidth"

	"github.com/saorsa-labs/saorsa/internal/buffer"
	"github.com/saorsa-labs/saorsa/internal/layout"
	"github.com/saorsa-labs/saorsa/internal/style"
)

// Label is a static, non-interactive run of text. Its cell style comes
// entirely from the cascade (PropColor/PropBold/PropItalic/PropUnderline).
type Label struct {
	Text  string
	style buffer.Style
}

// NewLabel creates a Label with the given text.
func NewLabel(text string) *Label { return &Label{Text: text} }

func (l *Label) Render(area layout.Rect, buf *buffer.Buffer) {
	if area.Width == 0 || area.Height == 0 {
		return
	}
	x := area.X
	for _, r := range l.Text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > area.Right() {
			break
		}
		buf.Set(x, area.Y, buffer.Cell{Grapheme: string(r), Width: w, Style: l.style})
		x += w
	}
}

func (l *Label) HandleEvent(Event) EventResult { return Ignored }

func (l *Label) ApplyComputedStyle(cs style.ComputedStyle) {
	l.style = computedToCellStyle(cs)
}

func (l *Label) OnMount()   {}
func (l *Label) OnUnmount() {}

// computedToCellStyle maps the inheritable color/attribute properties onto
// a buffer.Style. Layout-affecting properties are consumed by
// layout.FromComputed instead and never reach here.
func computedToCellStyle(cs style.ComputedStyle) buffer.Style {
	var s buffer.Style
	if v, ok := cs.Get(style.PropColor); ok && v.Kind == style.ValueColor {
		s.Fg = v.Color
	}
	if v, ok := cs.Get(style.PropBackground); ok && v.Kind == style.ValueColor {
		s.Bg = v.Color
	}
	if v, ok := cs.Get(style.PropBold); ok {
		s.Bold = !isFalse(v)
	}
	if v, ok := cs.Get(style.PropItalic); ok {
		s.Italic = !isFalse(v)
	}
	if v, ok := cs.Get(style.PropUnderline); ok {
		s.Underline = !isFalse(v)
	}
	return s
}

func isFalse(v style.Value) bool {
	return v.Kind == style.ValueKeyword && v.Keyword == "false"
}

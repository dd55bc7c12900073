package widget

import (
	"github.com/mattn/go-runewidth"

	"github.com/saorsa-labs/saorsa/internal/buffer"
	"github.com/saorsa-labs/saorsa/internal/layout"
	"github.com/saorsa-labs/saorsa/internal/style"
)

// TextInput is a single-line editable text field: a rune buffer plus a
// cursor position, with insert/delete/cursor-move key handling.
type TextInput struct {
	Placeholder string
	OnSubmit    func(value string)

	runes     []rune
	cursor    int
	cellStyle buffer.Style
}

// NewTextInput creates an empty TextInput.
func NewTextInput() *TextInput { return &TextInput{} }

// Value returns the current text.
func (t *TextInput) Value() string { return string(t.runes) }

// SetValue replaces the text and moves the cursor to its end.
func (t *TextInput) SetValue(s string) {
	t.runes = []rune(s)
	t.cursor = len(t.runes)
}

func (t *TextInput) insertRune(r rune) {
	t.runes = append(t.runes[:t.cursor], append([]rune{r}, t.runes[t.cursor:]...)...)
	t.cursor++
}

func (t *TextInput) deleteBackward() {
	if t.cursor == 0 {
		return
	}
	t.runes = append(t.runes[:t.cursor-1], t.runes[t.cursor:]...)
	t.cursor--
}

func (t *TextInput) deleteForward() {
	if t.cursor >= len(t.runes) {
		return
	}
	t.runes = append(t.runes[:t.cursor], t.runes[t.cursor+1:]...)
}

func (t *TextInput) Render(area layout.Rect, buf *buffer.Buffer) {
	if area.Width == 0 || area.Height == 0 {
		return
	}
	text := t.runes
	shown := t.Placeholder
	usingPlaceholder := len(text) == 0
	x := area.X
	if usingPlaceholder {
		for _, r := range shown {
			w := runewidth.RuneWidth(r)
			if x+w > area.Right() {
				break
			}
			buf.Set(x, area.Y, buffer.Cell{Grapheme: string(r), Width: w, Style: t.cellStyle})
			x += w
		}
		return
	}
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if x+w > area.Right() {
			break
		}
		buf.Set(x, area.Y, buffer.Cell{Grapheme: string(r), Width: w, Style: t.cellStyle})
		x += w
	}
}

func (t *TextInput) HandleEvent(ev Event) EventResult {
	if ev.Kind != EventKey {
		return Ignored
	}
	switch ev.Key.Code {
	case KeyRune:
		t.insertRune(ev.Key.Rune)
		return Consumed
	case KeyBackspace:
		t.deleteBackward()
		return Consumed
	case KeyDelete:
		t.deleteForward()
		return Consumed
	case KeyLeft:
		if t.cursor > 0 {
			t.cursor--
		}
		return Consumed
	case KeyRight:
		if t.cursor < len(t.runes) {
			t.cursor++
		}
		return Consumed
	case KeyHome:
		t.cursor = 0
		return Consumed
	case KeyEnd:
		t.cursor = len(t.runes)
		return Consumed
	case KeyEnter:
		if t.OnSubmit != nil {
			t.OnSubmit(t.Value())
		}
		return Consumed
	}
	return Ignored
}

func (t *TextInput) ApplyComputedStyle(cs style.ComputedStyle) { t.cellStyle = computedToCellStyle(cs) }
func (t *TextInput) OnMount()                                  {}
func (t *TextInput) OnUnmount()                                {}
func (t *TextInput) Focusable() bool                           { return true }

package widget

import (
	"github.com/saorsa-labs/saorsa/internal/buffer"
	"github.com/saorsa-labs/saorsa/internal/layout"
	"github.com/saorsa-labs/saorsa/internal/style"
)

// Button is a focusable, single-line label that invokes OnPress when Enter
// or Space is received while focused.
type Button struct {
	Label     string
	OnPress   func()
	cellStyle buffer.Style
}

// NewButton creates a Button with the given label and press callback.
func NewButton(label string, onPress func()) *Button {
	return &Button{Label: label, OnPress: onPress}
}

func (b *Button) Render(area layout.Rect, buf *buffer.Buffer) {
	l := NewLabel(b.Label)
	l.style = b.cellStyle
	l.Render(area, buf)
}

func (b *Button) HandleEvent(ev Event) EventResult {
	if ev.Kind != EventKey {
		return Ignored
	}
	switch ev.Key.Code {
	case KeyEnter, KeySpace:
		if b.OnPress != nil {
			b.OnPress()
		}
		return Consumed
	}
	return Ignored
}

func (b *Button) ApplyComputedStyle(cs style.ComputedStyle) { b.cellStyle = computedToCellStyle(cs) }
func (b *Button) OnMount()                                  {}
func (b *Button) OnUnmount()                                {}
func (b *Button) Focusable() bool                           { return true }

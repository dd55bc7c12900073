// Package widget defines the retained-mode widget contract and tree node
// shape shared by every concrete widget: identity, attributes the style
// cascade matches against, pseudo-state, and the lifecycle/render/event
// methods the DOM runtime drives.
package widget

import (
	"github.com/saorsa-labs/saorsa/internal/buffer"
	"github.com/saorsa-labs/saorsa/internal/layout"
	"github.com/saorsa-labs/saorsa/internal/style"
)

// EventResult reports whether a widget consumed an event.
type EventResult int

const (
	Ignored EventResult = iota
	Consumed
)

// Widget is the capability contract every concrete widget implements. Pure
// display widgets only need Render to do anything; interactive widgets
// also meaningfully implement HandleEvent.
type Widget interface {
	// Render paints the widget's content into buf within area.
	Render(area layout.Rect, buf *buffer.Buffer)
	// HandleEvent processes a forwarded input event.
	HandleEvent(ev Event) EventResult
	// ApplyComputedStyle receives the widget's freshly cascaded style
	// each time styles are recomputed.
	ApplyComputedStyle(cs style.ComputedStyle)
	// OnMount and OnUnmount fire during subtree attach/detach, in
	// pre-order over the affected subtree.
	OnMount()
	OnUnmount()
}

// Focusable is implemented by widgets that participate in the Tab/Shift-Tab
// focus ring.
type Focusable interface {
	Widget
	Focusable() bool
}

// Event is the minimal terminal input event a widget may receive; key,
// mouse, and resize fields are carried directly from internal/dom's
// dispatcher, with only the field matching Kind populated.
type Event struct {
	Kind   EventKind
	Key    KeyEvent
	Mouse  MouseEvent
	Resize ResizeEvent
}

// ResizeEvent is the new terminal viewport size in cells.
type ResizeEvent struct {
	Width, Height int
}

type EventKind int

const (
	EventKey EventKind = iota
	EventMouse
	EventResize
)

// KeyEvent mirrors the (KeyCode, Modifiers) chord shape used for key
// bindings throughout the runtime.
type KeyEvent struct {
	Code      KeyCode
	Rune      rune // valid when Code == KeyRune
	Modifiers Modifiers
}

type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyEsc
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeySpace
)

// Modifiers is a bitset of held modifier keys.
type Modifiers uint8

const (
	ModNone  Modifiers = 0
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

func (m Modifiers) Has(f Modifiers) bool { return m&f != 0 }

// MouseEventKind distinguishes press/release/motion.
type MouseEventKind int

const (
	MousePress MouseEventKind = iota
	MouseRelease
	MouseMotion
)

// MouseEvent is a terminal mouse event in cell coordinates.
type MouseEvent struct {
	Kind MouseEventKind
	X, Y int
}

package widget

import (
	"github.com/mattn/go-runewidth"

	"github.com/saorsa-labs/saorsa/internal/buffer"
	"github.com/saorsa-labs/saorsa/internal/layout"
	"github.com/saorsa-labs/saorsa/internal/style"
)

// SelectList is a keyboard-navigable list widget: items of type T rendered
// through RenderItem, with selection highlighting, vertical scrolling, and
// an OnSelect callback fired on Enter.
type SelectList[T any] struct {
	Items      []T
	RenderItem func(item T) string
	OnSelect   func(item T)

	selected     int
	scrollOffset int

	itemStyle     buffer.Style
	selectedStyle buffer.Style
}

// NewSelectList creates a SelectList over the given items.
func NewSelectList[T any](items []T) *SelectList[T] {
	return &SelectList[T]{
		Items:      items,
		RenderItem: func(T) string { return "???" },
	}
}

// SetItems replaces all items and resets selection/scroll to the top.
func (l *SelectList[T]) SetItems(items []T) {
	l.Items = items
	l.selected = 0
	l.scrollOffset = 0
}

// Selected returns the currently selected index.
func (l *SelectList[T]) Selected() int { return l.selected }

// SetSelected sets the selected index, clamped to the valid range.
func (l *SelectList[T]) SetSelected(idx int) {
	if len(l.Items) == 0 {
		l.selected = 0
		return
	}
	if idx > len(l.Items)-1 {
		idx = len(l.Items) - 1
	}
	if idx < 0 {
		idx = 0
	}
	l.selected = idx
}

// SelectedItem returns the currently selected item, if any.
func (l *SelectList[T]) SelectedItem() (T, bool) {
	var zero T
	if l.selected < 0 || l.selected >= len(l.Items) {
		return zero, false
	}
	return l.Items[l.selected], true
}

func (l *SelectList[T]) moveSelection(delta int) {
	if len(l.Items) == 0 {
		return
	}
	maxIdx := len(l.Items) - 1
	next := l.selected + delta
	if next < 0 {
		next = 0
	}
	if next > maxIdx {
		next = maxIdx
	}
	l.selected = next
}

func (l *SelectList[T]) ensureSelectedVisible(visibleHeight int) {
	if visibleHeight == 0 {
		return
	}
	if l.selected < l.scrollOffset {
		l.scrollOffset = l.selected
	}
	if l.selected >= l.scrollOffset+visibleHeight {
		l.scrollOffset = l.selected - (visibleHeight - 1)
		if l.scrollOffset < 0 {
			l.scrollOffset = 0
		}
	}
}

func (l *SelectList[T]) Render(area layout.Rect, buf *buffer.Buffer) {
	if area.Width == 0 || area.Height == 0 {
		return
	}
	height := area.Height
	width := area.Width

	maxOffset := len(l.Items) - height
	if maxOffset < 0 {
		maxOffset = 0
	}
	scroll := l.scrollOffset
	if scroll > maxOffset {
		scroll = maxOffset
	}
	visibleEnd := scroll + height
	if visibleEnd > len(l.Items) {
		visibleEnd = len(l.Items)
	}

	for row, itemIdx := 0, scroll; itemIdx < visibleEnd; row, itemIdx = row+1, itemIdx+1 {
		y := area.Y + row
		item := l.Items[itemIdx]
		isSelected := itemIdx == l.selected
		st := l.itemStyle
		if isSelected {
			st = l.selectedStyle
			for col := 0; col < width; col++ {
				buf.Set(area.X+col, y, buffer.Cell{Grapheme: " ", Width: 1, Style: st})
			}
		}

		text := l.RenderItem(item)
		col := 0
		for _, r := range text {
			if col >= width {
				break
			}
			w := runewidth.RuneWidth(r)
			if col+w > width {
				break
			}
			buf.Set(area.X+col, y, buffer.Cell{Grapheme: string(r), Width: w, Style: st})
			col += w
		}
	}
}

func (l *SelectList[T]) HandleEvent(ev Event) EventResult {
	if ev.Kind != EventKey {
		return Ignored
	}
	const page = 20
	switch ev.Key.Code {
	case KeyUp:
		if l.selected > 0 {
			l.selected--
			l.ensureSelectedVisible(page)
		}
		return Consumed
	case KeyDown:
		if len(l.Items) > 0 && l.selected < len(l.Items)-1 {
			l.selected++
			l.ensureSelectedVisible(page)
		}
		return Consumed
	case KeyPageUp:
		l.moveSelection(-page)
		l.ensureSelectedVisible(page)
		return Consumed
	case KeyPageDown:
		l.moveSelection(page)
		l.ensureSelectedVisible(page)
		return Consumed
	case KeyHome:
		l.selected = 0
		l.scrollOffset = 0
		return Consumed
	case KeyEnd:
		if len(l.Items) > 0 {
			l.selected = len(l.Items) - 1
			l.ensureSelectedVisible(page)
		}
		return Consumed
	case KeyEnter:
		if item, ok := l.SelectedItem(); ok && l.OnSelect != nil {
			l.OnSelect(item)
		}
		return Consumed
	}
	return Ignored
}

func (l *SelectList[T]) ApplyComputedStyle(cs style.ComputedStyle) {
	l.itemStyle = computedToCellStyle(cs)
	l.selectedStyle = l.itemStyle
	l.selectedStyle.Reverse = true
}

func (l *SelectList[T]) OnMount()        {}
func (l *SelectList[T]) OnUnmount()      {}
func (l *SelectList[T]) Focusable() bool { return true }

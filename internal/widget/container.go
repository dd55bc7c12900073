package widget

import (
	"github.com/saorsa-labs/saorsa/internal/buffer"
	"github.com/saorsa-labs/saorsa/internal/layout"
	"github.com/saorsa-labs/saorsa/internal/style"
)

// Container is a non-leaf widget with no content of its own: a pure layout
// box that exists to host children in the DOM tree. It paints its
// background style, if any, and ignores all input.
type Container struct {
	cellStyle buffer.Style
}

// NewContainer creates an empty Container.
func NewContainer() *Container { return &Container{} }

func (c *Container) Render(area layout.Rect, buf *buffer.Buffer) {
	if !c.cellStyle.Bg.IsSet() || area.Width == 0 || area.Height == 0 {
		return
	}
	for y := area.Y; y < area.Bottom(); y++ {
		for x := area.X; x < area.Right(); x++ {
			buf.Set(x, y, buffer.Cell{Grapheme: " ", Width: 1, Style: c.cellStyle})
		}
	}
}

func (c *Container) HandleEvent(Event) EventResult { return Ignored }

func (c *Container) ApplyComputedStyle(cs style.ComputedStyle) {
	c.cellStyle = computedToCellStyle(cs)
}

func (c *Container) OnMount()   {}
func (c *Container) OnUnmount() {}

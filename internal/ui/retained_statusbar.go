package ui

import (
	"io"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/saorsa-labs/saorsa/internal/dom"
	"github.com/saorsa-labs/saorsa/internal/reactive"
	"github.com/saorsa-labs/saorsa/internal/style"
	"github.com/saorsa-labs/saorsa/internal/widget"
)

// statusBarStylesheet lays the bar out as a single flex row with the left
// and right segments pushed to opposite ends, the way the status line's two
// halves (spinner vs. provider/usage) have always been positioned — but
// here the gap between them is a real flexbox computation instead of a
// manual width subtraction.
const statusBarStylesheet = `
.statusbar {
	display: flex;
	flex-direction: row;
	justify-content: space-between;
	width: 100%;
	height: 1;
}
`

// retainedStatusBar drives the persistent status line through the
// retained-mode pipeline: a two-node widget tree (left/right Label under a
// flex Container), styled by a parsed stylesheet and positioned by the
// layout engine, repainted through a Runtime each time its signals change.
// model.go only ever sees the resulting plain string; it never touches
// dom/widget/layout/style/buffer/render itself.
type retainedStatusBar struct {
	scope *reactive.Scope
	left  *reactive.Signal[string]
	right *reactive.Signal[string]

	rt        *dom.Runtime
	leftNode  *widget.Node
	rightNode *widget.Node
	leftW     *widget.Label
	rightW    *widget.Label
}

// newRetainedStatusBar builds the widget tree and runtime for a bar width
// cells wide. width may be updated later via SetWidth as the terminal
// resizes.
func newRetainedStatusBar(width int) *retainedStatusBar {
	if width < 1 {
		width = 1
	}

	sheet, err := style.ParseStylesheet(statusBarStylesheet)
	if err != nil {
		// The stylesheet above is a fixed constant; a parse failure here
		// means the constant itself is broken, not bad input.
		panic("ui: built-in status bar stylesheet failed to parse: " + err.Error())
	}

	leftW := widget.NewLabel("")
	rightW := widget.NewLabel("")

	root := dom.NewDom("Container", widget.NewContainer())
	root.Root().Classes = []string{"statusbar"}

	leftNode := root.NewNode("Label", leftW)
	rightNode := root.NewNode("Label", rightW)
	_ = root.Mount(root.Root(), leftNode)
	_ = root.Mount(root.Root(), rightNode)

	rt := dom.NewRuntime(root, sheet, width, 1)

	sb := &retainedStatusBar{
		scope:     reactive.NewScope(),
		left:      reactive.NewSignal(""),
		right:     reactive.NewSignal(""),
		rt:        rt,
		leftNode:  leftNode,
		rightNode: rightNode,
		leftW:     leftW,
		rightW:    rightW,
	}

	reactive.NewEffect(sb.scope, func() {
		sb.leftW.Text = placeholderRun(lipgloss.Width(sb.left.Get()))
		sb.rightW.Text = placeholderRun(lipgloss.Width(sb.right.Get()))
		sb.rt.RequestRender()
	})

	return sb
}

// placeholderRun returns a run of n filler cells. The retained tree never
// paints the real (already lipgloss-styled) text itself — Label.Render
// walks runes one at a time and knows nothing about ANSI escapes, so
// feeding it pre-colored strings would corrupt both measurement and output.
// Instead the filler stands in for width only; Render below splices the
// real, styled text back in at the x-offset the layout engine computed.
func placeholderRun(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("█", n)
}

// SetWidth resizes the bar's viewport, forcing the next Render to recompute
// layout against the new width.
func (sb *retainedStatusBar) SetWidth(width int) {
	if width < 1 {
		width = 1
	}
	if sb.rt.Width() == width {
		return
	}
	sb.rt.HandleResize(width, 1)
}

// Render pushes left/right through the reactive signals, runs one frame of
// the retained pipeline to learn where the layout engine placed the right
// segment, then composes the final line using the real (styled) left and
// right strings at that offset. The retained render output itself is
// discarded; only its layout decision is used.
func (sb *retainedStatusBar) Render(left, right string) string {
	sb.left.Set(left)
	sb.right.Set(right)

	if _, err := sb.rt.RenderIfNeeded(io.Discard); err != nil {
		// Fall back to the old manual placement; a render failure here
		// must never take down the status line.
		return manualStatusLine(left, right, sb.rt.Width())
	}

	width := sb.rt.Width()
	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)

	rightX := width - rightWidth
	if rect, ok := sb.rt.RectOf(sb.rightNode.ID); ok {
		rightX = rect.X
	}

	gap := rightX - leftWidth
	if gap < 1 {
		gap = 1
	}

	line := left + strings.Repeat(" ", gap) + right
	return line
}

func manualStatusLine(left, right string, width int) string {
	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	gap := width - leftWidth - rightWidth
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

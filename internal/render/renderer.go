package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/saorsa-labs/saorsa/internal/buffer"
)

const (
	beginSyncOutput = "\x1b[?2026h"
	endSyncOutput   = "\x1b[?2026l"
	cursorHide      = "\x1b[?25l"
	cursorShow      = "\x1b[?25h"
)

// Options configures one Renderer instance.
type Options struct {
	Capability Capability
	// Synchronized wraps each frame in begin/end-synchronized-output
	// sequences when the terminal supports them.
	Synchronized bool
	// Optimized hides the cursor for the duration of the frame and shows it
	// again afterwards (reduces visible cursor jitter during bulk writes).
	Optimized bool
}

// Renderer converts buffer diffs to ANSI bytes for one terminal.
type Renderer struct {
	opts Options
	dg   *downgrader
	// cursorX/cursorY track the renderer's belief about terminal cursor
	// position between Render calls, so a sequence of frames need not
	// reposition the cursor when consecutive batches are already adjacent.
	cursorX, cursorY int
	cursorValid      bool
}

// New creates a Renderer. If the NO_COLOR environment variable is present,
// capability is forced to Monochrome regardless of opts.Capability.
func New(opts Options) *Renderer {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		opts.Capability = Monochrome
	}
	return &Renderer{opts: opts, dg: newDowngrader(opts.Capability)}
}

// Render produces the ANSI byte sequence that transforms the terminal's
// current displayed state (assumed to equal front) into back, given the
// ordered diff between them. Changes must be in row-major order (as
// produced by buffer.Diff); continuation cells are skipped since they
// produce no output of their own — the wide cell to their left already
// advanced the cursor two columns.
func (r *Renderer) Render(changes []buffer.CellChange) []byte {
	var sb strings.Builder

	if r.opts.Optimized {
		sb.WriteString(cursorHide)
	}
	if r.opts.Synchronized {
		sb.WriteString(beginSyncOutput)
	}

	batches := buffer.Batch(changes)

	prevStyle := buffer.Style{}
	anyStyled := false

	for _, batch := range batches {
		if !r.cursorValid || r.cursorX != batch.X || r.cursorY != batch.Y {
			sb.WriteString(fmt.Sprintf("\x1b[%d;%dH", batch.Y+1, batch.X+1))
		}
		x := batch.X
		for _, cell := range batch.Cells {
			downgraded := r.downgradeStyle(cell.Style)
			if codes := sgrCodes(prevStyle, downgraded); len(codes) > 0 {
				sb.WriteString(sgrSequence(codes))
			}
			if !downgraded.IsZero() {
				anyStyled = true
			}
			prevStyle = downgraded
			sb.WriteString(cell.Grapheme)
			x += advance(cell)
		}
		r.cursorX, r.cursorY = x, batch.Y
		r.cursorValid = true
	}

	if anyStyled {
		sb.WriteString(sgrSequence([]string{"0"}))
	}

	if r.opts.Synchronized {
		sb.WriteString(endSyncOutput)
	}
	if r.opts.Optimized {
		sb.WriteString(cursorShow)
	}

	return []byte(sb.String())
}

// InvalidateCursor forces the next Render call to emit an absolute cursor
// position instead of assuming continuity (e.g. after an external write, a
// resize, or at the start of a new frame when a previous render errored).
func (r *Renderer) InvalidateCursor() {
	r.cursorValid = false
}

func (r *Renderer) downgradeStyle(s buffer.Style) buffer.Style {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		if s.Fg.IsSet() {
			s.Fg = buffer.ResetColor()
		}
		if s.Bg.IsSet() {
			s.Bg = buffer.ResetColor()
		}
		return s
	}
	s.Fg = r.dg.Downgrade(s.Fg)
	s.Bg = r.dg.Downgrade(s.Bg)
	return s
}

func advance(c buffer.Cell) int {
	if c.IsContinuation() {
		return 0
	}
	if c.Width == 0 {
		return 1
	}
	return c.Width
}

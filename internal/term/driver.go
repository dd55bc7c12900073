// Package term owns exclusive access to the controlling terminal: raw mode,
// the alternate screen, mouse reporting, and resize notification. Mode
// transitions are scoped so that a panic or early return still restores
// cooked mode via Restore.
package term

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	xterm "github.com/charmbracelet/x/term"
	"golang.org/x/term"

	"github.com/saorsa-labs/saorsa/internal/render"
)

const (
	enterAltScreen  = "\x1b[?1049h"
	exitAltScreen   = "\x1b[?1049l"
	enableMouse     = "\x1b[?1000h\x1b[?1006h"
	disableMouse    = "\x1b[?1000l\x1b[?1006l"
)

// Driver owns the terminal mode stack. Enter pushes raw mode + alt screen
// (+ mouse, if requested); Restore pops them in reverse order. Driver is not
// safe for concurrent use from multiple goroutines except ResizeEvents,
// which may be read from a separate goroutine.
type Driver struct {
	in  *os.File
	out io.Writer

	mu         sync.Mutex
	entered    bool
	mouse      bool
	oldState   *term.State

	resizeCh chan Size
	sigCh    chan os.Signal
}

// Size is a terminal dimension in cells.
type Size struct {
	Width, Height int
}

// New creates a Driver bound to stdin/stdout.
func New() *Driver {
	return &Driver{in: os.Stdin, out: os.Stdout, resizeCh: make(chan Size, 1)}
}

// Enter puts the terminal into raw mode and switches to the alternate
// screen. If mouse is true, mouse reporting (SGR extended mode) is also
// enabled. Enter is idempotent; calling it twice without an intervening
// Restore is a no-op.
func (d *Driver) Enter(mouse bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.entered {
		return nil
	}

	fd := int(d.in.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	d.oldState = state
	d.entered = true
	d.mouse = mouse

	fmt.Fprint(d.out, enterAltScreen)
	if mouse {
		fmt.Fprint(d.out, enableMouse)
	}

	d.watchResize()
	return nil
}

// Restore reverses Enter in opposite order: mouse reporting off, leave the
// alternate screen, then restore cooked terminal mode. Safe to call even if
// Enter was never called or already restored (both are no-ops then). Always
// called from a deferred panic-safe path by the caller.
func (d *Driver) Restore() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.entered {
		return nil
	}

	if d.mouse {
		fmt.Fprint(d.out, disableMouse)
	}
	fmt.Fprint(d.out, exitAltScreen)

	fd := int(d.in.Fd())
	err := term.Restore(fd, d.oldState)
	d.entered = false

	if d.sigCh != nil {
		signal.Stop(d.sigCh)
	}
	return err
}

// Size returns the current terminal dimensions in cells.
func (d *Driver) Size() (Size, error) {
	w, h, err := xterm.GetSize(int(d.out.(*os.File).Fd()))
	if err != nil {
		return Size{}, err
	}
	return Size{Width: w, Height: h}, nil
}

// Resize returns a channel that receives a Size every time the terminal is
// resized (SIGWINCH on unix). The channel is closed when Restore is called.
func (d *Driver) Resize() <-chan Size { return d.resizeCh }

func (d *Driver) watchResize() {
	d.sigCh = make(chan os.Signal, 1)
	signal.Notify(d.sigCh, syscall.SIGWINCH)
	go func() {
		for range d.sigCh {
			if sz, err := d.Size(); err == nil {
				select {
				case d.resizeCh <- sz:
				default:
				}
			}
		}
	}()
}

// DetectCapability reports the color capability of the controlling
// terminal, used to configure render.Renderer.
func (d *Driver) DetectCapability() render.Capability {
	if f, ok := d.out.(*os.File); ok {
		return render.DetectCapability(f.Fd())
	}
	return render.Monochrome
}

// IsTTY reports whether stdout is a terminal. Interactive mode refuses to
// start (per the External Interfaces contract) when it is not.
func IsTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

package dom

import (
	"bytes"
	"testing"

	"github.com/saorsa-labs/saorsa/internal/style"
	"github.com/saorsa-labs/saorsa/internal/widget"
)

func newTestRuntime(t *testing.T) (*Runtime, *widget.Node) {
	t.Helper()
	d := NewDom("root", widget.NewContainer())
	input := d.NewNode("input", widget.NewTextInput())
	if err := d.Mount(d.Root(), input); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	rt := NewRuntime(d, &style.Stylesheet{RootVars: map[string]string{}}, 40, 10)
	return rt, input
}

func TestRuntime_RenderFrameProducesOutputAndClearsDirty(t *testing.T) {
	rt, _ := newTestRuntime(t)
	var buf bytes.Buffer
	if err := rt.RenderFrame(&buf); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected RenderFrame to write output")
	}
	if rt.dirty {
		t.Fatalf("expected dirty to be cleared after RenderFrame")
	}
	if _, err := rt.RenderIfNeeded(&buf); err != nil {
		t.Fatalf("RenderIfNeeded: %v", err)
	}
}

func TestRuntime_RenderIfNeededNoOpWhenClean(t *testing.T) {
	rt, _ := newTestRuntime(t)
	var buf bytes.Buffer
	if err := rt.RenderFrame(&buf); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	rendered, err := rt.RenderIfNeeded(&buf)
	if err != nil {
		t.Fatalf("RenderIfNeeded: %v", err)
	}
	if rendered {
		t.Fatalf("expected RenderIfNeeded to be a no-op when not dirty")
	}
}

func TestRuntime_TabCyclesFocus(t *testing.T) {
	rt, input := newTestRuntime(t)
	res, err := rt.HandleEvent(widget.Event{Kind: widget.EventKey, Key: widget.KeyEvent{Code: widget.KeyTab}})
	if err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if res != widget.Consumed {
		t.Fatalf("expected Tab to be consumed by focus cycling")
	}
	focused, ok := rt.focus.Focused()
	if !ok || focused != input.ID {
		t.Fatalf("expected focus on input node %d, got %d (ok=%v)", input.ID, focused, ok)
	}
}

func TestRuntime_KeyBindingTakesPriorityOverFocusedWidget(t *testing.T) {
	rt, _ := newTestRuntime(t)
	invoked := false
	rt.RegisterAction("quit", func(rt *Runtime) (widget.EventResult, error) {
		invoked = true
		return widget.Consumed, nil
	})
	rt.BindKey(widget.KeyEvent{Code: widget.KeyEsc}, "quit")

	res, err := rt.HandleEvent(widget.Event{Kind: widget.EventKey, Key: widget.KeyEvent{Code: widget.KeyEsc}})
	if err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if !invoked {
		t.Fatalf("expected bound action to be invoked")
	}
	if res != widget.Consumed {
		t.Fatalf("expected key-binding dispatch to report Consumed")
	}
}

func TestRuntime_UnboundKeyFallsThroughToFocusedWidget(t *testing.T) {
	rt, input := newTestRuntime(t)
	rt.focus.SetFocus(input.ID)

	res, err := rt.HandleEvent(widget.Event{
		Kind: widget.EventKey,
		Key:  widget.KeyEvent{Code: widget.KeyRune, Rune: 'x'},
	})
	if err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if res != widget.Consumed {
		t.Fatalf("expected the focused TextInput to consume a plain rune key")
	}
	if ti := input.Widget.(*widget.TextInput); ti.Value() != "x" {
		t.Fatalf("Value() = %q, want %q", ti.Value(), "x")
	}
}

func TestRuntime_ResizeUpdatesDimensionsAndRequestsRender(t *testing.T) {
	rt, _ := newTestRuntime(t)
	var buf bytes.Buffer
	if err := rt.RenderFrame(&buf); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	res, err := rt.HandleEvent(widget.Event{Kind: widget.EventResize, Resize: widget.ResizeEvent{Width: 80, Height: 24}})
	if err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if res != widget.Consumed {
		t.Fatalf("expected resize event to be consumed")
	}
	if rt.width != 80 || rt.height != 24 {
		t.Fatalf("expected runtime size to be updated to 80x24, got %dx%d", rt.width, rt.height)
	}
	if !rt.dirty {
		t.Fatalf("expected resize to mark the runtime dirty")
	}
}

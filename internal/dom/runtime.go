package dom

import (
	"fmt"
	"io"

	"github.com/saorsa-labs/saorsa/internal/buffer"
	"github.com/saorsa-labs/saorsa/internal/layout"
	"github.com/saorsa-labs/saorsa/internal/render"
	"github.com/saorsa-labs/saorsa/internal/style"
	"github.com/saorsa-labs/saorsa/internal/widget"
)

// Action is an application-level handler invoked by a key binding. It
// receives the Runtime so it can mutate the DOM, request a render, or
// dispatch further.
type Action func(rt *Runtime) (widget.EventResult, error)

type keyBinding struct {
	key    widget.KeyEvent
	action string
}

// Runtime integrates a Dom with the style cascade, layout engine, and
// renderer: it owns the per-frame style/layout computation, key-binding
// dispatch, focus cycling, and the diff-and-emit render cycle.
//
// Unlike an incremental layout engine that tracks add/remove/update-style
// calls against a persistent tree, layout.Engine recomputes the whole
// layout.Node tree from the current widget tree every frame, so Runtime has
// no analogue of ensure_layout_nodes/sync_layout_edges bookkeeping: ComputeLayout
// simply rebuilds the tree and calls Engine.Compute.
type Runtime struct {
	dom   *Dom
	focus *FocusRing

	sheet *style.Stylesheet
	vars  *style.VariableEnv
	cache *style.MatchCache
	theme *style.ThemeManager

	actions  map[string]Action
	bindings []keyBinding

	engine   *layout.Engine
	rects    map[uint64]layout.Rect
	order    []uint64
	computed map[uint64]style.ComputedStyle

	renderer      *render.Renderer
	front, back   *buffer.Buffer
	width, height int

	dirty        bool
	lastFocused  uint64
	hasLastFocus bool
}

// NewRuntime creates a Runtime over dom using sheet as the initial
// stylesheet, sized to width x height cells.
func NewRuntime(dom *Dom, sheet *style.Stylesheet, width, height int) *Runtime {
	rt := &Runtime{
		dom:      dom,
		focus:    newFocusRing(dom),
		sheet:    sheet,
		vars:     style.NewVariableEnv(),
		cache:    style.NewMatchCache(),
		theme:    style.NewThemeManager(),
		actions:  map[string]Action{},
		engine:   layout.NewEngine(),
		rects:    map[uint64]layout.Rect{},
		computed: map[uint64]style.ComputedStyle{},
		renderer: render.New(render.Options{Capability: render.TrueColor, Synchronized: true, Optimized: true}),
		width:    width,
		height:   height,
		dirty:    true,
	}
	rt.vars.Global = copyVars(sheet.RootVars)
	rt.front = buffer.New(width, height)
	rt.back = buffer.New(width, height)
	rt.init()
	return rt
}

func copyVars(m map[string]string) map[string]string {
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// Dom returns the underlying Dom.
func (rt *Runtime) Dom() *Dom { return rt.dom }

// FrontBuffer returns the last-painted cell buffer. RenderFrame/RenderIfNeeded
// write ANSI deltas for a direct terminal writer; a caller embedding Runtime
// inside another renderer (e.g. a bubbletea View that wants plain styled
// text, not a raw escape-sequence stream) reads cells back from here instead.
func (rt *Runtime) FrontBuffer() *buffer.Buffer { return rt.front }

// Width and Height return the runtime's current viewport size in cells.
func (rt *Runtime) Width() int  { return rt.width }
func (rt *Runtime) Height() int { return rt.height }

// RectOf returns the last computed layout rect for id, if layout has run.
func (rt *Runtime) RectOf(id uint64) (layout.Rect, bool) {
	r, ok := rt.rects[id]
	return r, ok
}

// RegisterAction registers a named action, replacing any handler already
// registered under the same name.
func (rt *Runtime) RegisterAction(name string, action Action) {
	rt.actions[name] = action
}

// BindKey binds a key chord to a previously- or later-registered action
// name. If multiple bindings match the same chord, the first one
// registered wins.
func (rt *Runtime) BindKey(key widget.KeyEvent, action string) {
	rt.bindings = append(rt.bindings, keyBinding{key: key, action: action})
}

func (rt *Runtime) lookupBinding(key widget.KeyEvent) (string, bool) {
	for _, b := range rt.bindings {
		if b.key.Code == key.Code && b.key.Modifiers == key.Modifiers &&
			(b.key.Code != widget.KeyRune || b.key.Rune == key.Rune) {
			return b.action, true
		}
	}
	return "", false
}

// Mount attaches child to parent, runs its mount lifecycle, and
// invalidates the match cache for parent's subtree (selectors like
// `:nth-child` or descendant combinators rooted above child may now match
// differently).
func (rt *Runtime) Mount(parent, child *widget.Node) error {
	if err := rt.dom.Mount(parent, child); err != nil {
		return err
	}
	rt.invalidateSubtree(parent)
	rt.dirty = true
	return nil
}

// RemoveSubtree detaches node, running its unmount lifecycle first, and
// invalidates the match cache for the (former) parent's subtree.
func (rt *Runtime) RemoveSubtree(node *widget.Node) error {
	parent := node.Parent()
	if err := rt.dom.RemoveSubtree(node); err != nil {
		return err
	}
	delete(rt.rects, node.ID)
	if parent != nil {
		rt.invalidateSubtree(parent)
	} else {
		rt.cache.InvalidateAll()
	}
	rt.dirty = true
	return nil
}

func (rt *Runtime) invalidateSubtree(n *widget.Node) {
	for _, child := range subtreePreOrder(n) {
		rt.cache.Invalidate(child.ID)
	}
}

// RequestRender marks the runtime dirty so the next RenderIfNeeded call
// produces a frame.
func (rt *Runtime) RequestRender() { rt.dirty = true }

// SetActiveTheme switches the active theme by name. An unknown theme name
// is ignored (leaving the previous theme layer in effect), matching
// ThemeManager.SetActive's own error behavior. The actual variable-layer
// swap and cache invalidation happen via the OnChange subscription wired
// in init, so this just forwards to the manager.
func (rt *Runtime) SetActiveTheme(name string) {
	_ = rt.theme.SetActive(name)
}

// ClearActiveTheme resets the variable environment's theme layer to empty
// without requiring a registered theme name.
func (rt *Runtime) ClearActiveTheme() {
	rt.vars.SetTheme(map[string]string{})
	rt.cache.InvalidateAll()
	rt.dirty = true
}

// Theme returns the runtime's ThemeManager, for registering themes before
// activating one with SetActiveTheme.
func (rt *Runtime) Theme() *style.ThemeManager { return rt.theme }

func (rt *Runtime) init() {
	rt.theme.OnChange(func(vars map[string]string) {
		rt.vars.SetTheme(copyVars(vars))
		rt.cache.InvalidateAll()
		rt.dirty = true
	})
}

// HandleEvent dispatches an input event: key bindings to registered
// actions, Tab/Shift+Tab to focus cycling, mouse press to click-to-focus,
// then anything unconsumed to the focused widget. Returns whether the
// event was consumed.
func (rt *Runtime) HandleEvent(ev widget.Event) (widget.EventResult, error) {
	if ev.Kind == widget.EventKey {
		if name, ok := rt.lookupBinding(ev.Key); ok {
			if action, ok := rt.actions[name]; ok {
				// Remove before invoking so a re-entrant HandleEvent call
				// triggered from within the action (e.g. a "quit" action
				// that synchronously re-dispatches) cannot recurse into
				// itself via the same map entry.
				delete(rt.actions, name)
				res, err := action(rt)
				rt.actions[name] = action
				if err != nil {
					return widget.Ignored, err
				}
				if res == widget.Consumed {
					rt.dirty = true
				}
				return res, nil
			}
		}
	}

	switch ev.Kind {
	case widget.EventResize:
		rt.HandleResize(ev.Resize.Width, ev.Resize.Height)
		return widget.Consumed, nil
	case widget.EventKey:
		if ev.Key.Code == widget.KeyTab {
			if ev.Key.Modifiers.Has(widget.ModShift) {
				rt.focus.FocusPrevious()
			} else {
				rt.focus.FocusNext()
			}
			rt.syncFocusState()
			rt.dirty = true
			return widget.Consumed, nil
		}
	case widget.EventMouse:
		if ev.Mouse.Kind == widget.MousePress {
			if id, ok := rt.hitTest(ev.Mouse.X, ev.Mouse.Y); ok {
				rt.focus.SetFocus(id)
				rt.syncFocusState()
				rt.dirty = true
			}
		}
	}

	if id, ok := rt.focus.Focused(); ok {
		if n, ok := rt.dom.NodeByID(id); ok {
			res := n.Widget.HandleEvent(ev)
			if res == widget.Consumed {
				rt.dirty = true
			}
			return res, nil
		}
	}
	return widget.Ignored, nil
}

// HandleResize updates the viewport size and forces the next render to
// recompute layout against it.
func (rt *Runtime) HandleResize(width, height int) {
	rt.width, rt.height = width, height
	rt.front = buffer.New(width, height)
	rt.back = buffer.New(width, height)
	rt.renderer.InvalidateCursor()
	rt.rects = map[uint64]layout.Rect{}
	rt.dirty = true
}

func (rt *Runtime) syncFocusState() {
	focused, has := rt.focus.Focused()
	if has == rt.hasLastFocus && (!has || focused == rt.lastFocused) {
		return
	}
	if rt.hasLastFocus {
		if n, ok := rt.dom.NodeByID(rt.lastFocused); ok {
			n.State.Focused = false
			rt.invalidateSubtree(n)
		}
	}
	if has {
		if n, ok := rt.dom.NodeByID(focused); ok {
			n.State.Focused = true
			rt.invalidateSubtree(n)
		}
	}
	rt.lastFocused, rt.hasLastFocus = focused, has
}

func (rt *Runtime) computeStyles() {
	nodes := rt.dom.PreOrder()
	parentComputed := map[uint64]style.ComputedStyle{}
	rt.computed = map[uint64]style.ComputedStyle{}

	for _, n := range nodes {
		var parentStyle style.ComputedStyle
		if n.Parent() != nil {
			parentStyle = parentComputed[n.Parent().ID]
		}

		matched, ok := rt.cache.Lookup(n.ID)
		if !ok {
			matched = style.MatchRules(rt.sheet, n.AsMatchTarget())
			rt.cache.Store(n.ID, matched)
		}

		cs := style.Cascade(matched, rt.vars, parentStyle)
		rt.computed[n.ID] = cs
		parentComputed[n.ID] = cs
		n.Widget.ApplyComputedStyle(cs)
	}
}

func buildLayoutNode(n *widget.Node, computed map[uint64]style.ComputedStyle) *layout.Node {
	cs := computed[n.ID]
	ln := &layout.Node{ID: n.ID, Style: layout.FromComputed(cs)}
	for _, c := range n.Children() {
		ln.Children = append(ln.Children, buildLayoutNode(c, computed))
	}
	return ln
}

func (rt *Runtime) computeLayout() {
	root := buildLayoutNode(rt.dom.Root(), rt.computed)
	rt.rects = rt.engine.Compute(root, layout.Size{Width: float64(rt.width), Height: float64(rt.height)})
	rt.order = nil
	for _, n := range rt.dom.PreOrder() {
		rt.order = append(rt.order, n.ID)
	}
}

func (rt *Runtime) hitTest(x, y int) (uint64, bool) {
	root := buildLayoutNode(rt.dom.Root(), rt.computed)
	return layout.HitTest(root, rt.rects, x, y)
}

// RenderIfNeeded renders a frame to w and returns true if the runtime was
// dirty, false (a no-op) otherwise.
func (rt *Runtime) RenderIfNeeded(w io.Writer) (bool, error) {
	if !rt.dirty {
		return false, nil
	}
	if err := rt.RenderFrame(w); err != nil {
		return false, err
	}
	return true, nil
}

// RenderFrame unconditionally renders one frame: sync focus state, cascade
// styles, compute layout, walk render order painting into the back
// buffer, diff against the front buffer, and emit the ANSI delta to w.
func (rt *Runtime) RenderFrame(w io.Writer) error {
	rt.syncFocusState()
	rt.computeStyles()
	rt.computeLayout()

	rt.back.Clear()
	for _, id := range rt.order {
		area := rt.rects[id]
		if n, ok := rt.dom.NodeByID(id); ok {
			n.Widget.Render(area, rt.back)
		}
	}

	changes := buffer.Diff(rt.front, rt.back)
	out := rt.renderer.Render(changes)
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("dom: render frame: %w", err)
	}

	rt.front, rt.back = rt.back, rt.front
	rt.dirty = false
	return nil
}

package dom

import "github.com/saorsa-labs/saorsa/internal/widget"

// FocusRing tracks which node currently has focus and lets it cycle
// through the focusable nodes in pre-order via Tab/Shift+Tab.
type FocusRing struct {
	dom      *Dom
	focused  uint64
	hasFocus bool
}

func newFocusRing(d *Dom) *FocusRing { return &FocusRing{dom: d} }

// focusable returns every node's id in pre-order whose widget implements
// widget.Focusable and reports itself focusable.
func (r *FocusRing) focusable() []uint64 {
	var ids []uint64
	for _, n := range r.dom.PreOrder() {
		if f, ok := n.Widget.(widget.Focusable); ok && f.Focusable() {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// Focused returns the currently focused node id, if any.
func (r *FocusRing) Focused() (uint64, bool) { return r.focused, r.hasFocus }

// SetFocus sets focus directly to the given node id.
func (r *FocusRing) SetFocus(id uint64) {
	r.focused = id
	r.hasFocus = true
}

// FocusNext moves focus to the next focusable node in pre-order, wrapping
// to the first if none is currently focused or the current one is last.
func (r *FocusRing) FocusNext() {
	ids := r.focusable()
	if len(ids) == 0 {
		r.hasFocus = false
		return
	}
	if !r.hasFocus {
		r.SetFocus(ids[0])
		return
	}
	for i, id := range ids {
		if id == r.focused {
			r.SetFocus(ids[(i+1)%len(ids)])
			return
		}
	}
	r.SetFocus(ids[0])
}

// FocusPrevious moves focus to the previous focusable node in pre-order,
// wrapping to the last if none is currently focused or the current one is
// first.
func (r *FocusRing) FocusPrevious() {
	ids := r.focusable()
	if len(ids) == 0 {
		r.hasFocus = false
		return
	}
	if !r.hasFocus {
		r.SetFocus(ids[len(ids)-1])
		return
	}
	for i, id := range ids {
		if id == r.focused {
			r.SetFocus(ids[(i-1+len(ids))%len(ids)])
			return
		}
	}
	r.SetFocus(ids[len(ids)-1])
}

package layout

// ScrollState tracks one scrollable axis for a node whose computed
// overflow is scroll or auto: the current offset, the content's full
// extent, and the viewport (the node's own content-box) extent.
type ScrollState struct {
	Offset  float64
	Content float64
	Viewport float64
}

// Clamp restricts Offset to [0, max(Content-Viewport, 0)], the valid
// scroll range.
func (s *ScrollState) Clamp() {
	max := s.Content - s.Viewport
	if max < 0 {
		max = 0
	}
	if s.Offset < 0 {
		s.Offset = 0
	}
	if s.Offset > max {
		s.Offset = max
	}
}

// ScrollBy adjusts Offset by delta and re-clamps.
func (s *ScrollState) ScrollBy(delta float64) {
	s.Offset += delta
	s.Clamp()
}

// ApplyScroll translates a child rect by the parent's scroll offsets
// before rendering, so content scrolled out of view moves off the
// parent's visible rect; the renderer's own write-boundary clipping
// (bounded writes against the parent's rect) then hides cells that fall
// outside it.
func ApplyScroll(child Rect, offsetX, offsetY float64) Rect {
	child.X -= int(offsetX)
	child.Y -= int(offsetY)
	return child
}

// ScrollRegistry tracks ScrollState per scrollable node id.
type ScrollRegistry struct {
	states map[uint64]*ScrollState
}

// NewScrollRegistry creates an empty registry.
func NewScrollRegistry() *ScrollRegistry {
	return &ScrollRegistry{states: map[uint64]*ScrollState{}}
}

// StateFor returns the ScrollState for id, creating one on first access.
func (r *ScrollRegistry) StateFor(id uint64) *ScrollState {
	s, ok := r.states[id]
	if !ok {
		s = &ScrollState{}
		r.states[id] = s
	}
	return s
}

// Remove drops a node's scroll state, e.g. when it is unmounted.
func (r *ScrollRegistry) Remove(id uint64) {
	delete(r.states, id)
}

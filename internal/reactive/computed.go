package reactive

// Computed is a derived value with a pure compute function and a cached
// result. It is dirty when any dependency invalidates, and lazily
// recomputed on next read — except that, per the value-based cutoff rule,
// a dependency change forces an immediate recompute at notify time so that
// Computed can decide whether its own subscribers actually need to be
// invalidated (only when the recomputed value differs from the cached one).
type Computed[T comparable] struct {
	id   int64
	fn   func() T

	cached   T
	hasValue bool
	dirty    bool

	subs     map[int64]subscriber
	prevDeps []trackable
	disposed bool
}

// NewComputed creates a Computed wrapping fn. fn must be pure with respect
// to the signals/computeds it reads — it may be called any number of times.
func NewComputed[T comparable](fn func() T) *Computed[T] {
	return &Computed[T]{id: nextID(), fn: fn, dirty: true, subs: make(map[int64]subscriber)}
}

// Get returns the current value, recomputing first if dirty, and registers
// the active tracker (if any) as a dependent.
func (c *Computed[T]) Get() T {
	if c.disposed {
		return c.cached
	}
	if c.dirty {
		c.recompute()
	}
	notifyRead(c)
	return c.cached
}

// Peek returns the current value without registering a dependency,
// recomputing first if dirty.
func (c *Computed[T]) Peek() T {
	if c.dirty {
		c.recompute()
	}
	return c.cached
}

func (c *Computed[T]) recompute() {
	for _, dep := range c.prevDeps {
		dep.unsubscribeAll(c.id)
	}
	var deps []trackable
	var newVal T
	track(func(t trackable) {
		t.subscribe(subscriber{id: c.id, kind: kindComputed, notify: c.onDependencyChanged})
		deps = append(deps, t)
	}, func() {
		newVal = c.fn()
	})
	c.prevDeps = deps
	c.cached = newVal
	c.hasValue = true
	c.dirty = false
}

// onDependencyChanged is installed as the notify callback on every signal
// or computed this Computed reads. It recomputes immediately (even though
// Get() is otherwise lazy) purely to apply the cutoff check, then
// propagates to this Computed's own subscribers only if the value changed.
func (c *Computed[T]) onDependencyChanged() {
	old, hadValue := c.cached, c.hasValue
	c.dirty = true
	c.recompute()
	if !hadValue || old != c.cached {
		c.propagate()
	}
}

func (c *Computed[T]) propagate() {
	if b := currentBatch(); b != nil {
		for _, sub := range c.subs {
			b.markDirtyIdentified(sub.id, sub.kind, sub.notify)
		}
		return
	}
	subs := make([]subscriber, 0, len(c.subs))
	for _, s := range c.subs {
		subs = append(subs, s)
	}
	for _, s := range subs {
		s.notify()
	}
}

func (c *Computed[T]) subscribe(sub subscriber) { c.subs[sub.id] = sub }
func (c *Computed[T]) unsubscribeAll(id int64)  { delete(c.subs, id) }

// Dispose detaches this Computed from every dependency it currently reads.
// Further Get() calls return the last cached value without recomputing.
func (c *Computed[T]) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	for _, dep := range c.prevDeps {
		dep.unsubscribeAll(c.id)
	}
	c.prevDeps = nil
}

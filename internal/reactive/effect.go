package reactive

// Effect is a side-effecting closure. It runs once eagerly on creation
// (inside a tracking scope) and again whenever any dependency read during
// the previous run invalidates. Effects are owned by a Scope; disposing the
// scope disposes the effect.
type Effect struct {
	id       int64
	fn       func()
	prevDeps []trackable
	disposed bool
}

// NewEffect creates and immediately runs fn once, subscribing it to every
// signal/computed it reads. If scope is non-nil, the effect is registered
// with it and disposed when the scope is disposed.
func NewEffect(scope *Scope, fn func()) *Effect {
	e := &Effect{id: nextID(), fn: fn}
	if scope != nil {
		scope.own(e)
	}
	e.run()
	return e
}

func (e *Effect) run() {
	if e.disposed {
		return
	}
	for _, dep := range e.prevDeps {
		dep.unsubscribeAll(e.id)
	}
	var deps []trackable
	track(func(t trackable) {
		t.subscribe(subscriber{id: e.id, kind: kindEffect, notify: e.run})
		deps = append(deps, t)
	}, e.fn)
	e.prevDeps = deps
}

// Dispose clears this Effect's subscriber link and removes it from every
// signal/computed it currently watches. Disposed effects are no-ops on any
// later notification that might already be in flight.
func (e *Effect) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	for _, dep := range e.prevDeps {
		dep.unsubscribeAll(e.id)
	}
	e.prevDeps = nil
}

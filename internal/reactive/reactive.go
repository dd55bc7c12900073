// Package reactive implements the signal/computed/effect primitives driving
// widget state: synchronous invalidation outside a batch, deferred and
// deduplicated notification inside one, and value-based cutoff for computed
// values so that an unchanged recomputation does not ripple into dependents.
//
// The whole package assumes a single-threaded cooperative scheduler (per the
// Concurrency & Resource Model): reactive primitives are not safe to touch
// concurrently from multiple goroutines, and this package does no internal
// locking on that basis.
package reactive

import "sync/atomic"

var idCounter int64

func nextID() int64 { return atomic.AddInt64(&idCounter, 1) }

// subscriber is what a Signal notifies when written: some other reactive
// node's re-evaluation (Computed) or side effect (Effect). id identifies the
// subscriber so a Signal can deduplicate and so disposal can remove it by
// identity without holding a live pointer comparison.
type subscriber struct {
	id     int64
	kind   subKind
	notify func()
}

// trackingScope records which signals are read during a computation, so
// that computation can be (re-)subscribed to exactly its current
// dependencies (subscriptions are rebuilt on every evaluation — a signal no
// longer read on this pass is no longer a dependency).
type trackingScope struct {
	onRead func(s trackable)
}

// trackable is implemented by Signal[T] and Computed[T]: anything a reading
// computation can depend on.
type trackable interface {
	subscribe(sub subscriber)
	unsubscribeAll(id int64)
}

var trackingStack []*trackingScope

func currentTracker() *trackingScope {
	if len(trackingStack) == 0 {
		return nil
	}
	return trackingStack[len(trackingStack)-1]
}

// track runs f with a fresh tracking scope installed; every trackable read
// during f invokes onRead. Tracking scopes nest: an Effect created inside
// another Effect's run only tracks the inner scope's reads for itself.
func track(onRead func(trackable), f func()) {
	trackingStack = append(trackingStack, &trackingScope{onRead: onRead})
	defer func() { trackingStack = trackingStack[:len(trackingStack)-1] }()
	f()
}

// notifyRead tells the active tracker (if any) that t was just read.
func notifyRead(t trackable) {
	if tr := currentTracker(); tr != nil {
		tr.onRead(t)
	}
}

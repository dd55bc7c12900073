package reactive

// Signal is a single mutable value with a subscriber set. Reading it inside
// an active tracking scope registers that scope's owner as a dependent;
// writing it replaces the value and, unless inside a Batch, synchronously
// notifies every subscriber.
type Signal[T any] struct {
	value T
	subs  map[int64]subscriber
}

// NewSignal creates a Signal holding the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{value: initial, subs: make(map[int64]subscriber)}
}

// Get reads the current value, registering the active tracker (if any) as a
// dependent.
func (s *Signal[T]) Get() T {
	notifyRead(s)
	return s.value
}

// Peek reads the current value without registering a dependency. Used by
// effects/computeds that need to read a signal without subscribing to it.
func (s *Signal[T]) Peek() T { return s.value }

// Set replaces the value and schedules dependent notification: immediately,
// if not inside a Batch, or added to the enclosing batch's dirty set
// otherwise.
func (s *Signal[T]) Set(v T) {
	s.value = v
	if b := currentBatch(); b != nil {
		for _, sub := range s.subs {
			b.markDirtyIdentified(sub.id, sub.kind, sub.notify)
		}
		return
	}
	s.notifyAll()
}

// Update applies f to the current value and stores the result, with the
// same notification semantics as Set.
func (s *Signal[T]) Update(f func(T) T) {
	s.Set(f(s.value))
}

func (s *Signal[T]) notifyAll() {
	// Copy first: a subscriber's notify (an Effect re-running) may itself
	// subscribe/unsubscribe signals, which would otherwise mutate the map
	// we are ranging over.
	subs := make([]subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	for _, sub := range subs {
		sub.notify()
	}
}

func (s *Signal[T]) subscribe(sub subscriber) { s.subs[sub.id] = sub }
func (s *Signal[T]) unsubscribeAll(id int64)  { delete(s.subs, id) }

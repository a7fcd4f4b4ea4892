package wsocket

import (
	"sync"
	"sync/atomic"
)

type (
	callback[T any] func(T)

	// Unsubscriber removes exactly one registration. Calling it more than once is a no-op.
	Unsubscriber func()

	// slot is one registration. Slots are compared by pointer so the same callback can be
	// registered twice and removed independently.
	slot[V any] struct {
		fn      callback[V]
		removed atomic.Bool
	}
)

// EventEmitterCallback is a simple event emitter. It maps events (of type K) to an ordered
// list of listeners receiving values of type V. Listeners are invoked in registration order.
type EventEmitterCallback[K comparable, V any] struct {
	listeners map[K][]*slot[V]
	closed    bool
	lock      sync.RWMutex
}

// NewEventEmitter creates a new EventEmitterCallback and returns a pointer to it.
func NewEventEmitter[K comparable, V any]() *EventEmitterCallback[K, V] {
	return &EventEmitterCallback[K, V]{
		listeners: make(map[K][]*slot[V]),
	}
}

// On registers a new listener for the given event and returns the function that removes it.
// Registering on a closed emitter returns a no-op Unsubscriber.
func (e *EventEmitterCallback[K, V]) On(event K, listener callback[V]) Unsubscriber {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.closed {
		return func() {}
	}

	s := &slot[V]{fn: listener}
	e.listeners[event] = append(e.listeners[event], s)

	return func() { e.remove(event, s) }
}

func (e *EventEmitterCallback[K, V]) remove(event K, s *slot[V]) {
	if s.removed.Swap(true) {
		return
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	slots := e.listeners[event]
	for i, candidate := range slots {
		if candidate != s {
			continue
		}
		next := make([]*slot[V], 0, len(slots)-1)
		next = append(next, slots[:i]...)
		next = append(next, slots[i+1:]...)
		if len(next) == 0 {
			delete(e.listeners, event)
		} else {
			e.listeners[event] = next
		}
		return
	}
}

// Emit triggers all listeners registered for the given event synchronously, in registration
// order. Listeners run outside the lock, so they may register or unregister listeners
// themselves; a listener removed before its turn is skipped.
// Emit is a no-op once the emitter has been closed.
func (e *EventEmitterCallback[K, V]) Emit(event K, data V) {
	e.lock.RLock()
	if e.closed {
		e.lock.RUnlock()
		return
	}
	// slices are replaced, never mutated in place, so holding the header is a snapshot
	listeners := e.listeners[event]
	e.lock.RUnlock()

	for _, listener := range listeners {
		if listener.removed.Load() {
			continue
		}
		listener.fn(data)
	}
}

// Len returns the number of live listeners for the given event.
func (e *EventEmitterCallback[K, V]) Len(event K) int {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return len(e.listeners[event])
}

// Close removes all listeners and disables further emission.
func (e *EventEmitterCallback[K, V]) Close() {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.closed = true
	e.listeners = make(map[K][]*slot[V])
}

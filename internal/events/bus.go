// Package events provides a per-instance, priority-ordered publish/subscribe
// bus. Listeners with lower priority values run first; listeners with equal
// priority run in registration order.
//
// Dispatch is synchronous. Listeners must not trigger a new navigation from
// inside a dispatch; the bus tolerates re-entrant Publish calls but the
// engine publishing through it does not.
package events

import (
	"log/slog"
	"sync"
)

// DefaultPriority is used when Subscribe is called without WithPriority.
const DefaultPriority = 0

type listener[E any] struct {
	id       uint64
	priority int
	fn       func(E)
}

// Bus dispatches events of a single type to ordered listeners.
type Bus[E any] struct {
	name string

	mu        sync.Mutex
	listeners []listener[E]
	nextID    uint64
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*subscribeConfig)

type subscribeConfig struct {
	priority int
}

// WithPriority sets the listener priority. Lower runs earlier.
func WithPriority(p int) SubscribeOption {
	return func(c *subscribeConfig) {
		c.priority = p
	}
}

// New creates a bus. The name only appears in logs.
func New[E any](name string) *Bus[E] {
	return &Bus[E]{name: name}
}

// Name returns the bus name.
func (b *Bus[E]) Name() string { return b.name }

// Subscribe registers fn and returns a function that removes it.
func (b *Bus[E]) Subscribe(fn func(E), opts ...SubscribeOption) (unsubscribe func()) {
	cfg := subscribeConfig{priority: DefaultPriority}
	for _, opt := range opts {
		opt(&cfg)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	l := listener[E]{id: b.nextID, priority: cfg.priority, fn: fn}

	// Insert after the last listener whose priority is <= the new one.
	idx := len(b.listeners)
	for idx > 0 && b.listeners[idx-1].priority > cfg.priority {
		idx--
	}
	b.listeners = append(b.listeners, listener[E]{})
	copy(b.listeners[idx+1:], b.listeners[idx:])
	b.listeners[idx] = l

	id := l.id
	return func() { b.remove(id) }
}

func (b *Bus[E]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, l := range b.listeners {
		if l.id == id {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered listeners.
func (b *Bus[E]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// Publish delivers ev to every listener registered at the time of the call.
func (b *Bus[E]) Publish(ev E) {
	b.mu.Lock()
	snapshot := make([]listener[E], len(b.listeners))
	copy(snapshot, b.listeners)
	b.mu.Unlock()

	slog.Debug("publish event", "bus", b.name, "listeners", len(snapshot))

	for _, l := range snapshot {
		l.fn(ev)
	}
}

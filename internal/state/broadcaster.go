package state

import (
	"fmt"
	"sort"
	"sync"
)

// Listener is called with the previous and the new value of a cell.
type Listener[T any] func(old, new T)

// Broadcaster manages named listeners for value changes
type Broadcaster[T any] struct {
	listeners map[string]Listener[T]
	mu        sync.RWMutex
}

// NewBroadcaster creates a new change broadcaster
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{
		listeners: make(map[string]Listener[T]),
	}
}

// AddListener adds a listener with a unique name
func (b *Broadcaster[T]) AddListener(name string, listener Listener[T]) error {
	if listener == nil {
		return fmt.Errorf("listener %s is nil", name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.listeners[name]; exists {
		return fmt.Errorf("listener %s already exists", name)
	}

	b.listeners[name] = listener
	return nil
}

// RemoveListener removes a listener by name
func (b *Broadcaster[T]) RemoveListener(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.listeners, name)
}

// Broadcast calls every listener in name order on the caller's goroutine.
// The listener set is snapshotted first, so listeners may add or remove
// listeners without deadlocking.
func (b *Broadcaster[T]) Broadcast(old, new T) {
	b.mu.RLock()
	names := make([]string, 0, len(b.listeners))
	for name := range b.listeners {
		names = append(names, name)
	}
	sort.Strings(names)
	listeners := make([]Listener[T], 0, len(names))
	for _, name := range names {
		listeners = append(listeners, b.listeners[name])
	}
	b.mu.RUnlock()

	for _, l := range listeners {
		l(old, new)
	}
}

// Close removes all listeners
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.listeners = make(map[string]Listener[T])
}

// ListenerCount returns the number of registered listeners
func (b *Broadcaster[T]) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// HasListener checks if a listener with the given name exists
func (b *Broadcaster[T]) HasListener(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, exists := b.listeners[name]
	return exists
}

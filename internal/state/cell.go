// Package state holds observable state cells: values that can be read,
// overwritten and watched for changes.
package state

import "sync"

// Cell stores one value and notifies listeners whenever it is set.
type Cell[T any] struct {
	mu          sync.RWMutex
	value       T
	version     uint64
	broadcaster *Broadcaster[T]
}

// NewCell creates a cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{
		value:       initial,
		broadcaster: NewBroadcaster[T](),
	}
}

// Get returns the latest value set.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set replaces the value and then notifies listeners outside the lock.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	old := c.value
	c.value = v
	c.version++
	c.mu.Unlock()

	c.broadcaster.Broadcast(old, v)
}

// Version counts how many times the cell has been set.
func (c *Cell[T]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Subscribe registers a named listener. Names must be unique per cell.
func (c *Cell[T]) Subscribe(name string, l Listener[T]) error {
	return c.broadcaster.AddListener(name, l)
}

// Unsubscribe removes the named listener, if present.
func (c *Cell[T]) Unsubscribe(name string) {
	c.broadcaster.RemoveListener(name)
}

// Close drops every listener.
func (c *Cell[T]) Close() {
	c.broadcaster.Close()
}

// Package async provides a single-value production: a result that is
// resolved exactly once and can be awaited or subscribed to.
package async

import (
	"context"
	"sync"
)

// Future holds a value that becomes available exactly once.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
}

// New returns an unresolved future.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a future that already carries v.
func Resolved[T any](v T) *Future[T] {
	f := New[T]()
	f.Resolve(v)
	return f
}

// Resolve stores v and wakes every waiter. Only the first call has an effect;
// it reports whether this call resolved the future.
func (f *Future[T]) Resolve(v T) bool {
	resolved := false
	f.once.Do(func() {
		f.value = v
		close(f.done)
		resolved = true
	})
	return resolved
}

// Done is closed once the future is resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Value returns the resolved value without blocking.
func (f *Future[T]) Value() (T, bool) {
	select {
	case <-f.done:
		return f.value, true
	default:
		var zero T
		return zero, false
	}
}

// Await blocks until the future is resolved or ctx is done. A resolved
// future always yields its value, even with ctx already done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	if v, ok := f.Value(); ok {
		return v, nil
	}
	select {
	case <-f.done:
		return f.value, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Subscribe runs fn with the value. A resolved future runs fn before
// Subscribe returns; otherwise fn runs on its own goroutine after Resolve.
func (f *Future[T]) Subscribe(fn func(T)) {
	if v, ok := f.Value(); ok {
		fn(v)
		return
	}
	go func() {
		<-f.done
		fn(f.value)
	}()
}

package pool

import (
	"context"
	"sync"
)

// Future is the single-assignment result handle returned by
// SubmitForReturn. Exactly one producer — the worker that invokes the
// wrapped task — ever writes to it, via the unexported complete method.
// Multiple consumers may call Get, TryGet, or Done concurrently; all see
// the same value once it lands.
//
// This is deliberately narrower than a futures-aggregation container: it
// holds one task's outcome and nothing else. Gathering many Futures is a
// caller concern (the spec places result-future aggregation out of the
// core's scope).
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// NewFuture constructs an unresolved Future[T].
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// complete resolves the Future. Only the worker that owns this Future's
// wrapped task calls it, and it calls it exactly once; a second call is a
// no-op because of the guarding sync.Once.
func (f *Future[T]) complete(value T, err error) {
	f.once.Do(func() {
		f.value, f.err = value, err
		close(f.done)
	})
}

// Get blocks until the result is available or ctx is done, whichever
// comes first.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryGet returns the result without blocking. ready is false if the
// result has not yet been produced.
func (f *Future[T]) TryGet() (value T, err error, ready bool) {
	select {
	case <-f.done:
		return f.value, f.err, true
	default:
		var zero T
		return zero, nil, false
	}
}

// Done returns a channel that is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// IsReady reports whether the result has already landed.
func (f *Future[T]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

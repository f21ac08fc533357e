package pool

import "context"

// Pool is the uniform submission façade spec.md §4.6 describes,
// satisfied by *BalancePool, *SteadyPool, and *DynamicPool. Callers that
// don't need a concrete pool's lifecycle extras (Dynamic's Add/Del/
// Adjust) can depend on this interface instead.
//
// SubmitForReturn is not a method here — Go interface methods cannot be
// generic — it is the free function below, parameterized over the
// result type and taking any Pool.
type Pool interface {
	// Submit admits fn for execution. Concurrent calls from many
	// producer goroutines are safe.
	Submit(fn func()) error
	// SubmitBatch admits a sequence of callables together; for the fixed
	// pools this is routed to a single chosen worker under one load-
	// balancer decision.
	SubmitBatch(fns []func()) error
	// ThreadCount returns the current number of workers.
	ThreadCount() int
	// TasksLoaded returns the number of tasks currently pending.
	TasksLoaded() int64
	// TasksSubmitted returns the cumulative number of tasks ever
	// admitted.
	TasksSubmitted() int64
	// IsClosed reports whether Close has been called.
	IsClosed() bool
	// WaitForTasks blocks until every admitted task has run (or, under
	// PolicyBoundedCallback, been handed to the overflow callback) and
	// every worker is idle. Forbidden from inside a task of the same
	// pool — see the package doc's Error Handling section.
	WaitForTasks()
	// Close stops every worker, draining already-enqueued work first,
	// and joins them. Idempotent.
	Close() error
}

// SubmitForReturn wraps fn so its result is stored behind a Future and
// the Future is returned immediately; p itself remains unaware of result
// values, exactly as spec.md §4.4 describes — the wrapping happens
// entirely at the façade layer.
func SubmitForReturn[T any](p Pool, fn func() (T, error)) (*Future[T], error) {
	future := NewFuture[T]()
	wrapped := func() {
		v, err := fn()
		future.complete(v, err)
	}
	if err := p.Submit(wrapped); err != nil {
		return nil, err
	}
	return future, nil
}

// SubmitBatchForReturn is the batch counterpart of SubmitForReturn: n
// callables are admitted together (one load-balancer decision on the
// fixed pools), and a Future per callable is returned in the same order.
// If SubmitBatch returns an error, SubmitBatchForReturn returns a nil slice
// and that error. Under PolicyBoundedCallback a refused batch is not an
// error: the Futures are returned, and each resolves only if the overflow
// callback invokes its Task.
func SubmitBatchForReturn[T any](p Pool, fns []func() (T, error)) ([]*Future[T], error) {
	futures := make([]*Future[T], len(fns))
	wrapped := make([]func(), len(fns))

	for i, fn := range fns {
		future := NewFuture[T]()
		futures[i] = future
		fn := fn
		wrapped[i] = func() {
			v, err := fn()
			future.complete(v, err)
		}
	}

	if err := p.SubmitBatch(wrapped); err != nil {
		return nil, err
	}
	return futures, nil
}

// GatherFutures blocks on every Future in order and collects their
// values, stopping at the first error (including ctx's own
// cancellation). This is a thin caller-side convenience, not a
// multi-future aggregation container — gathering many Futures remains a
// caller concern per spec.md §1's Non-goals.
func GatherFutures[T any](ctx context.Context, futures []*Future[T]) ([]T, error) {
	out := make([]T, len(futures))
	for i, f := range futures {
		v, err := f.Get(ctx)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

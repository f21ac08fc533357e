package pool

import "errors"

// Sentinel errors returned by the submission façade. Callers should use
// errors.Is against these rather than comparing strings. Call sites wrap
// ErrAdmissionRefused and ErrInvalidLifecycle with fmt.Errorf("...: %w",
// ...) to attach context; ErrPoolClosed is returned unwrapped.
var (
	// ErrAdmissionRefused is returned by a bounded pool under the
	// bounded_throw overflow policy when the chosen worker's queue has no
	// room for the submitted task (or, for a batch, for the whole batch).
	ErrAdmissionRefused = errors.New("pool: admission refused, queue is full")

	// ErrPoolClosed is returned by any submission call made after Close
	// has been called (or while it is in progress).
	ErrPoolClosed = errors.New("pool: closed, no new submissions accepted")

	// ErrInvalidLifecycle is returned by a lifecycle operation called on a
	// closed pool, or with a nonsensical argument (e.g. adjust to a
	// negative target).
	ErrInvalidLifecycle = errors.New("pool: invalid lifecycle operation")
)

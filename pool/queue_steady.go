package pool

import (
	"sync/atomic"

	"github.com/corepool/corepool/internal/spinlock"
)

// dualQueue is the Steady pool's per-worker queue pair: a public queue
// producers append to under the Spin Primitive, and a worker-private
// buffer the owning worker drains lock-free. Swap moves the entire
// public queue into buffer under one lock acquisition, amortizing
// locking across a whole batch of tasks instead of paying for it once
// per task.
//
// Invariant upheld by the worker loop (not by this type alone): the
// buffer is empty whenever a swap begins, and at most one swap runs at a
// time (callers serialize swap with the worker's own loop — only the
// owning worker ever calls swap).
type dualQueue struct {
	lock     spinlock.SpinLock
	public   []Task
	buffer   []Task
	bufHead  int
	capacity int // 0 means unbounded; bounds public+buffer combined
	size     atomic.Int64
}

func newDualQueue(capacity int) *dualQueue {
	return &dualQueue{capacity: capacity}
}

// Len is the combined public+buffer depth, as an atomic snapshot.
func (q *dualQueue) Len() int {
	return int(q.size.Load())
}

// TryPush appends to the public queue under the spinlock.
func (q *dualQueue) TryPush(t Task) bool {
	unlock := q.lock.Guard()
	defer unlock()

	if q.capacity > 0 && int(q.size.Load()) >= q.capacity {
		return false
	}
	q.public = append(q.public, t)
	q.size.Add(1)
	return true
}

// TryPushBatch appends a whole batch under one lock acquisition,
// all-or-nothing against the bound.
func (q *dualQueue) TryPushBatch(ts []Task) bool {
	unlock := q.lock.Guard()
	defer unlock()

	if q.capacity > 0 && int(q.size.Load())+len(ts) > q.capacity {
		return false
	}
	q.public = append(q.public, ts...)
	q.size.Add(int64(len(ts)))
	return true
}

// PopBuffer removes the front task from the worker-private buffer
// without taking the spinlock. Only the owning worker calls this.
func (q *dualQueue) PopBuffer() (Task, bool) {
	if q.bufHead >= len(q.buffer) {
		return Task{}, false
	}
	t := q.buffer[q.bufHead]
	q.buffer[q.bufHead] = Task{}
	q.bufHead++
	q.size.Add(-1)

	if q.bufHead >= compactThreshold && q.bufHead*2 > len(q.buffer) {
		q.buffer = append(q.buffer[:0], q.buffer[q.bufHead:]...)
		q.bufHead = 0
	}
	return t, true
}

// BufferEmpty reports whether the worker-private buffer has anything
// left to invoke, without touching the spinlock.
func (q *dualQueue) BufferEmpty() bool {
	return q.bufHead >= len(q.buffer)
}

// Swap moves the entire public queue into the buffer under a single
// spinlock acquisition. Returns false if public was empty (nothing to
// swap). Callers only invoke Swap when BufferEmpty(), per the type's
// invariant.
func (q *dualQueue) Swap() bool {
	unlock := q.lock.Guard()
	defer unlock()

	if len(q.public) == 0 {
		return false
	}
	q.buffer, q.public = q.public, q.buffer[:0]
	q.bufHead = 0
	return true
}

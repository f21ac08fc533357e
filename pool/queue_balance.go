package pool

import (
	"sync/atomic"

	"github.com/corepool/corepool/internal/spinlock"
)

// compactThreshold bounds how much of a balanceQueue's backing array is
// allowed to sit consumed-but-unreclaimed before a pop compacts it back
// to the front. Keeps long-lived pools from growing an ever-larger slice
// under steady churn.
const compactThreshold = 64

// balanceQueue is the Balance pool's per-worker locked queue: a single
// sequence of Tasks guarded by a Spin Primitive, mutated by the owning
// worker (pop) and any producer (push). size is maintained as an atomic
// counter so the load balancer can take a lock-free snapshot of queue
// depth without contending with the spinlock.
type balanceQueue struct {
	lock     spinlock.SpinLock
	tasks    []Task
	head     int
	capacity int // 0 means unbounded
	size     atomic.Int64
}

func newBalanceQueue(capacity int) *balanceQueue {
	return &balanceQueue{capacity: capacity}
}

// Len returns an atomic snapshot of the queue depth. Per the load
// balancer's design, a stale read here is acceptable: correctness
// depends only on admission, not on perfectly fresh placement.
func (q *balanceQueue) Len() int {
	return int(q.size.Load())
}

// TryPush admits a single task if the bound (if any) allows it.
func (q *balanceQueue) TryPush(t Task) bool {
	unlock := q.lock.Guard()
	defer unlock()

	if q.capacity > 0 && len(q.tasks)-q.head >= q.capacity {
		return false
	}
	q.tasks = append(q.tasks, t)
	q.size.Add(1)
	return true
}

// TryPushBatch admits an entire batch under one lock acquisition,
// all-or-nothing: either every task in ts is admitted, or none are.
func (q *balanceQueue) TryPushBatch(ts []Task) bool {
	unlock := q.lock.Guard()
	defer unlock()

	if q.capacity > 0 && (len(q.tasks)-q.head)+len(ts) > q.capacity {
		return false
	}
	q.tasks = append(q.tasks, ts...)
	q.size.Add(int64(len(ts)))
	return true
}

// Pop removes and returns the front Task in push order, if any.
func (q *balanceQueue) Pop() (Task, bool) {
	unlock := q.lock.Guard()
	defer unlock()

	if q.head >= len(q.tasks) {
		return Task{}, false
	}

	t := q.tasks[q.head]
	q.tasks[q.head] = Task{}
	q.head++
	q.size.Add(-1)

	if q.head >= compactThreshold && q.head*2 > len(q.tasks) {
		q.tasks = append(q.tasks[:0], q.tasks[q.head:]...)
		q.head = 0
	}
	return t, true
}

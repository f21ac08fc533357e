package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// boundedQueue is the push-side contract both balanceQueue and dualQueue
// satisfy. The Fixed Pool Base depends on this rather than on either
// concrete queue type, so its admission and load-balancing logic is
// shared verbatim between BalancePool and SteadyPool.
type boundedQueue interface {
	TryPush(Task) bool
	TryPushBatch([]Task) bool
	Len() int
}

// fixedWorker is what the Fixed Pool Base needs from a worker variant:
// the shared lifecycle surface plus access to its push-side queue.
type fixedWorker interface {
	workerHandle
	taskQueue() boundedQueue
}

func (w *balanceWorker) taskQueue() boundedQueue { return w.queue }
func (w *steadyWorker) taskQueue() boundedQueue  { return w.queue }

// shallowThreshold is the load balancer's "queue size below a small
// threshold" cutoff, left unspecified by spec.md §9 Open Questions and
// fixed here at 0: a candidate only qualifies on depth if it is
// strictly empty; anything else falls through to the idle check (and,
// failing that, the cursor fallback).
const shallowThreshold = 0

// fixedPool is the shared base embedded by BalancePool and SteadyPool.
// Everything in spec.md §4.4 — construction, the load balancer, bounded
// and unbounded admission, batch submission, wait-for-tasks, and
// idempotent close — lives here once; the only thing that differs
// between the two pools is which fixedWorker implementation populates
// the workers slice.
type fixedPool struct {
	workers []fixedWorker
	cursor  atomic.Int64

	cfg *poolConfig

	totalTasks atomic.Int64
	taskLoaded atomic.Int64

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error

	idleMu   sync.Mutex
	idleCond *sync.Cond

	group *errgroup.Group
}

func newFixedPool(cfg *poolConfig, workers []fixedWorker, runWorker func(fixedWorker, func(), func())) *fixedPool {
	p := &fixedPool{workers: workers, cfg: cfg}
	p.idleCond = sync.NewCond(&p.idleMu)

	var g errgroup.Group
	p.group = &g
	for _, w := range workers {
		w := w
		g.Go(func() error {
			runWorker(w, p.onTaskDone, p.onWorkerIdle)
			return nil
		})
	}
	return p
}

func (p *fixedPool) onTaskDone() {
	p.taskLoaded.Add(-1)
	p.idleCond.Broadcast()
}

// onWorkerIdle is called by a worker the instant it transitions into the
// waiting state, which is the only accurate place to wake WaitForTasks:
// onTaskDone's broadcast fires right after Invoke returns, before the
// worker has re-checked its queue and gone idle, so a waiter that wakes on
// that earlier broadcast and finds the worker still busy would otherwise
// never be woken again. Holding idleMu here is what makes that final
// wake-up reliable: a waiter between its predicate check and Wait still
// holds the mutex, so this broadcast cannot slip into that window.
func (p *fixedPool) onWorkerIdle() {
	p.idleMu.Lock()
	p.idleCond.Broadcast()
	p.idleMu.Unlock()
}

// selectWorker implements the load balancer from spec.md §4.4: scan
// forward from cursor, preferring the first idle-or-shallow candidate;
// fall back to cursor itself if none qualify. Ties at minimum depth
// favor the candidate at or after cursor, which is exactly what scanning
// forward and stopping at the first qualifier already gives us.
func (p *fixedPool) selectWorker() int {
	n := len(p.workers)
	start := int(p.cursor.Load()) % n

	for i := 0; i < n; i++ {
		idx := (start + i) % n
		w := p.workers[idx]
		if w.isWaiting() || w.queueLen() <= shallowThreshold {
			p.cursor.Store(int64((idx + 1) % n))
			return idx
		}
	}

	p.cursor.Store(int64((start + 1) % n))
	return start
}

// admitBatch pushes tasks onto w's queue per the pool's overflow policy.
// Admission of a batch is always all-or-nothing against the chosen
// worker's remaining capacity — spec.md §9's Open Question on partial-
// batch admission, resolved here in favor of the simpler contract.
func (p *fixedPool) admitBatch(w fixedWorker, tasks []Task) error {
	q := w.taskQueue()
	n := int64(len(tasks))

	// Counters go up before the push, not after: once a task is visible in
	// the queue a worker may pop, invoke, and decrement it immediately, and
	// a late increment would let taskLoaded dip below zero and then settle
	// at zero with no broadcast behind it, stranding a WaitForTasks caller.
	// Refusal paths undo the counts before handing off to the policy.
	p.totalTasks.Add(n)
	p.taskLoaded.Add(n)

	switch p.cfg.policy {
	case PolicyBoundedThrow:
		if !q.TryPushBatch(tasks) {
			p.totalTasks.Add(-n)
			p.taskLoaded.Add(-n)
			return fmt.Errorf("submit %d task(s) to worker: %w", len(tasks), ErrAdmissionRefused)
		}

	case PolicyBoundedBlock:
		for !q.TryPushBatch(tasks) {
			if p.closed.Load() {
				p.totalTasks.Add(-n)
				p.taskLoaded.Add(-n)
				return ErrPoolClosed
			}
			time.Sleep(p.cfg.blockPollDelay)
		}

	case PolicyBoundedCallback:
		if !q.TryPushBatch(tasks) {
			p.totalTasks.Add(-n)
			p.taskLoaded.Add(-n)
			p.cfg.overflowCallback(tasks)
			return nil
		}

	default: // PolicyUnbounded
		q.TryPushBatch(tasks)
	}

	w.wake()
	return nil
}

func (p *fixedPool) throttle() error {
	if p.cfg.rateLimiter == nil {
		return nil
	}
	return p.cfg.rateLimiter.Wait(context.Background())
}

// Submit implements the Pool interface's single-task submission.
func (p *fixedPool) Submit(fn func()) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	if err := p.throttle(); err != nil {
		return err
	}

	idx := p.selectWorker()
	return p.admitBatch(p.workers[idx], []Task{NewTask(fn)})
}

// SubmitBatch implements the Pool interface's batch submission: the
// whole batch is routed to a single chosen worker under one load-
// balancer decision, exactly the "single lock acquisition" optimization
// spec.md §4.4 calls out for the unbounded case (and, per the resolved
// Open Question, for the bounded case too — just checked all-or-nothing
// instead of admitted piecewise).
func (p *fixedPool) SubmitBatch(fns []func()) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	if len(fns) == 0 {
		return nil
	}
	if err := p.throttle(); err != nil {
		return err
	}

	tasks := make([]Task, len(fns))
	for i, fn := range fns {
		tasks[i] = NewTask(fn)
	}

	idx := p.selectWorker()
	return p.admitBatch(p.workers[idx], tasks)
}

// ThreadCount returns the (fixed) number of workers.
func (p *fixedPool) ThreadCount() int { return len(p.workers) }

// TasksLoaded returns the number of tasks currently pending across every
// worker: queued plus popped-but-still-running. A task leaves this count
// only once its invocation has returned.
func (p *fixedPool) TasksLoaded() int64 { return p.taskLoaded.Load() }

// TasksSubmitted returns the cumulative number of tasks ever admitted.
func (p *fixedPool) TasksSubmitted() int64 { return p.totalTasks.Load() }

// IsClosed reports whether Close has been called.
func (p *fixedPool) IsClosed() bool { return p.closed.Load() }

func (p *fixedPool) allIdle() bool {
	for _, w := range p.workers {
		if !w.isWaiting() {
			return false
		}
	}
	return true
}

// WaitForTasks blocks until every submitted task has been invoked (or,
// under PolicyBoundedCallback, handed to the overflow callback) and
// every worker reports idle. Calling this from inside a task submitted
// to the same pool self-deadlocks by construction — spec.md §7, §9 name
// this a forbidden usage that the library does not attempt to detect.
func (p *fixedPool) WaitForTasks() {
	p.idleMu.Lock()
	defer p.idleMu.Unlock()
	for p.taskLoaded.Load() != 0 || !p.allIdle() {
		p.idleCond.Wait()
	}
}

// Close stops every worker, waits for each to drain its already-enqueued
// work and exit, then returns. Idempotent: a second call observes the
// same terminal state and returns the same result as the first.
func (p *fixedPool) Close() error {
	p.closeOnce.Do(func() {
		debugLog("close: stopping %d worker(s), %d task(s) still loaded", len(p.workers), p.taskLoaded.Load())
		p.closed.Store(true)
		for _, w := range p.workers {
			w.stop()
		}
		p.closeErr = p.group.Wait()
	})
	return p.closeErr
}

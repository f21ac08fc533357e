package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/corepool/corepool/internal/backoff"
)

// DynamicPool is the elastic pool built on the Shared-Queue Worker
// variant: every worker pulls from one pool-wide sharedQueue, so global
// FIFO holds across all submissions regardless of how many workers exist
// at any given moment. Unlike BalancePool and SteadyPool, its thread
// count can be mutated at runtime via Add, Del, and Adjust.
//
// Lifecycle operations (Add, Del, Adjust, Close, JoinDead) are not safe
// to call concurrently with themselves on the same pool — callers must
// serialize them, the same contract spec.md §5 places on the fixed
// pools' Close.
type DynamicPool struct {
	cfg   *poolConfig
	queue *sharedQueue

	mu        sync.RWMutex
	workers   []*dynamicWorker
	nextIndex int

	deadMu sync.Mutex
	dead   []*dynamicWorker

	expectedCount atomic.Int64
	liveCount     atomic.Int64
	totalTasks    atomic.Int64
	taskLoaded    atomic.Int64

	closing   atomic.Bool
	closeOnce sync.Once
	closeErr  error

	idleMu   sync.Mutex
	idleCond *sync.Cond

	sampleMu        sync.Mutex
	lastSampleAt    time.Time
	lastCompleted   uint64

	group *errgroup.Group
}

// NewDynamicPool creates a pool-wide shared queue and initialThreadCount
// shared-queue workers. initialThreadCount below 0 is treated as 0 (a
// pool with no workers yet, to be grown with Add).
func NewDynamicPool(initialThreadCount int, opts ...Option) *DynamicPool {
	if initialThreadCount < 0 {
		initialThreadCount = 0
	}
	cfg := buildConfig(opts...)

	var g errgroup.Group
	p := &DynamicPool{
		cfg:          cfg,
		queue:        newSharedQueue(),
		group:        &g,
		lastSampleAt: time.Now(),
	}
	p.idleCond = sync.NewCond(&p.idleMu)

	if initialThreadCount > 0 {
		_ = p.addLocked(initialThreadCount)
	}
	return p
}

func (p *DynamicPool) onTaskDone() {
	p.taskLoaded.Add(-1)
	p.idleCond.Broadcast()
}

// onWorkerIdle is called by a worker the instant it transitions into the
// waiting state, right before it blocks in the shared queue's Pop — the
// only accurate place to wake WaitForTasks. onTaskDone's broadcast above
// fires right after Invoke returns, before the worker has re-checked the
// queue and actually gone idle, so a waiter relying on that broadcast
// alone could see a still-busy worker, re-enter Wait, and never be woken.
// Holding idleMu makes the wake-up reliable: a waiter between its
// predicate check and Wait still holds the mutex, so this broadcast
// cannot slip into that window.
func (p *DynamicPool) onWorkerIdle() {
	p.idleMu.Lock()
	p.idleCond.Broadcast()
	p.idleMu.Unlock()
}

func (p *DynamicPool) onWorkerExit(w *dynamicWorker) {
	// Publish to the dead list before dropping liveCount, so a caller that
	// sees RunningCount reach its target (WaitForThreads) and then calls
	// JoinDead finds every exited worker already listed.
	p.deadMu.Lock()
	p.dead = append(p.dead, w)
	p.deadMu.Unlock()
	p.liveCount.Add(-1)

	// A del-marked worker exits instead of parking, so its last onTaskDone
	// may be the event that makes WaitForTasks' predicate true; broadcast
	// under idleMu for the same lost-wakeup reason as onWorkerIdle.
	p.idleMu.Lock()
	p.idleCond.Broadcast()
	p.idleMu.Unlock()
}

// addLocked assumes the caller holds p.mu.
func (p *DynamicPool) addLocked(k int) error {
	for i := 0; i < k; i++ {
		idx := p.nextIndex
		p.nextIndex++

		debugLog("add: spawning worker %d", idx)
		w := newDynamicWorker(idx, p.queue, &p.closing, p.cfg.pinWorkers)
		p.workers = append(p.workers, w)
		p.liveCount.Add(1)

		p.group.Go(func() error {
			w.run(p.onTaskDone, p.onWorkerIdle, p.onWorkerExit)
			return nil
		})
	}
	p.expectedCount.Add(int64(k))
	return nil
}

// delLocked assumes the caller holds p.mu. It trims the k most recently
// added, still-live workers off the roster (LIFO, so that Add(k) followed
// by Del(k) deterministically returns the roster to its prior members)
// and returns them for the caller to stop once p.mu is released. If k
// exceeds the live roster, every live worker is trimmed — "delete all",
// per spec.md §9.
func (p *DynamicPool) delLocked(k int) []*dynamicWorker {
	n := len(p.workers)
	if k > n {
		k = n
	}
	toStop := p.workers[n-k:]
	p.workers = p.workers[:n-k]
	p.expectedCount.Add(-int64(k))
	return toStop
}

// stopWorkers flips each trimmed worker's running flag and wakes everyone
// parked on the shared queue. Must run without p.mu held: Broadcast takes
// the queue mutex, a parking worker publishes its idle transition while
// holding the queue mutex (queue.mu → idleMu), and WaitForTasks reads the
// roster under idleMu (idleMu → p.mu) — broadcasting under p.mu would
// close that cycle into a deadlock. Close follows the same pattern.
func (p *DynamicPool) stopWorkers(workers []*dynamicWorker) {
	if len(workers) == 0 {
		return
	}
	for _, w := range workers {
		debugLog("del: stopping worker %d", w.index)
		w.requestStop()
	}
	p.queue.Broadcast()
}

// Add spawns k new workers. They begin polling the shared queue
// immediately; ExpectedCount and RunningCount both grow by k before Add
// returns, since a worker counts as running from the moment it is spawned
// until its loop exits.
func (p *DynamicPool) Add(k int) error {
	if p.closing.Load() {
		return fmt.Errorf("add(%d) on closed pool: %w", k, ErrInvalidLifecycle)
	}
	if k <= 0 {
		return fmt.Errorf("add(%d): %w", k, ErrInvalidLifecycle)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addLocked(k)
}

// Del marks k currently-live workers for shutdown. It does not wait for
// them to actually exit — RunningCount decays toward ExpectedCount as
// each finishes its current task and returns. If k exceeds the live
// count, every live worker is marked.
func (p *DynamicPool) Del(k int) error {
	if p.closing.Load() {
		return fmt.Errorf("del(%d) on closed pool: %w", k, ErrInvalidLifecycle)
	}
	if k <= 0 {
		return fmt.Errorf("del(%d): %w", k, ErrInvalidLifecycle)
	}
	p.mu.Lock()
	stopped := p.delLocked(k)
	p.mu.Unlock()

	p.stopWorkers(stopped)
	return nil
}

// Adjust normalizes to Add or Del so that ExpectedCount becomes target.
// adjust(x) applied twice in a row is idempotent: the second call is a
// no-op because target already equals ExpectedCount.
func (p *DynamicPool) Adjust(target int) error {
	if target < 0 {
		return fmt.Errorf("adjust(%d): %w", target, ErrInvalidLifecycle)
	}
	if p.closing.Load() {
		return fmt.Errorf("adjust(%d) on closed pool: %w", target, ErrInvalidLifecycle)
	}

	p.mu.Lock()
	current := int(p.expectedCount.Load())
	if target > current {
		defer p.mu.Unlock()
		return p.addLocked(target - current)
	}
	stopped := p.delLocked(current - target)
	p.mu.Unlock()

	p.stopWorkers(stopped)
	return nil
}

// ExpectedCount returns the target worker count after the most recent
// Add/Del/Adjust.
func (p *DynamicPool) ExpectedCount() int { return int(p.expectedCount.Load()) }

// RunningCount returns the number of worker goroutines that have not yet
// exited. It converges to ExpectedCount once every pending Del target
// has finished its current task and returned.
func (p *DynamicPool) RunningCount() int { return int(p.liveCount.Load()) }

// WaitForThreads blocks, polling with a capped exponential backoff,
// until RunningCount equals ExpectedCount.
func (p *DynamicPool) WaitForThreads() {
	strategy := backoff.New(backoff.Exponential, 100*time.Microsecond, 10*time.Millisecond, 0)
	for poll := 0; p.RunningCount() != p.ExpectedCount(); poll++ {
		time.Sleep(strategy.NextDelay(poll))
	}
}

// JoinDead reaps every worker that has exited but not yet been joined,
// returning how many were reaped. A worker lands on the dead list from
// inside its own loop, an instant before the loop actually returns, so
// JoinDead blocks on each one's done channel to guarantee the goroutine
// is fully gone before counting it reaped.
func (p *DynamicPool) JoinDead() int {
	p.deadMu.Lock()
	dead := p.dead
	p.dead = nil
	p.deadMu.Unlock()

	for _, w := range dead {
		<-w.done()
	}
	return len(dead)
}

func (p *DynamicPool) throttle() error {
	if p.cfg.rateLimiter == nil {
		return nil
	}
	return p.cfg.rateLimiter.Wait(context.Background())
}

// Submit implements the Pool interface. The shared queue is always
// unbounded, so admission never fails except when the pool is closed.
func (p *DynamicPool) Submit(fn func()) error {
	if p.closing.Load() {
		return ErrPoolClosed
	}
	if err := p.throttle(); err != nil {
		return err
	}
	// Counters go up before the push: a worker may pop and finish the task
	// the instant it becomes visible, and its decrement must never land
	// ahead of this increment (see fixedPool.admitBatch for the same
	// ordering).
	p.totalTasks.Add(1)
	p.taskLoaded.Add(1)
	p.queue.Push(NewTask(fn))
	return nil
}

// SubmitBatch pushes the whole batch under one lock acquisition. Tasks
// submitted by a single producer execute in submission order, since the
// shared queue is global FIFO.
func (p *DynamicPool) SubmitBatch(fns []func()) error {
	if p.closing.Load() {
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
	p.totalTasks.Add(int64(len(tasks)))
	p.taskLoaded.Add(int64(len(tasks)))
	p.queue.PushBatch(tasks)
	return nil
}

// ThreadCount returns the current live worker count (RunningCount).
func (p *DynamicPool) ThreadCount() int { return p.RunningCount() }

// TasksLoaded returns the number of tasks currently pending: queued plus
// popped-but-still-running. A task leaves this count only once its
// invocation has returned, which is what lets WaitForTasks treat zero as
// "everything admitted has actually run".
func (p *DynamicPool) TasksLoaded() int64 { return p.taskLoaded.Load() }

// TasksSubmitted returns the cumulative number of tasks ever admitted.
func (p *DynamicPool) TasksSubmitted() int64 { return p.totalTasks.Load() }

// IsClosed reports whether Close has been called.
func (p *DynamicPool) IsClosed() bool { return p.closing.Load() }

// Sample reads the throughput monitor: two successive calls' difference
// in completed-task count, divided by the elapsed wall time between
// them, gives tasks-completed-per-unit-time.
func (p *DynamicPool) Sample() ThroughputSample {
	p.sampleMu.Lock()
	defer p.sampleMu.Unlock()

	now := time.Now()
	// loaded is read before submitted: a Submit landing between the two
	// loads bumps totalTasks first, so this order can only overcount
	// completions, never undercount them below the previous sample. The
	// clamp below catches the leftover case where the previous sample was
	// the overcounted one.
	loaded := uint64(p.taskLoaded.Load())
	submitted := uint64(p.totalTasks.Load())
	completedTotal := submitted - loaded
	if completedTotal < p.lastCompleted {
		completedTotal = p.lastCompleted
	}

	completedSinceLast := completedTotal - p.lastCompleted
	interval := now.Sub(p.lastSampleAt)

	p.lastCompleted = completedTotal
	p.lastSampleAt = now

	return ThroughputSample{
		Submitted:          submitted,
		Loaded:             loaded,
		CompletedSinceLast: completedSinceLast,
		Interval:           interval,
	}
}

func (p *DynamicPool) allIdleLocked() bool {
	for _, w := range p.workers {
		if !w.isWaiting() {
			return false
		}
	}
	return true
}

// WaitForTasks blocks until every admitted task has finished running and
// every live worker reports idle. As with the fixed pools, calling this
// from inside a task submitted to the same pool self-deadlocks by
// construction.
func (p *DynamicPool) WaitForTasks() {
	p.idleMu.Lock()
	defer p.idleMu.Unlock()

	for {
		p.mu.RLock()
		idle := p.taskLoaded.Load() == 0 && p.allIdleLocked()
		p.mu.RUnlock()
		if idle {
			return
		}
		p.idleCond.Wait()
	}
}

// Close requests every live worker to stop, drains the shared queue the
// same way the fixed pools drain theirs (any task already enqueued at
// Close time is invoked before Close returns), joins every worker
// goroutine, and transitions the pool to a terminal state. Idempotent.
func (p *DynamicPool) Close() error {
	p.closeOnce.Do(func() {
		debugLog("close: draining %d queued task(s)", p.queue.Len())
		p.closing.Store(true)

		p.mu.Lock()
		for _, w := range p.workers {
			w.running.Store(false)
		}
		p.mu.Unlock()

		p.queue.Broadcast()
		p.closeErr = p.group.Wait()
	})
	return p.closeErr
}

package pool

import "sync/atomic"

// workerHandle is the lifecycle-control surface the Fixed Pool Base uses
// against its two worker variants (balanceWorker and steadyWorker). The
// Dynamic Pool does not go through this interface: dynamicWorker does not
// implement it, and DynamicPool calls its workerBase methods directly. It
// plays the role a pluggable scheduling strategy's worker method would
// play in a more general framework, narrowed to the concrete shapes this
// library defines — spec.md §9 rules out a user-supplied shape ("Global
// state: None").
type workerHandle interface {
	// stop requests termination. The worker exits once it next observes
	// running=false with its queue (or buffer) drained of already
	// enqueued work, per the drain-on-close guarantee.
	stop()
	// isWaiting reports whether the worker is currently parked, idle.
	isWaiting() bool
	// queueLen is an atomic, possibly-stale snapshot of pending work,
	// used by the load balancer.
	queueLen() int
	// wake nudges a parked worker to re-check its queue; a parked worker
	// otherwise stays parked until wake or stop.
	wake()
}

// idlePark is the "per-worker pause condition" spec.md §4.3 requires for
// Balance and Steady workers: a single-slot notification the owning
// worker selects on while its queue is empty. Implemented as a buffered
// channel rather than sync.Cond so a wake arriving before the worker
// starts waiting is never lost — it simply sits in the channel's buffer
// until the worker's next select.
type idlePark struct {
	wakeCh chan struct{}
}

func newIdlePark() *idlePark {
	return &idlePark{wakeCh: make(chan struct{}, 1)}
}

// Wake signals the park. Multiple Wake calls before the corresponding
// Wait coalesce into a single pending wake-up, which is fine: the
// worker's loop always re-checks its own predicate (queue non-empty, or
// running=false) after waking, spurious or not.
func (p *idlePark) Wake() {
	select {
	case p.wakeCh <- struct{}{}:
	default:
	}
}

// WaitOrStop blocks until Wake is called or stopCh fires, whichever
// first.
func (p *idlePark) WaitOrStop(stopCh <-chan struct{}) {
	select {
	case <-p.wakeCh:
	case <-stopCh:
	}
}

// workerBase holds the state common to all three worker variants:
// identity, running flag, and idle-wait signaling.
type workerBase struct {
	index      int
	running    atomic.Bool
	waiting    atomic.Bool
	park       *idlePark
	stopCh     chan struct{}
	stopOnce   atomic.Bool
	finishedCh chan struct{}
}

func newWorkerBase(index int) workerBase {
	return workerBase{
		index:      index,
		park:       newIdlePark(),
		stopCh:     make(chan struct{}),
		finishedCh: make(chan struct{}),
	}
}

func (w *workerBase) isWaiting() bool { return w.waiting.Load() }
func (w *workerBase) wake()           { w.park.Wake() }

// done returns a channel closed once the worker's loop has fully
// returned, the Go analog of a joinable thread handle. DynamicPool's
// JoinDead blocks on it per reaped worker.
func (w *workerBase) done() <-chan struct{} { return w.finishedCh }

func (w *workerBase) requestStop() {
	if w.stopOnce.CompareAndSwap(false, true) {
		w.running.Store(false)
		close(w.stopCh)
	}
	w.park.Wake()
}

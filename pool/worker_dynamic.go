package pool

import (
	"sync/atomic"

	"github.com/corepool/corepool/internal/cpu"
)

// dynamicWorker is the Shared-Queue Worker variant backing DynamicPool:
// no private queue at all, every worker pulling from the one pool-wide
// sharedQueue. Global FIFO across all submissions holds because every
// producer and every worker touch the same queue.
type dynamicWorker struct {
	workerBase
	queue   *sharedQueue
	closing *atomic.Bool // shared with the owning DynamicPool
	pin     bool
}

func newDynamicWorker(index int, queue *sharedQueue, closing *atomic.Bool, pin bool) *dynamicWorker {
	w := &dynamicWorker{
		workerBase: newWorkerBase(index),
		queue:      queue,
		closing:    closing,
		pin:        pin,
	}
	w.running.Store(true)
	return w
}

// run is started as a goroutine per live worker. onDone fires after every
// invoked task; onIdle fires every time this worker transitions into the
// waiting state, right before it blocks in Pop — the only place
// wait-for-tasks can be woken accurately, since onDone's broadcast fires
// too early, before the worker has actually gone idle. onExit fires once,
// when the loop returns, so the owning pool can move this worker from its
// live roster to the dead-worker reap list.
func (w *dynamicWorker) run(onDone, onIdle func(), onExit func(*dynamicWorker)) {
	defer close(w.finishedCh)
	defer onExit(w)

	if w.pin {
		defer cpu.SetupWorkerAffinity(w.index)()
	}

	for {
		t, ok := w.queue.Pop(&w.running, w.closing, func() {
			w.waiting.Store(true)
			onIdle()
		})
		if !ok {
			return
		}
		w.waiting.Store(false)
		t.Invoke()
		onDone()
	}
}

package pool

import "github.com/corepool/corepool/internal/cpu"

// balanceWorker is the Single-Queue Worker variant backing BalancePool:
// one worker, one locked balanceQueue, both producers and the worker
// itself contending on the same Spin Primitive — which is precisely what
// keeps every queued task reachable for load-balancing reassignment
// while it is still sitting in the queue (spec.md §4.3).
type balanceWorker struct {
	workerBase
	queue *balanceQueue
	pin   bool
}

func newBalanceWorker(index, capacity int, pin bool) *balanceWorker {
	w := &balanceWorker{
		workerBase: newWorkerBase(index),
		queue:      newBalanceQueue(capacity),
		pin:        pin,
	}
	w.running.Store(true)
	return w
}

func (w *balanceWorker) queueLen() int { return w.queue.Len() }
func (w *balanceWorker) stop()         { w.requestStop() }

// run is the worker's execution loop, started as a goroutine by the pool
// that owns it. onDone is called once per invoked task, after it returns,
// so the pool can update its task_loaded bookkeeping. onIdle is called
// every time this worker transitions into the waiting state, which is the
// only place wait-for-tasks can be woken accurately — onDone's broadcast
// fires too early, before the worker has actually gone idle.
func (w *balanceWorker) run(onDone, onIdle func()) {
	defer close(w.finishedCh)

	if w.pin {
		defer cpu.SetupWorkerAffinity(w.index)()
	}

	for {
		if t, ok := w.queue.Pop(); ok {
			w.waiting.Store(false)
			t.Invoke()
			onDone()
			continue
		}

		w.waiting.Store(true)
		onIdle()
		if !w.running.Load() {
			return
		}
		w.park.WaitOrStop(w.stopCh)
	}
}

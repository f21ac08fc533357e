package pool

import "github.com/corepool/corepool/internal/cpu"

// steadyWorker is the Dual-Queue Worker variant backing SteadyPool. It
// drains its worker-private buffer lock-free whenever there's something
// in it, and only takes the spinlock to swap the whole public queue into
// the buffer once that buffer runs dry — amortizing one lock acquisition
// across however many tasks arrived in the meantime.
type steadyWorker struct {
	workerBase
	queue *dualQueue
	pin   bool
}

func newSteadyWorker(index, capacity int, pin bool) *steadyWorker {
	w := &steadyWorker{
		workerBase: newWorkerBase(index),
		queue:      newDualQueue(capacity),
		pin:        pin,
	}
	w.running.Store(true)
	return w
}

func (w *steadyWorker) queueLen() int { return w.queue.Len() }
func (w *steadyWorker) stop()         { w.requestStop() }

// onIdle is called every time this worker transitions into the waiting
// state (after both the buffer and a swap attempt have come up empty) so
// wait-for-tasks can be woken accurately — onDone's broadcast fires too
// early, before the worker has actually gone idle.
func (w *steadyWorker) run(onDone, onIdle func()) {
	defer close(w.finishedCh)

	if w.pin {
		defer cpu.SetupWorkerAffinity(w.index)()
	}

	for {
		if t, ok := w.queue.PopBuffer(); ok {
			w.waiting.Store(false)
			t.Invoke()
			onDone()
			continue
		}

		if w.queue.Swap() {
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

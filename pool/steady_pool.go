package pool

// SteadyPool is the fixed-width pool built on the Dual-Queue Worker
// variant: each worker owns a public queue producers append to under
// the spinlock, and a private buffer it drains lock-free after a single
// swap pulls the whole public queue across. This amortizes locking
// across a burst of tasks instead of paying for it once per task, at the
// cost of slightly higher latency for the very first task in a burst
// (it waits for the next swap rather than running immediately).
//
// Example:
//
//	p := pool.NewSteadyPool(8)
//	defer p.Close()
//	future, _ := pool.SubmitForReturn(p, func() (int, error) { return 2023, nil })
//	v, _ := future.Get(context.Background())
type SteadyPool struct {
	*fixedPool
}

// NewSteadyPool spawns threadCount workers, each bound to its own public
// queue and private buffer. threadCount below 1 is treated as 1.
func NewSteadyPool(threadCount int, opts ...Option) *SteadyPool {
	if threadCount < 1 {
		threadCount = 1
	}
	cfg := buildConfig(opts...)

	workers := make([]fixedWorker, threadCount)
	for i := range workers {
		workers[i] = newSteadyWorker(i, cfg.capacity, cfg.pinWorkers)
	}

	fp := newFixedPool(cfg, workers, func(w fixedWorker, onDone, onIdle func()) {
		w.(*steadyWorker).run(onDone, onIdle)
	})
	return &SteadyPool{fixedPool: fp}
}

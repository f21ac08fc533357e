package pool

// BalancePool is the fixed-width pool built on the Single-Queue Worker
// variant: each worker owns one locked balanceQueue, and the load
// balancer in fixedPool picks a destination worker per incoming task
// (or batch) preferring an idle or empty candidate. Within a single
// worker's queue, tasks execute in push order; there is no ordering
// guarantee across workers, since the balancer may split the stream
// between them.
//
// Example:
//
//	p := pool.NewBalancePool(8, pool.WithBoundedThrow(1000))
//	defer p.Close()
//	_ = p.Submit(func() { fmt.Println("hello") })
//	p.WaitForTasks()
type BalancePool struct {
	*fixedPool
}

// NewBalancePool spawns threadCount workers, each bound to its own
// balanceQueue, and starts the load balancer's cursor at 0. threadCount
// below 1 is treated as 1.
func NewBalancePool(threadCount int, opts ...Option) *BalancePool {
	if threadCount < 1 {
		threadCount = 1
	}
	cfg := buildConfig(opts...)

	workers := make([]fixedWorker, threadCount)
	for i := range workers {
		workers[i] = newBalanceWorker(i, cfg.capacity, cfg.pinWorkers)
	}

	fp := newFixedPool(cfg, workers, func(w fixedWorker, onDone, onIdle func()) {
		w.(*balanceWorker).run(onDone, onIdle)
	})
	return &BalancePool{fixedPool: fp}
}

// Package pool implements a high-throughput, in-process thread pool
// library offering three complementary pool shapes tuned for millions of
// small tasks per second: BalancePool (single-queue, load-balanced
// workers), SteadyPool (dual-queue workers amortizing locking across
// bursts), and DynamicPool (one shared queue, runtime-adjustable worker
// count).
//
// All three share the same submission façade — Submit, SubmitBatch, and
// the free functions SubmitForReturn / SubmitBatchForReturn — and the
// same admission/overflow contract on the fixed pools (BalancePool,
// SteadyPool). Dynamic's shared queue is always unbounded.
//
// # Choosing a pool
//
// BalancePool suits short, independent tasks where per-task latency
// matters more than raw throughput: every push and pop takes the
// spinlock, so placement decisions are visible immediately. SteadyPool
// suits sustained high-volume bursts where amortizing the lock across a
// whole batch outweighs the latency cost of waiting for the next swap.
// DynamicPool suits workloads whose concurrency demand changes over the
// pool's lifetime — it is the only one of the three that supports
// runtime Add/Del/Adjust.
//
// # Basic usage
//
//	p := pool.NewBalancePool(8)
//	defer p.Close()
//
//	future, err := pool.SubmitForReturn(p, func() (int, error) {
//		return 2023, nil
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	v, err := future.Get(context.Background())
//
// # Bounded admission
//
// Fixed pools default to unbounded queues. Bound them with one of the
// overflow policy options:
//
//	p := pool.NewSteadyPool(8, pool.WithBoundedCallback(800, func(refused []pool.Task) {
//		for i := range refused {
//			metrics.DroppedTasks.Inc()
//			_ = i
//		}
//	}))
//
// # Dynamic scaling
//
//	d := pool.NewDynamicPool(8)
//	defer d.Close()
//	_ = d.Add(8)
//	d.WaitForThreads()           // RunningCount() == 16
//	_ = d.Adjust(0)               // ExpectedCount() == 0 immediately
//	d.WaitForThreads()           // RunningCount() decays to 0
//	d.JoinDead()
//
// # Error handling
//
// Submission returns a value/error; no task silently disappears except
// under PolicyBoundedCallback, where the callback is the resolution
// mechanism. A task panicking is a fatal programming error the library
// neither catches nor recovers from — the worker goroutine (and,
// following Go's default panic behavior, the process) is considered
// lost; this mirrors the "exceptions from tasks are UB" contract of the
// source this package's design is grounded on. Calling WaitForTasks from
// inside a task submitted to the same pool self-deadlocks by
// construction and is not detected.
package pool

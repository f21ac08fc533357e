package pool

import (
	"time"

	"golang.org/x/time/rate"
)

// OverflowPolicy selects what a bounded fixed pool (Balance or Steady)
// does when the load balancer's chosen worker has no room for an
// incoming task. It has no effect on Dynamic, whose shared queue is
// always unbounded (spec.md §3).
type OverflowPolicy int

const (
	// PolicyUnbounded is the default: capacity is 0 and admission never
	// fails.
	PolicyUnbounded OverflowPolicy = iota
	// PolicyBoundedThrow raises ErrAdmissionRefused when the chosen
	// worker's queue is full.
	PolicyBoundedThrow
	// PolicyBoundedBlock makes the submitting producer wait until space
	// appears, re-checking the chosen worker's queue once per block poll
	// interval (see WithBlockPollInterval).
	PolicyBoundedBlock
	// PolicyBoundedCallback hands the refused task(s) to the configured
	// OverflowCallback, synchronously, on the producer's goroutine,
	// before the submit call returns.
	PolicyBoundedCallback
)

// OverflowCallback receives an ordered batch of tasks a bounded pool
// under PolicyBoundedCallback refused to admit. It runs synchronously on
// the submitting producer's goroutine. It must not submit to the same
// pool if the pool is bounded — doing so can recurse back into overflow.
type OverflowCallback func(refused []Task)

type poolConfig struct {
	capacity         int
	policy           OverflowPolicy
	overflowCallback OverflowCallback
	rateLimiter      *rate.Limiter
	pinWorkers       bool
	blockPollDelay   time.Duration
}

func defaultPoolConfig() *poolConfig {
	return &poolConfig{
		policy:         PolicyUnbounded,
		blockPollDelay: time.Millisecond,
	}
}

// Option configures a pool at construction time. All three pool
// constructors (NewBalancePool, NewSteadyPool, NewDynamicPool) accept the
// same Option type; the bounded-queue options (WithBoundedThrow,
// WithBoundedBlock, WithBoundedCallback) are meaningful only for the
// fixed pools and are ignored by NewDynamicPool, whose shared queue is
// always unbounded by design.
type Option func(*poolConfig)

// WithBoundedThrow bounds each worker's queue at capacity tasks and
// raises ErrAdmissionRefused on overflow.
func WithBoundedThrow(capacity int) Option {
	return func(cfg *poolConfig) {
		if capacity > 0 {
			cfg.capacity = capacity
			cfg.policy = PolicyBoundedThrow
		}
	}
}

// WithBoundedBlock bounds each worker's queue at capacity tasks; a
// producer submitting into a full queue blocks until space appears
// rather than failing.
func WithBoundedBlock(capacity int) Option {
	return func(cfg *poolConfig) {
		if capacity > 0 {
			cfg.capacity = capacity
			cfg.policy = PolicyBoundedBlock
		}
	}
}

// WithBoundedCallback bounds each worker's queue at capacity tasks;
// refused tasks are handed to cb synchronously on the producer's
// goroutine instead of being admitted.
func WithBoundedCallback(capacity int, cb OverflowCallback) Option {
	return func(cfg *poolConfig) {
		if capacity > 0 && cb != nil {
			cfg.capacity = capacity
			cfg.policy = PolicyBoundedCallback
			cfg.overflowCallback = cb
		}
	}
}

// WithRateLimit throttles aggregate admission rate across all producers
// using a token-bucket limiter: at most tasksPerSecond admissions per
// second, with a burst of up to burst tasks. It runs ahead of the load
// balancer and does not introduce task priority or producer fairness —
// both remain out of scope (spec.md §1 Non-goals) — it only shapes the
// aggregate admission rate.
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(cfg *poolConfig) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithPinWorkers opts each worker's OS thread into CPU affinity pinning
// (round-robin across logical CPUs by worker index), trading portability
// for reduced cross-core migration under sustained load. Off by default;
// not available on darwin, where it only locks the OS thread.
func WithPinWorkers(pin bool) Option {
	return func(cfg *poolConfig) {
		cfg.pinWorkers = pin
	}
}

// WithBlockPollInterval overrides how often a PolicyBoundedBlock producer
// re-checks for free queue space while parked. Default 1ms.
func WithBlockPollInterval(d time.Duration) Option {
	return func(cfg *poolConfig) {
		if d > 0 {
			cfg.blockPollDelay = d
		}
	}
}

func buildConfig(opts ...Option) *poolConfig {
	cfg := defaultPoolConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

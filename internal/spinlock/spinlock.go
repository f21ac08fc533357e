// Package spinlock provides the Spin Primitive: a single-bit test-and-set
// lock with a bounded spin-then-yield backoff, used to guard the tiny
// critical sections in the Balance and Steady worker queues (a single
// push, or a pointer-swap of two deques) where a kernel mutex's fall-
// through would cost more than the critical section itself.
package spinlock

import (
	"runtime"
	"sync/atomic"

	"github.com/corepool/corepool/internal/cpu"
)

// maxSpinAttempts bounds how many times Lock retries the CAS before
// yielding to the scheduler, on a multiprocessor. Mirrors the spin/yield
// split used by the mpmc ring buffer this primitive is grounded on.
const maxSpinAttempts = 10

// SpinLock is a non-reentrant, non-blocking-on-TryLock test-and-set lock.
// The zero value is unlocked and ready to use.
type SpinLock struct {
	locked atomic.Bool
	// uniprocessor is resolved once, lazily, from the hardware-concurrency
	// probe: on a single logical CPU there is no other thread to spin
	// waiting for, so every failed attempt yields immediately.
	uniprocessor atomic.Bool
	resolved     atomic.Bool
}

// Lock blocks until the lock is acquired.
func (s *SpinLock) Lock() {
	if !s.resolved.Load() {
		s.uniprocessor.Store(cpu.GetNumCPU() <= 1)
		s.resolved.Store(true)
	}

	if s.uniprocessor.Load() {
		for !s.TryLock() {
			runtime.Gosched()
		}
		return
	}

	spins := 0
	for !s.TryLock() {
		spins++
		if spins >= maxSpinAttempts {
			runtime.Gosched()
			spins = 0
			continue
		}
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired.
func (s *SpinLock) TryLock() bool {
	return s.locked.CompareAndSwap(false, true)
}

// Unlock releases the lock. Unlocking an unlocked SpinLock is a programmer
// error and panics, the same as misuse of sync.Mutex.
func (s *SpinLock) Unlock() {
	if !s.locked.CompareAndSwap(true, false) {
		panic("spinlock: Unlock of unlocked lock")
	}
}

// Guard acquires the lock and returns a function that releases it,
// intended for use as `defer lock.Guard()()` so the lock releases on every
// exit path of the caller's critical section.
func (s *SpinLock) Guard() func() {
	s.Lock()
	return s.Unlock
}

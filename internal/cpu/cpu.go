// Package cpu exposes the hardware-concurrency probe the core consults to
// pick a spin strategy, plus optional per-worker OS-thread affinity pinning.
package cpu

import "runtime"

// GetNumCPU returns the number of logical CPUs available to the process.
// The Spin Primitive reads this on its first Lock to decide whether a
// failed test-and-set should yield immediately (uniprocessor) or spin a
// bounded number of times first (multiprocessor).
func GetNumCPU() int {
	return runtime.NumCPU()
}

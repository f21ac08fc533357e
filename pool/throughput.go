package pool

import "time"

// ThroughputSample is a point-in-time read from the Dynamic pool's
// throughput monitor: an observability API the pool itself never reacts
// to. CompletedSinceLast is derived from two successive reads of
// total_tasks - task_loaded, per spec.md §4.5.
type ThroughputSample struct {
	Submitted          uint64
	Loaded             uint64
	CompletedSinceLast uint64
	Interval           time.Duration
}

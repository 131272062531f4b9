package core

import "time"

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting work-queue metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods should be non-blocking and fast to avoid impacting the
// submission path and worker loops; they may be called concurrently.
type Metrics interface {
	// RecordSubmitted records that an item was submitted to a pool.
	RecordSubmitted(poolName string)

	// RecordCompleted records that an item's completion callback ran.
	RecordCompleted(poolName string)

	// RecordExecuteDuration records how long an item's Run step took on a
	// worker goroutine.
	RecordExecuteDuration(poolName string, duration time.Duration)

	// RecordWorkPanic records that an item panicked. stage is "run" for a
	// panic on a worker goroutine, "done" for a panic on the drain
	// goroutine.
	RecordWorkPanic(poolName string, stage string)

	// RecordThreadCount records the pool's worker count after a grow or
	// shrink event.
	RecordThreadCount(poolName string, threads int)

	// RecordPendingDepth records the current pending-list depth.
	RecordPendingDepth(poolName string, depth int)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

// RecordSubmitted is a no-op.
func (m *NilMetrics) RecordSubmitted(poolName string) {}

// RecordCompleted is a no-op.
func (m *NilMetrics) RecordCompleted(poolName string) {}

// RecordExecuteDuration is a no-op.
func (m *NilMetrics) RecordExecuteDuration(poolName string, duration time.Duration) {}

// RecordWorkPanic is a no-op.
func (m *NilMetrics) RecordWorkPanic(poolName string, stage string) {}

// RecordThreadCount is a no-op.
func (m *NilMetrics) RecordThreadCount(poolName string, threads int) {}

// RecordPendingDepth is a no-op.
func (m *NilMetrics) RecordPendingDepth(poolName string, depth int) {}

// =============================================================================
// Stats snapshots
// =============================================================================

// PoolStats represents runtime observability state for a worker pool.
// Counter values are sampled together under the pool's pending lock;
// Finished is sampled separately under the finished lock.
type PoolStats struct {
	Name     string
	Control  ThreadControl
	Pending  int
	Running  int
	Threads  int
	Finished int
}

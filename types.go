package workqueue

import "github.com/flockstore/go-work-queue/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the workqueue package for most use cases.

// Work is the unit of deferred work (execute step + completion callback)
type Work = core.Work

// WorkFunc adapts two plain closures to the Work interface
type WorkFunc = core.WorkFunc

// ThreadControl selects the worker sizing policy for a pool
type ThreadControl = core.ThreadControl

// Engine is the process-scoped work-queue context
type Engine = core.Engine

// Pool is a work queue with its own dynamically sized set of workers
type Pool = core.Pool

// PoolStats is a snapshot of a pool's counters
type PoolStats = core.PoolStats

// Option configures an Engine
type Option = core.Option

// Notifier is the completion bridge primitive
type Notifier = core.Notifier

// Logger is the structured logging interface used by the engine
type Logger = core.Logger

// Metrics is the observability interface used by the engine
type Metrics = core.Metrics

// Sizing mode constants
const (
	Ordered   ThreadControl = core.ThreadControlOrdered
	Dynamic   ThreadControl = core.ThreadControlDynamic
	Unlimited ThreadControl = core.ThreadControlUnlimited
)

// Convenience re-exports for engine construction and configuration
var (
	NewEngine            = core.NewEngine
	NewChanNotifier      = core.NewChanNotifier
	WithLogger           = core.WithLogger
	WithMetrics          = core.WithMetrics
	WithNotifier         = core.WithNotifier
	WithNodeCounter      = core.WithNodeCounter
	WithWorkerHooks      = core.WithWorkerHooks
	WithProtectionPeriod = core.WithProtectionPeriod
	WithSpawner          = core.WithSpawner
)

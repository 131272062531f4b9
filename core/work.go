package core

// Work is the unit of deferred work. Run executes on one of the pool's
// worker goroutines; Done executes later on the drain goroutine, after
// the item has been moved to its pool's finished list and the completion
// bridge has been signaled.
//
// The pool never inspects the implementing type beyond these two
// methods: any payload carried between Run and Done belongs to the
// implementation. Ownership of the item transfers to the pool at
// Submit and returns to the caller inside Done.
type Work interface {
	// Run executes the work on a worker goroutine. No pool lock is held
	// while Run executes, so it may block without stalling other workers
	// or producers.
	Run()

	// Done is the completion callback. It is invoked on the drain
	// goroutine, outside all pool locks, so it may safely re-enter the
	// pool (e.g. submit follow-up work).
	Done()
}

// WorkFunc adapts two plain closures to the Work interface.
// Either function may be nil, in which case that step is a no-op.
type WorkFunc struct {
	RunFunc  func()
	DoneFunc func()
}

// Run invokes RunFunc if set.
func (w *WorkFunc) Run() {
	if w.RunFunc != nil {
		w.RunFunc()
	}
}

// Done invokes DoneFunc if set.
func (w *WorkFunc) Done() {
	if w.DoneFunc != nil {
		w.DoneFunc()
	}
}

// =============================================================================
// ThreadControl: Pool sizing modes
// =============================================================================

// ThreadControl selects the worker sizing policy for a pool.
type ThreadControl int

const (
	// ThreadControlOrdered: at most one worker ever exists for the pool,
	// giving strict FIFO, non-concurrent execution of submitted items.
	ThreadControlOrdered ThreadControl = iota

	// ThreadControlDynamic: the worker count grows and shrinks with load,
	// capped at twice the current cluster node count.
	ThreadControlDynamic

	// ThreadControlUnlimited: the worker count grows with load without an
	// upper bound. Useful when submitted work may itself sleep-wait on
	// further submissions and a capped pool could deadlock.
	ThreadControlUnlimited
)

// String returns the mode name for diagnostics.
func (tc ThreadControl) String() string {
	switch tc {
	case ThreadControlOrdered:
		return "ordered"
	case ThreadControlDynamic:
		return "dynamic"
	case ThreadControlUnlimited:
		return "unlimited"
	default:
		return "invalid"
	}
}

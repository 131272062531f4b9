package core

import (
	"fmt"
	"math"
	"time"
)

// DefaultProtectionPeriod is the minimum time a pool's worker count is
// held stable after a growth or high-load observation before shrinking
// is reconsidered. Without it, workers would be created and destroyed
// in quick succession under bursty load, which performs poorly.
const DefaultProtectionPeriod = 1000 * time.Millisecond

// ceiling returns the maximum worker count permitted by the pool's
// thread-control mode. An invalid mode is a programming-contract
// violation and panics.
func (p *Pool) ceiling() int {
	switch p.tc {
	case ThreadControlOrdered:
		return 1
	case ThreadControlDynamic:
		return 2 * p.engine.nodeCount()
	case ThreadControlUnlimited:
		return math.MaxInt
	default:
		panic(fmt.Sprintf("workqueue: invalid thread control %d", p.tc))
	}
}

// needGrow reports whether the pool should double its worker count.
// Growth is indicated when the backlog exceeds the current worker count
// and doubling stays within the ceiling. On a positive decision the
// protection deadline is reset so the new workers are not immediately
// shrunk away.
//
// Caller must hold the pending lock.
func (p *Pool) needGrow(now time.Time) bool {
	if p.nrThreads < p.nrPending+p.nrRunning && p.nrThreads*2 <= p.ceiling() {
		p.protectUntil = now.Add(p.protection)
		return true
	}
	return false
}

// needShrink reports whether one idle worker should exit. Shrinking is
// indicated when more than half of the workers are unused, but only
// once the protection deadline has passed. While load is still present
// the deadline is pushed forward instead.
//
// Caller must hold the pending lock.
func (p *Pool) needShrink(now time.Time) bool {
	if p.nrPending+p.nrRunning <= p.nrThreads/2 {
		// Cannot shrink during the protection period.
		return !now.Before(p.protectUntil)
	}

	p.protectUntil = now.Add(p.protection)
	return false
}

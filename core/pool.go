package core

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
)

// Pool is a work queue with its own dynamically sized set of worker
// goroutines. Producers call Submit; workers dequeue, execute, and move
// finished items onto the finished list; the engine's drain cycle later
// runs the completion callbacks.
//
// A pool holds three independent locks: the pending lock (pending list,
// all counters, and the protection deadline), the finished lock
// (finished list only), and the startup lock (worker creation only).
// No lock is ever held while user-supplied Run or Done code executes.
//
// Pools are created through Engine.CreatePool and live for the lifetime
// of the process; there is no teardown operation.
type Pool struct {
	name string
	tc   ThreadControl

	engine *Engine

	// Pending state, guarded by mu. Idle workers sleep on cond and are
	// signaled by Submit.
	mu           sync.Mutex
	cond         *sync.Cond
	pending      *queue.Queue
	nrPending    int
	nrRunning    int
	nrThreads    int
	protectUntil time.Time
	protection   time.Duration

	// Serializes worker creation and acts as a startup barrier: freshly
	// spawned workers wait on it until the creating batch has finished
	// registering.
	startupMu sync.Mutex

	// Finished state, guarded by finishedMu only, so a worker can publish
	// a completion without blocking a concurrent dequeue or grow decision.
	finishedMu sync.Mutex
	finished   []Work

	nextWorkerID atomic.Uint64
}

// Name returns the pool's diagnostic name.
func (p *Pool) Name() string {
	return p.name
}

// Control returns the pool's thread-control mode.
func (p *Pool) Control() ThreadControl {
	return p.tc
}

// Submit hands an item over to the pool. The call is fire-and-forget:
// the item will eventually execute on a worker goroutine and its Done
// callback will run on the drain goroutine. Submit never blocks on
// worker availability, only briefly on the pending lock and, when
// growth is indicated, on synchronous worker creation.
//
// If growing the pool fails the error is logged and the item stays
// queued for the existing workers to pick up.
func (p *Pool) Submit(w Work) {
	p.engine.metrics.RecordSubmitted(p.name)

	p.mu.Lock()
	p.nrPending++

	if p.needGrow(time.Now()) {
		// Double the worker count. A pool that has shrunk all the way to
		// zero workers regrows to one here.
		target := p.nrThreads * 2
		if target < 1 {
			target = 1
		}
		if err := p.createWorkers(target); err != nil {
			p.engine.logger.Error("failed to grow worker pool",
				F("pool", p.name), F("error", err))
		}
	}

	p.pending.Add(w)
	depth := p.nrPending
	p.mu.Unlock()

	p.engine.metrics.RecordPendingDepth(p.name, depth)
	p.cond.Signal()
}

// Idle reports whether the pool has no pending and no running items at
// the instant of sampling.
func (p *Pool) Idle() bool {
	p.mu.Lock()
	nrWorks := p.nrPending + p.nrRunning
	p.mu.Unlock()

	return nrWorks == 0
}

// Stats returns a consistent snapshot of the pool's counters.
func (p *Pool) Stats() PoolStats {
	p.finishedMu.Lock()
	finished := len(p.finished)
	p.finishedMu.Unlock()

	p.mu.Lock()
	stats := PoolStats{
		Name:     p.name,
		Control:  p.tc,
		Pending:  p.nrPending,
		Running:  p.nrRunning,
		Threads:  p.nrThreads,
		Finished: finished,
	}
	p.mu.Unlock()

	return stats
}

// createWorkers spawns workers until the pool has target of them.
// Caller must hold the pending lock; the startup lock is taken nested
// to serialize concurrent growth attempts and to hold new workers at
// the startup barrier until the whole batch is registered.
func (p *Pool) createWorkers(target int) error {
	p.startupMu.Lock()
	for p.nrThreads < target {
		id := p.nextWorkerID.Add(1)
		if err := p.engine.spawn(func() { p.worker(id) }); err != nil {
			p.startupMu.Unlock()
			return fmt.Errorf("%w: %s", ErrSpawnWorker, err)
		}
		p.nrThreads++
		if cb := p.engine.onWorkerStart; cb != nil {
			cb(p.name, id)
		}
		p.engine.logger.Debug("created worker",
			F("pool", p.name), F("worker", id), F("threads", p.nrThreads))
	}
	p.startupMu.Unlock()

	p.engine.metrics.RecordThreadCount(p.name, p.nrThreads)
	return nil
}

// worker is the body of a single worker goroutine. It loops between
// Idle (waiting for pending items, re-checking shrink eligibility) and
// Running (executing exactly one item with no pool lock held), and
// self-terminates when the sizing policy indicates shrink.
func (p *Pool) worker(id uint64) {
	// Startup barrier: wait until the creating batch has registered.
	p.startupMu.Lock()
	p.startupMu.Unlock() //nolint:staticcheck // empty critical section is the barrier

	p.mu.Lock()
	p.nrRunning++
	p.mu.Unlock()

	for {
		p.mu.Lock()
		if p.needShrink(time.Now()) {
			p.nrRunning--
			p.nrThreads--
			threads := p.nrThreads
			p.mu.Unlock()

			p.engine.metrics.RecordThreadCount(p.name, threads)
			if cb := p.engine.onWorkerExit; cb != nil {
				cb(p.name, id)
			}
			p.engine.logger.Debug("destroyed worker",
				F("pool", p.name), F("worker", id), F("threads", threads))
			return
		}

		// The empty check is re-evaluated after every wake to tolerate
		// spurious wakeups and signals consumed by other workers.
		for p.pending.Length() == 0 {
			p.nrRunning--
			p.cond.Wait()
			p.nrRunning++
		}

		p.nrPending--
		w := p.pending.Remove().(Work)
		p.mu.Unlock()

		p.runWork(w)

		p.finishedMu.Lock()
		p.finished = append(p.finished, w)
		p.finishedMu.Unlock()

		p.engine.notifier.Signal()
	}
}

// runWork executes one item, recovering panics so a misbehaving item
// cannot take its worker down and corrupt the pool's counters. A
// panicked item is still treated as executed and moves on to the
// finished list.
func (p *Pool) runWork(w Work) {
	start := time.Now()
	defer func() {
		p.engine.metrics.RecordExecuteDuration(p.name, time.Since(start))
		if r := recover(); r != nil {
			p.engine.metrics.RecordWorkPanic(p.name, "run")
			p.engine.logger.Error("work item panicked during execution",
				F("pool", p.name), F("panic", r))
		}
	}()

	w.Run()
}

// takeFinished detaches and returns the pool's entire current finished
// list. Used by the engine's drain cycle; callbacks must be run only
// after this returns, outside the finished lock.
func (p *Pool) takeFinished() []Work {
	p.finishedMu.Lock()
	batch := p.finished
	p.finished = nil
	p.finishedMu.Unlock()

	return batch
}

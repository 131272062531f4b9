package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
)

// Engine is the process-scoped context for the work-queue core. It owns
// the completion bridge and the pool registry, caches the cluster node
// count, and carries the ambient configuration (logger, metrics, worker
// lifecycle hooks) shared by every pool it creates.
//
// There is deliberately no package-level state: an embedding daemon
// constructs one Engine and passes it around.
type Engine struct {
	logger   Logger
	metrics  Metrics
	notifier Notifier
	registry *Registry

	protection time.Duration
	spawn      func(func()) error

	getNodeCount func() int
	nrNodes      atomic.Int64

	onWorkerStart func(pool string, worker uint64)
	onWorkerExit  func(pool string, worker uint64)

	closed atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger shared by the engine and its pools.
func WithLogger(logger Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector shared by the engine and its pools.
func WithMetrics(metrics Metrics) Option {
	return func(e *Engine) {
		if metrics != nil {
			e.metrics = metrics
		}
	}
}

// WithNotifier sets the completion bridge. Without this option the
// engine creates the platform default (eventfd on Linux, a channel
// bridge elsewhere).
func WithNotifier(notifier Notifier) Option {
	return func(e *Engine) {
		if notifier != nil {
			e.notifier = notifier
		}
	}
}

// WithNodeCounter supplies the cluster node count accessor used to
// derive dynamic pool ceilings. It is consulted once at construction
// and refreshed at every drain cycle; staleness for one cycle is
// acceptable. Without it the node count is fixed at 1.
func WithNodeCounter(fn func() int) Option {
	return func(e *Engine) {
		e.getNodeCount = fn
	}
}

// WithWorkerHooks installs optional observability hooks invoked when a
// worker goroutine is created and when one is about to exit.
func WithWorkerHooks(onStart, onExit func(pool string, worker uint64)) Option {
	return func(e *Engine) {
		e.onWorkerStart = onStart
		e.onWorkerExit = onExit
	}
}

// WithProtectionPeriod overrides DefaultProtectionPeriod for pools
// created by this engine. Values <= 0 are ignored.
func WithProtectionPeriod(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.protection = d
		}
	}
}

// WithSpawner overrides how worker goroutines are started. The default
// spawner runs the body with the go statement and never fails; a
// resource-limited embedder can supply one that does, exercising the
// growth-failure path.
func WithSpawner(spawn func(func()) error) Option {
	return func(e *Engine) {
		if spawn != nil {
			e.spawn = spawn
		}
	}
}

// NewEngine creates an engine. It fails only if the completion bridge
// cannot be created, which is fatal to initialization.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger:     NewDefaultLogger(),
		metrics:    &NilMetrics{},
		registry:   NewRegistry(),
		protection: DefaultProtectionPeriod,
		spawn: func(body func()) error {
			go body()
			return nil
		},
	}
	e.nrNodes.Store(1)

	for _, opt := range opts {
		opt(e)
	}

	if e.notifier == nil {
		notifier, err := newPlatformNotifier()
		if err != nil {
			return nil, fmt.Errorf("workqueue: init completion bridge: %w", err)
		}
		e.notifier = notifier
	}

	e.refreshNodeCount()
	return e, nil
}

// Notifier exposes the completion bridge, e.g. to type-assert an
// *EventfdNotifier and register its descriptor with an external
// reactor.
func (e *Engine) Notifier() Notifier {
	return e.notifier
}

// Registry exposes the pool registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// NodeCount returns the cached cluster node count.
func (e *Engine) NodeCount() int {
	return e.nodeCount()
}

func (e *Engine) nodeCount() int {
	return int(e.nrNodes.Load())
}

func (e *Engine) refreshNodeCount() {
	if e.getNodeCount == nil {
		return
	}
	n := e.getNodeCount()
	if n < 1 {
		n = 1
	}
	e.nrNodes.Store(int64(n))
}

// CreatePool creates a pool with the given diagnostic name and sizing
// mode, synchronously starts its first worker, and registers it for
// draining. It fails if the first worker cannot be spawned; a pool
// handle is never returned without at least one worker behind it.
func (e *Engine) CreatePool(name string, tc ThreadControl) (*Pool, error) {
	p := &Pool{
		name:       name,
		tc:         tc,
		engine:     e,
		pending:    queue.New(),
		protection: e.protection,
	}
	p.cond = sync.NewCond(&p.mu)

	// Reject invalid modes up front rather than on first submission.
	p.ceiling()

	p.mu.Lock()
	err := p.createWorkers(1)
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	e.registry.add(p)
	return p, nil
}

// CreateOrderedPool creates a pool with strict in-order, single-worker
// execution semantics.
func (e *Engine) CreateOrderedPool(name string) (*Pool, error) {
	return e.CreatePool(name, ThreadControlOrdered)
}

// Run drives drain cycles for embedders that do not bring their own
// reactor: it blocks on the completion bridge and collects finished
// items until ctx is done or the bridge is closed. Transient wait
// errors skip the cycle and are retried.
func (e *Engine) Run(ctx context.Context) error {
	for {
		err := e.notifier.Wait(ctx)
		switch err {
		case nil:
			e.refreshNodeCount()
			e.collectFinished()
		case ErrBridgeClosed:
			return nil
		default:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.logger.Warn("completion bridge wait failed, skipping drain cycle",
				F("error", err))
		}
	}
}

// Drain performs one drain cycle on behalf of an external reactor that
// observed the bridge becoming readable: refresh the node count,
// consume the pending signal, then collect finished items across all
// pools. A failed consume (no signal, or a transient read error) skips
// the cycle; it will be retried on the next wake-up.
func (e *Engine) Drain() {
	e.refreshNodeCount()

	if err := e.notifier.Consume(); err != nil {
		e.logger.Debug("completion bridge consume failed, skipping drain cycle",
			F("error", err))
		return
	}

	e.collectFinished()
}

// collectFinished is the two-phase drain: for every pool, in registry
// order, detach the entire finished list under the pool's finished
// lock, then invoke the completion callbacks outside any lock. Running
// callbacks unlocked is what makes reentrant submission from inside a
// callback safe.
func (e *Engine) collectFinished() {
	for _, p := range e.registry.Pools() {
		for _, w := range p.takeFinished() {
			e.runDone(p, w)
		}
	}
}

// runDone invokes one completion callback, recovering panics so a
// misbehaving callback cannot take the drain goroutine down.
func (e *Engine) runDone(p *Pool, w Work) {
	defer func() {
		if r := recover(); r != nil {
			e.metrics.RecordWorkPanic(p.name, "done")
			e.logger.Error("work item panicked during completion",
				F("pool", p.name), F("panic", r))
		}
	}()

	w.Done()
	e.metrics.RecordCompleted(p.name)
}

// Close releases the completion bridge and stops Run. Pools and their
// workers are not torn down; they live for the process lifetime.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	return e.notifier.Close()
}

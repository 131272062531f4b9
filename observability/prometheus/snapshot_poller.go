package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/flockstore/go-work-queue/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// PoolSnapshotProvider provides current pool stats snapshots.
type PoolSnapshotProvider interface {
	Stats() core.PoolStats
}

// SnapshotPoller periodically exports pool Stats() snapshots into Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	poolsMu sync.RWMutex
	pools   map[string]PoolSnapshotProvider

	poolPending  *prom.GaugeVec
	poolRunning  *prom.GaugeVec
	poolThreads  *prom.GaugeVec
	poolFinished *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	poolPending := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "workqueue",
		Name:      "pool_pending",
		Help:      "Pending work items per pool.",
	}, []string{"pool", "control"})
	poolRunning := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "workqueue",
		Name:      "pool_running",
		Help:      "Running work items per pool.",
	}, []string{"pool", "control"})
	poolThreads := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "workqueue",
		Name:      "pool_workers",
		Help:      "Worker count per pool.",
	}, []string{"pool", "control"})
	poolFinished := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "workqueue",
		Name:      "pool_finished",
		Help:      "Finished work items awaiting drain per pool.",
	}, []string{"pool", "control"})

	var err error
	if poolPending, err = registerCollector(reg, poolPending); err != nil {
		return nil, err
	}
	if poolRunning, err = registerCollector(reg, poolRunning); err != nil {
		return nil, err
	}
	if poolThreads, err = registerCollector(reg, poolThreads); err != nil {
		return nil, err
	}
	if poolFinished, err = registerCollector(reg, poolFinished); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:     interval,
		pools:        make(map[string]PoolSnapshotProvider),
		poolPending:  poolPending,
		poolRunning:  poolRunning,
		poolThreads:  poolThreads,
		poolFinished: poolFinished,
	}, nil
}

// AddPool adds or replaces a pool snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// AddEngine registers every pool currently known to the engine's
// registry. Pools created afterwards need AddPool calls of their own.
func (p *SnapshotPoller) AddEngine(engine *core.Engine) {
	if p == nil || engine == nil {
		return
	}
	for _, pool := range engine.Registry().Pools() {
		p.AddPool(pool.Name(), pool)
	}
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.poolsMu.RLock()
	for name, provider := range p.pools {
		stats := provider.Stats()
		control := stats.Control.String()
		p.poolPending.WithLabelValues(name, control).Set(float64(stats.Pending))
		p.poolRunning.WithLabelValues(name, control).Set(float64(stats.Running))
		p.poolThreads.WithLabelValues(name, control).Set(float64(stats.Threads))
		p.poolFinished.WithLabelValues(name, control).Set(float64(stats.Finished))
	}
	p.poolsMu.RUnlock()
}

package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/flockstore/go-work-queue/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	submittedTotal         *prom.CounterVec
	completedTotal         *prom.CounterVec
	panicTotal             *prom.CounterVec
	executeDurationSeconds *prom.HistogramVec
	threads                *prom.GaugeVec
	pendingDepth           *prom.GaugeVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "workqueue"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	submittedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "work_submitted_total",
		Help:      "Total number of work items submitted.",
	}, []string{"pool"})
	completedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "work_completed_total",
		Help:      "Total number of completion callbacks run.",
	}, []string{"pool"})
	panicVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "work_panic_total",
		Help:      "Total number of work item panics.",
	}, []string{"pool", "stage"})
	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "work_execute_duration_seconds",
		Help:      "Work item execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"pool"})
	threadsVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_threads",
		Help:      "Current worker count per pool.",
	}, []string{"pool"})
	pendingDepthVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_pending_depth",
		Help:      "Current pending-list depth per pool.",
	}, []string{"pool"})

	var err error
	if submittedVec, err = registerCollector(reg, submittedVec); err != nil {
		return nil, err
	}
	if completedVec, err = registerCollector(reg, completedVec); err != nil {
		return nil, err
	}
	if panicVec, err = registerCollector(reg, panicVec); err != nil {
		return nil, err
	}
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if threadsVec, err = registerCollector(reg, threadsVec); err != nil {
		return nil, err
	}
	if pendingDepthVec, err = registerCollector(reg, pendingDepthVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		submittedTotal:         submittedVec,
		completedTotal:         completedVec,
		panicTotal:             panicVec,
		executeDurationSeconds: durationVec,
		threads:                threadsVec,
		pendingDepth:           pendingDepthVec,
	}, nil
}

// RecordSubmitted records a submission event.
func (m *MetricsExporter) RecordSubmitted(poolName string) {
	if m == nil {
		return
	}
	m.submittedTotal.WithLabelValues(normalizeLabel(poolName, "unknown")).Inc()
}

// RecordCompleted records a completion callback run.
func (m *MetricsExporter) RecordCompleted(poolName string) {
	if m == nil {
		return
	}
	m.completedTotal.WithLabelValues(normalizeLabel(poolName, "unknown")).Inc()
}

// RecordExecuteDuration records work execution duration.
func (m *MetricsExporter) RecordExecuteDuration(poolName string, duration time.Duration) {
	if m == nil {
		return
	}
	m.executeDurationSeconds.WithLabelValues(normalizeLabel(poolName, "unknown")).Observe(duration.Seconds())
}

// RecordWorkPanic records work item panic events.
func (m *MetricsExporter) RecordWorkPanic(poolName string, stage string) {
	if m == nil {
		return
	}
	m.panicTotal.WithLabelValues(normalizeLabel(poolName, "unknown"), normalizeLabel(stage, "unknown")).Inc()
}

// RecordThreadCount records the worker count after a grow or shrink event.
func (m *MetricsExporter) RecordThreadCount(poolName string, threads int) {
	if m == nil {
		return
	}
	m.threads.WithLabelValues(normalizeLabel(poolName, "unknown")).Set(float64(threads))
}

// RecordPendingDepth records the pending-list depth.
func (m *MetricsExporter) RecordPendingDepth(poolName string, depth int) {
	if m == nil {
		return
	}
	m.pendingDepth.WithLabelValues(normalizeLabel(poolName, "unknown")).Set(float64(depth))
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}

package prometheus

import (
	"context"
	"testing"
	"time"

	"github.com/flockstore/go-work-queue/core"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type poolStub struct {
	stats core.PoolStats
}

func (s poolStub) Stats() core.PoolStats { return s.stats }

func TestSnapshotPoller_CollectsPoolStats(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	poller.AddPool("pool-a", poolStub{stats: core.PoolStats{
		Name:     "pool-a",
		Control:  core.ThreadControlDynamic,
		Pending:  4,
		Running:  2,
		Threads:  8,
		Finished: 1,
	}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)
	defer poller.Stop()

	assertEventually(t, 2*time.Second, func() bool {
		pending := testutil.ToFloat64(poller.poolPending.WithLabelValues("pool-a", "dynamic"))
		running := testutil.ToFloat64(poller.poolRunning.WithLabelValues("pool-a", "dynamic"))
		return pending == 4 && running == 2
	})

	if got := testutil.ToFloat64(poller.poolThreads.WithLabelValues("pool-a", "dynamic")); got != 8 {
		t.Fatalf("pool workers gauge = %v, want 8", got)
	}
	if got := testutil.ToFloat64(poller.poolFinished.WithLabelValues("pool-a", "dynamic")); got != 1 {
		t.Fatalf("pool finished gauge = %v, want 1", got)
	}
}

func TestSnapshotPoller_AddEngine(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	engine, err := core.NewEngine(
		core.WithLogger(core.NewNoOpLogger()),
		core.WithNotifier(core.NewChanNotifier()),
	)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	defer engine.Close()

	if _, err := engine.CreatePool("engine-pool", core.ThreadControlOrdered); err != nil {
		t.Fatalf("CreatePool failed: %v", err)
	}

	poller.AddEngine(engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)
	defer poller.Stop()

	assertEventually(t, 2*time.Second, func() bool {
		threads := testutil.ToFloat64(poller.poolThreads.WithLabelValues("engine-pool", "ordered"))
		return threads == 1
	})
}

func TestSnapshotPoller_StartStop_Idempotent(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller.Start(ctx)
	poller.Start(ctx)
	poller.Stop()
	poller.Stop()
}

func assertEventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

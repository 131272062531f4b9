package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestEngine_DrainOrderAcrossPools tests registry-order draining
// Main test items:
// 1. A manual drain cycle collects finished items pool by pool
// 2. Pools are visited in creation order
func TestEngine_DrainOrderAcrossPools(t *testing.T) {
	engine, err := NewEngine(
		WithLogger(NewNoOpLogger()),
		WithNotifier(NewChanNotifier()),
	)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	defer engine.Close()

	first, err := engine.CreateOrderedPool("first")
	if err != nil {
		t.Fatalf("CreateOrderedPool failed: %v", err)
	}
	second, err := engine.CreateOrderedPool("second")
	if err != nil {
		t.Fatalf("CreateOrderedPool failed: %v", err)
	}

	order := make(chan string, 2)

	// No drain loop is running, so finished items accumulate until the
	// explicit Drain below. Submit to the later pool first to show that
	// drain order follows the registry, not submission time.
	second.Submit(&WorkFunc{DoneFunc: func() { order <- "second" }})
	first.Submit(&WorkFunc{DoneFunc: func() { order <- "first" }})

	eventually(t, 2*time.Second, func() bool {
		return first.Stats().Finished == 1 && second.Stats().Finished == 1
	})

	engine.Drain()

	for _, want := range []string{"first", "second"} {
		select {
		case got := <-order:
			if got != want {
				t.Fatalf("drain order: got %q, want %q", got, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

// TestEngine_ReentrantSubmission tests submission from a completion callback
// Main test items:
// 1. A Done callback may submit follow-up work to the same pool
// 2. The follow-up item executes and completes without deadlock
func TestEngine_ReentrantSubmission(t *testing.T) {
	engine, stop := newTestEngine(t)
	defer stop()

	pool, err := engine.CreateOrderedPool("reentrant")
	if err != nil {
		t.Fatalf("CreateOrderedPool failed: %v", err)
	}

	final := make(chan struct{})
	pool.Submit(&WorkFunc{
		DoneFunc: func() {
			pool.Submit(&WorkFunc{
				DoneFunc: func() { close(final) },
			})
		},
	})

	select {
	case <-final:
	case <-time.After(2 * time.Second):
		t.Fatal("follow-up item never completed")
	}
}

// TestEngine_NodeCountRefresh tests node count caching
// Main test items:
// 1. The counter is consulted at construction
// 2. Each drain cycle refreshes the cached value
// 3. Counts below 1 are clamped to 1
func TestEngine_NodeCountRefresh(t *testing.T) {
	nodes := 3
	engine, err := NewEngine(
		WithLogger(NewNoOpLogger()),
		WithNotifier(NewChanNotifier()),
		WithNodeCounter(func() int { return nodes }),
	)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	defer engine.Close()

	if got := engine.NodeCount(); got != 3 {
		t.Fatalf("initial node count = %d, want 3", got)
	}

	nodes = 5
	engine.Drain()
	if got := engine.NodeCount(); got != 5 {
		t.Fatalf("node count after drain = %d, want 5", got)
	}

	nodes = 0
	engine.Drain()
	if got := engine.NodeCount(); got != 1 {
		t.Fatalf("node count after drain = %d, want clamp to 1", got)
	}
}

// TestEngine_CreatePoolInvalidMode tests mode validation
// Main test items:
// 1. Creating a pool with an unknown sizing mode panics
func TestEngine_CreatePoolInvalidMode(t *testing.T) {
	engine, err := NewEngine(
		WithLogger(NewNoOpLogger()),
		WithNotifier(NewChanNotifier()),
	)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	defer engine.Close()

	defer func() {
		if recover() == nil {
			t.Fatal("invalid sizing mode did not panic")
		}
	}()
	engine.CreatePool("bogus", ThreadControl(99))
}

// TestEngine_RunTermination tests drain loop shutdown
// Main test items:
// 1. Run returns nil when the bridge is closed
// 2. Run returns the context error when ctx is canceled
// 3. Close is idempotent
func TestEngine_RunTermination(t *testing.T) {
	t.Run("bridge closed", func(t *testing.T) {
		engine, err := NewEngine(
			WithLogger(NewNoOpLogger()),
			WithNotifier(NewChanNotifier()),
		)
		if err != nil {
			t.Fatalf("NewEngine failed: %v", err)
		}

		done := make(chan error, 1)
		go func() { done <- engine.Run(context.Background()) }()

		if err := engine.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if err := engine.Close(); err != nil {
			t.Fatalf("second Close failed: %v", err)
		}

		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("Run returned %v, want nil on bridge close", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return after Close")
		}
	})

	t.Run("context canceled", func(t *testing.T) {
		engine, err := NewEngine(
			WithLogger(NewNoOpLogger()),
			WithNotifier(NewChanNotifier()),
		)
		if err != nil {
			t.Fatalf("NewEngine failed: %v", err)
		}
		defer engine.Close()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- engine.Run(ctx) }()

		cancel()
		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("Run returned %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return after cancel")
		}
	})
}

// TestEngine_WorkerHooks tests lifecycle hook delivery
// Main test items:
// 1. The start hook fires for the initial worker of a new pool
// 2. The hook receives the pool name
func TestEngine_WorkerHooks(t *testing.T) {
	started := make(chan string, 4)
	engine, stop := newTestEngine(t, WithWorkerHooks(
		func(pool string, worker uint64) { started <- pool },
		nil,
	))
	defer stop()

	if _, err := engine.CreateOrderedPool("hooked"); err != nil {
		t.Fatalf("CreateOrderedPool failed: %v", err)
	}

	select {
	case pool := <-started:
		if pool != "hooked" {
			t.Fatalf("start hook pool = %q, want %q", pool, "hooked")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("start hook never fired")
	}
}

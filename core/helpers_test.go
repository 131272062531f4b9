package core

import (
	"context"
	"testing"
	"time"
)

// newTestEngine builds a quiet engine with a channel bridge and starts
// its drain loop. The returned stop function cancels the loop and
// closes the bridge.
func newTestEngine(t *testing.T, opts ...Option) (*Engine, func()) {
	t.Helper()

	base := []Option{
		WithLogger(NewNoOpLogger()),
		WithNotifier(NewChanNotifier()),
	}
	engine, err := NewEngine(append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = engine.Run(ctx)
	}()

	return engine, func() {
		cancel()
		engine.Close()
		<-done
	}
}

// recordingWork builds n Work items whose Done callbacks report their
// index on the returned channel.
func recordingWork(n int, runDelay time.Duration) ([]Work, chan int) {
	completions := make(chan int, n)
	works := make([]Work, n)
	for i := 0; i < n; i++ {
		idx := i
		works[i] = &WorkFunc{
			RunFunc: func() {
				if runDelay > 0 {
					time.Sleep(runDelay)
				}
			},
			DoneFunc: func() { completions <- idx },
		}
	}
	return works, completions
}

// waitCompletions receives n completion indices or fails the test.
func waitCompletions(t *testing.T, completions chan int, n int, timeout time.Duration) []int {
	t.Helper()

	got := make([]int, 0, n)
	deadline := time.After(timeout)
	for len(got) < n {
		select {
		case idx := <-completions:
			got = append(got, idx)
		case <-deadline:
			t.Fatalf("timed out waiting for completions: got %d of %d", len(got), n)
		}
	}
	return got
}

// eventually polls cond until it holds or the timeout expires.
func eventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

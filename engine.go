package workqueue

import (
	"context"
	"sync"

	"github.com/flockstore/go-work-queue/core"
)

// =============================================================================
// Default Engine Helper (Singleton)
// =============================================================================

var (
	defaultEngine *core.Engine
	defaultCancel context.CancelFunc
	defaultMu     sync.Mutex
)

// InitDefaultEngine initializes the process-wide default engine and
// starts its drain loop on a background goroutine. Embedders that wire
// the bridge into their own reactor should construct an Engine directly
// instead.
func InitDefaultEngine(opts ...core.Option) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultEngine != nil {
		return nil // Already initialized
	}

	engine, err := core.NewEngine(opts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go engine.Run(ctx)

	defaultEngine = engine
	defaultCancel = cancel
	return nil
}

// DefaultEngine returns the default engine instance.
// It panics if InitDefaultEngine has not been called.
func DefaultEngine() *core.Engine {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultEngine == nil {
		panic("workqueue: default engine not initialized. Call InitDefaultEngine() first.")
	}
	return defaultEngine
}

// CloseDefaultEngine stops the default engine's drain loop and closes
// its completion bridge. Pools created through it are not torn down.
func CloseDefaultEngine() {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultEngine != nil {
		defaultCancel()
		defaultEngine.Close()
		defaultEngine = nil
		defaultCancel = nil
	}
}

// CreatePool creates a pool on the default engine.
// This is the recommended way to get a pool for simple embedders.
func CreatePool(name string, tc ThreadControl) (*Pool, error) {
	return DefaultEngine().CreatePool(name, tc)
}

// CreateOrderedPool creates a strictly ordered pool on the default engine.
func CreateOrderedPool(name string) (*Pool, error) {
	return DefaultEngine().CreateOrderedPool(name)
}

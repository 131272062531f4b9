package core

import "errors"

var (
	// ErrSpawnWorker indicates a worker goroutine could not be started.
	// During growth this is logged and the submitted item stays pending;
	// during pool creation it makes CreatePool fail.
	ErrSpawnWorker = errors.New("workqueue: failed to spawn worker")

	// ErrBridgeClosed indicates the completion bridge has been closed and
	// can no longer be waited on.
	ErrBridgeClosed = errors.New("workqueue: completion bridge closed")

	// ErrNoSignal indicates a non-blocking consume found no pending
	// signal on the completion bridge. The drain cycle is skipped and
	// retried on the next wake-up.
	ErrNoSignal = errors.New("workqueue: no pending bridge signal")
)

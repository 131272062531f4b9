package core

import (
	"context"
	"sync/atomic"
)

// Notifier is the completion bridge primitive: a single process-wide
// edge-triggered notification channel. Workers Signal it once per
// finished item; the drain side consumes signals via Wait (blocking)
// or Consume (non-blocking, for external reactors).
//
// Signals coalesce: any number of Signal calls between two consumes
// wake the drain side exactly once. The drain cycle collects every
// finished item regardless, so coalescing loses nothing.
type Notifier interface {
	// Signal marks the bridge readable. It never blocks and is safe to
	// call from any goroutine.
	Signal()

	// Consume non-blockingly consumes a pending signal. It returns
	// ErrNoSignal (or a transient read error) when there is nothing to
	// consume; the caller skips the drain cycle and retries on the next
	// wake-up.
	Consume() error

	// Wait blocks until a signal arrives and consumes it, or until ctx is
	// done or the bridge is closed.
	Wait(ctx context.Context) error

	// Close releases the bridge. Pending and future Wait calls return
	// ErrBridgeClosed.
	Close() error
}

// =============================================================================
// ChanNotifier: portable channel-based bridge
// =============================================================================

// ChanNotifier implements Notifier with a capacity-1 channel. It is the
// default bridge on platforms without eventfd and the convenient choice
// for tests and for embedders that drain via Engine.Run rather than an
// fd-based reactor.
type ChanNotifier struct {
	ch      chan struct{}
	closeCh chan struct{}
	closed  atomic.Bool
}

// NewChanNotifier creates a channel-based notifier.
func NewChanNotifier() *ChanNotifier {
	return &ChanNotifier{
		ch:      make(chan struct{}, 1),
		closeCh: make(chan struct{}),
	}
}

// Signal marks the bridge readable; repeated signals coalesce.
func (n *ChanNotifier) Signal() {
	select {
	case n.ch <- struct{}{}:
	default:
		// Already signaled; the edge is still pending.
	}
}

// Consume non-blockingly consumes a pending signal.
func (n *ChanNotifier) Consume() error {
	if n.closed.Load() {
		return ErrBridgeClosed
	}
	select {
	case <-n.ch:
		return nil
	default:
		return ErrNoSignal
	}
}

// Wait blocks until signaled, consuming the signal.
func (n *ChanNotifier) Wait(ctx context.Context) error {
	select {
	case <-n.ch:
		return nil
	case <-n.closeCh:
		return ErrBridgeClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the bridge; safe to call once.
func (n *ChanNotifier) Close() error {
	if n.closed.CompareAndSwap(false, true) {
		close(n.closeCh)
	}
	return nil
}

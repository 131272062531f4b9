//go:build linux

package core

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// eventfdPollInterval bounds how long a Wait poll sleeps before
// re-checking context cancellation.
const eventfdPollInterval = 100 * time.Millisecond

// EventfdNotifier implements the completion bridge on a Linux eventfd.
// The descriptor is non-blocking so an embedding daemon can register it
// with its own epoll/poll reactor via Fd and call Engine.Drain when it
// becomes readable. Engine.Run works with it as well, using poll
// internally.
type EventfdNotifier struct {
	fd int
}

// NewEventfdNotifier creates the eventfd. The returned error is fatal
// to engine initialization.
func NewEventfdNotifier() (*EventfdNotifier, error) {
	fd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("workqueue: create eventfd: %w", err)
	}
	return &EventfdNotifier{fd: fd}, nil
}

// Fd returns the eventfd descriptor for registration with an external
// reactor. The descriptor becomes readable when finished items await
// draining.
func (n *EventfdNotifier) Fd() int {
	return n.fd
}

// Signal increments the eventfd counter. A full counter means an edge
// is already pending, which is equivalent for the drain side.
func (n *EventfdNotifier) Signal() {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	for {
		_, err := unix.Write(n.fd, buf[:])
		if err != unix.EINTR {
			return
		}
	}
}

// Consume performs the non-blocking eventfd read. EAGAIN (no signal
// pending) and transient read errors are reported to the caller, which
// skips the drain cycle and retries on the next wake-up.
func (n *EventfdNotifier) Consume() error {
	var buf [8]byte
	for {
		_, err := unix.Read(n.fd, buf[:])
		switch err {
		case nil:
			return nil
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return ErrNoSignal
		default:
			return fmt.Errorf("workqueue: read eventfd: %w", err)
		}
	}
}

// Wait polls the eventfd until it becomes readable, then consumes it.
func (n *EventfdNotifier) Wait(ctx context.Context) error {
	fds := []unix.PollFd{{Fd: int32(n.fd), Events: unix.POLLIN}}
	timeout := int(eventfdPollInterval / time.Millisecond)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fds[0].Revents = 0
		nready, err := unix.Poll(fds, timeout)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("workqueue: poll eventfd: %w", err)
		}
		if nready == 0 {
			continue
		}
		if fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			return ErrBridgeClosed
		}

		err = n.Consume()
		if err == ErrNoSignal {
			// Another consumer drained it first; keep waiting.
			continue
		}
		return err
	}
}

// Close releases the eventfd.
func (n *EventfdNotifier) Close() error {
	return unix.Close(n.fd)
}

// newPlatformNotifier returns the best bridge for this platform.
func newPlatformNotifier() (Notifier, error) {
	return NewEventfdNotifier()
}

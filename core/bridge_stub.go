//go:build !linux

package core

// newPlatformNotifier returns the best bridge for this platform.
// Without eventfd the channel-based bridge is used; fd-based reactor
// integration is a Linux-only feature.
func newPlatformNotifier() (Notifier, error) {
	return NewChanNotifier(), nil
}

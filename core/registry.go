package core

import "sync"

// Registry is the process-scoped collection of all pools an engine has
// created. It is append-only: pools are registered at creation time and
// never removed. The drain cycle enumerates it to collect finished
// items across pools, in registration order.
type Registry struct {
	mu    sync.Mutex
	pools []*Pool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// add appends a pool. Called once per pool, at creation time.
func (r *Registry) add(p *Pool) {
	r.mu.Lock()
	r.pools = append(r.pools, p)
	r.mu.Unlock()
}

// Pools returns a snapshot of the registered pools in registration
// order. The returned slice is a copy; iterating it requires no lock.
func (r *Registry) Pools() []*Pool {
	r.mu.Lock()
	snapshot := make([]*Pool, len(r.pools))
	copy(snapshot, r.pools)
	r.mu.Unlock()

	return snapshot
}

// Len returns the number of registered pools.
func (r *Registry) Len() int {
	r.mu.Lock()
	n := len(r.pools)
	r.mu.Unlock()

	return n
}

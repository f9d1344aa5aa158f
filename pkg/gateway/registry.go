package gateway

// Registry is the unordered client set described in spec §4.6. It is only
// ever touched by the Loop.Run goroutine (see pkg/gateway/loop.go), so it
// needs no internal locking — the single-writer discipline is the lock.
type Registry struct {
	clients map[string]*ClientConn
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*ClientConn)}
}

// Add inserts a client. Each ClientConn is constructed exactly once by the
// listener's accept goroutine, so duplicate insertion cannot occur.
func (r *Registry) Add(c *ClientConn) {
	r.clients[c.ID] = c
}

// Remove drops a client by id. Removing an id already absent is a no-op,
// so eviction paths that race (a failed relay write and the client's own
// reader goroutine both reporting the same failure) are safe to call twice.
func (r *Registry) Remove(id string) {
	delete(r.clients, id)
}

// Get returns the client for id, or nil if absent.
func (r *Registry) Get(id string) *ClientConn {
	return r.clients[id]
}

// Snapshot returns the current clients as a slice, for iteration that must
// tolerate concurrent removal (spec §4.4's snapshot-then-prune relay).
func (r *Registry) Snapshot() []*ClientConn {
	out := make([]*ClientConn, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

// Len reports the number of registered clients.
func (r *Registry) Len() int {
	return len(r.clients)
}

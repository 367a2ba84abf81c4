package cache

import (
	"context"
	"sync"
)

// Shared guards a ParameterCache with a single mutex so it can be handed to many
// goroutines. The lock is held for the whole lookup, including the fetch, so
// lookups through the same Shared are serialized.
type Shared struct {
	mu    sync.Mutex
	cache *ParameterCache
}

// NewShared wraps c. The caller must not use c directly afterwards.
func NewShared(c *ParameterCache) *Shared {
	return &Shared{cache: c}
}

// Lookup is ParameterCache.Lookup under the lock.
func (s *Shared) Lookup(ctx context.Context, name string, forceRefresh bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Lookup(ctx, name, forceRefresh)
}

// Do runs fn with exclusive access to the cache.
func (s *Shared) Do(fn func(c *ParameterCache) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.cache)
}

// GetParameter returns a request for name whose Send takes the lock.
func (s *Shared) GetParameter(name string) *SharedRequest {
	return &SharedRequest{shared: s, name: name}
}

// SharedRequest is the Shared counterpart of GetParameterRequest.
type SharedRequest struct {
	shared       *Shared
	name         string
	forceRefresh bool
}

// ForceRefresh makes Send bypass a fresh cached value.
func (r *SharedRequest) ForceRefresh() *SharedRequest {
	r.forceRefresh = true
	return r
}

// Send performs the lookup while holding the lock.
func (r *SharedRequest) Send(ctx context.Context) (string, error) {
	return r.shared.Lookup(ctx, r.name, r.forceRefresh)
}

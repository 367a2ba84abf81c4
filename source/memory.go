package source

import (
	"context"
	"sync"

	"github.com/agentuity/go-paramcache/cache"
)

// Memory is a Fetcher backed by a map. It is useful for tests, local development
// and as a fallback at the end of a Chain.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ cache.Fetcher = (*Memory)(nil)

// NewMemory returns a Memory seeded with a copy of values.
func NewMemory(values map[string]string) *Memory {
	m := &Memory{values: make(map[string]string, len(values))}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

func (m *Memory) GetParameter(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.values[name]
	if !ok {
		return "", cache.NotFound(name)
	}
	return val, nil
}

// Set stores value under name.
func (m *Memory) Set(name, value string) {
	m.mu.Lock()
	m.values[name] = value
	m.mu.Unlock()
}

// Delete removes name, reporting whether it was present.
func (m *Memory) Delete(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[name]
	delete(m.values, name)
	return ok
}

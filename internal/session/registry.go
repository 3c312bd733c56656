package session

import (
	"context"
	"sync"
)

// Registry maps transport connections to player identities. Binding the same
// connection again replaces the previous identity; resolving an unknown
// connection reports absence rather than an error.
type Registry interface {
	Bind(ctx context.Context, connID, playerID string) error
	Resolve(ctx context.Context, connID string) (string, bool, error)
	Unbind(ctx context.Context, connID string) error
	Count(ctx context.Context) (int, error)
}

// MemoryRegistry is the in-process implementation used by tests and
// single-node deployments.
type MemoryRegistry struct {
	mu       sync.RWMutex
	sessions map[string]string
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{sessions: make(map[string]string)}
}

func (m *MemoryRegistry) Bind(_ context.Context, connID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[connID] = playerID
	return nil
}

func (m *MemoryRegistry) Resolve(_ context.Context, connID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	playerID, ok := m.sessions[connID]
	return playerID, ok, nil
}

func (m *MemoryRegistry) Unbind(_ context.Context, connID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, connID)
	return nil
}

func (m *MemoryRegistry) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}

package repository

import (
	"context"
	"sync"
)

// MemoryStateRepository keeps session state in process memory
type MemoryStateRepository struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStateRepository creates an empty in-memory repository
func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{blobs: make(map[string][]byte)}
}

// Ensure MemoryStateRepository implements StateRepositoryInterface
var _ StateRepositoryInterface = (*MemoryStateRepository)(nil)

func (m *MemoryStateRepository) Load(ctx context.Context, owner, kind string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.blobs[string(stateKey(owner, kind))]
	if !ok {
		return nil, ErrStateNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStateRepository) Save(ctx context.Context, owner, kind string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[string(stateKey(owner, kind))] = append([]byte(nil), payload...)
	return nil
}

func (m *MemoryStateRepository) Delete(ctx context.Context, owner, kind string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, string(stateKey(owner, kind)))
	return nil
}

package mock

import (
	"context"
	"sync"
)

// MockIndex is a test double for ai.VectorIndex. It records upserted vectors
// in memory so tests can assert on what the pipeline wrote.
type MockIndex struct {
	// UpsertFunc is called by Upsert if set, instead of recording.
	UpsertFunc func(ctx context.Context, ids []string, vectors [][]float32) error

	// RemoveFunc is called by Remove if set, instead of deleting.
	RemoveFunc func(ctx context.Context, ids []string) error

	mu      sync.Mutex
	vectors map[string][]float32
}

// NewMockIndex creates an empty in-memory vector index.
// Note: Returns concrete type to allow test assertions.
func NewMockIndex() *MockIndex {
	return &MockIndex{
		vectors: make(map[string][]float32),
	}
}

// Upsert records the given vectors under their ids.
func (m *MockIndex) Upsert(ctx context.Context, ids []string, vectors [][]float32) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, ids, vectors)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range ids {
		if i < len(vectors) {
			m.vectors[id] = vectors[i]
		}
	}
	return nil
}

// Remove deletes vectors by id. Missing ids are ignored.
func (m *MockIndex) Remove(ctx context.Context, ids []string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, ids)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.vectors, id)
	}
	return nil
}

// Len returns the number of stored vectors.
func (m *MockIndex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.vectors)
}

// Vector returns the stored vector for id and whether it exists.
func (m *MockIndex) Vector(id string) ([]float32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vectors[id]
	return v, ok
}

// Reset clears stored vectors and injected behavior.
func (m *MockIndex) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors = make(map[string][]float32)
	m.UpsertFunc = nil
	m.RemoveFunc = nil
}

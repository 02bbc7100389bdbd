package cellar

import (
	"context"
	"sync"

	"github.com/bankowy11-lgtm/vinoScans/internal/wine"
)

// MemoryStore is an in-process Store used in tests and when persistence is
// disabled in config.
type MemoryStore struct {
	mu      sync.Mutex
	records []wine.Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored list.
func (m *MemoryStore) Load(ctx context.Context) ([]wine.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]wine.Record, len(m.records))
	copy(out, m.records)
	return out, nil
}

// Save replaces the stored list.
func (m *MemoryStore) Save(ctx context.Context, records []wine.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make([]wine.Record, len(records))
	copy(m.records, records)
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

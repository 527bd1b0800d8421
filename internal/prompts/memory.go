package prompts

import (
	"context"
	"sync"
	"time"
)

// MemoryStore DismissalStore в памяти процесса.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]time.Time
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]time.Time)}
}

func (m *MemoryStore) Get(_ context.Context, userID, key string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	at, ok := m.records[userID+":"+key]
	return at, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, userID, key string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[userID+":"+key] = at
	return nil
}

package session

import (
	"context"
	"strconv"
	"sync"
)

// MemoryStore holds sessions in a process-local map.
type MemoryStore struct {
	mu       sync.Mutex
	counter  int64
	sessions map[string]Data
}

func NewMemoryStore(seed int64) *MemoryStore {
	return &MemoryStore{
		counter:  seed,
		sessions: make(map[string]Data),
	}
}

func (m *MemoryStore) Create(_ context.Context, data Data) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counter++
	id := strconv.FormatInt(m.counter, 10)
	m.sessions[id] = data.clone()
	return id, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return data.clone(), nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// Len reports how many sessions are currently stored.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *MemoryStore) Close() error {
	return nil
}

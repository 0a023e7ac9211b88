package storage

import (
	"sync"

	"github.com/zmagdon/watchparty/internal/domain"
)

// MemoryStore keeps snapshots in a plain map. Default when no database
// path is configured; snapshots then only survive room eviction, not a
// process restart.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]domain.PlaybackState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]domain.PlaybackState)}
}

func (s *MemoryStore) Load(roomID string) (domain.PlaybackState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.rooms[roomID]
	return st, ok, nil
}

func (s *MemoryStore) Save(roomID string, state domain.PlaybackState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[roomID] = state
	return nil
}

func (s *MemoryStore) Close() error { return nil }

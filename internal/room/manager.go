package room

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/zmagdon/watchparty/internal/storage"
)

// RoomInfo is a read-only listing view for the API.
type RoomInfo struct {
	ID      string `json:"id"`
	Clients int    `json:"clients"`
	Version int64  `json:"version"`
}

type managerEntry struct {
	co     *Coordinator
	refs   int
	cancel context.CancelFunc
}

// Manager routes a room id to the single coordinator instance that
// owns it. Handlers acquire a room for the lifetime of a connection;
// when the last reference is released the coordinator is stopped and
// dropped, and a later Acquire reconstructs it from the snapshot
// store.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*managerEntry
	store storage.SnapshotStore
	cfg   Config
	clock Clock
	ctx   context.Context
}

func NewManager(ctx context.Context, store storage.SnapshotStore, cfg Config, clock Clock) *Manager {
	return &Manager{
		rooms: make(map[string]*managerEntry),
		store: store,
		cfg:   cfg,
		clock: clock,
		ctx:   ctx,
	}
}

// Acquire returns the live coordinator for the room, creating and
// starting it if needed. Every Acquire must be paired with a Release.
func (m *Manager) Acquire(id string) *Coordinator {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.rooms[id]; ok {
		e.refs++
		return e.co
	}
	co := NewCoordinator(id, m.store, m.cfg, m.clock)
	ctx, cancel := context.WithCancel(m.ctx)
	m.rooms[id] = &managerEntry{co: co, refs: 1, cancel: cancel}
	go co.Run(ctx)
	return co
}

// Release drops one reference; the last one evicts the room.
func (m *Manager) Release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rooms[id]
	if !ok {
		return
	}
	e.refs--
	if e.refs > 0 {
		return
	}
	delete(m.rooms, id)
	e.cancel()
	log.Info().Str("module", "room").Str("room", id).Msg("room evicted")
}

func (m *Manager) List() []RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RoomInfo, 0, len(m.rooms))
	for id, e := range m.rooms {
		out = append(out, RoomInfo{
			ID:      id,
			Clients: int(e.co.clients.Load()),
			Version: e.co.version.Load(),
		})
	}
	return out
}

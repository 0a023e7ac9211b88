// Package storage holds the snapshot persistence gateway for room
// playback state. Persistence is a recovery aid only: the in-memory
// state owned by the room coordinator stays authoritative for the
// live session, and save errors are logged and swallowed upstream.
package storage

import (
	"github.com/zmagdon/watchparty/internal/domain"
)

// SnapshotStore is the key-value contract the room layer consumes:
// one playback snapshot per room id, read once at coordinator
// construction, written after every accepted mutation.
type SnapshotStore interface {
	// Load returns the stored snapshot for the room, with ok=false
	// when no snapshot exists.
	Load(roomID string) (domain.PlaybackState, bool, error)
	// Save overwrites the snapshot for the room.
	Save(roomID string, state domain.PlaybackState) error
	Close() error
}

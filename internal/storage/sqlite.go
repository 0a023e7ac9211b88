package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/zmagdon/watchparty/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS room_state (
	room_id     TEXT PRIMARY KEY,
	media_key   TEXT NOT NULL DEFAULT '',
	is_playing  INTEGER NOT NULL DEFAULT 0,
	position_ms INTEGER NOT NULL DEFAULT 0,
	updated_at  INTEGER NOT NULL DEFAULT 0,
	updated_by  TEXT NOT NULL DEFAULT '',
	version     INTEGER NOT NULL DEFAULT 1
)`

// SQLiteStore is a file-backed SnapshotStore, one row per room.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(roomID string) (domain.PlaybackState, bool, error) {
	var st domain.PlaybackState
	var playing int
	err := s.db.QueryRow(`
		SELECT media_key, is_playing, position_ms, updated_at, updated_by, version
		FROM room_state WHERE room_id = ?`, roomID,
	).Scan(&st.MediaKey, &playing, &st.PositionMs, &st.UpdatedAt, &st.UpdatedBy, &st.Version)
	if err == sql.ErrNoRows {
		return domain.PlaybackState{}, false, nil
	}
	if err != nil {
		return domain.PlaybackState{}, false, err
	}
	st.IsPlaying = playing != 0
	return st, true, nil
}

func (s *SQLiteStore) Save(roomID string, state domain.PlaybackState) error {
	playing := 0
	if state.IsPlaying {
		playing = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO room_state (room_id, media_key, is_playing, position_ms, updated_at, updated_by, version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(room_id) DO UPDATE SET
			media_key=excluded.media_key,
			is_playing=excluded.is_playing,
			position_ms=excluded.position_ms,
			updated_at=excluded.updated_at,
			updated_by=excluded.updated_by,
			version=excluded.version`,
		roomID, state.MediaKey, playing, state.PositionMs, state.UpdatedAt, state.UpdatedBy, state.Version,
	)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

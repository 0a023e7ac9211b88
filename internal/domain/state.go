package domain

// SystemUser marks state revisions not attributable to a client.
const SystemUser = "system"

// PlaybackState is the authoritative playback record of a room.
// PositionMs is only meaningful at UpdatedAt; callers wanting the
// position "right now" must go through At.
type PlaybackState struct {
	MediaKey   string `json:"mediaKey"`
	IsPlaying  bool   `json:"isPlaying"`
	PositionMs int64  `json:"positionMs"`
	UpdatedAt  int64  `json:"updatedAt"`
	UpdatedBy  string `json:"updatedBy"`
	Version    int64  `json:"version"`
}

// NewPlaybackState returns the initial paused state of a fresh room.
func NewPlaybackState(nowMs int64) PlaybackState {
	return PlaybackState{
		UpdatedAt: nowMs,
		UpdatedBy: SystemUser,
		Version:   1,
	}
}

// At extrapolates the state to the given timestamp. While playing the
// position advances by the elapsed wall time; while paused the state
// is returned unchanged. Pure: the receiver is copied, never mutated.
func (s PlaybackState) At(nowMs int64) PlaybackState {
	if !s.IsPlaying {
		return s
	}
	elapsed := nowMs - s.UpdatedAt
	if elapsed < 0 {
		elapsed = 0
	}
	s.PositionMs += elapsed
	s.UpdatedAt = nowMs
	return s
}

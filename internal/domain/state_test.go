package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaybackStateAt(t *testing.T) {
	tests := []struct {
		name    string
		state   PlaybackState
		now     int64
		wantPos int64
		wantAt  int64
	}{
		{
			name:    "paused state is returned unchanged",
			state:   PlaybackState{PositionMs: 4000, UpdatedAt: 1000},
			now:     9000,
			wantPos: 4000,
			wantAt:  1000,
		},
		{
			name:    "playing state advances by elapsed time",
			state:   PlaybackState{IsPlaying: true, PositionMs: 4000, UpdatedAt: 1000},
			now:     3500,
			wantPos: 6500,
			wantAt:  3500,
		},
		{
			name:    "query before updatedAt does not rewind",
			state:   PlaybackState{IsPlaying: true, PositionMs: 4000, UpdatedAt: 5000},
			now:     2000,
			wantPos: 4000,
			wantAt:  2000,
		},
		{
			name:    "zero elapsed",
			state:   PlaybackState{IsPlaying: true, PositionMs: 700, UpdatedAt: 700},
			now:     700,
			wantPos: 700,
			wantAt:  700,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.state.At(tt.now)
			assert.Equal(t, tt.wantPos, got.PositionMs)
			assert.Equal(t, tt.wantAt, got.UpdatedAt)
			assert.GreaterOrEqual(t, got.PositionMs, int64(0))
		})
	}
}

func TestPlaybackStateAtIsPure(t *testing.T) {
	s := PlaybackState{IsPlaying: true, PositionMs: 100, UpdatedAt: 0, Version: 3}

	first := s.At(2500)
	second := s.At(2500)

	assert.Equal(t, first, second)
	// the receiver must not have been mutated
	assert.Equal(t, int64(100), s.PositionMs)
	assert.Equal(t, int64(0), s.UpdatedAt)
}

func TestNewPlaybackState(t *testing.T) {
	s := NewPlaybackState(42)

	assert.Equal(t, int64(1), s.Version)
	assert.Equal(t, SystemUser, s.UpdatedBy)
	assert.False(t, s.IsPlaying)
	assert.Empty(t, s.MediaKey)
	assert.Equal(t, int64(42), s.UpdatedAt)
}

package room

import "github.com/zmagdon/watchparty/internal/domain"

// Command is a validated control request attributed to a user.
type Command struct {
	Action     domain.Action
	PositionMs int64
	By         string
}

// Apply produces the next playback state from a control command.
// The stored state is first extrapolated to nowMs, so a PAUSE captures
// the position accrued while playing instead of the stale stored value.
// The transition is unconditional: no version precondition is checked.
func Apply(stored domain.PlaybackState, cmd Command, nowMs int64) domain.PlaybackState {
	next := stored.At(nowMs)
	switch cmd.Action {
	case domain.ActionPlay:
		next.IsPlaying = true
	case domain.ActionPause:
		next.IsPlaying = false
	case domain.ActionSeek:
		pos := cmd.PositionMs
		if pos < 0 {
			pos = 0
		}
		next.PositionMs = pos
	}
	next.Version = stored.Version + 1
	next.UpdatedAt = nowMs
	next.UpdatedBy = cmd.By
	return next
}

package room

import "time"

// ControlLimiter gates control commands behind two independent checks:
// a room-wide sliding window and a per-user cooldown. Both must pass,
// and nothing is recorded on a rejection, so a command blocked by one
// gate never consumes the other gate's budget.
//
// Owned by a single room coordinator goroutine; no locking needed.
type ControlLimiter struct {
	window   time.Duration
	limit    int
	cooldown time.Duration

	roomHits   []int64
	lastByUser map[string]int64
}

func NewControlLimiter(window time.Duration, limit int, cooldown time.Duration) *ControlLimiter {
	return &ControlLimiter{
		window:     window,
		limit:      limit,
		cooldown:   cooldown,
		lastByUser: make(map[string]int64),
	}
}

// Allow reports whether a control command from userID at nowMs may
// proceed, recording the timestamp in both gates only when it may.
func (l *ControlLimiter) Allow(userID string, nowMs int64) bool {
	windowStart := nowMs - l.window.Milliseconds()
	fresh := l.roomHits[:0]
	for _, t := range l.roomHits {
		if t > windowStart {
			fresh = append(fresh, t)
		}
	}
	l.roomHits = fresh

	if len(l.roomHits) >= l.limit {
		return false
	}
	if last, ok := l.lastByUser[userID]; ok && nowMs-last < l.cooldown.Milliseconds() {
		return false
	}

	l.roomHits = append(l.roomHits, nowMs)
	l.lastByUser[userID] = nowMs
	return true
}

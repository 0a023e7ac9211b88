package room

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter() *ControlLimiter {
	return NewControlLimiter(5*time.Second, 10, 900*time.Millisecond)
}

func TestLimiterUserCooldown(t *testing.T) {
	l := newTestLimiter()

	assert.True(t, l.Allow("alice", 1000))
	assert.False(t, l.Allow("alice", 1899), "second command under 900ms apart")
	assert.True(t, l.Allow("alice", 1900), "exactly 900ms apart")
}

func TestLimiterRoomWindow(t *testing.T) {
	l := newTestLimiter()

	// 10 commands from distinct users within 4 seconds
	for i := 0; i < 10; i++ {
		require.True(t, l.Allow(fmt.Sprintf("user-%d", i), int64(i*400)))
	}

	assert.False(t, l.Allow("another", 4000), "11th command inside the window")

	// window fully elapsed relative to every recorded hit
	assert.True(t, l.Allow("another", 3600+5001))
}

func TestLimiterRejectionRecordsNothing(t *testing.T) {
	l := newTestLimiter()

	// fill the room window with other users
	for i := 0; i < 10; i++ {
		require.True(t, l.Allow(fmt.Sprintf("filler-%d", i), 1000))
	}

	// alice is blocked by the room gate; her cooldown must not arm
	require.False(t, l.Allow("alice", 2000))
	_, recorded := l.lastByUser["alice"]
	assert.False(t, recorded, "room-gate rejection must not record a user timestamp")
	assert.Len(t, l.roomHits, 10, "rejection must not grow the room window")

	// window clears at 1000+5000; alice is then immediately allowed
	assert.True(t, l.Allow("alice", 6001))
}

func TestLimiterUserRejectionDoesNotConsumeRoomBudget(t *testing.T) {
	l := newTestLimiter()

	require.True(t, l.Allow("bob", 1000))
	require.False(t, l.Allow("bob", 1500), "cooldown rejection")
	assert.Len(t, l.roomHits, 1, "cooldown rejection must not record a room hit")
}

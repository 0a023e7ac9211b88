package domain

// Action is a playback control verb carried by a control message.
type Action string

const (
	ActionPlay  Action = "PLAY"
	ActionPause Action = "PAUSE"
	ActionSeek  Action = "SEEK"
)

// ErrorCode identifies a recoverable protocol error sent back to the
// offending connection. No code is fatal to the connection or the room.
type ErrorCode string

const (
	ErrBadJSON   ErrorCode = "BAD_JSON"
	ErrNotJoined ErrorCode = "NOT_JOINED"
	ErrRateLimit ErrorCode = "RATE_LIMIT"
	ErrUnknown   ErrorCode = "UNKNOWN"
)

package room

import (
	"github.com/go-playground/validator/v10"

	"github.com/zmagdon/watchparty/internal/domain"
)

var validate = validator.New()

// Inbound shapes. Each client frame carries a type tag; the payload is
// re-decoded per variant and validated before dispatch.

type envelope struct {
	Type string `json:"type"`
}

type joinPayload struct {
	UserID   string `json:"userId" validate:"required,max=64"`
	Name     string `json:"name" validate:"required,max=64"`
	MediaKey string `json:"mediaKey" validate:"max=256"`
}

type controlPayload struct {
	Action     string  `json:"action" validate:"required,oneof=PLAY PAUSE SEEK"`
	PositionMs float64 `json:"positionMs"`
	// BaseVersion is accepted for client compatibility but not
	// enforced: commands apply regardless of the version the sender
	// last observed.
	BaseVersion int64 `json:"baseVersion"`
}

type chatPayload struct {
	Text string `json:"text"`
}

type pingPayload struct {
	T int64 `json:"t"`
}

// Outbound shapes.

type welcomeMsg struct {
	Type         string `json:"type"`
	ServerTimeMs int64  `json:"serverTimeMs"`
}

type stateMsg struct {
	Type  string               `json:"type"`
	State domain.PlaybackState `json:"state"`
}

type presenceMsg struct {
	Type  string        `json:"type"`
	Users []domain.User `json:"users"`
}

type chatMsg struct {
	Type string      `json:"type"`
	From domain.User `json:"from"`
	Text string      `json:"text"`
	At   int64       `json:"at"`
}

type pongMsg struct {
	Type         string `json:"type"`
	T            int64  `json:"t"`
	ServerTimeMs int64  `json:"serverTimeMs"`
}

type errorMsg struct {
	Type    string           `json:"type"`
	Code    domain.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

package room

import (
	"context"
	"encoding/json"
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zmagdon/watchparty/internal/domain"
	"github.com/zmagdon/watchparty/internal/storage"
)

// Clock supplies the current server time in ms since epoch. Threaded
// through extrapolation and rate-limit checks so both stay testable
// without wall-clock waits.
type Clock func() int64

func WallClock() int64 { return time.Now().UnixMilli() }

// Config carries the per-room tunables.
type Config struct {
	RoomWindow   time.Duration
	RoomLimit    int
	UserCooldown time.Duration
	ChatMaxLen   int
}

func DefaultConfig() Config {
	return Config{
		RoomWindow:   5 * time.Second,
		RoomLimit:    10,
		UserCooldown: 900 * time.Millisecond,
		ChatMaxLen:   500,
	}
}

// Sender is the transport endpoint of one connection. Owned by the
// adapter; the adapter must Close() it.
type Sender interface {
	ID() string
	TrySend(data []byte) error
	Close()
}

type attachEvent struct{ conn Sender }
type detachEvent struct{ connID string }
type frameEvent struct {
	connID string
	data   []byte
}

// Coordinator is the single-writer actor owning one room: its playback
// state, presence, rate limiter and connection set. All inbound events
// are serialized through the mailbox, so mutation needs no locking.
type Coordinator struct {
	id       string
	state    domain.PlaybackState
	limiter  *ControlLimiter
	presence *Presence
	conns    map[string]Sender
	store    storage.SnapshotStore
	clock    Clock
	cfg      Config

	inbox     chan any
	done      chan struct{}
	persistCh chan domain.PlaybackState

	// read by Manager.List from other goroutines
	clients atomic.Int32
	version atomic.Int64
}

// NewCoordinator restores the room snapshot (if any) before the room
// accepts any message, so version stays monotonic across restarts.
func NewCoordinator(id string, store storage.SnapshotStore, cfg Config, clock Clock) *Coordinator {
	c := &Coordinator{
		id:        id,
		limiter:   NewControlLimiter(cfg.RoomWindow, cfg.RoomLimit, cfg.UserCooldown),
		presence:  NewPresence(),
		conns:     make(map[string]Sender),
		store:     store,
		clock:     clock,
		cfg:       cfg,
		inbox:     make(chan any, 64),
		done:      make(chan struct{}),
		persistCh: make(chan domain.PlaybackState, 16),
	}
	st, ok, err := store.Load(id)
	if err != nil {
		log.Warn().Err(err).Str("module", "room").Str("room", id).Msg("snapshot load failed, starting fresh")
	}
	if ok {
		c.state = st
	} else {
		c.state = domain.NewPlaybackState(clock())
	}
	c.version.Store(c.state.Version)
	go c.persistLoop()
	return c
}

func (c *Coordinator) ID() string { return c.id }

// Run consumes the mailbox until the context is canceled.
func (c *Coordinator) Run(ctx context.Context) {
	defer close(c.done)
	log.Info().Str("module", "room").Str("room", c.id).Int64("version", c.state.Version).Msg("room started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "room").Str("room", c.id).Msg("room stopped")
			return
		case ev := <-c.inbox:
			c.handle(ev)
		}
	}
}

// Attach registers a connection with the room. The coordinator greets
// it with welcome, current state and presence before any client
// message is required.
func (c *Coordinator) Attach(conn Sender) {
	select {
	case c.inbox <- attachEvent{conn: conn}:
	case <-c.done:
	}
}

// Deliver hands a raw inbound frame to the room.
func (c *Coordinator) Deliver(connID string, data []byte) {
	select {
	case c.inbox <- frameEvent{connID: connID, data: data}:
	case <-c.done:
	}
}

// Detach removes a connection. Idempotent: detaching an unknown
// connection is a no-op.
func (c *Coordinator) Detach(connID string) {
	select {
	case c.inbox <- detachEvent{connID: connID}:
	case <-c.done:
	}
}

func (c *Coordinator) handle(ev any) {
	switch e := ev.(type) {
	case attachEvent:
		c.onAttach(e.conn)
	case frameEvent:
		c.onFrame(e.connID, e.data)
	case detachEvent:
		c.onDetach(e.connID)
	}
}

func (c *Coordinator) onAttach(conn Sender) {
	c.conns[conn.ID()] = conn
	c.clients.Store(int32(len(c.conns)))
	now := c.clock()
	c.send(conn, welcomeMsg{Type: "welcome", ServerTimeMs: now})
	c.send(conn, stateMsg{Type: "state", State: c.state.At(now)})
	c.send(conn, presenceMsg{Type: "presence", Users: c.presence.Users()})
	log.Info().Str("module", "room").Str("room", c.id).Str("conn", conn.ID()).Msg("connection attached")
}

func (c *Coordinator) onDetach(connID string) {
	if _, ok := c.conns[connID]; !ok {
		return
	}
	delete(c.conns, connID)
	c.clients.Store(int32(len(c.conns)))
	if _, joined := c.presence.User(connID); joined {
		c.presence.Leave(connID)
		c.broadcast(presenceMsg{Type: "presence", Users: c.presence.Users()})
	}
	log.Info().Str("module", "room").Str("room", c.id).Str("conn", connID).Msg("connection detached")
}

func (c *Coordinator) onFrame(connID string, data []byte) {
	conn, ok := c.conns[connID]
	if !ok {
		return
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.sendError(conn, domain.ErrBadJSON, "invalid JSON")
		return
	}
	if env.Type == "join" {
		c.handleJoin(conn, data)
		return
	}
	user, joined := c.presence.User(connID)
	if !joined {
		c.sendError(conn, domain.ErrNotJoined, "join the room first")
		return
	}
	switch env.Type {
	case "ping":
		c.handlePing(conn, data)
	case "chat":
		c.handleChat(conn, user, data)
	case "control":
		c.handleControl(conn, user, data)
	default:
		c.sendError(conn, domain.ErrUnknown, "unknown message type")
	}
}

func (c *Coordinator) handleJoin(conn Sender, data []byte) {
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		c.sendError(conn, domain.ErrUnknown, "missing or invalid join fields")
		return
	}
	if err := validate.Struct(&p); err != nil {
		c.sendError(conn, domain.ErrUnknown, "missing or invalid join fields")
		return
	}
	now := c.clock()
	c.presence.Join(conn.ID(), domain.User{ID: p.UserID, Name: p.Name})

	// First non-empty mediaKey wins; later joins never overwrite it.
	if p.MediaKey != "" && c.state.MediaKey == "" {
		next := c.state.At(now)
		next.MediaKey = p.MediaKey
		next.Version = c.state.Version + 1
		next.UpdatedAt = now
		next.UpdatedBy = p.UserID
		c.commit(next)
		c.broadcast(stateMsg{Type: "state", State: c.state})
	} else {
		c.send(conn, stateMsg{Type: "state", State: c.state.At(now)})
	}
	c.broadcast(presenceMsg{Type: "presence", Users: c.presence.Users()})
	log.Info().Str("module", "room").Str("room", c.id).Str("user", p.UserID).Str("name", p.Name).Msg("join")
}

func (c *Coordinator) handlePing(conn Sender, data []byte) {
	var p pingPayload
	_ = json.Unmarshal(data, &p)
	c.send(conn, pongMsg{Type: "pong", T: p.T, ServerTimeMs: c.clock()})
}

func (c *Coordinator) handleChat(conn Sender, from domain.User, data []byte) {
	var p chatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		c.sendError(conn, domain.ErrUnknown, "invalid chat payload")
		return
	}
	text := p.Text
	if r := []rune(text); len(r) > c.cfg.ChatMaxLen {
		text = string(r[:c.cfg.ChatMaxLen])
	}
	c.broadcast(chatMsg{Type: "chat", From: from, Text: text, At: c.clock()})
}

func (c *Coordinator) handleControl(conn Sender, user domain.User, data []byte) {
	var p controlPayload
	if err := json.Unmarshal(data, &p); err != nil {
		c.sendError(conn, domain.ErrUnknown, "invalid control payload")
		return
	}
	if err := validate.Struct(&p); err != nil {
		c.sendError(conn, domain.ErrUnknown, "invalid control action")
		return
	}
	now := c.clock()
	if !c.limiter.Allow(user.ID, now) {
		c.sendError(conn, domain.ErrRateLimit, "too many control commands")
		return
	}
	cmd := Command{Action: domain.Action(p.Action), By: user.ID}
	if cmd.Action == domain.ActionSeek {
		cmd.PositionMs = int64(math.Floor(p.PositionMs))
	}
	c.commit(Apply(c.state, cmd, now))
	c.broadcast(stateMsg{Type: "state", State: c.state})
	log.Debug().Str("module", "room").Str("room", c.id).Str("user", user.ID).
		Str("action", p.Action).Int64("version", c.state.Version).Msg("control applied")
}

// commit replaces the in-memory state and queues a snapshot write.
// The in-memory value stays authoritative for the live session; a
// failed or dropped save only costs recovery fidelity.
func (c *Coordinator) commit(next domain.PlaybackState) {
	c.state = next
	c.version.Store(next.Version)
	select {
	case c.persistCh <- next:
	default:
		log.Warn().Str("module", "room").Str("room", c.id).Msg("persist queue full, snapshot dropped")
	}
}

// persistLoop writes queued snapshots one at a time so a newer
// snapshot can never be overwritten by an older in-flight one. It
// drains what is queued when the room stops.
func (c *Coordinator) persistLoop() {
	save := func(st domain.PlaybackState) {
		if err := c.store.Save(c.id, st); err != nil {
			log.Warn().Err(err).Str("module", "room").Str("room", c.id).Msg("snapshot save failed")
		}
	}
	for {
		select {
		case st := <-c.persistCh:
			save(st)
		case <-c.done:
			for {
				select {
				case st := <-c.persistCh:
					save(st)
				default:
					return
				}
			}
		}
	}
}

func (c *Coordinator) sendError(conn Sender, code domain.ErrorCode, msg string) {
	c.send(conn, errorMsg{Type: "error", Code: code, Message: msg})
}

func (c *Coordinator) send(conn Sender, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "room").Msg("marshal reply")
		return
	}
	if err := conn.TrySend(b); err != nil {
		log.Debug().Err(err).Str("module", "room").Str("conn", conn.ID()).Msg("send dropped")
	}
}

// broadcast fans out to every connection; a failed send to one never
// aborts delivery to the rest.
func (c *Coordinator) broadcast(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "room").Msg("marshal broadcast")
		return
	}
	for id, conn := range c.conns {
		if err := conn.TrySend(b); err != nil {
			log.Debug().Err(err).Str("module", "room").Str("conn", id).Msg("broadcast dropped")
		}
	}
}

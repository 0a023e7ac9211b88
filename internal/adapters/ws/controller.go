package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/zmagdon/watchparty/internal/room"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller upgrades room endpoints and pumps frames between the
// socket and the room coordinator.
type Controller struct {
	Rooms        *room.Manager
	ReadLimit    int64
	PingPeriod   time.Duration
	WriteTimeout time.Duration
}

// HandleRoom owns the connection for its whole lifetime: attach,
// read loop, detach. The room reference is held until the socket is
// gone so the coordinator cannot be evicted under a live connection.
func (ctl *Controller) HandleRoom(ctx context.Context, c *gin.Context) {
	roomID := c.Param("id")
	sock, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Str("room", roomID).Msg("upgrade failed")
		return
	}

	conn := newConn(sock)
	log.Info().Str("module", "ws").Str("room", roomID).Str("conn", conn.ID()).Msg("new connection")

	co := ctl.Rooms.Acquire(roomID)
	defer ctl.Rooms.Release(roomID)

	co.Attach(conn)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go ctl.writePump(ctx, conn)
	ctl.readPump(ctx, co, conn)

	co.Detach(conn.ID())
	conn.Close()
}

func (ctl *Controller) readPump(ctx context.Context, co *room.Coordinator, c *Conn) {
	if ctl.ReadLimit > 0 {
		c.sock.SetReadLimit(ctl.ReadLimit)
	}
	if ctl.PingPeriod > 0 {
		readWait := ctl.PingPeriod + 10*time.Second
		_ = c.sock.SetReadDeadline(time.Now().Add(readWait))
		c.sock.SetPongHandler(func(string) error {
			return c.sock.SetReadDeadline(time.Now().Add(readWait))
		})
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		_, data, err := c.sock.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Str("module", "ws").Str("conn", c.ID()).Msg("read closed")
			return
		}
		co.Deliver(c.ID(), data)
	}
}

func (ctl *Controller) writePump(ctx context.Context, c *Conn) {
	var heartbeat <-chan time.Time
	if ctl.PingPeriod > 0 {
		ticker := time.NewTicker(ctl.PingPeriod)
		defer ticker.Stop()
		heartbeat = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.sock.SetWriteDeadline(time.Now().Add(ctl.WriteTimeout)); err != nil {
				return
			}
			if err := c.sock.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("module", "ws").Str("conn", c.ID()).Msg("write error")
				return
			}
		case <-heartbeat:
			if err := c.sock.SetWriteDeadline(time.Now().Add(ctl.WriteTimeout)); err != nil {
				return
			}
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

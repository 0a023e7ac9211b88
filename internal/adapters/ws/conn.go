// Package ws adapts gorilla/websocket connections to the room layer.
package ws

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var ErrBackpressure = errors.New("backpressure")

// Conn wraps a websocket with a buffered outbound queue. TrySend never
// blocks: a full queue drops the frame with ErrBackpressure, keeping a
// slow client from stalling the room.
type Conn struct {
	id   string
	sock *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func newConn(sock *websocket.Conn) *Conn {
	return &Conn{
		id:   uuid.NewString(),
		sock: sock,
		send: make(chan []byte, 32),
	}
}

func (c *Conn) ID() string { return c.id }

func (c *Conn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.sock.Close()
	c.mu.Unlock()
}

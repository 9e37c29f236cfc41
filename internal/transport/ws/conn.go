package ws

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cwrk-planet/liveroom/internal/coordinator"
	"github.com/cwrk-planet/liveroom/internal/identity"

	"github.com/gorilla/websocket"
)

var (
	ErrConnClosed     = errors.New("connection closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

// wsConn is one websocket client. Only writeLoop writes frames, so messages
// leave in the order Send accepted them.
type wsConn struct {
	id       string
	conn     *websocket.Conn
	identity identity.Identity

	out       chan coordinator.Message
	closed    chan struct{}
	closeOnce sync.Once
	closeErr  error

	writeWait time.Duration
	pingEvery time.Duration
}

func newWsConn(id string, c *websocket.Conn, ident identity.Identity, buffer int, writeWait, pingEvery time.Duration) *wsConn {
	return &wsConn{
		id:        id,
		conn:      c,
		identity:  ident,
		out:       make(chan coordinator.Message, buffer),
		closed:    make(chan struct{}),
		writeWait: writeWait,
		pingEvery: pingEvery,
	}
}

func (c *wsConn) ID() string { return c.id }

// Send enqueues msg without blocking. A full queue drops the message.
func (c *wsConn) Send(msg coordinator.Message) error {
	select {
	case <-c.closed:
		return ErrConnClosed
	default:
	}
	select {
	case c.out <- msg:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *wsConn) writeLoop() {
	ticker := time.NewTicker(c.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				slog.Debug("ws write failed", "conn", c.id, "type", msg.Type, "err", err)
				_ = c.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeWait)); err != nil {
				slog.Debug("ws ping failed", "conn", c.id, "err", err)
				_ = c.Close()
				return
			}
		case <-c.closed:
			return
		}
	}
}

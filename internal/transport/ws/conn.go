package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/cwrk-planet/thread-service/internal/domain"

	"github.com/gorilla/websocket"
)

var (
	ErrSendQueueFull = errors.New("ws send queue full")
	ErrConnClosed    = errors.New("ws connection closed")
)

const writeWait = 5 * time.Second

type wsConn struct {
	conn     *websocket.Conn
	threadID string
	actor    domain.ActorRef

	send      chan Message
	closed    chan struct{}
	closeOnce sync.Once
}

func newWsConn(c *websocket.Conn, threadID string, actor domain.ActorRef, queue int) *wsConn {
	return &wsConn{
		conn:     c,
		threadID: threadID,
		actor:    actor,
		send:     make(chan Message, queue),
		closed:   make(chan struct{}),
	}
}

// Send кладёт сообщение в очередь соединения и не блокирует рассылку хаба.
func (c *wsConn) Send(msg Message) error {
	select {
	case <-c.closed:
		return ErrConnClosed
	default:
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return ErrSendQueueFull
	}
}

func (c *wsConn) write(msg Message) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

func (c *wsConn) Actor() domain.ActorRef { return c.actor }
func (c *wsConn) ThreadID() string       { return c.threadID }

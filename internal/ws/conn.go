package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ByteEmpire/roompartner/internal/chat"
)

var (
	errConnClosed     = errors.New("connection closed")
	errSendBufferFull = errors.New("send buffer full")
)

// conn wraps a websocket connection with a buffered outbound channel. It
// is the chat.Handle handed to the presence registry: Send never blocks,
// a full buffer or closed connection reports an error that callers treat
// as a best-effort miss.
type conn struct {
	ws     *websocket.Conn
	send   chan chat.Event
	closed chan struct{}
	once   sync.Once
}

func newConn(ws *websocket.Conn) *conn {
	return &conn{
		ws:     ws,
		send:   make(chan chat.Event, sendBufferSize),
		closed: make(chan struct{}),
	}
}

// Send queues an event for delivery.
func (c *conn) Send(ev chat.Event) error {
	select {
	case <-c.closed:
		return errConnClosed
	default:
	}

	select {
	case c.send <- ev:
		return nil
	default:
		return errSendBufferFull
	}
}

// close shuts the connection down exactly once. The writer pump exits on
// the closed channel; the reader pump exits on the underlying close.
func (c *conn) close() {
	c.once.Do(func() {
		close(c.closed)
		c.ws.Close()
	})
}

// writer pumps queued events to the websocket and keeps the connection
// alive with periodic pings. Runs in its own goroutine.
func (c *conn) writer() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case ev := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}

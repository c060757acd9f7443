package listener

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// client is the transport half of a session. Only writePump writes to ws.
type client struct {
	ws   *websocket.Conn
	send chan []byte

	closing   chan struct{}
	closeOnce sync.Once
	done      chan struct{}
}

func newClient(ws *websocket.Conn, buffer int) *client {
	return &client{
		ws:      ws,
		send:    make(chan []byte, buffer),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Deliver queues a frame without blocking. It reports false when the buffer
// is full and the frame was dropped.
func (c *client) Deliver(data []byte) bool {
	select {
	case <-c.closing:
		return true
	default:
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close asks the write pump to flush what is queued and close the socket.
func (c *client) Close() {
	c.closeOnce.Do(func() { close(c.closing) })
}

func (c *client) writePump(ctx context.Context, pingPeriod time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
		close(c.done)
	}()

	for {
		select {
		case data := <-c.send:
			if err := c.write(websocket.TextMessage, data); err != nil {
				slog.DebugContext(ctx, "writing frame", "remote", c.ws.RemoteAddr(), "error", err)
				return
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closing:
			c.flush()
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ctx.Done():
			c.flush()
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		}
	}
}

// flush writes whatever is still queued.
func (c *client) flush() {
	for {
		select {
		case data := <-c.send:
			if err := c.write(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *client) write(messageType int, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(messageType, data)
}

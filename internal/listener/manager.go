package listener

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pixil98/go-tileworld/internal/router"
)

const (
	DefaultSendBuffer = 256
	DefaultReadLimit  = 64 * 1024
	DefaultPongWait   = 60 * time.Second

	writeWait = 10 * time.Second
)

// Executor runs fn on the simulation loop.
type Executor interface {
	Do(ctx context.Context, fn func()) error
}

// ConnectionManager pumps frames between accepted websockets and their router
// sessions. Sessions are only ever touched from the simulation loop.
type ConnectionManager struct {
	router *router.Router
	exec   Executor

	sendBuffer int
	readLimit  int64
	pongWait   time.Duration
}

func NewConnectionManager(r *router.Router, exec Executor, opts ...ConnectionManagerOpt) *ConnectionManager {
	m := &ConnectionManager{
		router:     r,
		exec:       exec,
		sendBuffer: DefaultSendBuffer,
		readLimit:  DefaultReadLimit,
		pongWait:   DefaultPongWait,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// AcceptConnection serves ws until the peer goes away or ctx is done.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, ws *websocket.Conn) {
	c := newClient(ws, m.sendBuffer)
	go c.writePump(ctx, m.pongWait*9/10)

	session := m.router.Open(c)
	m.readLoop(ctx, c, session)

	// The loop may already be gone during shutdown, in which case the
	// simulation has saved everyone itself.
	err := m.exec.Do(context.WithoutCancel(ctx), session.Close)
	if err != nil {
		slog.DebugContext(ctx, "closing session", "remote", ws.RemoteAddr(), "error", err)
	}

	c.Close()
	<-c.done
}

func (m *ConnectionManager) readLoop(ctx context.Context, c *client, session *router.Session) {
	ws := c.ws
	ws.SetReadLimit(m.readLimit)
	_ = ws.SetReadDeadline(time.Now().Add(m.pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(m.pongWait))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				slog.WarnContext(ctx, "reading frame", "remote", ws.RemoteAddr(), "category", "protocol", "error", err)
			}
			return
		}

		if err := m.exec.Do(ctx, func() { session.Handle(data) }); err != nil {
			return
		}
	}
}

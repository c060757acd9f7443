package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

const shutdownGrace = 5 * time.Second

type WebsocketListener struct {
	port     uint16
	path     string
	cm       *ConnectionManager
	upgrader websocket.Upgrader

	wg sync.WaitGroup
}

func NewWebsocketListener(port uint16, path string, cm *ConnectionManager) *WebsocketListener {
	if path == "" {
		path = "/"
	}
	return &WebsocketListener{
		port: port,
		path: path,
		cm:   cm,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients are served from anywhere.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler upgrades requests on the listener's path. Connections it accepts
// live until the peer leaves or ctx is done.
func (l *WebsocketListener) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(l.path, func(w http.ResponseWriter, r *http.Request) {
		ws, err := l.upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.WarnContext(ctx, "upgrading connection", "remote", r.RemoteAddr, "category", "protocol", "error", err)
			return
		}

		l.wg.Add(1)
		defer l.wg.Done()

		slog.DebugContext(ctx, "connection accepted", "remote", r.RemoteAddr)
		l.cm.AcceptConnection(ctx, ws)
	})
	return mux
}

func (l *WebsocketListener) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("port %d is already in use (another server running?)", l.port)
		}
		return fmt.Errorf("listening on port %d: %w", l.port, err)
	}

	srv := &http.Server{
		Handler:           l.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.InfoContext(ctx, "listening for websockets", "port", l.port, "path", l.path)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving websockets on port %d: %w", l.port, err)
	case <-ctx.Done():
	}

	// Hijacked connections are not tracked by the server. They close
	// themselves when ctx is done, so wait for them separately.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.WarnContext(ctx, "stopping websocket server", "port", l.port, "error", err)
	}
	l.wg.Wait()

	return nil
}

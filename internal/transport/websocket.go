package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// wsQueueSize buffers bridged websocket bytes for the tick.
const wsQueueSize = 8192

// WebSocketLink serves the line protocol over a websocket listener for
// hosts that connect over the network instead of the serial link. One
// control stream at a time: a new connection replaces the old one. Each
// text message is bridged into the byte queue as one terminated line.
type WebSocketLink struct {
	logger   *slog.Logger
	server   *http.Server
	upgrader websocket.Upgrader
	bytes    chan byte

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebSocketLink creates a link listening on addr.
func NewWebSocketLink(addr string, logger *slog.Logger) *WebSocketLink {
	l := &WebSocketLink{
		logger: logger,
		bytes:  make(chan byte, wsQueueSize),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The link is a trusted local bridge, not a browser API.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/link", l.handleLink)
	l.server = &http.Server{Addr: addr, Handler: mux}
	return l
}

// Start begins accepting connections in a background goroutine.
func (l *WebSocketLink) Start() error {
	go func() {
		if err := l.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.logger.Error("WebSocket listener failed", slog.String("error", err.Error()))
		}
	}()
	l.logger.Info("WebSocket host link listening", slog.String("address", l.server.Addr))
	return nil
}

// Stop closes the active connection and shuts the listener down.
func (l *WebSocketLink) Stop(ctx context.Context) error {
	l.mu.Lock()
	if l.conn != nil {
		l.conn.Close()
		l.conn = nil
	}
	l.mu.Unlock()

	if err := l.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down websocket listener: %w", err)
	}
	return nil
}

func (l *WebSocketLink) handleLink(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.logger.Warn("WebSocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	l.mu.Lock()
	if l.conn != nil {
		// Newest connection wins the single control stream.
		l.conn.Close()
	}
	l.conn = conn
	l.mu.Unlock()

	l.logger.Info("Host connected",
		slog.String("remote_addr", conn.RemoteAddr().String()),
	)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}
		for _, b := range data {
			select {
			case l.bytes <- b:
			default:
			}
		}
		select {
		case l.bytes <- '\n':
		default:
		}
	}

	l.mu.Lock()
	if l.conn == conn {
		l.conn = nil
	}
	l.mu.Unlock()
	conn.Close()

	l.logger.Info("Host disconnected",
		slog.String("remote_addr", conn.RemoteAddr().String()),
	)
}

// ReadByte returns the next bridged host byte without blocking.
func (l *WebSocketLink) ReadByte() (byte, bool) {
	select {
	case b := <-l.bytes:
		return b, true
	default:
		return 0, false
	}
}

// WriteLine sends one response line as a text message. With no host
// connected the response is dropped, matching a disconnected serial
// cable.
func (l *WebSocketLink) WriteLine(line string) error {
	l.mu.Lock()
	conn := l.conn
	l.mu.Unlock()

	if conn == nil {
		return nil
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
		return fmt.Errorf("writing websocket response: %w", err)
	}
	return nil
}

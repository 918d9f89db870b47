package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	closeWait = time.Second
)

// Conn is a WebSocket connection to a whiteboard server. Send may be called
// from any goroutine.
type Conn struct {
	ws  *websocket.Conn
	log *slog.Logger

	mu        sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
	listening atomic.Bool
	done      chan struct{}
	closeErr  error
}

// Dial connects to the server at url, e.g. ws://localhost:8080/ws.
func Dial(ctx context.Context, url string, header http.Header, log *slog.Logger) (*Conn, error) {
	if log == nil {
		log = slog.Default()
	}
	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Conn{ws: ws, log: log.With("server", url), done: make(chan struct{})}, nil
}

// Send writes one text frame.
func (c *Conn) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, frame)
}

// Listen feeds every inbound frame to handle until the connection closes or
// ctx is done, which closes the connection. A close initiated by either side
// returns nil. Errors returned by handle are logged and do not end the loop.
func (c *Conn) Listen(ctx context.Context, handle func([]byte) error) error {
	c.listening.Store(true)
	defer close(c.done)
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if c.closed.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if err := handle(msg); err != nil {
			c.log.Debug("frame not applied", "err", err)
		}
	}
}

// Close sends a close frame and releases the connection. While Listen is
// running, Close waits briefly for the server to answer the close frame, so
// every frame sent before Close has been read by the server.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.mu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		c.mu.Unlock()

		if c.listening.Load() {
			select {
			case <-c.done:
			case <-time.After(closeWait):
			}
		}
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}

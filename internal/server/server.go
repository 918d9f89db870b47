// Package server exposes the whiteboard room over HTTP: the WebSocket
// endpoint, a health probe, a PNG snapshot and a JSON dump of the board.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/HaaL01/whiteboard/internal/config"
	"github.com/HaaL01/whiteboard/internal/room"
)

const shutdownTimeout = 5 * time.Second

// Server serves one shared board.
type Server struct {
	cfg      config.Server
	log      *slog.Logger
	hub      *room.Hub
	upgrader websocket.Upgrader
	handler  http.Handler

	stop      context.CancelFunc
	closeOnce sync.Once
}

// New builds a server from cfg. The board lives until Close is called or the
// context given to Run is done.
func New(cfg config.Server, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:  cfg,
		log:  log,
		stop: cancel,
		hub: room.NewHub(ctx,
			room.WithLogger(log),
			room.WithRetainEmpty(cfg.RetainEmpty),
		),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.handler = accessLog(log, s.routes())
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Browsers connect to the bare host, so the root accepts upgrades too.
	r.GET("/", s.handleWebSocket)
	r.GET("/ws", s.handleWebSocket)

	r.GET("/healthz", s.handleHealth)
	r.GET("/snapshot.png", s.handleSnapshot)
	r.GET("/shapes", s.handleShapes)
	return r
}

// Handler returns the HTTP handler with access logging applied.
func (s *Server) Handler() http.Handler { return s.handler }

// Run listens on the configured address until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then closes the board
// and shuts the HTTP server down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.log.Info("server listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close stops the board. Connected peers receive a close frame.
func (s *Server) Close() {
	s.closeOnce.Do(s.stop)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.cfg.Origins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.cfg.Origins {
		if o == origin {
			return true
		}
	}
	s.log.Warn("rejected origin", "origin", origin, "remote", r.RemoteAddr)
	return false
}

func accessLog(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		log.Info("handled", "method", r.Method, "path", r.URL.Path, "status", m.Code, "duration", m.Duration)
	})
}

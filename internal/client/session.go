// Package client is the participant side of the whiteboard: a local mirror
// of the board kept in step with server frames, and the interaction logic
// that turns pointer input into protocol messages.
//
// Local actions are applied to the mirror before they are sent and are never
// reconciled against the server's copy. The server relays input verbatim, so
// the two agree as long as it keeps doing so.
package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/HaaL01/whiteboard/internal/geom"
	"github.com/HaaL01/whiteboard/internal/presence"
	"github.com/HaaL01/whiteboard/internal/protocol"
	"github.com/HaaL01/whiteboard/internal/shape"
	"github.com/HaaL01/whiteboard/internal/store"
)

// Transport delivers encoded frames to the server.
type Transport interface {
	Send(frame []byte) error
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithStyle sets the initial stroke style.
func WithStyle(st Style) Option {
	return func(s *Session) { s.style = st }
}

// Session is one participant's view of the board. It is safe for concurrent
// use: frames may arrive on one goroutine while input is fed from another.
type Session struct {
	id  string
	tr  Transport
	log *slog.Logger

	shapes  *store.Store
	cursors *presence.Presence

	history     chan struct{}
	historyOnce sync.Once

	mu       sync.Mutex
	view     geom.ViewState
	tool     Tool
	style    Style
	selected string
	gesture  gesture
}

// NewSession returns a session sending through tr. A nil transport keeps
// every action local.
func NewSession(tr Transport, opts ...Option) *Session {
	s := &Session{
		id:      uuid.NewString(),
		tr:      tr,
		log:     slog.Default(),
		shapes:  store.New(),
		cursors: presence.New(),
		history: make(chan struct{}),
		view:    geom.DefaultView(),
		tool:    ToolSelect,
		style:   DefaultStyle(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("client", s.id)
	return s
}

// ID is the identifier this session reports with its cursor.
func (s *Session) ID() string { return s.id }

// HandleFrame applies one server frame to the mirror. Malformed frames are
// logged and returned as errors; unknown types are ignored.
func (s *Session) HandleFrame(raw []byte) error {
	msg, err := protocol.Parse(raw)
	if err != nil {
		if errors.Is(err, protocol.ErrUnknownType) {
			return nil
		}
		s.log.Warn("dropping malformed frame", "err", err)
		return err
	}

	switch m := msg.(type) {
	case protocol.History:
		s.shapes.ReplaceAll(m.Shapes)
		s.historyOnce.Do(func() { close(s.history) })
	case protocol.Create, protocol.Move, protocol.Resize:
		if _, err := protocol.Apply(s.shapes, m); err != nil {
			s.log.Warn("dropping unappliable frame", "type", msg.MessageType(), "err", err)
			return err
		}
	case protocol.CursorUpdate:
		if m.ID != s.id {
			s.cursors.Set(m.ID, presence.Cursor{X: m.X, Y: m.Y, Tool: m.Tool})
		}
	case protocol.Disconnect:
		s.cursors.Remove(m.ID)
	}
	return nil
}

// WaitHistory blocks until the first history snapshot has been applied.
func (s *Session) WaitHistory(ctx context.Context) error {
	select {
	case <-s.history:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shapes returns the mirrored shape sequence in render order.
func (s *Session) Shapes() []shape.Shape { return s.shapes.All() }

// Cursors returns the other participants' pointers.
func (s *Session) Cursors() []presence.Entry { return s.cursors.All() }

func (s *Session) View() geom.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Selected returns the id of the selected shape, or "".
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Preview returns the shape being drawn but not yet released.
func (s *Session) Preview() (shape.Shape, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gesture.preview, s.gesture.preview != nil
}

func (s *Session) send(frame []byte, err error) error {
	if err != nil {
		return err
	}
	if s.tr == nil {
		return nil
	}
	if err := s.tr.Send(frame); err != nil {
		s.log.Warn("send failed", "err", err)
		return err
	}
	return nil
}

// Package room holds the authoritative board state and relays changes
// between connections. All mutation happens on the goroutine running
// Room.Run, one event at a time.
package room

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/segmentio/ksuid"

	"github.com/HaaL01/whiteboard/internal/presence"
	"github.com/HaaL01/whiteboard/internal/protocol"
	"github.com/HaaL01/whiteboard/internal/shape"
	"github.com/HaaL01/whiteboard/internal/store"
)

type eventKind int

const (
	joinEvent eventKind = iota
	leaveEvent
	frameEvent
)

type event struct {
	kind  eventKind
	peer  *Peer
	frame []byte
}

// Option configures a Room.
type Option func(*Room)

// WithLogger sets the room's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Room) { r.log = l }
}

// WithRetainEmpty keeps the room running after its last peer leaves. When
// false the room stops and its shapes are discarded.
func WithRetainEmpty(retain bool) Option {
	return func(r *Room) { r.retain = retain }
}

func withOnClose(fn func()) Option {
	return func(r *Room) { r.onClose = fn }
}

// Room is a board: the canonical shape sequence, the cursors of its
// participants and the set of connected peers.
type Room struct {
	name    string
	shapes  *store.Store
	cursors *presence.Presence

	peers  map[*Peer]struct{}
	owners map[string]*Peer
	count  atomic.Int64

	events  chan event
	done    chan struct{}
	retain  bool
	onClose func()
	log     *slog.Logger
}

// New creates a stopped room; start it with Run.
func New(name string, opts ...Option) *Room {
	r := &Room{
		name:    name,
		shapes:  store.New(),
		cursors: presence.New(),
		peers:   make(map[*Peer]struct{}),
		owners:  make(map[string]*Peer),
		events:  make(chan event),
		done:    make(chan struct{}),
		retain:  true,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With("room", name)
	return r
}

// Run processes events until ctx is cancelled or, without retention, the
// last peer leaves. Every remaining peer's outbound channel is closed on exit.
func (r *Room) Run(ctx context.Context) {
	r.log.Info("room opened")
	defer r.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-r.events:
			switch ev.kind {
			case joinEvent:
				r.join(ev.peer)
			case leaveEvent:
				r.leave(ev.peer)
				if len(r.peers) == 0 && !r.retain {
					return
				}
			case frameEvent:
				r.handleFrame(ev.peer, ev.frame)
			}
		}
	}
}

func (r *Room) shutdown() {
	close(r.done)
	for p := range r.peers {
		close(p.send)
		delete(r.peers, p)
	}
	r.count.Store(0)
	r.log.Info("room closed", "shapes", r.shapes.Len())
	if r.onClose != nil {
		r.onClose()
	}
}

// Join registers p. The peer receives the history snapshot before any other
// frame and before any of its own frames are processed. Join reports false
// when the room has stopped.
func (r *Room) Join(p *Peer) bool {
	return r.post(event{kind: joinEvent, peer: p})
}

// Leave unregisters p and closes its outbound channel.
func (r *Room) Leave(p *Peer) {
	r.post(event{kind: leaveEvent, peer: p})
}

// Submit hands an inbound frame from p to the room. Frames from one peer are
// processed in submission order.
func (r *Room) Submit(p *Peer, frame []byte) bool {
	return r.post(event{kind: frameEvent, peer: p, frame: frame})
}

func (r *Room) post(ev event) bool {
	select {
	case r.events <- ev:
		return true
	case <-r.done:
		return false
	}
}

// Done is closed once the room has stopped.
func (r *Room) Done() <-chan struct{} { return r.done }

func (r *Room) Name() string { return r.name }

// Shapes returns a copy of the canonical sequence.
func (r *Room) Shapes() []shape.Shape { return r.shapes.All() }

// Cursors returns the current presence entries.
func (r *Room) Cursors() []presence.Entry { return r.cursors.All() }

// PeerCount returns the number of joined peers.
func (r *Room) PeerCount() int { return int(r.count.Load()) }

func (r *Room) join(p *Peer) {
	frame, err := protocol.EncodeHistory(r.shapes.All())
	if err != nil {
		r.log.Error("encode history", "peer", p.id, "err", err)
	} else {
		r.deliver(p, frame)
	}
	for _, c := range r.cursors.All() {
		r.sendCursor(p, c.ID, c.Cursor)
	}

	r.peers[p] = struct{}{}
	r.count.Store(int64(len(r.peers)))
	r.log.Info("peer joined", "peer", p.id, "peers", len(r.peers))
}

func (r *Room) leave(p *Peer) {
	if _, ok := r.peers[p]; !ok {
		return
	}
	delete(r.peers, p)
	r.count.Store(int64(len(r.peers)))
	close(p.send)

	if p.bound != "" {
		delete(r.owners, p.bound)
		r.cursors.Remove(p.bound)
		if frame, err := protocol.EncodeDisconnect(p.bound); err == nil {
			r.broadcast(frame, nil)
		}
	}
	r.log.Info("peer left", "peer", p.id, "cursor", p.bound, "peers", len(r.peers))
}

func (r *Room) handleFrame(p *Peer, raw []byte) {
	if _, ok := r.peers[p]; !ok {
		return
	}

	msg, err := protocol.Parse(raw)
	if err != nil {
		if errors.Is(err, protocol.ErrUnknownType) {
			r.log.Debug("ignoring frame", "peer", p.id, "err", err)
			return
		}
		r.log.Warn("dropping malformed frame", "peer", p.id, "err", err)
		return
	}

	switch m := msg.(type) {
	case protocol.Create, protocol.Move, protocol.Resize:
		if _, err := protocol.Apply(r.shapes, m); err != nil {
			r.log.Warn("dropping unappliable frame", "peer", p.id, "type", msg.MessageType(), "err", err)
			return
		}
		r.broadcast(raw, p)

	case protocol.Cursor:
		if p.bound == "" {
			p.bound = r.bind(p, m.ID)
		}
		c := presence.Cursor{X: m.X, Y: m.Y, Tool: m.Tool}
		r.cursors.Set(p.bound, c)
		for q := range r.peers {
			if q != p {
				r.sendCursor(q, p.bound, c)
			}
		}

	default:
		r.log.Debug("ignoring client-bound frame", "peer", p.id, "type", msg.MessageType())
	}
}

// bind picks the cursor identifier for p: the identifier it claims, unless
// another live peer holds it, else its connection identifier.
func (r *Room) bind(p *Peer, claimed string) string {
	id := claimed
	if id == "" || r.owners[id] != nil {
		id = p.id
	}
	for r.owners[id] != nil {
		id = ksuid.New().String()
	}
	r.owners[id] = p
	if id != claimed {
		r.log.Info("cursor identifier reassigned", "peer", p.id, "claimed", claimed, "bound", id)
	}
	return id
}

func (r *Room) sendCursor(p *Peer, id string, c presence.Cursor) {
	frame, err := protocol.EncodeCursorUpdate(protocol.CursorUpdate{ID: id, X: c.X, Y: c.Y, Tool: c.Tool})
	if err != nil {
		r.log.Error("encode cursor", "err", err)
		return
	}
	r.deliver(p, frame)
}

// broadcast sends frame to every peer except sender.
func (r *Room) broadcast(frame []byte, sender *Peer) {
	for p := range r.peers {
		if p != sender {
			r.deliver(p, frame)
		}
	}
}

func (r *Room) deliver(p *Peer, frame []byte) {
	select {
	case p.send <- frame:
	default:
		r.log.Warn("outbound buffer full, dropping frame", "peer", p.id)
	}
}

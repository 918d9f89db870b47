package room

import (
	"context"
	"errors"
	"sync"
)

// DefaultName is the name of the single shared room.
const DefaultName = "default"

// ErrHubClosed is returned by Join once the hub's context is done.
var ErrHubClosed = errors.New("hub closed")

// Hub owns the lifecycle of the shared room: it is created by the first
// join and, when rooms do not retain state, recreated after it empties.
type Hub struct {
	ctx  context.Context
	opts []Option

	mu   sync.Mutex
	room *Room
}

// NewHub returns a hub whose rooms run until ctx is done.
func NewHub(ctx context.Context, opts ...Option) *Hub {
	return &Hub{ctx: ctx, opts: opts}
}

// Join adds p to the current room, starting one if necessary.
func (h *Hub) Join(p *Peer) (*Room, error) {
	for {
		if err := h.ctx.Err(); err != nil {
			return nil, ErrHubClosed
		}
		r := h.current()
		if r.Join(p) {
			return r, nil
		}
		h.release(r)
	}
}

// Current returns the running room, if any.
func (h *Hub) Current() (*Room, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.room, h.room != nil
}

func (h *Hub) current() *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.room == nil {
		var r *Room
		opts := append(append([]Option{}, h.opts...), withOnClose(func() { h.release(r) }))
		r = New(DefaultName, opts...)
		h.room = r
		go r.Run(h.ctx)
	}
	return h.room
}

func (h *Hub) release(r *Room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.room == r {
		h.room = nil
	}
}

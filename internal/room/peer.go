package room

import "github.com/segmentio/ksuid"

// Peer is one connection's membership in a room. The room owns the outbound
// channel and closes it when the peer leaves or the room stops.
type Peer struct {
	id   string
	send chan []byte

	// bound is the cursor identifier fixed by the first cursor frame.
	// Only the room loop reads or writes it.
	bound string
}

// NewPeer allocates a peer with a server-assigned identifier and an outbound
// buffer of the given size.
func NewPeer(buffer int) *Peer {
	if buffer < 1 {
		buffer = 1
	}
	return &Peer{
		id:   ksuid.New().String(),
		send: make(chan []byte, buffer),
	}
}

// ID is the server-assigned connection identifier.
func (p *Peer) ID() string { return p.id }

// Outbound yields frames for this peer in send order. It is closed when the
// peer has left.
func (p *Peer) Outbound() <-chan []byte { return p.send }

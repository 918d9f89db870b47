package room_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HaaL01/whiteboard/internal/room"
)

func TestHubCreatesRoomOnFirstJoin(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := room.NewHub(ctx, room.WithLogger(quietLogger()))

	if _, ok := h.Current(); ok {
		t.Fatal("hub must not start a room before the first join")
	}

	a, b := room.NewPeer(8), room.NewPeer(8)
	ra, err := h.Join(a)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	rb, err := h.Join(b)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if ra != rb || ra.Name() != room.DefaultName {
		t.Fatal("both peers must share the single room")
	}
}

func TestHubRecreatesRoomAfterTeardown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := room.NewHub(ctx, room.WithLogger(quietLogger()), room.WithRetainEmpty(false))

	a := room.NewPeer(8)
	first, err := h.Join(a)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	expectHistory(t, a)
	submit(t, first, a, `{"id":"s1","type":"rect","x":0,"y":0,"width":1,"height":1}`)
	first.Leave(a)

	select {
	case <-first.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("empty room was not torn down")
	}

	b := room.NewPeer(8)
	second, err := h.Join(b)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if second == first {
		t.Fatal("expected a fresh room")
	}
	if h := expectHistory(t, b); len(h.Shapes) != 0 {
		t.Fatalf("fresh room must start empty, got %+v", h.Shapes)
	}
}

func TestHubRetainsRoomByDefault(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := room.NewHub(ctx, room.WithLogger(quietLogger()))

	a := room.NewPeer(8)
	r, _ := h.Join(a)
	expectHistory(t, a)
	submit(t, r, a, `{"id":"s1","type":"rect","x":0,"y":0,"width":1,"height":1}`)
	r.Leave(a)

	b := room.NewPeer(8)
	again, _ := h.Join(b)
	if again != r {
		t.Fatal("retained room must be reused")
	}
	if h := expectHistory(t, b); len(h.Shapes) != 1 {
		t.Fatalf("expected retained shape, got %+v", h.Shapes)
	}
}

func TestHubClosed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := room.NewHub(ctx, room.WithLogger(quietLogger()))
	cancel()

	if _, err := h.Join(room.NewPeer(1)); !errors.Is(err, room.ErrHubClosed) {
		t.Fatalf("expected ErrHubClosed, got %v", err)
	}
}

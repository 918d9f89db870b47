package shape_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/HaaL01/whiteboard/internal/geom"
	"github.com/HaaL01/whiteboard/internal/shape"
)

func TestDecodeVariants(t *testing.T) {
	tests := []struct {
		raw  string
		kind shape.Kind
		id   string
	}{
		{`{"type":"draw","x1":1,"y1":2,"x2":3,"y2":4,"color":"#000","width":2}`, shape.KindStroke, ""},
		{`{"type":"erase","x1":1,"y1":2,"x2":3,"y2":4,"color":"#000","width":20}`, shape.KindErase, ""},
		{`{"id":"r1","type":"rect","x":0,"y":0,"width":10,"height":10,"color":"#f00","lineWidth":2}`, shape.KindRect, "r1"},
		{`{"id":"t1","type":"text","text":"hi","x":5,"y":5,"color":"#00f","size":4}`, shape.KindText, "t1"},
		{`{"id":"l1","type":"line","x1":0,"y1":0,"x2":9,"y2":9,"color":"#0f0","width":3}`, shape.KindLine, "l1"},
		{`{"id":"a1","type":"arrow","x1":0,"y1":0,"x2":9,"y2":9,"color":"#0f0","width":3}`, shape.KindArrow, "a1"},
	}

	for _, tt := range tests {
		s, err := shape.Decode([]byte(tt.raw))
		if err != nil {
			t.Fatalf("decode %s: %v", tt.raw, err)
		}
		if s.Kind() != tt.kind || s.ShapeID() != tt.id {
			t.Fatalf("decode %s: got kind %q id %q", tt.raw, s.Kind(), s.ShapeID())
		}

		out, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("marshal %s: %v", tt.kind, err)
		}
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(out, &env); err != nil || env.Type != string(tt.kind) {
			t.Fatalf("marshal %s lost its type tag: %s", tt.kind, out)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := shape.Decode([]byte(`{"type":"ellipse","id":"e"}`)); !errors.Is(err, shape.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := shape.Decode([]byte(`{"type":"rect","x":1}`)); !errors.Is(err, shape.ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
	if _, err := shape.Decode([]byte(`{"type":"rect","id":"r","x":"left"}`)); err == nil {
		t.Fatal("expected a type error for a string coordinate")
	}
	if _, err := shape.Decode([]byte(`not json`)); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestPatchUnion(t *testing.T) {
	base := shape.Rect{ID: "r1", X: 1, Y: 2, Width: 30, Height: 40, Color: "#111", LineWidth: 2}

	first, err := shape.Patch(base, shape.Fields{
		"x":     json.RawMessage(`10`),
		"color": json.RawMessage(`"#222"`),
	})
	if err != nil {
		t.Fatalf("first patch: %v", err)
	}
	second, err := shape.Patch(first, shape.Fields{
		"x":     json.RawMessage(`99`),
		"width": json.RawMessage(`5`),
	})
	if err != nil {
		t.Fatalf("second patch: %v", err)
	}

	want := shape.Rect{ID: "r1", X: 99, Y: 2, Width: 5, Height: 40, Color: "#222", LineWidth: 2}
	if second != want {
		t.Fatalf("expected %+v, got %+v", want, second)
	}
}

func TestPatchKeepsIdentity(t *testing.T) {
	base := shape.Line{ID: "l1", Arrow: true, X2: 10, Y2: 10}
	got, err := shape.Patch(base, shape.Fields{
		"id":    json.RawMessage(`"stolen"`),
		"type":  json.RawMessage(`"rect"`),
		"x1":    json.RawMessage(`3`),
		"bogus": json.RawMessage(`true`),
	})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	line, ok := got.(shape.Line)
	if !ok {
		t.Fatalf("patch changed variant to %T", got)
	}
	if line.ID != "l1" || !line.Arrow || line.X1 != 3 || line.X2 != 10 {
		t.Fatalf("unexpected patched line: %+v", line)
	}
}

func TestPatchRejectsWrongType(t *testing.T) {
	base := shape.Text{ID: "t1", Text: "a", Size: 3}
	got, err := shape.Patch(base, shape.Fields{"size": json.RawMessage(`"huge"`)})
	if err == nil {
		t.Fatal("expected error for string size")
	}
	if got != base {
		t.Fatalf("failed patch must leave the shape unchanged, got %+v", got)
	}
}

func TestHitTestRect(t *testing.T) {
	shapes := []shape.Shape{shape.Rect{ID: "r", X: 10, Y: 10, Width: 50, Height: 30}}

	if s, ok := shape.HitTest(geom.Point{X: 20, Y: 20}, shapes, 1); !ok || s.ShapeID() != "r" {
		t.Fatalf("expected hit on r, got %v %v", s, ok)
	}
	if _, ok := shape.HitTest(geom.Point{X: 100, Y: 100}, shapes, 1); ok {
		t.Fatal("expected no hit at (100,100)")
	}
}

func TestHitTestNegativeExtent(t *testing.T) {
	shapes := []shape.Shape{shape.Rect{ID: "r", X: 60, Y: 40, Width: -50, Height: -30}}
	if _, ok := shape.HitTest(geom.Point{X: 20, Y: 20}, shapes, 1); !ok {
		t.Fatal("expected hit inside flipped rect")
	}
}

func TestHitTestTopmostFirst(t *testing.T) {
	shapes := []shape.Shape{
		shape.Rect{ID: "bottom", X: 0, Y: 0, Width: 100, Height: 100},
		shape.Rect{ID: "top", X: 10, Y: 10, Width: 20, Height: 20},
	}
	s, ok := shape.HitTest(geom.Point{X: 15, Y: 15}, shapes, 1)
	if !ok || s.ShapeID() != "top" {
		t.Fatalf("expected top, got %v", s)
	}
}

func TestHitTestSkipsSegments(t *testing.T) {
	shapes := []shape.Shape{shape.Segment{X1: 0, Y1: 0, X2: 100, Y2: 100, Width: 50}}
	if _, ok := shape.HitTest(geom.Point{X: 50, Y: 50}, shapes, 1); ok {
		t.Fatal("segments must never be hit")
	}
}

func TestHitTestLineBuffer(t *testing.T) {
	shapes := []shape.Shape{shape.Line{ID: "l", X1: 0, Y1: 0, X2: 100, Y2: 0}}

	if _, ok := shape.HitTest(geom.Point{X: 50, Y: 4}, shapes, 1); !ok {
		t.Fatal("expected hit within the buffer")
	}
	if _, ok := shape.HitTest(geom.Point{X: 50, Y: 6}, shapes, 1); ok {
		t.Fatal("expected miss outside the buffer at scale 1")
	}
	// At scale 0.5 the buffer is 10 world units.
	if _, ok := shape.HitTest(geom.Point{X: 50, Y: 6}, shapes, 0.5); !ok {
		t.Fatal("expected hit when zoomed out")
	}
}

func TestHitTestText(t *testing.T) {
	// fontSize 30, width 30*4*0.5 = 60, box [100,160] x [170,200]
	shapes := []shape.Shape{shape.Text{ID: "t", Text: "word", X: 100, Y: 200, Size: 10}}

	if _, ok := shape.HitTest(geom.Point{X: 150, Y: 185}, shapes, 1); !ok {
		t.Fatal("expected hit inside text box")
	}
	if _, ok := shape.HitTest(geom.Point{X: 165, Y: 185}, shapes, 1); ok {
		t.Fatal("expected miss right of the estimated width")
	}
	if _, ok := shape.HitTest(geom.Point{X: 150, Y: 205}, shapes, 1); ok {
		t.Fatal("expected miss below the baseline")
	}
}

func TestGetHandles(t *testing.T) {
	h, ok := shape.GetHandles(shape.Rect{ID: "r", X: 0, Y: 0, Width: 100, Height: 50}, 1)
	if !ok || len(h.Points) != 4 {
		t.Fatalf("expected four rect handles, got %+v", h)
	}
	if h.Box != (geom.Box{X: -5, Y: -5, W: 110, H: 60}) {
		t.Fatalf("unexpected padded box %+v", h.Box)
	}

	h, ok = shape.GetHandles(shape.Line{ID: "l", X1: 1, Y1: 2, X2: 3, Y2: 4}, 1)
	if !ok || len(h.Points) != 2 || h.Points[0].Name != shape.HandleStart || h.Points[1].Name != shape.HandleEnd {
		t.Fatalf("unexpected line handles %+v", h)
	}

	h, ok = shape.GetHandles(shape.Text{ID: "t", Text: "ab", X: 10, Y: 50, Size: 5}, 1)
	// fontSize 15, handle width 15*2*0.6 = 18
	if !ok || len(h.Points) != 1 || h.Points[0].At != (geom.Point{X: 28, Y: 50}) {
		t.Fatalf("unexpected text handles %+v", h)
	}

	if _, ok := shape.GetHandles(shape.Segment{}, 1); ok {
		t.Fatal("segments have no handles")
	}
}

func TestHitTestHandle(t *testing.T) {
	r := shape.Rect{ID: "r", X: 0, Y: 0, Width: 100, Height: 100}

	name, ok := shape.HitTestHandle(geom.Point{X: 99, Y: 102}, r, 1)
	if !ok || name != shape.HandleSE {
		t.Fatalf("expected se, got %q %v", name, ok)
	}
	if _, ok := shape.HitTestHandle(geom.Point{X: 50, Y: 50}, r, 1); ok {
		t.Fatal("expected no handle in the middle")
	}
	// The handle square is 8/scale wide: 16 world units at scale 0.5.
	if name, ok := shape.HitTestHandle(geom.Point{X: 107, Y: 107}, r, 0.5); !ok || name != shape.HandleSE {
		t.Fatalf("expected se when zoomed out, got %q", name)
	}
}

func TestApplyResizeRect(t *testing.T) {
	base := shape.Rect{ID: "r", X: 0, Y: 0, Width: 100, Height: 100}
	tests := []struct {
		handle shape.HandleName
		to     geom.Point
		want   shape.Rect
	}{
		{shape.HandleNW, geom.Point{X: 20, Y: 20}, shape.Rect{ID: "r", X: 20, Y: 20, Width: 80, Height: 80}},
		{shape.HandleSE, geom.Point{X: 150, Y: 120}, shape.Rect{ID: "r", X: 0, Y: 0, Width: 150, Height: 120}},
		{shape.HandleNE, geom.Point{X: 70, Y: 10}, shape.Rect{ID: "r", X: 0, Y: 10, Width: 70, Height: 90}},
		{shape.HandleSW, geom.Point{X: 30, Y: 60}, shape.Rect{ID: "r", X: 30, Y: 0, Width: 70, Height: 60}},
		// dragging past the fixed corner flips the box
		{shape.HandleSE, geom.Point{X: -20, Y: -10}, shape.Rect{ID: "r", X: 0, Y: 0, Width: -20, Height: -10}},
	}

	for _, tt := range tests {
		got := shape.ApplyResize(base, tt.handle, tt.to)
		if got != tt.want {
			t.Fatalf("%s to %+v: expected %+v, got %+v", tt.handle, tt.to, tt.want, got)
		}
	}
}

func TestApplyResizeLineAndText(t *testing.T) {
	l := shape.Line{ID: "l", X1: 0, Y1: 0, X2: 10, Y2: 10}
	if got := shape.ApplyResize(l, shape.HandleStart, geom.Point{X: -5, Y: 3}); got != (shape.Line{ID: "l", X1: -5, Y1: 3, X2: 10, Y2: 10}) {
		t.Fatalf("unexpected start resize %+v", got)
	}
	if got := shape.ApplyResize(l, shape.HandleEnd, geom.Point{X: 7, Y: 8}); got != (shape.Line{ID: "l", X2: 7, Y2: 8}) {
		t.Fatalf("unexpected end resize %+v", got)
	}

	txt := shape.Text{ID: "t", Text: "x", X: 100, Y: 100, Size: 3}
	tests := []struct {
		to   geom.Point
		size float64
	}{
		{geom.Point{X: 150, Y: 110}, 10},
		{geom.Point{X: 112.5, Y: 100}, 3},
		{geom.Point{X: 101, Y: 101}, 1},
		{geom.Point{X: 60, Y: 100}, 8},
	}
	for _, tt := range tests {
		got := shape.ApplyResize(txt, shape.HandleSE, tt.to).(shape.Text)
		if got.Size != tt.size || got.X != 100 || got.Y != 100 {
			t.Fatalf("text resize to %+v: expected size %v, got %+v", tt.to, tt.size, got)
		}
	}
}

func TestApplyMove(t *testing.T) {
	if got := shape.ApplyMove(shape.Rect{ID: "r", X: 1, Y: 1, Width: 5, Height: 5}, 2, -1); got != (shape.Rect{ID: "r", X: 3, Y: 0, Width: 5, Height: 5}) {
		t.Fatalf("unexpected rect move %+v", got)
	}
	if got := shape.ApplyMove(shape.Line{ID: "l", X1: 0, Y1: 0, X2: 4, Y2: 4}, 1, 1); got != (shape.Line{ID: "l", X1: 1, Y1: 1, X2: 5, Y2: 5}) {
		t.Fatalf("unexpected line move %+v", got)
	}
	seg := shape.Segment{X1: 1, Y1: 1, X2: 2, Y2: 2}
	if got := shape.ApplyMove(seg, 10, 10); got != seg {
		t.Fatalf("segments are immutable, got %+v", got)
	}
}

func TestMoveFieldsRoundTrip(t *testing.T) {
	moved := shape.ApplyMove(shape.Text{ID: "t", Text: "hi", X: 1, Y: 2, Size: 4}, 5, 5)
	f := moved.MoveFields()
	if len(f) != 2 || string(f["x"]) != "6" || string(f["y"]) != "7" {
		t.Fatalf("unexpected move fields %v", f)
	}

	resized := shape.ApplyResize(shape.Rect{ID: "r", Width: 10, Height: 10}, shape.HandleSE, geom.Point{X: 4, Y: 5})
	patched, err := shape.Patch(shape.Rect{ID: "r", Width: 10, Height: 10, Color: "#abc"}, resized.ResizeFields())
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if patched != (shape.Rect{ID: "r", Width: 4, Height: 5, Color: "#abc"}) {
		t.Fatalf("resize fields did not reproduce the resize, got %+v", patched)
	}
}

package shape

import (
	"math"
	"unicode/utf8"

	"github.com/HaaL01/whiteboard/internal/geom"
)

// HandleName names a resize control point on a selected shape.
type HandleName string

const (
	HandleNW    HandleName = "nw"
	HandleNE    HandleName = "ne"
	HandleSW    HandleName = "sw"
	HandleSE    HandleName = "se"
	HandleStart HandleName = "start"
	HandleEnd   HandleName = "end"
)

// Handle is a named control point in world coordinates.
type Handle struct {
	Name HandleName
	At   geom.Point
}

// Handles is the selection decoration of a shape: the padded bounding box
// and its control points.
type Handles struct {
	Box    geom.Box
	Points []Handle
}

// Text glyph metrics are estimated, not measured.
const (
	textScale         = 3.0
	textHitAdvance    = 0.5
	textBoxAdvance    = 0.6
	textSizeDivisor   = 5.0
	textMinimumSize   = 1.0
	textBaselineShift = 2.0
)

// FontSize is the rendered glyph height of a text record.
func (t Text) FontSize() float64 { return t.Size * textScale }

// Baseline returns where a text committed at world point p with the given
// size is anchored.
func Baseline(p geom.Point, size float64) geom.Point {
	return geom.Point{X: p.X, Y: p.Y + size*textBaselineShift}
}

func (t Text) width(advance float64) float64 {
	return t.FontSize() * float64(utf8.RuneCountInString(t.Text)) * advance
}

func (Segment) Contains(geom.Point, float64) bool { return false }

func (r Rect) Contains(p geom.Point, _ float64) bool {
	return geom.NormalizedBox(r.X, r.Y, r.Width, r.Height).Contains(p)
}

// Contains approximates the segment by its endpoint bounding box grown by a
// screen-constant buffer, so points near the box corners of a diagonal line
// also hit.
func (l Line) Contains(p geom.Point, scale float64) bool {
	box := geom.SpanBox(geom.Point{X: l.X1, Y: l.Y1}, geom.Point{X: l.X2, Y: l.Y2})
	return box.Pad(geom.HitBuffer / scale).Contains(p)
}

func (t Text) Contains(p geom.Point, _ float64) bool {
	fs := t.FontSize()
	return geom.Box{X: t.X, Y: t.Y - fs, W: t.width(textHitAdvance), H: fs}.Contains(p)
}

func (Segment) Handles(float64) (Handles, bool) { return Handles{}, false }

func (r Rect) Handles(scale float64) (Handles, bool) {
	x1, y1 := r.X, r.Y
	x2, y2 := r.X+r.Width, r.Y+r.Height
	return Handles{
		Box: geom.NormalizedBox(r.X, r.Y, r.Width, r.Height).Pad(geom.SelectionPadding / scale),
		Points: []Handle{
			{HandleNW, geom.Point{X: x1, Y: y1}},
			{HandleNE, geom.Point{X: x2, Y: y1}},
			{HandleSW, geom.Point{X: x1, Y: y2}},
			{HandleSE, geom.Point{X: x2, Y: y2}},
		},
	}, true
}

func (l Line) Handles(scale float64) (Handles, bool) {
	start := geom.Point{X: l.X1, Y: l.Y1}
	end := geom.Point{X: l.X2, Y: l.Y2}
	return Handles{
		Box:    geom.SpanBox(start, end).Pad(geom.SelectionPadding / scale),
		Points: []Handle{{HandleStart, start}, {HandleEnd, end}},
	}, true
}

func (t Text) Handles(scale float64) (Handles, bool) {
	fs := t.FontSize()
	w := t.width(textBoxAdvance)
	return Handles{
		Box:    geom.Box{X: t.X, Y: t.Y - fs, W: w, H: fs}.Pad(geom.SelectionPadding / scale),
		Points: []Handle{{HandleSE, geom.Point{X: t.X + w, Y: t.Y}}},
	}, true
}

func (s Segment) Moved(float64, float64) Shape { return s }

func (r Rect) Moved(dx, dy float64) Shape {
	r.X += dx
	r.Y += dy
	return r
}

func (t Text) Moved(dx, dy float64) Shape {
	t.X += dx
	t.Y += dy
	return t
}

func (l Line) Moved(dx, dy float64) Shape {
	l.X1 += dx
	l.Y1 += dy
	l.X2 += dx
	l.Y2 += dy
	return l
}

func (s Segment) Resized(HandleName, geom.Point) Shape { return s }

// Resized keeps the corner opposite the dragged handle fixed. The extent is
// not clamped, so dragging past the fixed corner flips the box.
func (r Rect) Resized(h HandleName, p geom.Point) Shape {
	right, bottom := r.X+r.Width, r.Y+r.Height
	switch h {
	case HandleSE:
		r.Width = p.X - r.X
		r.Height = p.Y - r.Y
	case HandleNW:
		r.Width = right - p.X
		r.Height = bottom - p.Y
		r.X, r.Y = p.X, p.Y
	case HandleNE:
		r.Width = p.X - r.X
		r.Height = bottom - p.Y
		r.Y = p.Y
	case HandleSW:
		r.Width = right - p.X
		r.Height = p.Y - r.Y
		r.X = p.X
	}
	return r
}

func (l Line) Resized(h HandleName, p geom.Point) Shape {
	switch h {
	case HandleStart:
		l.X1, l.Y1 = p.X, p.Y
	case HandleEnd:
		l.X2, l.Y2 = p.X, p.Y
	}
	return l
}

// Resized drives the font size from the larger axis distance between the
// anchor and the handle. The anchor does not move.
func (t Text) Resized(h HandleName, p geom.Point) Shape {
	if h != HandleSE {
		return t
	}
	dist := math.Max(math.Abs(p.X-t.X), math.Abs(p.Y-t.Y))
	t.Size = math.Max(textMinimumSize, math.Floor(dist/textSizeDivisor+0.5))
	return t
}

// Selectable reports whether s takes part in selection, move and resize.
func Selectable(s Shape) bool {
	_, ok := s.Handles(1)
	return ok && s.ShapeID() != ""
}

// HitTest returns the topmost shape containing the world point p.
func HitTest(p geom.Point, shapes []Shape, scale float64) (Shape, bool) {
	for i := len(shapes) - 1; i >= 0; i-- {
		if Selectable(shapes[i]) && shapes[i].Contains(p, scale) {
			return shapes[i], true
		}
	}
	return nil, false
}

// GetHandles returns the selection box and control points of s.
func GetHandles(s Shape, scale float64) (Handles, bool) {
	return s.Handles(scale)
}

// HitTestHandle returns the handle of s whose screen-constant square
// contains the world point p.
func HitTestHandle(p geom.Point, s Shape, scale float64) (HandleName, bool) {
	handles, ok := s.Handles(scale)
	if !ok {
		return "", false
	}
	size := geom.HandleSize / scale
	for _, h := range handles.Points {
		if geom.SquareAround(h.At, size).Contains(p) {
			return h.Name, true
		}
	}
	return "", false
}

// ApplyMove translates s by (dx, dy). Both endpoints of a line share the delta.
func ApplyMove(s Shape, dx, dy float64) Shape {
	return s.Moved(dx, dy)
}

// ApplyResize drags handle h of s to the world point p.
func ApplyResize(s Shape, h HandleName, p geom.Point) Shape {
	return s.Resized(h, p)
}

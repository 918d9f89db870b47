// Package geom holds the coordinate half of the geometry engine: points,
// axis-aligned boxes and the pan/zoom view transform between screen and
// world space. Everything here is a pure function of its inputs.
package geom

import "math"

// Screen-space constants. Divide by the view scale before comparing them
// with world coordinates so they stay visually constant under zoom.
const (
	HitBuffer        = 5.0
	HandleSize       = 8.0
	SelectionPadding = 5.0
)

// Point is a 2D coordinate, in world or screen space depending on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Box is an axis-aligned rectangle with non-negative extent.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// NormalizedBox builds a Box from an origin and a possibly negative extent,
// swapping the origin to the opposite edge when the extent is negative.
func NormalizedBox(x, y, w, h float64) Box {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	return Box{X: x, Y: y, W: w, H: h}
}

// SpanBox returns the bounding box of two points.
func SpanBox(a, b Point) Box {
	return Box{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		W: math.Abs(a.X - b.X),
		H: math.Abs(a.Y - b.Y),
	}
}

// Pad grows the box by d on every side.
func (b Box) Pad(d float64) Box {
	return Box{X: b.X - d, Y: b.Y - d, W: b.W + 2*d, H: b.H + 2*d}
}

// Contains reports whether p lies strictly inside the box. Points on the
// border are outside.
func (b Box) Contains(p Point) bool {
	return p.X > b.X && p.X < b.X+b.W && p.Y > b.Y && p.Y < b.Y+b.H
}

// SquareAround returns the box of side size centred on c.
func SquareAround(c Point, size float64) Box {
	return Box{X: c.X - size/2, Y: c.Y - size/2, W: size, H: size}
}

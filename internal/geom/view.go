package geom

import "math"

// Zoom limits and the per-step factor applied by a single wheel notch.
const (
	MinScale = 0.1
	MaxScale = 10.0
	ZoomStep = 1.1
)

// ViewState is a client's pan/zoom transform. world = (screen - offset) / scale.
type ViewState struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// DefaultView is the identity transform.
func DefaultView() ViewState {
	return ViewState{Scale: 1}
}

// ScreenToWorld maps a screen point into world coordinates.
func (v ViewState) ScreenToWorld(p Point) Point {
	return Point{
		X: (p.X - v.OffsetX) / v.Scale,
		Y: (p.Y - v.OffsetY) / v.Scale,
	}
}

// WorldToScreen is the inverse of ScreenToWorld.
func (v ViewState) WorldToScreen(p Point) Point {
	return Point{
		X: p.X*v.Scale + v.OffsetX,
		Y: p.Y*v.Scale + v.OffsetY,
	}
}

// Pan shifts the view by a screen-space delta.
func (v ViewState) Pan(dx, dy float64) ViewState {
	v.OffsetX += dx
	v.OffsetY += dy
	return v
}

// Zoom applies one zoom step around the screen point anchor. The world point
// under the anchor stays under it. Scale is clamped to [MinScale, MaxScale].
func (v ViewState) Zoom(anchor Point, in bool) ViewState {
	old := v.Scale
	next := old / ZoomStep
	if in {
		next = old * ZoomStep
	}
	next = ClampScale(next)

	v.OffsetX = anchor.X - (anchor.X-v.OffsetX)*(next/old)
	v.OffsetY = anchor.Y - (anchor.Y-v.OffsetY)*(next/old)
	v.Scale = next
	return v
}

// ClampScale bounds s to the legal zoom range.
func ClampScale(s float64) float64 {
	return math.Max(MinScale, math.Min(MaxScale, s))
}

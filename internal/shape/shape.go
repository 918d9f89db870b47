// Package shape defines the drawable records of a board as a closed sum
// type. Every variant implements the full geometry contract (hit-test,
// handles, move, resize), so a new variant does not compile until it
// answers all of them.
package shape

import (
	"encoding/json"

	"github.com/HaaL01/whiteboard/internal/geom"
)

// Kind is the wire `type` tag of a shape record.
type Kind string

const (
	KindStroke Kind = "draw"
	KindErase  Kind = "erase"
	KindRect   Kind = "rect"
	KindText   Kind = "text"
	KindLine   Kind = "line"
	KindArrow  Kind = "arrow"
)

// Kinds lists every shape variant tag.
var Kinds = []Kind{KindStroke, KindErase, KindRect, KindText, KindLine, KindArrow}

// IsKind reports whether k tags a shape creation.
func IsKind(k string) bool {
	for _, kind := range Kinds {
		if string(kind) == k {
			return true
		}
	}
	return false
}

// Shape is one record of the board.
type Shape interface {
	Kind() Kind
	// ShapeID is empty for freehand segments.
	ShapeID() string

	Contains(p geom.Point, scale float64) bool
	Handles(scale float64) (Handles, bool)
	Moved(dx, dy float64) Shape
	Resized(h HandleName, p geom.Point) Shape

	// MoveFields and ResizeFields are the newCoords/newDimensions
	// payloads describing the shape's current position and extent.
	MoveFields() Fields
	ResizeFields() Fields

	sealed()
}

// Segment is one immutable freehand piece, drawn by the pencil or the eraser.
type Segment struct {
	Eraser bool    `json:"-"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Color  string  `json:"color"`
	Width  float64 `json:"width"`
}

// Rect is an outlined rectangle. Width and Height may be negative.
type Rect struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Color     string  `json:"color"`
	LineWidth float64 `json:"lineWidth"`
}

// Text is a single line of text anchored at its baseline-left corner.
type Text struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
	Size  float64 `json:"size"`
}

// Line is a straight line, with an arrow head at (X2,Y2) when Arrow is set.
type Line struct {
	ID    string  `json:"id"`
	Arrow bool    `json:"-"`
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

func (s Segment) Kind() Kind {
	if s.Eraser {
		return KindErase
	}
	return KindStroke
}

func (Rect) Kind() Kind { return KindRect }
func (Text) Kind() Kind { return KindText }

func (l Line) Kind() Kind {
	if l.Arrow {
		return KindArrow
	}
	return KindLine
}

func (Segment) ShapeID() string { return "" }
func (r Rect) ShapeID() string { return r.ID }
func (t Text) ShapeID() string { return t.ID }
func (l Line) ShapeID() string { return l.ID }
func (Segment) sealed() {}
func (Rect) sealed() {}
func (Text) sealed() {}
func (Line) sealed() {}

func (s Segment) MarshalJSON() ([]byte, error) {
	type wire Segment
	return json.Marshal(struct {
		Type Kind `json:"type"`
		wire
	}{s.Kind(), wire(s)})
}

func (r Rect) MarshalJSON() ([]byte, error) {
	type wire Rect
	return json.Marshal(struct {
		Type Kind `json:"type"`
		wire
	}{KindRect, wire(r)})
}

func (t Text) MarshalJSON() ([]byte, error) {
	type wire Text
	return json.Marshal(struct {
		Type Kind `json:"type"`
		wire
	}{KindText, wire(t)})
}

func (l Line) MarshalJSON() ([]byte, error) {
	type wire Line
	return json.Marshal(struct {
		Type Kind `json:"type"`
		wire
	}{l.Kind(), wire(l)})
}

package shape

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownKind is returned when a record's type tag names no variant.
	ErrUnknownKind = errors.New("unknown shape kind")
	// ErrMissingID is returned when an identified variant arrives without id.
	ErrMissingID = errors.New("shape has no id")
)

// Fields is a partial record: the newCoords/newDimensions of a move or
// resize, kept as raw JSON values until merged into a shape.
type Fields map[string]json.RawMessage

// Decode parses one shape record, dispatching on its type tag. Field values
// must have their declared JSON types.
func Decode(raw []byte) (Shape, error) {
	var env struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode shape: %w", err)
	}

	var (
		s   Shape
		err error
	)
	switch env.Type {
	case KindStroke, KindErase:
		var seg Segment
		err = json.Unmarshal(raw, &seg)
		seg.Eraser = env.Type == KindErase
		s = seg
	case KindRect:
		var r Rect
		err = json.Unmarshal(raw, &r)
		s = r
	case KindText:
		var t Text
		err = json.Unmarshal(raw, &t)
		s = t
	case KindLine, KindArrow:
		var l Line
		err = json.Unmarshal(raw, &l)
		l.Arrow = env.Type == KindArrow
		s = l
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	if s.Kind() != KindStroke && s.Kind() != KindErase && s.ShapeID() == "" {
		return nil, fmt.Errorf("decode %s: %w", env.Type, ErrMissingID)
	}
	return s, nil
}

// Patch overwrites the named fields of s and keeps every other field.
// The id and type keys are ignored, keys the variant does not carry are
// dropped. A value of the wrong JSON type fails the whole patch and s is
// returned unchanged.
func Patch(s Shape, fields Fields) (Shape, error) {
	if len(fields) == 0 {
		return s, nil
	}
	if s.Kind() == KindStroke || s.Kind() == KindErase {
		return s, nil
	}

	current, err := json.Marshal(s)
	if err != nil {
		return s, fmt.Errorf("patch %s: %w", s.ShapeID(), err)
	}
	merged := Fields{}
	if err := json.Unmarshal(current, &merged); err != nil {
		return s, fmt.Errorf("patch %s: %w", s.ShapeID(), err)
	}
	for k, v := range fields {
		if k == "id" || k == "type" {
			continue
		}
		merged[k] = v
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return s, fmt.Errorf("patch %s: %w", s.ShapeID(), err)
	}
	out, err := Decode(raw)
	if err != nil {
		return s, fmt.Errorf("patch %s: %w", s.ShapeID(), err)
	}
	return out, nil
}

func toFields(v any) Fields {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var f Fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return f
}

type xy struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type endpoints struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

func (Segment) MoveFields() Fields { return nil }
func (Segment) ResizeFields() Fields { return nil }

func (r Rect) MoveFields() Fields { return toFields(xy{r.X, r.Y}) }

func (r Rect) ResizeFields() Fields {
	return toFields(struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}{r.X, r.Y, r.Width, r.Height})
}

func (t Text) MoveFields() Fields { return toFields(xy{t.X, t.Y}) }

func (t Text) ResizeFields() Fields {
	return toFields(struct {
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
		Size float64 `json:"size"`
	}{t.X, t.Y, t.Size})
}

func (l Line) MoveFields() Fields { return toFields(endpoints{l.X1, l.Y1, l.X2, l.Y2}) }
func (l Line) ResizeFields() Fields { return l.MoveFields() }

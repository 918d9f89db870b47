package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/HaaL01/whiteboard/internal/shape"
	"github.com/HaaL01/whiteboard/internal/store"
)

var (
	// ErrMalformed marks a frame that does not parse into its declared type.
	ErrMalformed = errors.New("malformed frame")
	// ErrUnknownType marks a frame whose type tag is not in the vocabulary.
	ErrUnknownType = errors.New("unknown message type")
)

// Parse decodes one frame.
func Parse(raw []byte) (Message, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if shape.IsKind(env.Type) {
		s, err := shape.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return Create{Shape: s}, nil
	}

	switch Type(env.Type) {
	case TypeHistory:
		var w struct {
			Data []json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		shapes := make([]shape.Shape, 0, len(w.Data))
		for i, item := range w.Data {
			s, err := shape.Decode(item)
			if err != nil {
				return nil, fmt.Errorf("%w: history[%d]: %v", ErrMalformed, i, err)
			}
			shapes = append(shapes, s)
		}
		return History{Shapes: shapes}, nil

	case TypeMove:
		var w moveWire
		if err := decodeTargeted(raw, &w, &w.ID); err != nil {
			return nil, err
		}
		return Move{ID: w.ID, NewCoords: w.NewCoords}, nil

	case TypeResize:
		var w resizeWire
		if err := decodeTargeted(raw, &w, &w.ID); err != nil {
			return nil, err
		}
		return Resize{ID: w.ID, NewDimensions: w.NewDimensions}, nil

	case TypeCursor, TypeCursorUpdate:
		var w cursorWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if w.Type == TypeCursor {
			return Cursor{ID: w.ID, X: w.X, Y: w.Y, Tool: w.Tool}, nil
		}
		return CursorUpdate{ID: w.ID, X: w.X, Y: w.Y, Tool: w.Tool}, nil

	case TypeDisconnect:
		var w disconnectWire
		if err := decodeTargeted(raw, &w, &w.ID); err != nil {
			return nil, err
		}
		return Disconnect{ID: w.ID}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
}

func decodeTargeted(raw []byte, v any, id *string) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if *id == "" {
		return fmt.Errorf("%w: missing id", ErrMalformed)
	}
	return nil
}

// Apply performs the store effect of msg: history replaces the sequence,
// creations append, move and resize patch. It reports whether the store
// changed. Messages without a store effect return false.
func Apply(st *store.Store, msg Message) (bool, error) {
	switch m := msg.(type) {
	case History:
		st.ReplaceAll(m.Shapes)
		return true, nil
	case Create:
		return st.Append(m.Shape), nil
	case Move:
		return st.Patch(m.ID, m.NewCoords)
	case Resize:
		return st.Patch(m.ID, m.NewDimensions)
	}
	return false, nil
}

// EncodeHistory builds the join snapshot frame.
func EncodeHistory(shapes []shape.Shape) ([]byte, error) {
	if shapes == nil {
		shapes = []shape.Shape{}
	}
	return json.Marshal(historyWire{Type: TypeHistory, Data: shapes})
}

// EncodeCreate builds a creation frame for s.
func EncodeCreate(s shape.Shape) ([]byte, error) {
	return json.Marshal(s)
}

func EncodeMove(id string, newCoords shape.Fields) ([]byte, error) {
	return json.Marshal(moveWire{Type: TypeMove, ID: id, NewCoords: newCoords})
}

func EncodeResize(id string, newDimensions shape.Fields) ([]byte, error) {
	return json.Marshal(resizeWire{Type: TypeResize, ID: id, NewDimensions: newDimensions})
}

func EncodeCursor(c Cursor) ([]byte, error) {
	return json.Marshal(cursorWire{Type: TypeCursor, ID: c.ID, X: c.X, Y: c.Y, Tool: c.Tool})
}

func EncodeCursorUpdate(c CursorUpdate) ([]byte, error) {
	return json.Marshal(cursorWire{Type: TypeCursorUpdate, ID: c.ID, X: c.X, Y: c.Y, Tool: c.Tool})
}

func EncodeDisconnect(id string) ([]byte, error) {
	return json.Marshal(disconnectWire{Type: TypeDisconnect, ID: id})
}

// Package protocol is the wire vocabulary of the whiteboard: one JSON object
// per WebSocket frame, tagged by its type field.
package protocol

import (
	"github.com/HaaL01/whiteboard/internal/shape"
)

// Type is the wire type tag of a frame.
type Type string

// Message types for WebSocket communication. Shape creations reuse the shape
// kind as their type (draw, erase, rect, text, line, arrow).
const (
	TypeHistory      Type = "history"
	TypeMove         Type = "move"
	TypeResize       Type = "resize"
	TypeCursor       Type = "cursor"
	TypeCursorUpdate Type = "cursor_update"
	TypeDisconnect   Type = "user_disconnect"
)

// Message is a parsed frame.
type Message interface {
	MessageType() Type
}

// History carries the full shape sequence, sent once per connection.
type History struct {
	Shapes []shape.Shape
}

// Create adds one shape.
type Create struct {
	Shape shape.Shape
}

// Move patches the position fields of a shape.
type Move struct {
	ID        string
	NewCoords shape.Fields
}

// Resize patches the extent, endpoint or size fields of a shape.
type Resize struct {
	ID            string
	NewDimensions shape.Fields
}

// Cursor is a client's pointer report.
type Cursor struct {
	ID   string
	X    float64
	Y    float64
	Tool string
}

// CursorUpdate is a relayed pointer report, stamped with the sender's bound id.
type CursorUpdate struct {
	ID   string
	X    float64
	Y    float64
	Tool string
}

// Disconnect announces that the connection bound to ID went away.
type Disconnect struct {
	ID string
}

func (History) MessageType() Type      { return TypeHistory }
func (c Create) MessageType() Type     { return Type(c.Shape.Kind()) }
func (Move) MessageType() Type         { return TypeMove }
func (Resize) MessageType() Type       { return TypeResize }
func (Cursor) MessageType() Type       { return TypeCursor }
func (CursorUpdate) MessageType() Type { return TypeCursorUpdate }
func (Disconnect) MessageType() Type   { return TypeDisconnect }

type historyWire struct {
	Type Type          `json:"type"`
	Data []shape.Shape `json:"data"`
}

type moveWire struct {
	Type      Type         `json:"type"`
	ID        string       `json:"id"`
	NewCoords shape.Fields `json:"newCoords"`
}

type resizeWire struct {
	Type          Type         `json:"type"`
	ID            string       `json:"id"`
	NewDimensions shape.Fields `json:"newDimensions"`
}

type cursorWire struct {
	Type Type    `json:"type"`
	ID   string  `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Tool string  `json:"tool"`
}

type disconnectWire struct {
	Type Type   `json:"type"`
	ID   string `json:"id"`
}

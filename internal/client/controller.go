package client

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/HaaL01/whiteboard/internal/geom"
	"github.com/HaaL01/whiteboard/internal/protocol"
	"github.com/HaaL01/whiteboard/internal/shape"
)

// Tool is the active drawing tool.
type Tool string

const (
	ToolSelect Tool = "select"
	ToolPencil Tool = "pencil"
	ToolEraser Tool = "eraser"
	ToolRect   Tool = "rect"
	ToolText   Tool = "text"
	ToolLine   Tool = "line"
	ToolArrow  Tool = "arrow"
)

// Tools lists every tool.
var Tools = []Tool{ToolSelect, ToolPencil, ToolEraser, ToolRect, ToolText, ToolLine, ToolArrow}

var (
	ErrUnknownTool  = errors.New("unknown tool")
	ErrNoTextAnchor = errors.New("no text position chosen")
)

// ParseTool maps a tool name to its Tool.
func ParseTool(name string) (Tool, error) {
	for _, t := range Tools {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

// Style is applied to shapes created from now on. Width is the stroke width
// of segments and lines, the border of rectangles and the size of text.
type Style struct {
	Color string
	Width float64
}

func DefaultStyle() Style { return Style{Color: "#000000", Width: 5} }

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
)

type mode int

const (
	modeIdle mode = iota
	modePanning
	modeDrawing
	modeDragging
	modeResizing
)

// gesture is the state of the pointer interaction in progress.
type gesture struct {
	mode   mode
	last   geom.Point // world position of the previous pointer event
	pan    geom.Point // screen position of the previous pan event
	start  geom.Point
	handle shape.HandleName

	// original is the selected shape as it was when a drag or resize began.
	original shape.Shape
	preview  shape.Shape

	anchor    geom.Point
	hasAnchor bool
}

// SetTool switches the active tool.
func (s *Session) SetTool(t Tool) error {
	if _, err := ParseTool(string(t)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tool = t
	return nil
}

func (s *Session) Tool() Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tool
}

// SetStyle sets the colour and width for new shapes.
func (s *Session) SetStyle(st Style) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.style = st
}

// PointerDown starts a gesture at screen position p.
func (s *Session) PointerDown(b Button, p geom.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()

	world := s.view.ScreenToWorld(p)
	s.gesture.last = world

	switch b {
	case ButtonMiddle:
		s.gesture.mode = modePanning
		s.gesture.pan = p
		return
	case ButtonLeft:
	default:
		return
	}

	switch s.tool {
	case ToolSelect:
		s.pick(world)
	case ToolText:
		s.gesture.anchor = world
		s.gesture.hasAnchor = true
	default:
		s.gesture.mode = modeDrawing
		s.gesture.start = world
	}
}

// pick grabs a handle of the selected shape, else the topmost shape under
// world, else clears the selection.
func (s *Session) pick(world geom.Point) {
	if sel, ok := s.shapes.FindByID(s.selected); ok {
		if h, ok := shape.HitTestHandle(world, sel, s.view.Scale); ok {
			s.gesture.mode = modeResizing
			s.gesture.handle = h
			s.gesture.original = sel
			return
		}
	}
	if hit, ok := shape.HitTest(world, s.shapes.All(), s.view.Scale); ok {
		s.selected = hit.ShapeID()
		s.gesture.mode = modeDragging
		s.gesture.original = hit
		return
	}
	s.selected = ""
}

// PointerMove advances the gesture in progress. Outside a drag or resize the
// pointer position is reported to the server.
func (s *Session) PointerMove(p geom.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	world := s.view.ScreenToWorld(p)
	g := &s.gesture

	if g.mode == modePanning {
		s.view = s.view.Pan(p.X-g.pan.X, p.Y-g.pan.Y)
		g.pan = p
		return nil
	}

	var errs []error
	if g.mode != modeDragging && g.mode != modeResizing {
		errs = append(errs, s.send(protocol.EncodeCursor(protocol.Cursor{
			ID: s.id, X: world.X, Y: world.Y, Tool: string(s.tool),
		})))
	}

	switch g.mode {
	case modeResizing:
		if cur, ok := s.shapes.FindByID(s.selected); ok {
			resized := shape.ApplyResize(cur, g.handle, world)
			_, err := s.shapes.Patch(s.selected, resized.ResizeFields())
			errs = append(errs, err)
		}
	case modeDragging:
		if cur, ok := s.shapes.FindByID(s.selected); ok {
			moved := shape.ApplyMove(cur, world.X-g.last.X, world.Y-g.last.Y)
			_, err := s.shapes.Patch(s.selected, moved.MoveFields())
			errs = append(errs, err)
		}
	case modeDrawing:
		errs = append(errs, s.drawTo(world))
	}

	g.last = world
	return errors.Join(errs...)
}

func (s *Session) drawTo(world geom.Point) error {
	g := &s.gesture
	switch s.tool {
	case ToolPencil, ToolEraser:
		seg := shape.Segment{
			Eraser: s.tool == ToolEraser,
			X1:     g.last.X,
			Y1:     g.last.Y,
			X2:     world.X,
			Y2:     world.Y,
			Color:  s.style.Color,
			Width:  s.style.Width,
		}
		s.shapes.Append(seg)
		return s.send(protocol.EncodeCreate(seg))
	case ToolRect, ToolLine, ToolArrow:
		g.preview = s.spanned(g.start, world, "")
	}
	return nil
}

// spanned builds the rect, line or arrow from a to b in the current style.
func (s *Session) spanned(a, b geom.Point, id string) shape.Shape {
	if s.tool == ToolRect {
		return shape.Rect{
			ID:        id,
			X:         a.X,
			Y:         a.Y,
			Width:     b.X - a.X,
			Height:    b.Y - a.Y,
			Color:     s.style.Color,
			LineWidth: s.style.Width,
		}
	}
	return shape.Line{
		ID:    id,
		Arrow: s.tool == ToolArrow,
		X1:    a.X,
		Y1:    a.Y,
		X2:    b.X,
		Y2:    b.Y,
		Color: s.style.Color,
		Width: s.style.Width,
	}
}

// PointerUp ends the gesture. A drag or resize is sent once as a move or
// resize of the final geometry; a rect, line or arrow is created.
func (s *Session) PointerUp(b Button, p geom.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := &s.gesture
	switch b {
	case ButtonMiddle:
		if g.mode == modePanning {
			g.mode = modeIdle
		}
		return nil
	case ButtonLeft:
	default:
		return nil
	}

	switch g.mode {
	case modeResizing:
		defer s.endGesture()
		if cur, ok := s.shapes.FindByID(s.selected); ok {
			return s.send(protocol.EncodeResize(s.selected, cur.ResizeFields()))
		}
	case modeDragging:
		defer s.endGesture()
		if cur, ok := s.shapes.FindByID(s.selected); ok {
			return s.send(protocol.EncodeMove(s.selected, cur.MoveFields()))
		}
	case modeDrawing:
		defer s.endGesture()
		switch s.tool {
		case ToolRect, ToolLine, ToolArrow:
			final := s.spanned(g.start, s.view.ScreenToWorld(p), uuid.NewString())
			s.shapes.Append(final)
			return s.send(protocol.EncodeCreate(final))
		}
	}
	return nil
}

func (s *Session) endGesture() {
	s.gesture.mode = modeIdle
	s.gesture.handle = ""
	s.gesture.original = nil
	s.gesture.preview = nil
}

// PointerLeave abandons the gesture in progress. A shape that was being
// dragged or resized goes back to where it was and the selection is cleared.
func (s *Session) PointerLeave() {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := &s.gesture
	if orig := g.original; orig != nil {
		fields := orig.MoveFields()
		if g.mode == modeResizing {
			fields = orig.ResizeFields()
		}
		if _, err := s.shapes.Patch(orig.ShapeID(), fields); err != nil {
			s.log.Warn("restore shape", "id", orig.ShapeID(), "err", err)
		}
	}
	s.endGesture()
	s.selected = ""
}

// Wheel zooms about screen position p: in for negative deltaY, out otherwise.
func (s *Session) Wheel(p geom.Point, deltaY float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = s.view.Zoom(p, deltaY < 0)
}

// CommitText places text at the position chosen by the last text-tool
// pointer-down. Empty text is discarded.
func (s *Session) CommitText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := &s.gesture
	if !g.hasAnchor {
		return ErrNoTextAnchor
	}
	g.hasAnchor = false
	if text == "" {
		return nil
	}

	at := shape.Baseline(g.anchor, s.style.Width)
	t := shape.Text{
		ID:    uuid.NewString(),
		Text:  text,
		X:     at.X,
		Y:     at.Y,
		Color: s.style.Color,
		Size:  s.style.Width,
	}
	s.shapes.Append(t)
	return s.send(protocol.EncodeCreate(t))
}

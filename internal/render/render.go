// Package render rasterises a board into an image: the reference rendering
// backend. It consumes the shape sequence and cursor map and produces no
// state back.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/HaaL01/whiteboard/internal/geom"
	"github.com/HaaL01/whiteboard/internal/presence"
	"github.com/HaaL01/whiteboard/internal/shape"
)

const (
	cursorRadius     = 5.0
	cursorLabelShift = 8.0
	cursorLabelSize  = 10.0
	minFontSize      = 1.0
	maxFontSize      = 512.0
	maxCachedFaces   = 64
)

var (
	cursorColor    = color.RGBA{0, 0, 255, 255}
	selectionColor = color.RGBA{0, 0, 255, 178}
)

// Options sizes the output image.
type Options struct {
	Width      int
	Height     int
	Background color.Color
}

// Frame is everything one image shows.
type Frame struct {
	Shapes   []shape.Shape
	Cursors  []presence.Entry
	View     geom.ViewState
	Selected string
}

// Renderer draws frames. It is safe for concurrent use.
type Renderer struct {
	opts Options
	font *truetype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// New prepares a renderer with the embedded Go font.
func New(opts Options) (*Renderer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("render: invalid size %dx%d", opts.Width, opts.Height)
	}
	if opts.Background == nil {
		opts.Background = color.White
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("render: parse font: %w", err)
	}
	return &Renderer{opts: opts, font: f, faces: make(map[float64]font.Face)}, nil
}

// Render draws the frame in z order: shapes, selection decoration, cursors.
func (r *Renderer) Render(f Frame) image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()

	view := f.View
	if view.Scale <= 0 {
		view = geom.DefaultView()
	}

	dc := gg.NewContext(r.opts.Width, r.opts.Height)
	dc.SetColor(r.opts.Background)
	dc.Clear()

	dc.Push()
	dc.Translate(view.OffsetX, view.OffsetY)
	dc.Scale(view.Scale, view.Scale)

	for _, s := range f.Shapes {
		r.drawShape(dc, s, view.Scale)
		if f.Selected != "" && s.ShapeID() == f.Selected {
			r.drawSelection(dc, s, view.Scale)
		}
	}
	for _, c := range f.Cursors {
		r.drawCursor(dc, c, view.Scale)
	}

	dc.Pop()
	return dc.Image()
}

// WritePNG renders the frame and encodes it as PNG.
func (r *Renderer) WritePNG(w io.Writer, f Frame) error {
	return png.Encode(w, r.Render(f))
}

// gg strokes with an untransformed line width, so stroke widths are screen
// pixels while path geometry and glyphs follow the view transform.
func (r *Renderer) drawShape(dc *gg.Context, s shape.Shape, scale float64) {
	switch v := s.(type) {
	case shape.Segment:
		if v.Eraser {
			dc.SetColor(r.opts.Background)
		} else {
			dc.SetHexColor(v.Color)
		}
		dc.SetLineCapRound()
		dc.SetLineWidth(v.Width)
		dc.DrawLine(v.X1, v.Y1, v.X2, v.Y2)
		dc.Stroke()

	case shape.Rect:
		dc.SetHexColor(v.Color)
		dc.SetLineCapButt()
		dc.SetLineWidth(v.LineWidth)
		dc.DrawRectangle(v.X, v.Y, v.Width, v.Height)
		dc.Stroke()

	case shape.Line:
		dc.SetHexColor(v.Color)
		dc.SetLineCapRound()
		dc.SetLineWidth(v.Width)
		dc.DrawLine(v.X1, v.Y1, v.X2, v.Y2)
		dc.Stroke()
		if v.Arrow {
			drawArrowHead(dc, v, scale)
		}

	case shape.Text:
		size := v.FontSize()
		if size <= 0 {
			return
		}
		dc.SetHexColor(v.Color)
		dc.SetFontFace(r.face(size / scale))
		dc.DrawString(v.Text, v.X, v.Y)
	}
}

// drawArrowHead fills a triangle at the end point with 30 degree flanks.
func drawArrowHead(dc *gg.Context, l shape.Line, scale float64) {
	head := (l.Width*2 + 10) / scale
	angle := math.Atan2(l.Y2-l.Y1, l.X2-l.X1)
	dc.MoveTo(l.X2, l.Y2)
	dc.LineTo(l.X2-head*math.Cos(angle-math.Pi/6), l.Y2-head*math.Sin(angle-math.Pi/6))
	dc.LineTo(l.X2-head*math.Cos(angle+math.Pi/6), l.Y2-head*math.Sin(angle+math.Pi/6))
	dc.ClosePath()
	dc.Fill()
}

func (r *Renderer) drawSelection(dc *gg.Context, s shape.Shape, scale float64) {
	h, ok := shape.GetHandles(s, scale)
	if !ok {
		return
	}
	dc.SetColor(selectionColor)
	dc.SetLineWidth(1)
	dc.SetDash(5, 5)
	dc.DrawRectangle(h.Box.X, h.Box.Y, h.Box.W, h.Box.H)
	dc.Stroke()
	dc.SetDash()

	size := geom.HandleSize / scale
	for _, p := range h.Points {
		dc.DrawRectangle(p.At.X-size/2, p.At.Y-size/2, size, size)
		dc.SetColor(color.White)
		dc.FillPreserve()
		dc.SetColor(cursorColor)
		dc.Stroke()
	}
}

func (r *Renderer) drawCursor(dc *gg.Context, c presence.Entry, scale float64) {
	dc.SetColor(cursorColor)
	dc.DrawCircle(c.X, c.Y, cursorRadius/scale)
	dc.Fill()

	dc.SetColor(color.Black)
	dc.SetFontFace(r.face(cursorLabelSize / scale))
	dc.DrawString(c.Tool, c.X+cursorLabelShift/scale, c.Y+cursorLabelShift/scale)
}

func (r *Renderer) face(size float64) font.Face {
	size = math.Max(minFontSize, math.Min(size, maxFontSize))
	if f, ok := r.faces[size]; ok {
		return f
	}
	if len(r.faces) >= maxCachedFaces {
		r.faces = make(map[float64]font.Face)
	}
	f := truetype.NewFace(r.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	r.faces[size] = f
	return f
}

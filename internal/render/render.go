// Package render turns model-space geometry into primitive draw calls.
//
// Shapes emit through a Context, which projects every point with the view
// matrix and forwards screen-space primitives to a Sink. Sinks know nothing
// about shapes; the Recorder, raster, pdf and term sinks all implement the
// same four calls.
package render

import (
	"image/color"

	"github.com/inamate/vecpad/internal/geom"
)

// Sink receives screen-space primitives.
type Sink interface {
	DrawLine(a, b geom.Point, pen Pen)
	DrawRect(a, b geom.Point, pen Pen)
	DrawEllipse(center geom.Point, rx, ry float64, pen Pen)
	DrawPolyline(pts []geom.Point, pen Pen)
}

// Pen describes how a primitive is stroked.
type Pen struct {
	Color  color.RGBA `json:"color"`
	Width  float64    `json:"width"`
	Dashed bool       `json:"dashed,omitempty"`
}

var (
	Black = color.RGBA{A: 0xff}
	White = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	Red   = color.RGBA{R: 0xff, A: 0xff}
	Blue  = color.RGBA{B: 0xff, A: 0xff}
)

// Standard pens used by the editor.
var (
	CommittedPen = Pen{Color: Black, Width: 1}
	FeedbackPen  = Pen{Color: Red, Width: 1}
	SelectionPen = Pen{Color: Blue, Width: 1, Dashed: true}
)

// EraserWidth is the stroke width of eraser strokes in screen pixels.
const EraserWidth = 5

// Context carries the state a shape needs to emit itself.
type Context struct {
	Xfm        geom.Matrix
	Pen        Pen
	Background color.RGBA
	Sink       Sink
}

// NewContext returns a context drawing with the committed pen on a white
// background.
func NewContext(xfm geom.Matrix, sink Sink) *Context {
	return &Context{Xfm: xfm, Pen: CommittedPen, Background: White, Sink: sink}
}

// WithPen returns a copy of c that strokes with pen.
func (c *Context) WithPen(pen Pen) *Context {
	cp := *c
	cp.Pen = pen
	return &cp
}

// EraserPen returns the pen eraser strokes are painted with.
func (c *Context) EraserPen() Pen {
	return Pen{Color: c.Background, Width: EraserWidth}
}

// Line emits a model-space segment.
func (c *Context) Line(a, b geom.Point) {
	c.Sink.DrawLine(c.Xfm.Apply(a), c.Xfm.Apply(b), c.Pen)
}

// Rect emits a model-space axis-aligned rectangle given two corners.
func (c *Context) Rect(a, b geom.Point) {
	c.Sink.DrawRect(c.Xfm.Apply(a), c.Xfm.Apply(b), c.Pen)
}

// Ellipse emits a model-space circle. Non-uniform view scales produce an
// ellipse.
func (c *Context) Ellipse(center geom.Point, r float64) {
	v := c.Xfm.ApplyVector(geom.Pt(r, r))
	rx, ry := v.X, v.Y
	if rx < 0 {
		rx = -rx
	}
	if ry < 0 {
		ry = -ry
	}
	c.Sink.DrawEllipse(c.Xfm.Apply(center), rx, ry, c.Pen)
}

// Polyline emits a connected run of model-space points with the given pen.
func (c *Context) Polyline(pts []geom.Point, pen Pen) {
	if len(pts) == 0 {
		return
	}
	out := make([]geom.Point, len(pts))
	for i, p := range pts {
		out[i] = c.Xfm.Apply(p)
	}
	c.Sink.DrawPolyline(out, pen)
}

// Package raster renders draw calls into an RGBA image through gogpu/gg.
package raster

import (
	"fmt"
	"io"

	"github.com/gogpu/gg"

	"github.com/inamate/vecpad/internal/geom"
	"github.com/inamate/vecpad/internal/render"
)

// Sink is a render.Sink backed by a gg context. Stroke failures are kept and
// reported by Err, since Sink calls have no error return.
type Sink struct {
	dc  *gg.Context
	err error
}

// New returns a sink for a width x height canvas cleared to white.
func New(width, height int) *Sink {
	dc := gg.NewContext(width, height)
	dc.ClearWithColor(gg.White)
	return &Sink{dc: dc}
}

func (s *Sink) apply(pen render.Pen) {
	s.dc.SetColor(pen.Color)
	s.dc.SetLineWidth(pen.Width)
	if pen.Dashed {
		s.dc.SetDash(4, 3)
	} else {
		s.dc.SetDash()
	}
}

func (s *Sink) stroke(op string) {
	if err := s.dc.Stroke(); err != nil && s.err == nil {
		s.err = fmt.Errorf("stroke %s: %w", op, err)
	}
}

func (s *Sink) DrawLine(a, b geom.Point, pen render.Pen) {
	s.apply(pen)
	s.dc.DrawLine(a.X, a.Y, b.X, b.Y)
	s.stroke("line")
}

func (s *Sink) DrawRect(a, b geom.Point, pen render.Pen) {
	r := geom.NewBound(a, b)
	s.apply(pen)
	s.dc.DrawRectangle(r.MinX, r.MinY, r.Width(), r.Height())
	s.stroke("rect")
}

func (s *Sink) DrawEllipse(c geom.Point, rx, ry float64, pen render.Pen) {
	s.apply(pen)
	s.dc.DrawEllipse(c.X, c.Y, rx, ry)
	s.stroke("ellipse")
}

func (s *Sink) DrawPolyline(pts []geom.Point, pen render.Pen) {
	if len(pts) == 0 {
		return
	}
	s.apply(pen)
	s.dc.MoveTo(pts[0].X, pts[0].Y)
	if len(pts) == 1 {
		// A single sample still leaves a dot.
		s.dc.LineTo(pts[0].X+0.5, pts[0].Y)
	}
	for _, p := range pts[1:] {
		s.dc.LineTo(p.X, p.Y)
	}
	s.stroke("polyline")
}

// Err returns the first stroke failure, if any.
func (s *Sink) Err() error { return s.err }

// EncodePNG writes the canvas as PNG.
func (s *Sink) EncodePNG(w io.Writer) error {
	if s.err != nil {
		return s.err
	}
	if err := s.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Close releases the gg context.
func (s *Sink) Close() error {
	return s.dc.Close()
}

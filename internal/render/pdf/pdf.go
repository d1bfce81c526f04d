// Package pdf renders draw calls onto a single A4 page with gofpdf.
package pdf

import (
	"fmt"
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"

	"github.com/inamate/vecpad/internal/geom"
	"github.com/inamate/vecpad/internal/render"
)

// Page margin in millimetres.
const pageMargin = 10.0

// Sink maps a width x height pixel view onto the page, preserving aspect
// ratio. The orientation follows the view.
type Sink struct {
	pdf    *gofpdf.Fpdf
	scale  float64 // mm per pixel
	ox, oy float64
}

// New starts a document with one page sized for a width x height view.
func New(width, height float64) *Sink {
	orientation := "P"
	if width > height {
		orientation = "L"
	}
	p := gofpdf.New(orientation, "mm", "A4", "")
	p.SetTitle("vecpad drawing", true)
	p.AddPage()

	pw, ph := p.GetPageSize()
	aw, ah := pw-2*pageMargin, ph-2*pageMargin
	scale := math.Min(aw/width, ah/height)

	return &Sink{
		pdf:   p,
		scale: scale,
		ox:    pageMargin + (aw-width*scale)/2,
		oy:    pageMargin + (ah-height*scale)/2,
	}
}

func (s *Sink) pt(p geom.Point) (float64, float64) {
	return s.ox + p.X*s.scale, s.oy + p.Y*s.scale
}

func (s *Sink) apply(pen render.Pen) {
	s.pdf.SetDrawColor(int(pen.Color.R), int(pen.Color.G), int(pen.Color.B))
	s.pdf.SetLineWidth(math.Max(pen.Width*s.scale, 0.1))
	if pen.Dashed {
		s.pdf.SetDashPattern([]float64{1.5, 1}, 0)
	} else {
		s.pdf.SetDashPattern(nil, 0)
	}
}

func (s *Sink) DrawLine(a, b geom.Point, pen render.Pen) {
	s.apply(pen)
	x1, y1 := s.pt(a)
	x2, y2 := s.pt(b)
	s.pdf.Line(x1, y1, x2, y2)
}

func (s *Sink) DrawRect(a, b geom.Point, pen render.Pen) {
	s.apply(pen)
	r := geom.NewBound(a, b)
	x, y := s.pt(geom.Pt(r.MinX, r.MinY))
	s.pdf.Rect(x, y, r.Width()*s.scale, r.Height()*s.scale, "D")
}

func (s *Sink) DrawEllipse(c geom.Point, rx, ry float64, pen render.Pen) {
	s.apply(pen)
	x, y := s.pt(c)
	s.pdf.Ellipse(x, y, rx*s.scale, ry*s.scale, 0, "D")
}

func (s *Sink) DrawPolyline(pts []geom.Point, pen render.Pen) {
	if len(pts) < 2 {
		return
	}
	s.apply(pen)
	x, y := s.pt(pts[0])
	s.pdf.MoveTo(x, y)
	for _, p := range pts[1:] {
		x, y = s.pt(p)
		s.pdf.LineTo(x, y)
	}
	s.pdf.DrawPath("D")
}

// Output writes the finished document and closes it.
func (s *Sink) Output(w io.Writer) error {
	if err := s.pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

package shape

import (
	"io"

	"github.com/inamate/vecpad/internal/geom"
	"github.com/inamate/vecpad/internal/render"
)

// stroke is the freehand point run shared by Scribble and Eraser.
type stroke struct {
	points []geom.Point
}

func (s *stroke) Update(p geom.Point) { s.points = append(s.points, p) }

// Points returns a copy of the sampled points.
func (s *stroke) Points() []geom.Point {
	if len(s.points) == 0 {
		return nil
	}
	out := make([]geom.Point, len(s.points))
	copy(out, s.points)
	return out
}

func (s *stroke) Bound() geom.Bound { return geom.BoundOf(s.points...) }

func (s *stroke) Save(w io.Writer) error { return writePoints(w, s.points) }

func (s *stroke) Open(r io.Reader) error {
	pts, err := readPoints(r)
	if err != nil {
		return err
	}
	s.points = pts
	return nil
}

// Scribble is a freehand stroke.
type Scribble struct {
	stroke
}

func NewScribble(start geom.Point) *Scribble {
	return &Scribble{stroke{points: []geom.Point{start}}}
}

func (*Scribble) Kind() Kind { return KindScribble }
func (*Scribble) sealed()    {}

func (s *Scribble) HitTest(p geom.Point) bool { return s.HitTestWithin(p, DefaultTolerance) }

func (s *Scribble) HitTestWithin(p geom.Point, tol float64) bool {
	switch len(s.points) {
	case 0:
		return false
	case 1:
		return p.Distance(s.points[0]) < tol
	}
	for i := 1; i < len(s.points); i++ {
		if geom.SegmentDistance(p, s.points[i-1], s.points[i]) < tol {
			return true
		}
	}
	return false
}

func (s *Scribble) Emit(ctx *render.Context) { ctx.Polyline(s.points, ctx.Pen) }

// Eraser is a freehand stroke painted in the background colour with a heavy
// pen. Nothing underneath is removed, and an eraser stroke is never
// selectable.
type Eraser struct {
	stroke
}

func NewEraser(start geom.Point) *Eraser {
	return &Eraser{stroke{points: []geom.Point{start}}}
}

func (*Eraser) Kind() Kind { return KindEraser }
func (*Eraser) sealed()    {}

func (*Eraser) HitTest(geom.Point) bool                 { return false }
func (*Eraser) HitTestWithin(geom.Point, float64) bool { return false }

func (e *Eraser) Emit(ctx *render.Context) { ctx.Polyline(e.points, ctx.EraserPen()) }

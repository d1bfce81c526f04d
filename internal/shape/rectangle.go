package shape

import (
	"io"
	"math"

	"github.com/inamate/vecpad/internal/geom"
	"github.com/inamate/vecpad/internal/render"
)

// Rectangle is an axis-aligned box given by two opposite corners.
type Rectangle struct {
	Start geom.Point
	End   geom.Point
}

func NewRectangle(start geom.Point) *Rectangle {
	return &Rectangle{Start: start, End: start}
}

func (*Rectangle) Kind() Kind { return KindRectangle }
func (*Rectangle) sealed()    {}

func (r *Rectangle) Update(p geom.Point) { r.End = p }

func (r *Rectangle) Bound() geom.Bound { return geom.NewBound(r.Start, r.End) }

func (r *Rectangle) HitTest(p geom.Point) bool { return r.HitTestWithin(p, DefaultTolerance) }

// HitTestWithin selects when the truncated x of p matches either corner's
// truncated x, or likewise for y. The edges are treated as infinite lines,
// so points far outside the box but aligned with a corner also select.
// tol is not used.
func (r *Rectangle) HitTestWithin(p geom.Point, _ float64) bool {
	px, py := math.Trunc(p.X), math.Trunc(p.Y)
	if px == math.Trunc(r.Start.X) || px == math.Trunc(r.End.X) {
		return true
	}
	return py == math.Trunc(r.Start.Y) || py == math.Trunc(r.End.Y)
}

func (r *Rectangle) Emit(ctx *render.Context) { ctx.Rect(r.Start, r.End) }

func (r *Rectangle) Save(w io.Writer) error {
	return writeFloats(w, r.Start.X, r.Start.Y, r.End.X, r.End.Y)
}

func (r *Rectangle) Open(rd io.Reader) error {
	v, err := readFloats(rd, 4)
	if err != nil {
		return err
	}
	r.Start, r.End = geom.Pt(v[0], v[1]), geom.Pt(v[2], v[3])
	return nil
}

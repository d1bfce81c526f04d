package shape

import (
	"io"
	"math"

	"github.com/inamate/vecpad/internal/geom"
	"github.com/inamate/vecpad/internal/render"
)

// Circle is stored as a centre and a radius; the point passed to Update is
// not kept.
type Circle struct {
	Center geom.Point
	Radius float64
}

func NewCircle(center geom.Point) *Circle {
	return &Circle{Center: center}
}

func (*Circle) Kind() Kind { return KindCircle }
func (*Circle) sealed()    {}

func (c *Circle) Update(p geom.Point) { c.Radius = c.Center.Distance(p) }

func (c *Circle) Bound() geom.Bound {
	return geom.Bound{
		MinX: c.Center.X - c.Radius,
		MaxX: c.Center.X + c.Radius,
		MinY: c.Center.Y - c.Radius,
		MaxY: c.Center.Y + c.Radius,
	}
}

func (c *Circle) HitTest(p geom.Point) bool { return c.HitTestWithin(p, DefaultTolerance) }

// HitTestWithin selects points whose distance from the ring is under tol.
// The band is capped at the radius so the centre never selects. For circles
// smaller than tol this makes the band narrower than tol on both sides of
// the ring: a radius 3 circle misses a point 5 units outside it even with
// the default tolerance of 10.
func (c *Circle) HitTestWithin(p geom.Point, tol float64) bool {
	tol = math.Min(tol, c.Radius)
	return math.Abs(c.Center.Distance(p)-c.Radius) < tol
}

func (c *Circle) Emit(ctx *render.Context) { ctx.Ellipse(c.Center, c.Radius) }

func (c *Circle) Save(w io.Writer) error {
	return writeFloats(w, c.Center.X, c.Center.Y, c.Radius)
}

func (c *Circle) Open(r io.Reader) error {
	v, err := readFloats(r, 3)
	if err != nil {
		return err
	}
	c.Center, c.Radius = geom.Pt(v[0], v[1]), v[2]
	return nil
}

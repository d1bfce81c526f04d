// Package geom holds the model-space value types shared by the drawing core:
// points, axis-aligned bounds and the 2D affine matrix used by the view.
package geom

import "math"

// Point is a position in model or screen space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Dx returns the absolute horizontal distance to b.
func (p Point) Dx(b Point) float64 {
	return math.Abs(p.X - b.X)
}

// Dy returns the absolute vertical distance to b.
func (p Point) Dy(b Point) float64 {
	return math.Abs(p.Y - b.Y)
}

// Distance returns the Euclidean distance to b.
func (p Point) Distance(b Point) float64 {
	return math.Hypot(b.X-p.X, b.Y-p.Y)
}

// AngleTo returns the direction of the vector p->b in radians.
func (p Point) AngleTo(b Point) float64 {
	return math.Atan2(b.Y-p.Y, b.X-p.X)
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns the vector from b to p.
func (p Point) Sub(b Point) Point {
	return Point{X: p.X - b.X, Y: p.Y - b.Y}
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// SegmentDistance returns the distance from p to the closed segment a-b.
func SegmentDistance(p, a, b Point) float64 {
	d := b.Sub(a)
	l2 := d.X*d.X + d.Y*d.Y
	if l2 == 0 {
		return p.Distance(a)
	}
	t := ((p.X-a.X)*d.X + (p.Y-a.Y)*d.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Distance(Point{X: a.X + t*d.X, Y: a.Y + t*d.Y})
}

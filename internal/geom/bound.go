package geom

import "math"

// Bound is an axis-aligned box in model space.
//
// The zero value is NOT empty; use Empty for "no extent". A Bound is empty
// iff MinX > MaxX or MinY > MaxY, and Width, Height and Mid are meaningless
// for an empty Bound.
type Bound struct {
	MinX float64 `json:"minX"`
	MaxX float64 `json:"maxX"`
	MinY float64 `json:"minY"`
	MaxY float64 `json:"maxY"`
}

// Empty is the identity element for Union.
var Empty = Bound{
	MinX: math.MaxFloat64,
	MaxX: -math.MaxFloat64,
	MinY: math.MaxFloat64,
	MaxY: -math.MaxFloat64,
}

// NewBound returns the box spanned by two opposite corners.
func NewBound(a, b Point) Bound {
	return Bound{
		MinX: math.Min(a.X, b.X),
		MaxX: math.Max(a.X, b.X),
		MinY: math.Min(a.Y, b.Y),
		MaxY: math.Max(a.Y, b.Y),
	}
}

// BoundOf returns the smallest box containing pts, or Empty for no points.
func BoundOf(pts ...Point) Bound {
	b := Empty
	for _, p := range pts {
		b.MinX = math.Min(b.MinX, p.X)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// Union returns the smallest box containing every non-empty input.
func Union(bounds ...Bound) Bound {
	u := Empty
	for _, b := range bounds {
		if b.IsEmpty() {
			continue
		}
		u.MinX = math.Min(u.MinX, b.MinX)
		u.MaxX = math.Max(u.MaxX, b.MaxX)
		u.MinY = math.Min(u.MinY, b.MinY)
		u.MaxY = math.Max(u.MaxY, b.MaxY)
	}
	return u
}

// IsEmpty reports whether b contains no points.
func (b Bound) IsEmpty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// Width returns MaxX - MinX.
func (b Bound) Width() float64 {
	return b.MaxX - b.MinX
}

// Height returns MaxY - MinY.
func (b Bound) Height() float64 {
	return b.MaxY - b.MinY
}

// Mid returns the centre of the box.
func (b Bound) Mid() Point {
	return Point{X: (b.MaxX + b.MinX) / 2, Y: (b.MaxY + b.MinY) / 2}
}

// IsDegenerate reports whether b cannot be fitted into a view: it is empty
// or has a zero (or non-finite) extent on either axis.
func (b Bound) IsDegenerate() bool {
	if b.IsEmpty() {
		return true
	}
	w, h := b.Width(), b.Height()
	return !(w > 0 && h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0)
}

// Contains reports whether p lies inside or on the edge of b.
func (b Bound) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Intersects reports whether the two boxes overlap (touching counts).
func (b Bound) Intersects(o Bound) bool {
	if b.IsEmpty() || o.IsEmpty() {
		return false
	}
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX && b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

// Expanded grows every side by d.
func (b Bound) Expanded(d float64) Bound {
	if b.IsEmpty() {
		return b
	}
	return Bound{MinX: b.MinX - d, MaxX: b.MaxX + d, MinY: b.MinY - d, MaxY: b.MaxY + d}
}

// Inflated scales each side about anchor by factor. Used for zooming: a
// factor above 1 shows more of the drawing, below 1 shows less.
func (b Bound) Inflated(anchor Point, factor float64) Bound {
	if b.IsEmpty() {
		return b
	}
	return Bound{
		MinX: anchor.X - (anchor.X-b.MinX)*factor,
		MaxX: anchor.X + (b.MaxX-anchor.X)*factor,
		MinY: anchor.Y - (anchor.Y-b.MinY)*factor,
		MaxY: anchor.Y + (b.MaxY-anchor.Y)*factor,
	}
}

package shape

import (
	"io"

	"github.com/inamate/vecpad/internal/geom"
	"github.com/inamate/vecpad/internal/render"
)

// Segment is one committed piece of a ConnectedLine.
type Segment struct {
	A geom.Point `json:"a"`
	B geom.Point `json:"b"`
}

// ConnectedLine is a chain of committed segments plus one live segment from
// Start to End that follows the pointer while drawing.
type ConnectedLine struct {
	Start    geom.Point
	End      geom.Point
	segments []Segment
}

func NewConnectedLine(start geom.Point) *ConnectedLine {
	return &ConnectedLine{Start: start, End: start}
}

func (*ConnectedLine) Kind() Kind { return KindConnectedLine }
func (*ConnectedLine) sealed()    {}

func (c *ConnectedLine) Update(p geom.Point) { c.End = p }

// AddLines commits the segment Start->p and continues the chain from p.
func (c *ConnectedLine) AddLines(p geom.Point) {
	c.segments = append(c.segments, Segment{A: c.Start, B: p})
	c.Start = p
	c.End = p
}

// RemoveLine collapses the live segment.
func (c *ConnectedLine) RemoveLine() { c.End = c.Start }

// Segments returns a copy of the committed segments.
func (c *ConnectedLine) Segments() []Segment {
	if len(c.segments) == 0 {
		return nil
	}
	out := make([]Segment, len(c.segments))
	copy(out, c.segments)
	return out
}

func (c *ConnectedLine) live() bool { return c.Start != c.End }

func (c *ConnectedLine) Bound() geom.Bound {
	b := geom.Empty
	for _, s := range c.segments {
		b = geom.Union(b, geom.NewBound(s.A, s.B))
	}
	if c.live() {
		b = geom.Union(b, geom.NewBound(c.Start, c.End))
	}
	return b
}

func (c *ConnectedLine) HitTest(p geom.Point) bool { return c.HitTestWithin(p, DefaultTolerance) }

// HitTestWithin selects points within tol of any committed segment.
func (c *ConnectedLine) HitTestWithin(p geom.Point, tol float64) bool {
	for _, s := range c.segments {
		if geom.SegmentDistance(p, s.A, s.B) < tol {
			return true
		}
	}
	return false
}

// Emit merges segments that share an endpoint into polylines, then draws
// the live segment if there is one.
func (c *ConnectedLine) Emit(ctx *render.Context) {
	var run []geom.Point
	for _, s := range c.segments {
		if len(run) > 0 && run[len(run)-1] == s.A {
			run = append(run, s.B)
			continue
		}
		ctx.Polyline(run, ctx.Pen)
		run = []geom.Point{s.A, s.B}
	}
	ctx.Polyline(run, ctx.Pen)
	if c.live() {
		ctx.Line(c.Start, c.End)
	}
}

func (c *ConnectedLine) Save(w io.Writer) error {
	if err := writeCount(w, len(c.segments)); err != nil {
		return err
	}
	for _, s := range c.segments {
		if err := writeFloats(w, s.A.X, s.A.Y, s.B.X, s.B.Y); err != nil {
			return err
		}
	}
	return nil
}

func (c *ConnectedLine) Open(r io.Reader) error {
	n, err := readCount(r)
	if err != nil {
		return err
	}
	var segs []Segment
	if n > 0 {
		segs = make([]Segment, 0, min(n, maxPrealloc))
	}
	for range n {
		v, err := readFloats(r, 4)
		if err != nil {
			return err
		}
		segs = append(segs, Segment{A: geom.Pt(v[0], v[1]), B: geom.Pt(v[2], v[3])})
	}
	c.segments = segs
	c.Start, c.End = geom.Point{}, geom.Point{}
	if len(segs) > 0 {
		last := segs[len(segs)-1].B
		c.Start, c.End = last, last
	}
	return nil
}

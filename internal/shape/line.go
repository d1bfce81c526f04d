package shape

import (
	"io"
	"math"

	"github.com/inamate/vecpad/internal/geom"
	"github.com/inamate/vecpad/internal/render"
)

// Line is a straight segment.
type Line struct {
	Start geom.Point
	End   geom.Point
}

// NewLine returns a zero-length line at start.
func NewLine(start geom.Point) *Line {
	return &Line{Start: start, End: start}
}

func (*Line) Kind() Kind { return KindLine }
func (*Line) sealed()    {}

func (l *Line) Update(p geom.Point) { l.End = p }

func (l *Line) Bound() geom.Bound { return geom.NewBound(l.Start, l.End) }

func (l *Line) HitTest(p geom.Point) bool { return l.HitTestWithin(p, DefaultTolerance) }

// HitTestWithin treats the line as infinite and compares p against the y
// predicted at p.X. Vertical lines compare x instead. A zero-length line
// never selects.
func (l *Line) HitTestWithin(p geom.Point, tol float64) bool {
	if l.Start == l.End {
		return false
	}
	if l.Start.X == l.End.X {
		return math.Abs(p.X-l.Start.X) < tol
	}
	m := (l.End.Y - l.Start.Y) / (l.End.X - l.Start.X)
	ref := l.Start
	if l.End.X > l.Start.X {
		ref = l.End
	}
	y := m*(p.X-ref.X) + ref.Y
	return math.Abs(y-p.Y) < tol
}

func (l *Line) Emit(ctx *render.Context) { ctx.Line(l.Start, l.End) }

func (l *Line) Save(w io.Writer) error {
	return writeFloats(w, l.Start.X, l.Start.Y, l.End.X, l.End.Y)
}

func (l *Line) Open(r io.Reader) error {
	v, err := readFloats(r, 4)
	if err != nil {
		return err
	}
	l.Start, l.End = geom.Pt(v[0], v[1]), geom.Pt(v[2], v[3])
	return nil
}

// Package term rasterizes draw calls onto a tcell screen.
//
// One cell covers one unit horizontally and CellAspect units vertically, so
// callers size their view as cols x rows*CellAspect to keep circles round.
package term

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/inamate/vecpad/internal/geom"
	"github.com/inamate/vecpad/internal/render"
)

// CellAspect is the height of a terminal cell relative to its width.
const CellAspect = 2.0

// Sink is a render.Sink drawing into a tcell.Screen. Strokes in the
// background colour clear cells.
type Sink struct {
	screen     tcell.Screen
	background color.RGBA
}

// New returns a sink over screen; strokes painted in background blank the
// cells they cover.
func New(screen tcell.Screen, background color.RGBA) *Sink {
	return &Sink{screen: screen, background: background}
}

// ViewSize returns the view dimensions that map onto the whole screen.
func (s *Sink) ViewSize() (width, height float64) {
	cols, rows := s.screen.Size()
	return float64(cols), float64(rows) * CellAspect
}

func (s *Sink) cell(p geom.Point) (int, int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y / CellAspect))
}

func (s *Sink) plot(x, y int, pen render.Pen) {
	cols, rows := s.screen.Size()
	if x < 0 || y < 0 || x >= cols || y >= rows {
		return
	}
	if pen.Color == s.background {
		s.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
		return
	}
	fg := tcell.NewRGBColor(int32(pen.Color.R), int32(pen.Color.G), int32(pen.Color.B))
	r := '•'
	if pen.Width >= 3 {
		r = '█'
	}
	s.screen.SetContent(x, y, r, nil, tcell.StyleDefault.Foreground(fg))
}

// bresenham plots every cell on the segment between two cells. Dashed pens
// skip every third cell.
func (s *Sink) bresenham(x0, y0, x1, y1 int, pen render.Pen) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for n := 0; ; n++ {
		if !pen.Dashed || n%3 != 2 {
			s.plot(x0, y0, pen)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (s *Sink) segment(a, b geom.Point, pen render.Pen) {
	x0, y0 := s.cell(a)
	x1, y1 := s.cell(b)
	s.bresenham(x0, y0, x1, y1, pen)
}

func (s *Sink) DrawLine(a, b geom.Point, pen render.Pen) { s.segment(a, b, pen) }

func (s *Sink) DrawRect(a, b geom.Point, pen render.Pen) {
	c := []geom.Point{a, geom.Pt(b.X, a.Y), b, geom.Pt(a.X, b.Y), a}
	for i := 1; i < len(c); i++ {
		s.segment(c[i-1], c[i], pen)
	}
}

func (s *Sink) DrawEllipse(c geom.Point, rx, ry float64, pen render.Pen) {
	steps := int(math.Max(12, math.Ceil(2*math.Pi*math.Max(rx, ry))))
	prev := geom.Pt(c.X+rx, c.Y)
	for i := 1; i <= steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		p := geom.Pt(c.X+rx*math.Cos(a), c.Y+ry*math.Sin(a))
		s.segment(prev, p, pen)
		prev = p
	}
}

func (s *Sink) DrawPolyline(pts []geom.Point, pen render.Pen) {
	if len(pts) == 1 {
		x, y := s.cell(pts[0])
		s.plot(x, y, pen)
		return
	}
	for i := 1; i < len(pts); i++ {
		s.segment(pts[i-1], pts[i], pen)
	}
}

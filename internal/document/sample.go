package document

import (
	"github.com/inamate/vecpad/internal/geom"
	"github.com/inamate/vecpad/internal/shape"
)

// NewSampleDocument returns the built-in demo drawing: a square, a circle
// inside it and a zig-zag polyline underneath.
func NewSampleDocument() *Document {
	doc := New()

	rect := shape.NewRectangle(geom.Pt(0, 0))
	rect.Update(geom.Pt(10, 10))
	doc.Add(rect)

	circle := shape.NewCircle(geom.Pt(5, 5))
	circle.Update(geom.Pt(8, 5))
	doc.Add(circle)

	zig := shape.NewConnectedLine(geom.Pt(0, -4))
	for i, x := range []float64{2.5, 5, 7.5, 10} {
		y := -2.0
		if i%2 == 1 {
			y = -4
		}
		zig.AddLines(geom.Pt(x, y))
	}
	zig.RemoveLine()
	doc.Add(zig)

	return doc
}

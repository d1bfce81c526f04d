// Package document holds the ordered set of committed shapes. Insertion
// order is paint order and undo order.
package document

import (
	"iter"
	"slices"

	"github.com/inamate/vecpad/internal/geom"
	"github.com/inamate/vecpad/internal/shape"
)

// Document owns its shapes exclusively. It is not safe for concurrent use.
type Document struct {
	shapes []shape.Shape
	bound  geom.Bound
}

// New returns an empty document.
func New() *Document {
	return &Document{bound: geom.Empty}
}

// Add appends s and grows the bound to cover it.
func (d *Document) Add(s shape.Shape) {
	d.shapes = append(d.shapes, s)
	d.bound = geom.Union(d.bound, s.Bound())
}

// Insert places s at position i, shifting later shapes up. i == Len()
// appends. It panics when i is out of range.
func (d *Document) Insert(i int, s shape.Shape) {
	d.shapes = slices.Insert(d.shapes, i, s)
	d.bound = geom.Union(d.bound, s.Bound())
}

// RemoveLast detaches and returns the most recently added shape, or nil
// when the document is empty.
func (d *Document) RemoveLast() shape.Shape {
	if len(d.shapes) == 0 {
		return nil
	}
	return d.RemoveAt(len(d.shapes) - 1)
}

// RemoveAt detaches and returns the shape at position i, or nil when i is
// out of range. The bound is recomputed from the remaining shapes.
func (d *Document) RemoveAt(i int) shape.Shape {
	if i < 0 || i >= len(d.shapes) {
		return nil
	}
	s := d.shapes[i]
	d.shapes = slices.Delete(d.shapes, i, i+1)
	d.recompute()
	return s
}

// Clear removes every shape.
func (d *Document) Clear() {
	d.shapes = nil
	d.bound = geom.Empty
}

func (d *Document) recompute() {
	b := geom.Empty
	for _, s := range d.shapes {
		b = geom.Union(b, s.Bound())
	}
	d.bound = b
}

// Bound is the union of all member bounds; Empty when there are no shapes.
func (d *Document) Bound() geom.Bound { return d.bound }

func (d *Document) Len() int { return len(d.shapes) }

func (d *Document) IsEmpty() bool { return len(d.shapes) == 0 }

// At returns the i'th shape in paint order.
func (d *Document) At(i int) shape.Shape { return d.shapes[i] }

// Shapes returns a copy of the shape list.
func (d *Document) Shapes() []shape.Shape {
	out := make([]shape.Shape, len(d.shapes))
	copy(out, d.shapes)
	return out
}

// All iterates shapes in paint order with their index.
func (d *Document) All() iter.Seq2[int, shape.Shape] {
	return func(yield func(int, shape.Shape) bool) {
		for i, s := range d.shapes {
			if !yield(i, s) {
				return
			}
		}
	}
}

// Backward iterates shapes from topmost to bottom, the order hit tests use.
func (d *Document) Backward() iter.Seq2[int, shape.Shape] {
	return func(yield func(int, shape.Shape) bool) {
		for i := len(d.shapes) - 1; i >= 0; i-- {
			if !yield(i, d.shapes[i]) {
				return
			}
		}
	}
}

// HitTest returns the index of the topmost shape selected by p within tol,
// or -1.
func (d *Document) HitTest(p geom.Point, tol float64) int {
	for i, s := range d.Backward() {
		if s.HitTestWithin(p, tol) {
			return i
		}
	}
	return -1
}

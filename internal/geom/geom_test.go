package geom

import (
	"math"
	"testing"
)

func TestPointMeasures(t *testing.T) {
	a, b := Pt(1, 2), Pt(4, -2)
	if got := a.Dx(b); got != 3 {
		t.Errorf("Dx = %v, want 3", got)
	}
	if got := a.Dy(b); got != 4 {
		t.Errorf("Dy = %v, want 4", got)
	}
	if got := a.Distance(b); got != 5 {
		t.Errorf("Distance = %v, want 5", got)
	}
	if got := Pt(0, 0).AngleTo(Pt(0, 1)); math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("AngleTo = %v, want pi/2", got)
	}
}

func TestBoundEmpty(t *testing.T) {
	if !Empty.IsEmpty() {
		t.Fatal("Empty should be empty")
	}
	if !BoundOf().IsEmpty() {
		t.Error("BoundOf() with no points should be empty")
	}
	if !Union().IsEmpty() {
		t.Error("Union() with no bounds should be empty")
	}
	if got := Empty.Inflated(Pt(1, 1), 2); got != Empty {
		t.Errorf("Inflated(Empty) = %+v, want Empty", got)
	}
	if (Bound{}).IsEmpty() {
		t.Error("zero Bound is a point at the origin, not empty")
	}
}

func TestBoundConstructors(t *testing.T) {
	tests := []struct {
		name string
		got  Bound
		want Bound
	}{
		{"corners", NewBound(Pt(10, 0), Pt(0, 10)), Bound{MinX: 0, MaxX: 10, MinY: 0, MaxY: 10}},
		{"points", BoundOf(Pt(3, -1), Pt(-2, 4), Pt(0, 0)), Bound{MinX: -2, MaxX: 3, MinY: -1, MaxY: 4}},
		{"union", Union(NewBound(Pt(0, 0), Pt(1, 1)), Empty, NewBound(Pt(5, 5), Pt(6, 7))), Bound{MinX: 0, MaxX: 6, MinY: 0, MaxY: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %+v, want %+v", tt.got, tt.want)
			}
		})
	}
}

func TestBoundDerived(t *testing.T) {
	b := NewBound(Pt(0, 0), Pt(10, 4))
	if b.Width() != 10 || b.Height() != 4 {
		t.Errorf("Width/Height = %v/%v, want 10/4", b.Width(), b.Height())
	}
	if b.Mid() != Pt(5, 2) {
		t.Errorf("Mid = %+v, want (5,2)", b.Mid())
	}
	if b.IsDegenerate() {
		t.Error("10x4 box should not be degenerate")
	}
	if !NewBound(Pt(0, 1), Pt(10, 1)).IsDegenerate() {
		t.Error("zero-height box should be degenerate")
	}
}

func TestBoundInflated(t *testing.T) {
	b := NewBound(Pt(0, 0), Pt(10, 10))
	got := b.Inflated(Pt(2, 5), 2)
	want := Bound{MinX: -2, MaxX: 18, MinY: -5, MaxY: 15}
	if got != want {
		t.Errorf("Inflated = %+v, want %+v", got, want)
	}
	if got := b.Inflated(Pt(2, 5), 1); got != b {
		t.Errorf("Inflated by 1 = %+v, want unchanged", got)
	}
}

func TestBoundIntersects(t *testing.T) {
	a := NewBound(Pt(0, 0), Pt(10, 10))
	if !a.Intersects(NewBound(Pt(10, 10), Pt(20, 20))) {
		t.Error("touching boxes should intersect")
	}
	if a.Intersects(NewBound(Pt(11, 0), Pt(20, 5))) {
		t.Error("disjoint boxes should not intersect")
	}
	if a.Intersects(Empty) {
		t.Error("nothing intersects Empty")
	}
}

func TestMatrixInvert(t *testing.T) {
	m := Scale(2, -2).Append(Translate(5, 7))
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("expected invertible matrix")
	}
	p := Pt(3.5, -1.25)
	back := inv.Apply(m.Apply(p))
	if math.Abs(back.X-p.X) > 1e-12 || math.Abs(back.Y-p.Y) > 1e-12 {
		t.Errorf("round trip = %+v, want %+v", back, p)
	}
	if _, ok := Scale(0, 1).Invert(); ok {
		t.Error("singular matrix should not invert")
	}
}

func TestMatrixAppendOrder(t *testing.T) {
	// scale first, then translate
	m := Scale(2, 2).Append(Translate(1, 0))
	if got := m.Apply(Pt(1, 1)); got != Pt(3, 2) {
		t.Errorf("Apply = %+v, want (3,2)", got)
	}
	if got := m.ScaleFactor(); got != 2 {
		t.Errorf("ScaleFactor = %v, want 2", got)
	}
}

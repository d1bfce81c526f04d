// Package view maintains the model-to-screen transform of an editor
// viewport. Model y grows upward, screen y grows downward, so every fit
// flips the y axis.
package view

import (
	"errors"
	"fmt"
	"math"

	"github.com/inamate/vecpad/internal/geom"
)

var (
	ErrDegenerateBound = errors.New("bound is empty or has zero extent")
	ErrInvalidZoom     = errors.New("zoom factor must be positive and finite")
	ErrViewTooSmall    = errors.New("view has no room inside its margins")
	ErrSingular        = errors.New("transform is not invertible")
)

// Transform is a model-to-screen matrix and its inverse, kept in lock-step.
// It is not safe for concurrent use.
type Transform struct {
	xfm    geom.Matrix
	inv    geom.Matrix
	width  float64
	height float64
	margin float64
}

// New returns a transform for a width x height pixel view that maps model
// units one-to-one with the model origin at the bottom-left corner.
func New(width, height, margin float64) *Transform {
	t := &Transform{width: width, height: height, margin: margin}
	// The y flip is its own inverse.
	m := geom.Scale(1, -1).Append(geom.Translate(0, height))
	t.xfm, t.inv = m, m
	return t
}

// ComputeFitMatrix returns the matrix that centres b in a w x h view with
// margin pixels of padding on every side, using one scale for both axes.
// A bound so large or so small that the scale cannot be inverted is
// reported as degenerate.
func ComputeFitMatrix(w, h float64, b geom.Bound, margin float64) (geom.Matrix, error) {
	if b.IsDegenerate() {
		return geom.Matrix{}, ErrDegenerateBound
	}
	sx := (w - 2*margin) / b.Width()
	sy := (h - 2*margin) / b.Height()
	s := math.Min(sx, sy)
	if !(s > 0) || math.IsInf(s, 0) {
		return geom.Matrix{}, fmt.Errorf("fit %gx%g with margin %g: %w", w, h, margin, ErrViewTooSmall)
	}

	mid := b.Mid()
	m := geom.Scale(s, -s).Append(geom.Translate(w/2-s*mid.X, h/2+s*mid.Y))
	if _, ok := m.Invert(); !ok {
		return geom.Matrix{}, fmt.Errorf("fit scale %g: %w", s, ErrDegenerateBound)
	}
	return m, nil
}

// set installs m only when it can be inverted, leaving the transform
// untouched otherwise.
func (t *Transform) set(m geom.Matrix) error {
	inv, ok := m.Invert()
	if !ok || !finite(m) || !finite(inv) {
		return ErrSingular
	}
	t.xfm, t.inv = m, inv
	return nil
}

func finite(m geom.Matrix) bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Fit maps b into the view with the configured margin. A degenerate bound
// leaves the transform unchanged.
func (t *Transform) Fit(b geom.Bound) error {
	m, err := ComputeFitMatrix(t.width, t.height, b, t.margin)
	if err != nil {
		return err
	}
	return t.set(m)
}

// ZoomAt scales the view about the screen point anchor. A factor above 1
// shows more of the model (zoom out), below 1 shows less. The model point
// under anchor stays under anchor.
func (t *Transform) ZoomAt(anchor geom.Point, factor float64) error {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return ErrInvalidZoom
	}
	at := t.inv.Apply(anchor)
	visible := t.VisibleBound().Inflated(at, factor)
	m, err := ComputeFitMatrix(t.width, t.height, visible, 0)
	if err != nil {
		return fmt.Errorf("zoom by %g: %w", factor, err)
	}
	if err := t.set(m); err != nil {
		return fmt.Errorf("zoom by %g: %w", factor, err)
	}
	return nil
}

// Pan shifts the view by a screen-space delta. A delta that would leave the
// matrix non-finite is rejected and the view stays where it was.
func (t *Transform) Pan(delta geom.Point) error {
	if err := t.set(t.xfm.Append(geom.Translate(delta.X, delta.Y))); err != nil {
		return fmt.Errorf("pan by %v: %w", delta, err)
	}
	return nil
}

// Resize changes the view size while keeping the previously visible model
// area in view.
func (t *Transform) Resize(width, height float64) {
	visible := t.VisibleBound()
	t.width, t.height = width, height
	if m, err := ComputeFitMatrix(width, height, visible, 0); err == nil {
		_ = t.set(m)
	}
}

// ToScreen projects a model point.
func (t *Transform) ToScreen(p geom.Point) geom.Point { return t.xfm.Apply(p) }

// ToModel un-projects a screen point.
func (t *Transform) ToModel(p geom.Point) geom.Point { return t.inv.Apply(p) }

// VisibleBound is the model-space area covered by the view.
func (t *Transform) VisibleBound() geom.Bound {
	return geom.NewBound(t.ToModel(geom.Pt(0, 0)), t.ToModel(geom.Pt(t.width, t.height)))
}

// Scale returns screen pixels per model unit.
func (t *Transform) Scale() float64 { return t.xfm.ScaleFactor() }

// ToModelDistance converts a screen-space length to model units.
func (t *Transform) ToModelDistance(px float64) float64 { return px / t.Scale() }

func (t *Transform) Matrix() geom.Matrix  { return t.xfm }
func (t *Transform) Inverse() geom.Matrix { return t.inv }

func (t *Transform) Size() (width, height float64) { return t.width, t.height }

func (t *Transform) Margin() float64 { return t.margin }

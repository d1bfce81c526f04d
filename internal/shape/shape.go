// Package shape implements the closed set of drawable primitives.
//
// A shape is created open on pointer-down, mutated through Update while it
// is being drawn, and handed to the document on commit. Every variant
// serializes its own payload (the tag is written by the codec) and answers
// hit tests in model space.
package shape

import (
	"errors"
	"fmt"
	"io"

	"github.com/inamate/vecpad/internal/geom"
	"github.com/inamate/vecpad/internal/render"
)

// DefaultTolerance is the hit-test slack in model units.
const DefaultTolerance = 10.0

// Kind identifies a variant. The numeric values are the persisted tags of
// format version 1 and must never be renumbered.
type Kind int32

const (
	KindRectangle     Kind = 0
	KindLine          Kind = 1
	KindCircle        Kind = 2
	KindConnectedLine Kind = 3
	KindScribble      Kind = 4
	KindEraser        Kind = 5
)

// Kinds lists every variant in tag order.
var Kinds = []Kind{KindRectangle, KindLine, KindCircle, KindConnectedLine, KindScribble, KindEraser}

var (
	ErrUnknownKind   = errors.New("unknown shape kind")
	ErrNegativeCount = errors.New("negative element count")
)

func (k Kind) String() string {
	switch k {
	case KindRectangle:
		return "rectangle"
	case KindLine:
		return "line"
	case KindCircle:
		return "circle"
	case KindConnectedLine:
		return "connectedline"
	case KindScribble:
		return "scribble"
	case KindEraser:
		return "eraser"
	}
	return fmt.Sprintf("kind(%d)", int32(k))
}

// ParseKind maps a tool name as produced by Kind.String back to its Kind.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("parse kind %q: %w", name, ErrUnknownKind)
}

// Shape is implemented only by the variants in this package.
type Shape interface {
	Kind() Kind
	// Update moves the live point while the shape is being drawn.
	Update(p geom.Point)
	Bound() geom.Bound
	// HitTest reports whether p selects the shape with DefaultTolerance.
	HitTest(p geom.Point) bool
	HitTestWithin(p geom.Point, tol float64) bool
	Emit(ctx *render.Context)
	// Save writes the payload only; the tag is framed by the caller.
	Save(w io.Writer) error
	// Open replaces the shape's geometry with a decoded payload. On error
	// the shape is left unchanged.
	Open(r io.Reader) error

	sealed()
}

// New returns an open shape of the given kind anchored at start.
func New(kind Kind, start geom.Point) (Shape, error) {
	switch kind {
	case KindRectangle:
		return NewRectangle(start), nil
	case KindLine:
		return NewLine(start), nil
	case KindCircle:
		return NewCircle(start), nil
	case KindConnectedLine:
		return NewConnectedLine(start), nil
	case KindScribble:
		return NewScribble(start), nil
	case KindEraser:
		return NewEraser(start), nil
	}
	return nil, fmt.Errorf("new %v: %w", kind, ErrUnknownKind)
}

// Zero returns an empty shape of the given kind, ready for Open.
func Zero(kind Kind) (Shape, error) {
	switch kind {
	case KindRectangle:
		return &Rectangle{}, nil
	case KindLine:
		return &Line{}, nil
	case KindCircle:
		return &Circle{}, nil
	case KindConnectedLine:
		return &ConnectedLine{}, nil
	case KindScribble:
		return &Scribble{}, nil
	case KindEraser:
		return &Eraser{}, nil
	}
	return nil, fmt.Errorf("zero %v: %w", kind, ErrUnknownKind)
}

// IsEmpty reports whether s carries no drawable geometry. The editor
// discards such shapes instead of committing them.
func IsEmpty(s Shape) bool {
	switch v := s.(type) {
	case *ConnectedLine:
		return len(v.segments) == 0
	case *Line:
		return v.Start == v.End
	case *Rectangle:
		return v.Start == v.End
	case *Circle:
		return v.Radius == 0
	case *Scribble, *Eraser:
		return false
	}
	return true
}

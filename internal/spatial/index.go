// Package spatial indexes shape bounds in an R-tree so renderers can skip
// shapes outside the visible area.
package spatial

import (
	"slices"

	"github.com/dhconnelly/rtreego"

	"github.com/inamate/vecpad/internal/geom"
)

// Padding added around every indexed box. rtreego rejects zero-length
// sides, and horizontal or vertical lines have one.
const pad = 1e-6

type entry struct {
	index int
	rect  rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect { return e.rect }

// Index maps document positions to bounds.
type Index struct {
	tree *rtreego.Rtree
	size int
}

func toRect(b geom.Bound) (rtreego.Rect, bool) {
	if b.IsEmpty() {
		return rtreego.Rect{}, false
	}
	r, err := rtreego.NewRect(
		rtreego.Point{b.MinX - pad, b.MinY - pad},
		[]float64{b.Width() + 2*pad, b.Height() + 2*pad},
	)
	return r, err == nil
}

// Build indexes bounds[i] under i. Empty bounds are skipped.
func Build(bounds []geom.Bound) *Index {
	objs := make([]rtreego.Spatial, 0, len(bounds))
	for i, b := range bounds {
		if r, ok := toRect(b); ok {
			objs = append(objs, &entry{index: i, rect: r})
		}
	}
	return &Index{tree: rtreego.NewTree(2, 25, 50, objs...), size: len(objs)}
}

// Len returns the number of indexed boxes.
func (x *Index) Len() int { return x.size }

// Search returns, in ascending order, the indices whose boxes intersect b.
func (x *Index) Search(b geom.Bound) []int {
	r, ok := toRect(b)
	if !ok {
		return nil
	}
	hits := x.tree.SearchIntersect(r)
	out := make([]int, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*entry).index)
	}
	slices.Sort(out)
	return out
}

package pdf

import (
	"bytes"
	"testing"

	"github.com/inamate/vecpad/internal/geom"
	"github.com/inamate/vecpad/internal/render"
)

func TestOutput(t *testing.T) {
	s := New(800, 600)
	s.DrawLine(geom.Pt(0, 0), geom.Pt(800, 600), render.CommittedPen)
	s.DrawRect(geom.Pt(10, 10), geom.Pt(100, 50), render.SelectionPen)
	s.DrawEllipse(geom.Pt(400, 300), 50, 50, render.CommittedPen)
	s.DrawPolyline([]geom.Point{geom.Pt(0, 0), geom.Pt(5, 5), geom.Pt(10, 0)}, render.CommittedPen)

	var buf bytes.Buffer
	if err := s.Output(&buf); err != nil {
		t.Fatalf("Output: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", buf.Bytes()[:min(8, buf.Len())])
	}
}

func TestLandscapeFitsPage(t *testing.T) {
	s := New(1000, 100)
	// 297mm landscape width minus margins
	if got := 1000 * s.scale; got > 297-2*pageMargin+1e-9 {
		t.Errorf("scaled width %vmm overflows the page", got)
	}
}

package raster

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/inamate/vecpad/internal/geom"
	"github.com/inamate/vecpad/internal/render"
)

func TestEncodePNG(t *testing.T) {
	s := New(64, 32)
	defer s.Close()

	s.DrawLine(geom.Pt(0, 16), geom.Pt(64, 16), render.CommittedPen)
	s.DrawRect(geom.Pt(4, 4), geom.Pt(20, 20), render.FeedbackPen)
	s.DrawEllipse(geom.Pt(40, 16), 10, 6, render.SelectionPen)
	s.DrawPolyline([]geom.Point{geom.Pt(1, 1)}, render.CommittedPen)
	if err := s.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}

	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("size = %v, want 64x32", b)
	}
}

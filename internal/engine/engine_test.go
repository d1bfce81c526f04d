package engine

import (
	"math"
	"testing"

	"github.com/inamate/vecpad/internal/document"
	"github.com/inamate/vecpad/internal/geom"
	"github.com/inamate/vecpad/internal/render"
	"github.com/inamate/vecpad/internal/shape"
)

// The default view maps model (x, y) to screen (x, 100-y).
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(100, 100, Options{})
}

func drag(t *testing.T, e *Engine, from, to geom.Point) {
	t.Helper()
	if err := e.PointerDown(from); err != nil {
		t.Fatalf("PointerDown: %v", err)
	}
	e.PointerMove(to)
	e.PointerUp(to)
}

func TestDrawLine(t *testing.T) {
	e := newTestEngine(t)
	drag(t, e, geom.Pt(10, 90), geom.Pt(40, 90))

	if e.Document().Len() != 1 {
		t.Fatalf("len = %d, want 1", e.Document().Len())
	}
	l, ok := e.Document().At(0).(*shape.Line)
	if !ok {
		t.Fatalf("shape is %T, want *shape.Line", e.Document().At(0))
	}
	if l.Start != geom.Pt(10, 10) || l.End != geom.Pt(40, 10) {
		t.Errorf("line = %v -> %v", l.Start, l.End)
	}
	if !e.Modified() || !e.CanUndo() {
		t.Error("commit should mark modified and enable undo")
	}
}

func TestClickWithoutDragCommitsNothing(t *testing.T) {
	e := newTestEngine(t)
	for _, tool := range []string{"line", "rectangle", "circle"} {
		if err := e.SetTool(tool); err != nil {
			t.Fatal(err)
		}
		drag(t, e, geom.Pt(5, 5), geom.Pt(5, 5))
	}
	if e.Document().Len() != 0 {
		t.Errorf("len = %d, want 0", e.Document().Len())
	}
}

func TestConnectedLineFinish(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetTool("connectedline"); err != nil {
		t.Fatal(err)
	}
	for _, p := range []geom.Point{geom.Pt(0, 100), geom.Pt(10, 100), geom.Pt(10, 90)} {
		if err := e.PointerDown(p); err != nil {
			t.Fatal(err)
		}
		e.PointerUp(p)
	}
	e.PointerMove(geom.Pt(50, 50))
	if e.Document().Len() != 0 || !e.IsDrawing() {
		t.Fatal("connected line should stay open until Finish")
	}

	e.Finish()
	if e.Document().Len() != 1 {
		t.Fatalf("len = %d, want 1", e.Document().Len())
	}
	cl := e.Document().At(0).(*shape.ConnectedLine)
	if n := len(cl.Segments()); n != 2 {
		t.Errorf("segments = %d, want 2", n)
	}
	if b := cl.Bound(); b.MaxX != 10 || b.MaxY != 10 {
		t.Errorf("live segment kept after Finish: bound %+v", b)
	}
}

func TestUndoRedo(t *testing.T) {
	e := newTestEngine(t)
	drag(t, e, geom.Pt(10, 90), geom.Pt(40, 90))
	drag(t, e, geom.Pt(10, 50), geom.Pt(40, 50))
	e.MarkSaved()

	if !e.Undo() || e.Document().Len() != 1 || !e.CanRedo() {
		t.Fatal("undo failed")
	}
	if !e.Modified() {
		t.Error("undo should mark the document modified")
	}
	if !e.Redo() || e.Document().Len() != 2 {
		t.Fatal("redo failed")
	}

	e.Undo()
	drag(t, e, geom.Pt(0, 0), geom.Pt(5, 5))
	if e.CanRedo() {
		t.Error("new commit after undo must clear redo")
	}
}

func TestSelect(t *testing.T) {
	e := newTestEngine(t)
	drag(t, e, geom.Pt(10, 90), geom.Pt(40, 90)) // y = 10
	drag(t, e, geom.Pt(10, 70), geom.Pt(40, 70)) // y = 30

	if err := e.SetTool(ToolSelect); err != nil {
		t.Fatal(err)
	}
	if err := e.PointerDown(geom.Pt(20, 72)); err != nil {
		t.Fatal(err)
	}
	if e.Selected() != 1 {
		t.Errorf("Selected = %d, want 1", e.Selected())
	}
	if got := e.Select(geom.Pt(20, 500)); got != -1 {
		t.Errorf("Select miss = %d, want -1", got)
	}

	cmds := e.RenderCommands()
	if len(cmds) != 2 {
		t.Fatalf("commands = %d, want 2 with nothing selected", len(cmds))
	}
}

func TestDeleteSelected(t *testing.T) {
	e := newTestEngine(t)
	drag(t, e, geom.Pt(10, 90), geom.Pt(40, 90)) // y = 10
	drag(t, e, geom.Pt(10, 70), geom.Pt(40, 70)) // y = 30
	drag(t, e, geom.Pt(10, 50), geom.Pt(40, 50)) // y = 50
	middle := e.Document().At(1)

	if e.DeleteSelected() {
		t.Fatal("DeleteSelected with nothing selected should be a no-op")
	}
	if e.Select(geom.Pt(20, 30)) != 1 {
		t.Fatalf("Selected = %d, want 1", e.Selected())
	}
	e.MarkSaved()
	if !e.DeleteSelected() {
		t.Fatal("DeleteSelected reported no change")
	}
	if e.Document().Len() != 2 || e.Selected() != -1 || !e.Modified() {
		t.Fatalf("after delete: len=%d selected=%d modified=%v", e.Document().Len(), e.Selected(), e.Modified())
	}

	if !e.Undo() || e.Document().Len() != 3 || e.Document().At(1) != middle {
		t.Fatal("undo should put the deleted shape back at index 1")
	}
	if !e.Redo() || e.Document().Len() != 2 {
		t.Fatal("redo should delete the shape again")
	}
	for _, s := range e.Document().Shapes() {
		if s == middle {
			t.Error("deleted shape still present after redo")
		}
	}
}

func TestScreenHitTolerance(t *testing.T) {
	e := NewEngine(100, 100, Options{ScreenHitTolerance: 4})
	l := shape.NewLine(geom.Pt(0, 0))
	l.Update(geom.Pt(10, 0))
	doc := document.New()
	doc.Add(l)
	doc.Add(shape.NewCircle(geom.Pt(5, 50))) // zero radius: never hit, only gives the document height
	e.LoadDocument(doc)

	scale := e.View().Scale()
	if got := e.HitTolerance(); math.Abs(got-4/scale) > 1e-9 {
		t.Errorf("HitTolerance = %v, want %v", got, 4/scale)
	}
	if e.Select(geom.Pt(5, 6/scale)) != -1 {
		t.Error("6px away should miss with a 4px tolerance")
	}
	if e.Select(geom.Pt(5, 2/scale)) != 0 {
		t.Error("2px away should hit with a 4px tolerance")
	}
}

func TestWheelKeepsCursor(t *testing.T) {
	e := newTestEngine(t)
	e.LoadSampleDocument()
	at := geom.Pt(30, 60)
	before := e.View().ToModel(at)
	if err := e.Wheel(at, 120); err != nil {
		t.Fatal(err)
	}
	s := e.View().Scale()
	if err := e.Wheel(at, -120); err != nil {
		t.Fatal(err)
	}
	after := e.View().ToModel(at)
	if math.Abs(after.X-before.X) > 1e-9 || math.Abs(after.Y-before.Y) > 1e-9 {
		t.Errorf("cursor moved from %v to %v", before, after)
	}
	if got := e.View().Scale(); !(got < s) {
		t.Errorf("wheel down should zoom out: %v -> %v", s, got)
	}
}

func TestFitToDocument(t *testing.T) {
	e := newTestEngine(t)
	if err := e.FitToDocument(); err != nil {
		t.Errorf("fit on empty document: %v", err)
	}

	drag(t, e, geom.Pt(10, 50), geom.Pt(90, 50)) // horizontal line
	if err := e.FitToDocument(); err != nil {
		t.Fatalf("fit on flat document: %v", err)
	}
	vis := e.View().VisibleBound()
	if vis.MinX > 10 || vis.MaxX < 90 {
		t.Errorf("visible %+v does not cover the line", vis)
	}
}

func TestRenderCullsAndTags(t *testing.T) {
	e := newTestEngine(t)
	drag(t, e, geom.Pt(10, 90), geom.Pt(40, 90))
	if err := e.SetTool("rectangle"); err != nil {
		t.Fatal(err)
	}
	if err := e.PointerDown(geom.Pt(50, 50)); err != nil {
		t.Fatal(err)
	}
	e.PointerMove(geom.Pt(60, 40))

	cmds := e.RenderCommands()
	if len(cmds) != 2 {
		t.Fatalf("commands = %d, want 2", len(cmds))
	}
	if cmds[0].Shape != 0 || cmds[0].Stroke != render.CSSColor(render.CommittedPen) {
		t.Errorf("committed command = %+v", cmds[0])
	}
	if cmds[1].Shape != -1 || cmds[1].Stroke != render.CSSColor(render.FeedbackPen) {
		t.Errorf("feedback command = %+v", cmds[1])
	}

	e.Cancel()
	if err := e.Pan(geom.Pt(10000, 0)); err != nil {
		t.Fatal(err)
	}
	if cmds := e.RenderCommands(); len(cmds) != 0 {
		t.Errorf("off-screen shapes rendered: %d commands", len(cmds))
	}
}

func TestMeasure(t *testing.T) {
	e := newTestEngine(t)
	if err := e.PointerDown(geom.Pt(0, 100)); err != nil {
		t.Fatal(err)
	}
	e.PointerMove(geom.Pt(3, 96))

	m := e.Measure()
	if m.X != 3 || m.Y != 4 || m.DX != 3 || m.DY != 4 || m.Length != 5 {
		t.Errorf("Measure = %+v", m)
	}
	if want := math.Atan2(4, 3) * 180 / math.Pi; math.Abs(m.Angle-want) > 1e-9 {
		t.Errorf("Angle = %v, want %v", m.Angle, want)
	}
}

func TestLoadExtremeDocument(t *testing.T) {
	tests := []struct {
		name     string
		from, to geom.Point
	}{
		{"huge", geom.Pt(0, 0), geom.Pt(1e200, 1e200)},
		{"tiny", geom.Pt(0, 0), geom.Pt(1e-300, 1e-300)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(800, 600, DefaultOptions())
			before := e.View().Matrix()
			r := shape.NewRectangle(tt.from)
			r.Update(tt.to)
			doc := document.New()
			doc.Add(r)

			e.LoadDocument(doc)
			if e.Document().Len() != 1 {
				t.Fatalf("len = %d, want 1", e.Document().Len())
			}
			if e.View().Matrix() != before {
				t.Error("view changed for an unfittable document")
			}
			if err := e.FitToDocument(); err == nil {
				t.Error("FitToDocument should report the unfittable bound")
			}
			_ = e.RenderCommands()
		})
	}
}

func TestMarginOptions(t *testing.T) {
	tests := []struct {
		name   string
		margin float64
		want   float64
	}{
		{"explicit zero", 0, 0},
		{"negative takes default", -1, 20},
		{"custom", 7, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(100, 100, Options{Margin: tt.margin})
			if got := e.View().Margin(); got != tt.want {
				t.Errorf("Margin = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetToolUnknown(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetTool("spline"); err == nil {
		t.Error("expected error for unknown tool")
	}
	if e.Tool() != "line" {
		t.Errorf("Tool = %s, want line", e.Tool())
	}
}

// Package engine is the interactive editing session: it routes pointer input
// through the view into shapes, commits them through the history and renders
// the document to any render.Sink.
package engine

import (
	"fmt"
	"math"

	"github.com/inamate/vecpad/internal/document"
	"github.com/inamate/vecpad/internal/geom"
	"github.com/inamate/vecpad/internal/history"
	"github.com/inamate/vecpad/internal/render"
	"github.com/inamate/vecpad/internal/shape"
	"github.com/inamate/vecpad/internal/spatial"
	"github.com/inamate/vecpad/internal/view"
)

// ToolSelect is the tool name for picking shapes instead of drawing.
const ToolSelect = "select"

// Options tune the session. Zero fields take the defaults, except Margin:
// zero fits edge to edge and only a negative Margin takes the default.
type Options struct {
	Margin       float64 // fit padding in pixels
	ZoomStep     float64 // wheel zoom factor
	HitTolerance float64 // model units
	// ScreenHitTolerance, when positive, replaces HitTolerance with a pixel
	// distance converted through the current zoom.
	ScreenHitTolerance float64
}

// DefaultOptions returns the stock editor settings.
func DefaultOptions() Options {
	return Options{Margin: 20, ZoomStep: 1.05, HitTolerance: shape.DefaultTolerance}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Margin < 0 {
		o.Margin = d.Margin
	}
	if o.ZoomStep <= 1 {
		o.ZoomStep = d.ZoomStep
	}
	if o.HitTolerance <= 0 {
		o.HitTolerance = d.HitTolerance
	}
	return o
}

// Engine owns the document, its history and the view of one editor.
// It is single-threaded; callers serialize access.
type Engine struct {
	hist *history.History
	view *view.Transform
	opts Options

	selecting bool
	tool      shape.Kind

	// Shape being drawn, nil when idle.
	current shape.Shape
	anchor  geom.Point
	cursor  geom.Point

	selected int
	modified bool

	// Retained spatial index, rebuilt when dirty.
	index *spatial.Index
	dirty bool
}

// NewEngine creates an engine with an empty document and a width x height
// view.
func NewEngine(width, height float64, opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		hist:     history.New(document.New()),
		view:     view.New(width, height, opts.Margin),
		opts:     opts,
		tool:     shape.KindLine,
		selected: -1,
		dirty:    true,
	}
}

// --- Commands ---

// LoadDocument replaces the document, forgets history and fits the view.
func (e *Engine) LoadDocument(doc *document.Document) {
	e.current = nil
	e.hist.Reset(doc)
	e.selected = -1
	e.modified = false
	e.dirty = true
	_ = e.FitToDocument()
}

// LoadSampleDocument loads the built-in sample drawing.
func (e *Engine) LoadSampleDocument() {
	e.LoadDocument(document.NewSampleDocument())
}

// SetTool selects ToolSelect or a shape kind by name.
func (e *Engine) SetTool(name string) error {
	if name == ToolSelect {
		e.Cancel()
		e.selecting = true
		return nil
	}
	k, err := shape.ParseKind(name)
	if err != nil {
		return fmt.Errorf("set tool: %w", err)
	}
	e.Cancel()
	e.selecting = false
	e.tool = k
	return nil
}

// Tool returns the active tool name.
func (e *Engine) Tool() string {
	if e.selecting {
		return ToolSelect
	}
	return e.tool.String()
}

// PointerDown starts a shape, adds a vertex to an open connected line, or
// picks a shape with the select tool.
func (e *Engine) PointerDown(screen geom.Point) error {
	p := e.view.ToModel(screen)
	e.cursor = p
	if e.selecting {
		e.Select(p)
		return nil
	}
	if cl, ok := e.current.(*shape.ConnectedLine); ok {
		cl.AddLines(p)
		return nil
	}
	s, err := shape.New(e.tool, p)
	if err != nil {
		return err
	}
	e.current = s
	e.anchor = p
	e.selected = -1
	return nil
}

// PointerMove updates the open shape.
func (e *Engine) PointerMove(screen geom.Point) {
	p := e.view.ToModel(screen)
	e.cursor = p
	if e.current != nil {
		e.current.Update(p)
	}
}

// PointerUp commits the open shape. Connected lines stay open until Finish.
func (e *Engine) PointerUp(screen geom.Point) {
	if e.current == nil {
		return
	}
	if _, ok := e.current.(*shape.ConnectedLine); ok {
		return
	}
	p := e.view.ToModel(screen)
	e.cursor = p
	e.current.Update(p)
	e.commit()
}

// Finish ends an open connected line, dropping its live segment.
func (e *Engine) Finish() {
	cl, ok := e.current.(*shape.ConnectedLine)
	if !ok {
		return
	}
	cl.RemoveLine()
	e.commit()
}

// Cancel abandons the open shape.
func (e *Engine) Cancel() {
	e.current = nil
}

func (e *Engine) commit() {
	s := e.current
	e.current = nil
	if shape.IsEmpty(s) {
		return
	}
	e.hist.Commit(s)
	e.changed()
}

func (e *Engine) changed() {
	e.modified = true
	e.dirty = true
	e.selected = -1
}

// Undo removes the topmost shape. An open shape is abandoned first.
func (e *Engine) Undo() bool {
	e.Cancel()
	if !e.hist.Undo() {
		return false
	}
	e.changed()
	return true
}

// Redo restores the last undone shape.
func (e *Engine) Redo() bool {
	e.Cancel()
	if !e.hist.Redo() {
		return false
	}
	e.changed()
	return true
}

// FitToDocument zooms to the document extents. An empty document leaves the
// view alone; a document with no width or height is padded to a square.
func (e *Engine) FitToDocument() error {
	b := e.hist.Document().Bound()
	if b.IsEmpty() {
		return nil
	}
	if w, h := b.Width(), b.Height(); w == 0 || h == 0 {
		b = b.Expanded(math.Max(math.Max(w, h), 1) / 2)
	}
	return e.view.Fit(b)
}

// Wheel zooms about a screen point. Positive delta (wheel up) zooms in.
func (e *Engine) Wheel(screen geom.Point, delta float64) error {
	if delta == 0 {
		return nil
	}
	factor := e.opts.ZoomStep
	if delta > 0 {
		factor = 1 / factor
	}
	return e.view.ZoomAt(screen, factor)
}

// Zoom scales the view about its centre by factor.
func (e *Engine) Zoom(factor float64) error {
	w, h := e.view.Size()
	return e.view.ZoomAt(geom.Pt(w/2, h/2), factor)
}

// Pan shifts the view by a screen delta.
func (e *Engine) Pan(delta geom.Point) error { return e.view.Pan(delta) }

// Resize changes the view size.
func (e *Engine) Resize(width, height float64) { e.view.Resize(width, height) }

// Select picks the topmost shape under a model point and returns its index,
// or -1.
func (e *Engine) Select(p geom.Point) int {
	e.selected = e.hist.Document().HitTest(p, e.HitTolerance())
	return e.selected
}

// DeleteSelected removes the selected shape as an undoable edit. It reports
// whether a shape was removed.
func (e *Engine) DeleteSelected() bool {
	if e.selected < 0 || e.hist.Remove(e.selected) == nil {
		return false
	}
	e.changed()
	return true
}

// ClearSelection drops the selection.
func (e *Engine) ClearSelection() { e.selected = -1 }

// MarkSaved clears the modified flag after a successful save.
func (e *Engine) MarkSaved() { e.modified = false }

// --- Queries ---

func (e *Engine) Document() *document.Document { return e.hist.Document() }
func (e *Engine) View() *view.Transform        { return e.view }
func (e *Engine) CanUndo() bool                { return e.hist.CanUndo() }
func (e *Engine) CanRedo() bool                { return e.hist.CanRedo() }
func (e *Engine) Modified() bool               { return e.modified }
func (e *Engine) Selected() int                { return e.selected }
func (e *Engine) IsDrawing() bool              { return e.current != nil }

// HitTolerance returns the model-space tolerance used by Select.
func (e *Engine) HitTolerance() float64 {
	if e.opts.ScreenHitTolerance > 0 {
		return e.view.ToModelDistance(e.opts.ScreenHitTolerance)
	}
	return e.opts.HitTolerance
}

// Measurement is the status readout for the pointer.
type Measurement struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Length float64 `json:"length"`
	Angle  float64 `json:"angle"` // degrees
}

// Measure reports the cursor position and, while drawing, its offset from
// the point the shape was started at.
func (e *Engine) Measure() Measurement {
	m := Measurement{X: e.cursor.X, Y: e.cursor.Y}
	if e.current == nil {
		return m
	}
	m.DX = e.anchor.Dx(e.cursor)
	m.DY = e.anchor.Dy(e.cursor)
	m.Length = e.anchor.Distance(e.cursor)
	m.Angle = e.anchor.AngleTo(e.cursor) * 180 / math.Pi
	return m
}

// Render emits the visible shapes in paint order, then the selection
// highlight and the shape being drawn.
func (e *Engine) Render(sink render.Sink) {
	doc := e.hist.Document()
	if e.dirty {
		bounds := make([]geom.Bound, doc.Len())
		for i, s := range doc.All() {
			bounds[i] = s.Bound()
		}
		e.index = spatial.Build(bounds)
		e.dirty = false
	}

	marker, _ := sink.(render.ShapeMarker)
	ctx := render.NewContext(e.view.Matrix(), sink)

	// Widen by the heaviest pen so strokes just outside the view still paint.
	visible := e.view.VisibleBound().Expanded(e.view.ToModelDistance(render.EraserWidth))
	for _, i := range e.index.Search(visible) {
		if marker != nil {
			marker.BeginShape(i)
		}
		doc.At(i).Emit(ctx)
	}

	if e.selected >= 0 && e.selected < doc.Len() {
		if marker != nil {
			marker.BeginShape(e.selected)
		}
		doc.At(e.selected).Emit(ctx.WithPen(render.SelectionPen))
	}
	if e.current != nil {
		if marker != nil {
			marker.BeginShape(-1)
		}
		e.current.Emit(ctx.WithPen(render.FeedbackPen))
	}
}

// RenderCommands renders into a fresh recorder and returns its commands.
func (e *Engine) RenderCommands() []render.DrawCommand {
	rec := render.NewRecorder()
	e.Render(rec)
	return rec.Commands
}

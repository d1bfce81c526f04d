//go:build js && wasm

package main

import (
	"bytes"
	"encoding/json"
	"syscall/js"

	"github.com/inamate/vecpad/internal/codec"
	"github.com/inamate/vecpad/internal/document"
	"github.com/inamate/vecpad/internal/engine"
	"github.com/inamate/vecpad/internal/geom"
	"github.com/inamate/vecpad/internal/render"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(800, 600, engine.DefaultOptions())

	// Create the engine API object
	vecpadEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	vecpadEngine.Set("loadDocument", js.FuncOf(loadDocument))
	vecpadEngine.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	vecpadEngine.Set("newDocument", js.FuncOf(newDocument))
	vecpadEngine.Set("setTool", js.FuncOf(setTool))
	vecpadEngine.Set("pointerDown", js.FuncOf(pointerDown))
	vecpadEngine.Set("pointerMove", js.FuncOf(pointerMove))
	vecpadEngine.Set("pointerUp", js.FuncOf(pointerUp))
	vecpadEngine.Set("finish", js.FuncOf(finish))
	vecpadEngine.Set("cancel", js.FuncOf(cancel))
	vecpadEngine.Set("undo", js.FuncOf(undo))
	vecpadEngine.Set("redo", js.FuncOf(redo))
	vecpadEngine.Set("deleteSelected", js.FuncOf(deleteSelected))
	vecpadEngine.Set("wheel", js.FuncOf(wheel))
	vecpadEngine.Set("pan", js.FuncOf(pan))
	vecpadEngine.Set("resize", js.FuncOf(resize))
	vecpadEngine.Set("fitToDocument", js.FuncOf(fitToDocument))
	vecpadEngine.Set("markSaved", js.FuncOf(markSaved))

	// --- Queries (frontend ← engine) ---
	vecpadEngine.Set("render", js.FuncOf(renderCommands))
	vecpadEngine.Set("saveDocument", js.FuncOf(saveDocument))
	vecpadEngine.Set("getMeasurement", js.FuncOf(getMeasurement))
	vecpadEngine.Set("getState", js.FuncOf(getState))

	// Register on global scope
	js.Global().Set("vecpadEngine", vecpadEngine)

	// Signal that WASM is ready
	js.Global().Set("vecpadWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

func okResult() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// point reads args[i], args[i+1] as a screen point.
func point(args []js.Value, i int) (geom.Point, bool) {
	if len(args) < i+2 {
		return geom.Point{}, false
	}
	return geom.Pt(args[i].Float(), args[i+1].Float()), true
}

// --- Command Handlers ---

// loadDocument takes a Uint8Array holding a drawing file.
func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("missing drawing bytes")
	}

	data := make([]byte, args[0].Get("length").Int())
	js.CopyBytesToGo(data, args[0])

	doc, err := codec.Load(bytes.NewReader(data))
	if err != nil {
		return errorResult(err.Error())
	}
	eng.LoadDocument(doc)
	return js.ValueOf(map[string]interface{}{"ok": true, "shapes": doc.Len()})
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	eng.LoadSampleDocument()
	return okResult()
}

func newDocument(this js.Value, args []js.Value) interface{} {
	eng.LoadDocument(document.New())
	return okResult()
}

func setTool(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("missing tool name")
	}
	if err := eng.SetTool(args[0].String()); err != nil {
		return errorResult(err.Error())
	}
	return okResult()
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	p, ok := point(args, 0)
	if !ok {
		return errorResult("missing x, y")
	}
	if err := eng.PointerDown(p); err != nil {
		return errorResult(err.Error())
	}
	return okResult()
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if p, ok := point(args, 0); ok {
		eng.PointerMove(p)
	}
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if p, ok := point(args, 0); ok {
		eng.PointerUp(p)
	}
	return nil
}

func finish(this js.Value, args []js.Value) interface{} {
	eng.Finish()
	return nil
}

func cancel(this js.Value, args []js.Value) interface{} {
	eng.Cancel()
	return nil
}

func undo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Redo())
}

func deleteSelected(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.DeleteSelected())
}

// wheel takes x, y and the wheel delta; positive zooms in.
func wheel(this js.Value, args []js.Value) interface{} {
	p, ok := point(args, 0)
	if !ok || len(args) < 3 {
		return errorResult("missing x, y, delta")
	}
	if err := eng.Wheel(p, args[2].Float()); err != nil {
		return errorResult(err.Error())
	}
	return okResult()
}

func pan(this js.Value, args []js.Value) interface{} {
	d, ok := point(args, 0)
	if !ok {
		return errorResult("missing dx, dy")
	}
	if err := eng.Pan(d); err != nil {
		return errorResult(err.Error())
	}
	return okResult()
}

func resize(this js.Value, args []js.Value) interface{} {
	if s, ok := point(args, 0); ok && s.X > 0 && s.Y > 0 {
		eng.Resize(s.X, s.Y)
	}
	return nil
}

func fitToDocument(this js.Value, args []js.Value) interface{} {
	if err := eng.FitToDocument(); err != nil {
		return errorResult(err.Error())
	}
	return okResult()
}

func markSaved(this js.Value, args []js.Value) interface{} {
	eng.MarkSaved()
	return nil
}

// --- Query Handlers ---

// renderCommands returns the frame as a JSON array of draw commands.
func renderCommands(this js.Value, args []js.Value) interface{} {
	rec := render.NewRecorder()
	eng.Render(rec)
	out, err := rec.JSON()
	if err != nil {
		return errorResult(err.Error())
	}
	return js.ValueOf(out)
}

// saveDocument returns the drawing file as a Uint8Array.
func saveDocument(this js.Value, args []js.Value) interface{} {
	var buf bytes.Buffer
	if err := codec.Save(&buf, eng.Document()); err != nil {
		return errorResult(err.Error())
	}
	arr := js.Global().Get("Uint8Array").New(buf.Len())
	js.CopyBytesToJS(arr, buf.Bytes())
	return arr
}

func getMeasurement(this js.Value, args []js.Value) interface{} {
	data, _ := json.Marshal(eng.Measure())
	return js.ValueOf(string(data))
}

func getState(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(map[string]interface{}{
		"tool":      eng.Tool(),
		"canUndo":   eng.CanUndo(),
		"canRedo":   eng.CanRedo(),
		"modified":  eng.Modified(),
		"drawing":   eng.IsDrawing(),
		"selected":  eng.Selected(),
		"shapes":    eng.Document().Len(),
		"zoomScale": eng.View().Scale(),
	})
}

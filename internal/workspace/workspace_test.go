package workspace

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/inamate/vecpad/internal/codec"
	"github.com/inamate/vecpad/internal/engine"
	"github.com/inamate/vecpad/internal/geom"
)

type fakePrompter struct {
	answer   Answer
	openPath string
	savePath string
	asked    int
}

func (f *fakePrompter) ConfirmSave(string) (Answer, error) {
	f.asked++
	return f.answer, nil
}

func (f *fakePrompter) PickOpenPath() (string, error)      { return f.openPath, nil }
func (f *fakePrompter) PickSavePath(string) (string, error) { return f.savePath, nil }

func newWorkspace(t *testing.T, p *fakePrompter) *Workspace {
	t.Helper()
	eng := engine.NewEngine(100, 100, engine.Options{})
	return New(eng, p, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func drawLine(t *testing.T, w *Workspace) {
	t.Helper()
	e := w.Engine()
	if err := e.PointerDown(geom.Pt(10, 10)); err != nil {
		t.Fatal(err)
	}
	e.PointerUp(geom.Pt(50, 50))
}

func TestCancelLeavesDocumentUntouched(t *testing.T) {
	p := &fakePrompter{answer: AnswerCancel}
	w := newWorkspace(t, p)
	drawLine(t, w)

	other := filepath.Join(t.TempDir(), "other.bin")
	if err := SaveFile(other, w.Engine().Document()); err != nil {
		t.Fatal(err)
	}

	for name, op := range map[string]func() error{
		"new":  w.New,
		"open": func() error { return w.Open(other) },
		"exit": w.Exit,
	} {
		if err := op(); !errors.Is(err, ErrCancelled) {
			t.Errorf("%s: err = %v, want ErrCancelled", name, err)
		}
	}
	if w.Engine().Document().Len() != 1 || !w.Engine().Modified() {
		t.Error("cancelled prompt changed the document")
	}
	if p.asked != 3 {
		t.Errorf("asked %d times, want 3", p.asked)
	}
}

func TestSaveAsThenOpen(t *testing.T) {
	dir := t.TempDir()
	p := &fakePrompter{savePath: filepath.Join(dir, "sketch")}
	w := newWorkspace(t, p)
	if w.Name() != UntitledName {
		t.Errorf("Name = %q, want %q", w.Name(), UntitledName)
	}
	drawLine(t, w)

	if err := w.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if w.Path() != filepath.Join(dir, "sketch.bin") || w.Name() != "sketch" {
		t.Errorf("path = %q name = %q", w.Path(), w.Name())
	}
	if w.Engine().Modified() {
		t.Error("save should clear the modified flag")
	}

	w2 := newWorkspace(t, &fakePrompter{openPath: w.Path()})
	if err := w2.Open(""); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if w2.Engine().Document().Len() != 1 {
		t.Errorf("reopened len = %d, want 1", w2.Engine().Document().Len())
	}
}

func TestAnswerYesSavesBeforeNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keep.bin")
	p := &fakePrompter{answer: AnswerYes, savePath: path}
	w := newWorkspace(t, p)
	drawLine(t, w)

	if err := w.New(); err != nil {
		t.Fatalf("New: %v", err)
	}
	if w.Engine().Document().Len() != 0 || w.Path() != "" {
		t.Error("New did not reset the workspace")
	}
	doc, err := LoadFile(path)
	if err != nil || doc.Len() != 1 {
		t.Errorf("saved file: len=%v err=%v", doc, err)
	}
}

func TestPickerDismissed(t *testing.T) {
	w := newWorkspace(t, &fakePrompter{})
	if err := w.SaveAs(); !errors.Is(err, ErrCancelled) {
		t.Errorf("SaveAs err = %v, want ErrCancelled", err)
	}
	if err := w.Open(""); !errors.Is(err, ErrCancelled) {
		t.Errorf("Open err = %v, want ErrCancelled", err)
	}
}

func TestOpenCorruptFileKeepsDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	if err := os.WriteFile(path, []byte{1, 0, 0, 0, 42, 0, 0, 0}, 0o644); err != nil {
		t.Fatal(err)
	}
	w := newWorkspace(t, &fakePrompter{answer: AnswerNo})
	drawLine(t, w)

	err := w.Open(path)
	if !errors.Is(err, codec.ErrFormat) {
		t.Fatalf("err = %v, want codec.ErrFormat", err)
	}
	if w.Engine().Document().Len() != 1 || w.Path() != "" {
		t.Error("failed load replaced the document")
	}
}

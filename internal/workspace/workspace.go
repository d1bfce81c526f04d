// Package workspace manages the file behind an editor: new, open, save and
// exit with a "save changes?" prompt that can be cancelled.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/inamate/vecpad/internal/codec"
	"github.com/inamate/vecpad/internal/document"
	"github.com/inamate/vecpad/internal/engine"
	"github.com/inamate/vecpad/internal/store"
)

const (
	// Ext is the extension given to saved drawings.
	Ext = ".bin"
	// UntitledName names a drawing that has never been saved.
	UntitledName = "Untitled"
)

// ErrCancelled is returned when the user backs out of a prompt. Nothing has
// been changed when it is returned.
var ErrCancelled = errors.New("cancelled by user")

// Answer is the reply to a "save changes?" prompt.
type Answer int

const (
	AnswerCancel Answer = iota
	AnswerYes
	AnswerNo
)

// Prompter asks the user questions. Implementations return ErrCancelled (or
// an empty path) when the user dismisses a picker.
type Prompter interface {
	ConfirmSave(name string) (Answer, error)
	PickOpenPath() (string, error)
	PickSavePath(suggested string) (string, error)
}

// Workspace binds an engine to a file on disk.
type Workspace struct {
	eng    *engine.Engine
	prompt Prompter
	path   string
	log    *slog.Logger
}

func New(eng *engine.Engine, prompt Prompter, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workspace{eng: eng, prompt: prompt, log: logger}
}

// Name returns the file name without extension, or UntitledName.
func (w *Workspace) Name() string {
	if w.path == "" {
		return UntitledName
	}
	return strings.TrimSuffix(filepath.Base(w.path), Ext)
}

// Path returns the backing file, empty for an unsaved drawing.
func (w *Workspace) Path() string { return w.path }

// Engine returns the bound engine.
func (w *Workspace) Engine() *engine.Engine { return w.eng }

// New replaces the drawing with an empty one.
func (w *Workspace) New() error {
	if err := w.confirmDiscard(); err != nil {
		return err
	}
	w.eng.LoadDocument(document.New())
	w.path = ""
	w.log.Info("new drawing")
	return nil
}

// Open loads path, asking for one when path is empty. The current drawing
// is only replaced once the file has decoded successfully.
func (w *Workspace) Open(path string) error {
	if err := w.confirmDiscard(); err != nil {
		return err
	}
	if path == "" {
		p, err := w.prompt.PickOpenPath()
		if err != nil {
			return err
		}
		if p == "" {
			return ErrCancelled
		}
		path = p
	}

	doc, err := LoadFile(path)
	if err != nil {
		return err
	}
	w.eng.LoadDocument(doc)
	w.path = path
	w.log.Info("opened drawing", "path", path, "shapes", doc.Len())
	return nil
}

// Save writes to the current file, or asks for one on first save.
func (w *Workspace) Save() error {
	if w.path == "" {
		return w.SaveAs()
	}
	return w.saveTo(w.path)
}

// SaveAs asks for a path and writes there.
func (w *Workspace) SaveAs() error {
	p, err := w.prompt.PickSavePath(w.Name() + Ext)
	if err != nil {
		return err
	}
	if p == "" {
		return ErrCancelled
	}
	if filepath.Ext(p) == "" {
		p += Ext
	}
	return w.saveTo(p)
}

func (w *Workspace) saveTo(path string) error {
	doc := w.eng.Document()
	if err := SaveFile(path, doc); err != nil {
		return err
	}
	w.path = path
	w.eng.MarkSaved()
	w.log.Info("saved drawing", "path", path, "shapes", doc.Len())
	return nil
}

// Exit returns nil when it is safe to quit.
func (w *Workspace) Exit() error {
	return w.confirmDiscard()
}

func (w *Workspace) confirmDiscard() error {
	if !w.eng.Modified() {
		return nil
	}
	ans, err := w.prompt.ConfirmSave(w.Name())
	if err != nil {
		return err
	}
	switch ans {
	case AnswerYes:
		return w.Save()
	case AnswerNo:
		return nil
	}
	return ErrCancelled
}

// LoadFile decodes a drawing file.
func LoadFile(path string) (*document.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open drawing: %w", err)
	}
	defer f.Close()

	doc, err := codec.Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return doc, nil
}

// SaveFile writes doc to path atomically.
func SaveFile(path string, doc *document.Document) error {
	err := store.WriteFileAtomic(path, func(wr io.Writer) error {
		return codec.Save(wr, doc)
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

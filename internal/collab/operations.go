package collab

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/inamate/vecpad/internal/codec"
	"github.com/inamate/vecpad/internal/document"
	"github.com/inamate/vecpad/internal/history"
	"github.com/inamate/vecpad/internal/shape"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrEmptyShape    = errors.New("empty shape")
	ErrNoSuchShape   = errors.New("no shape at index")
)

// DocumentState holds the authoritative drawing for a room and its shared
// undo history.
type DocumentState struct {
	mu        sync.RWMutex
	hist      *history.History
	serverSeq int64
	dirty     bool
}

// NewDocumentState wraps an initial document.
func NewDocumentState(doc *document.Document) *DocumentState {
	return &DocumentState{hist: history.New(doc)}
}

// ApplyOperation applies an operation to the document and returns the server sequence
func (ds *DocumentState) ApplyOperation(op Operation) (int64, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if err := ds.applyOperationLocked(op); err != nil {
		return 0, err
	}

	ds.serverSeq++
	ds.dirty = true
	return ds.serverSeq, nil
}

// applyOperationLocked applies the operation without locking (caller must hold lock)
func (ds *DocumentState) applyOperationLocked(op Operation) error {
	switch op.Type {
	case OpShapeCommit:
		s, err := codec.DecodeShape(op.Shape)
		if err != nil {
			return fmt.Errorf("invalid shape: %w", err)
		}
		if shape.IsEmpty(s) {
			return ErrEmptyShape
		}
		ds.hist.Commit(s)
	case OpShapeDelete:
		if op.Index == nil || ds.hist.Remove(*op.Index) == nil {
			return ErrNoSuchShape
		}
	case OpHistoryUndo:
		if !ds.hist.Undo() {
			return ErrNothingToUndo
		}
	case OpHistoryRedo:
		if !ds.hist.Redo() {
			return ErrNothingToRedo
		}
	case OpDocumentClear:
		// Clearing resets history so it cannot be undone shape by shape.
		ds.hist.Reset(document.New())
	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}
	return nil
}

// Snapshot encodes the current drawing.
func (ds *DocumentState) Snapshot() ([]byte, int64, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	var buf bytes.Buffer
	if err := codec.Save(&buf, ds.hist.Document()); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), ds.serverSeq, nil
}

// ServerSeq returns the number of operations applied.
func (ds *DocumentState) ServerSeq() int64 {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.serverSeq
}

// Dirty reports whether operations were applied since the last MarkClean.
func (ds *DocumentState) Dirty() bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.dirty
}

func (ds *DocumentState) MarkClean() {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.dirty = false
}

// Document returns the live document. Callers must not mutate it.
func (ds *DocumentState) Document() *document.Document {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.hist.Document()
}

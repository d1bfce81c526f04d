// Package history implements linear undo/redo over whole-shape edits.
//
// An edit either adds a shape at the top of the document or removes the
// shape at some index. Edits made through the history are kept on a done
// stack; shapes already in the document when it was handed over undo as if
// they had been added one by one. A new edit after an undo discards the
// undone stack; the decision is made by comparing an explicit edit sequence
// number with the one recorded at the last undo/redo, never by comparing
// shape counts.
package history

import (
	"github.com/inamate/vecpad/internal/document"
	"github.com/inamate/vecpad/internal/shape"
)

type editKind int

const (
	editAdd editKind = iota
	editRemove
)

// edit records enough to apply or revert one change.
type edit struct {
	kind  editKind
	index int
	shape shape.Shape
}

// History is not safe for concurrent use.
type History struct {
	doc    *document.Document
	done   []edit
	undone []edit

	// seq advances on every edit; mark is seq as of the last undo/redo.
	seq  uint64
	mark uint64
}

// New returns a history over doc, with nothing to redo.
func New(doc *document.Document) *History {
	return &History{doc: doc}
}

// Document returns the live document.
func (h *History) Document() *document.Document { return h.doc }

// Commit appends s to the document as a new edit.
func (h *History) Commit(s shape.Shape) {
	h.record(edit{kind: editAdd, index: h.doc.Len(), shape: s})
	h.doc.Add(s)
}

// Remove deletes the shape at index i as a new edit and returns it, or nil
// when i is out of range.
func (h *History) Remove(i int) shape.Shape {
	s := h.doc.RemoveAt(i)
	if s == nil {
		return nil
	}
	h.record(edit{kind: editRemove, index: i, shape: s})
	return s
}

func (h *History) record(e edit) {
	h.done = append(h.done, e)
	h.seq++
	if h.seq > h.mark {
		h.undone = nil
	}
}

// Undo reverts the most recent edit. With no recorded edits left it removes
// the topmost shape. It reports whether anything changed.
func (h *History) Undo() bool {
	var e edit
	if n := len(h.done); n > 0 {
		e = h.done[n-1]
		h.done[n-1] = edit{}
		h.done = h.done[:n-1]
	} else {
		if h.doc.IsEmpty() {
			return false
		}
		e = edit{kind: editAdd, index: h.doc.Len() - 1, shape: h.doc.At(h.doc.Len() - 1)}
	}
	h.revert(e)
	h.undone = append(h.undone, e)
	h.mark = h.seq
	return true
}

// Redo reapplies the most recently undone edit. It reports whether anything
// changed.
func (h *History) Redo() bool {
	n := len(h.undone)
	if n == 0 {
		return false
	}
	e := h.undone[n-1]
	h.undone[n-1] = edit{}
	h.undone = h.undone[:n-1]
	h.apply(e)
	h.done = append(h.done, e)
	h.mark = h.seq
	return true
}

func (h *History) apply(e edit) {
	switch e.kind {
	case editAdd:
		h.doc.Insert(e.index, e.shape)
	case editRemove:
		h.doc.RemoveAt(e.index)
	}
}

func (h *History) revert(e edit) {
	switch e.kind {
	case editAdd:
		h.doc.RemoveAt(e.index)
	case editRemove:
		h.doc.Insert(e.index, e.shape)
	}
}

func (h *History) CanUndo() bool { return len(h.done) > 0 || !h.doc.IsEmpty() }

func (h *History) CanRedo() bool { return len(h.undone) > 0 }

// UndoDepth returns the number of edits waiting to be redone.
func (h *History) UndoDepth() int { return len(h.undone) }

// Seq returns the number of edits made through this history.
func (h *History) Seq() uint64 { return h.seq }

// Reset swaps in doc and forgets both stacks. The sequence number keeps
// counting so observers never see it move backwards.
func (h *History) Reset(doc *document.Document) {
	h.doc = doc
	h.done = nil
	h.undone = nil
	h.mark = h.seq
}

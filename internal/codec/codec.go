// Package codec reads and writes the binary drawing format.
//
// Layout (little-endian, format version 1, no header):
//
//	int32 shapeCount
//	shapeCount times: int32 tag, payload
//
// Payloads are written by the shapes themselves; tags are shape.Kind values.
package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/inamate/vecpad/internal/document"
	"github.com/inamate/vecpad/internal/shape"
)

// Version is the format version written by this package.
const Version = 1

// ErrFormat matches every *FormatError.
var ErrFormat = errors.New("invalid drawing format")

// FormatError describes why a stream could not be decoded.
type FormatError struct {
	Index  int   // shape index being decoded, -1 for the header
	Tag    int32 // tag read for that shape, if any
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("drawing format: header: %s", e.Reason)
	}
	return fmt.Sprintf("drawing format: shape %d (tag %d): %s", e.Index, e.Tag, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

func formatError(index int, tag int32, err error) *FormatError {
	fe := &FormatError{Index: index, Tag: tag, Err: err}
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		fe.Reason = "truncated stream"
		fe.Err = io.ErrUnexpectedEOF
	case errors.Is(err, shape.ErrNegativeCount):
		fe.Reason = "negative count"
	case errors.Is(err, shape.ErrUnknownKind):
		fe.Reason = "unknown tag"
	default:
		fe.Reason = err.Error()
	}
	return fe
}

// Save writes doc to w.
func Save(w io.Writer, doc *document.Document) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, int32(doc.Len())); err != nil {
		return fmt.Errorf("write shape count: %w", err)
	}
	for i, s := range doc.All() {
		if err := writeShape(bw, s); err != nil {
			return fmt.Errorf("write shape %d: %w", i, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush drawing: %w", err)
	}
	return nil
}

// Load decodes a whole document from r. On error no document is returned.
// Read failures that are not framing problems are returned wrapped, not as
// a *FormatError.
func Load(r io.Reader) (*document.Document, error) {
	br := bufio.NewReader(r)

	var count int32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		if isFraming(err) {
			return nil, formatError(-1, 0, err)
		}
		return nil, fmt.Errorf("read shape count: %w", err)
	}
	if count < 0 {
		return nil, formatError(-1, 0, shape.ErrNegativeCount)
	}

	doc := document.New()
	for i := range int(count) {
		s, err := readShape(br, i)
		if err != nil {
			return nil, err
		}
		doc.Add(s)
	}
	return doc, nil
}

func isFraming(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, shape.ErrNegativeCount) || errors.Is(err, shape.ErrUnknownKind)
}

func wrapRead(index int, tag int32, err error) error {
	if isFraming(err) {
		return formatError(index, tag, err)
	}
	return fmt.Errorf("read shape %d: %w", index, err)
}

func writeShape(w io.Writer, s shape.Shape) error {
	if err := binary.Write(w, binary.LittleEndian, int32(s.Kind())); err != nil {
		return err
	}
	return s.Save(w)
}

func readShape(r io.Reader, index int) (shape.Shape, error) {
	var tag int32
	if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
		return nil, wrapRead(index, 0, err)
	}
	s, err := shape.Zero(shape.Kind(tag))
	if err != nil {
		return nil, formatError(index, tag, err)
	}
	if err := s.Open(r); err != nil {
		return nil, wrapRead(index, tag, err)
	}
	return s, nil
}

// EncodeShape frames a single shape (tag and payload).
func EncodeShape(s shape.Shape) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeShape(&buf, s); err != nil {
		return nil, fmt.Errorf("encode %v: %w", s.Kind(), err)
	}
	return buf.Bytes(), nil
}

// DecodeShape parses a single framed shape. Trailing bytes are a format
// error.
func DecodeShape(data []byte) (shape.Shape, error) {
	r := bytes.NewReader(data)
	s, err := readShape(r, 0)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, &FormatError{Index: 0, Tag: int32(s.Kind()), Reason: fmt.Sprintf("%d trailing bytes", r.Len())}
	}
	return s, nil
}

// Package drawing serves stored drawings over HTTP: CRUD on the binary
// format plus read-only views (draw commands, hit tests) computed by the
// editor engine.
package drawing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inamate/vecpad/internal/codec"
	"github.com/inamate/vecpad/internal/collab"
	"github.com/inamate/vecpad/internal/document"
	"github.com/inamate/vecpad/internal/engine"
	"github.com/inamate/vecpad/internal/geom"
	"github.com/inamate/vecpad/internal/render"
	"github.com/inamate/vecpad/internal/store"
	"github.com/inamate/vecpad/internal/typeid"
)

var (
	ErrNotFound    = errors.New("drawing not found")
	ErrInvalidData = errors.New("invalid drawing data")
	ErrInvalidSize = errors.New("invalid view size")
	ErrInUse       = errors.New("drawing is open for live editing")
)

const maxViewSize = 8192

// Guard serializes store writes with live editing sessions. The collab hub
// implements it.
type Guard interface {
	Exclusive(ctx context.Context, drawingID string, fn func() error) error
}

type Service struct {
	store store.Store
	opts  engine.Options
	guard Guard
}

func NewService(st store.Store, opts engine.Options) *Service {
	return &Service{store: st, opts: opts}
}

// SetGuard makes Replace and Delete refuse drawings that g reports as open.
func (s *Service) SetGuard(g Guard) { s.guard = g }

func (s *Service) exclusive(ctx context.Context, id string, fn func() error) error {
	if s.guard == nil {
		return fn()
	}
	err := s.guard.Exclusive(ctx, id, fn)
	if errors.Is(err, collab.ErrRoomOpen) {
		return fmt.Errorf("%w: %s", ErrInUse, id)
	}
	return err
}

// Info describes a drawing and its decoded contents.
type Info struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Shapes    int         `json:"shapes"`
	Bound     *geom.Bound `json:"bound,omitempty"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func newInfo(d *store.Drawing, doc *document.Document) *Info {
	info := &Info{ID: d.ID, Name: d.Name, Shapes: doc.Len(), UpdatedAt: d.UpdatedAt}
	if b := doc.Bound(); !b.IsEmpty() {
		info.Bound = &b
	}
	return info
}

// Create stores a new drawing. A nil doc stores an empty drawing.
func (s *Service) Create(ctx context.Context, name string, doc *document.Document) (*Info, error) {
	if doc == nil {
		doc = document.New()
	}
	data, err := encode(doc)
	if err != nil {
		return nil, err
	}

	d := &store.Drawing{ID: typeid.NewDrawingID(), Name: name, Data: data}
	if err := s.store.Put(ctx, d); err != nil {
		return nil, fmt.Errorf("create drawing: %w", err)
	}
	return newInfo(d, doc), nil
}

func (s *Service) List(ctx context.Context) ([]store.Summary, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []store.Summary{}
	}
	return list, nil
}

// Get returns the stored drawing with its raw bytes.
func (s *Service) Get(ctx context.Context, id string) (*store.Drawing, error) {
	if err := typeid.Validate(id, typeid.PrefixDrawing); err != nil {
		return nil, ErrNotFound
	}
	d, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get drawing: %w", err)
	}
	return d, nil
}

// Load fetches and decodes a drawing.
func (s *Service) Load(ctx context.Context, id string) (*document.Document, *store.Drawing, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	doc, err := codec.Load(bytes.NewReader(d.Data))
	if err != nil {
		return nil, nil, fmt.Errorf("decode drawing %s: %w", id, err)
	}
	return doc, d, nil
}

// Info decodes a drawing and summarizes it.
func (s *Service) Info(ctx context.Context, id string) (*Info, error) {
	doc, d, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return newInfo(d, doc), nil
}

// Replace validates data as a drawing file and stores it under id. An
// empty name keeps the existing one.
func (s *Service) Replace(ctx context.Context, id, name string, data []byte) (*Info, error) {
	doc, err := codec.Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = existing.Name
	}

	d := &store.Drawing{ID: id, Name: name, Data: data}
	err = s.exclusive(ctx, id, func() error {
		if err := s.store.Put(ctx, d); err != nil {
			return fmt.Errorf("replace drawing: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newInfo(d, doc), nil
}

// Save encodes doc over an existing drawing, keeping its name.
func (s *Service) Save(ctx context.Context, id string, doc *document.Document) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	data, err := encode(doc)
	if err != nil {
		return err
	}
	existing.Data = data
	if err := s.store.Put(ctx, existing); err != nil {
		return fmt.Errorf("save drawing: %w", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := typeid.Validate(id, typeid.PrefixDrawing); err != nil {
		return ErrNotFound
	}
	return s.exclusive(ctx, id, func() error {
		if err := s.store.Delete(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("delete drawing: %w", err)
		}
		return nil
	})
}

// Engine loads a drawing into a fresh engine fitted to a w x h view.
func (s *Service) Engine(ctx context.Context, id string, w, h int) (*engine.Engine, error) {
	if w <= 0 || h <= 0 || w > maxViewSize || h > maxViewSize {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	doc, _, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	eng := engine.NewEngine(float64(w), float64(h), s.opts)
	eng.LoadDocument(doc)
	return eng, nil
}

// Commands returns the draw commands for a drawing fitted to a w x h view.
func (s *Service) Commands(ctx context.Context, id string, w, h int) ([]render.DrawCommand, error) {
	eng, err := s.Engine(ctx, id, w, h)
	if err != nil {
		return nil, err
	}
	return eng.RenderCommands(), nil
}

// HitTest returns the index of the topmost shape at the model point p, or
// -1 when nothing is hit.
func (s *Service) HitTest(ctx context.Context, id string, p geom.Point, tol float64) (int, error) {
	doc, _, err := s.Load(ctx, id)
	if err != nil {
		return -1, err
	}
	if tol <= 0 {
		tol = s.opts.HitTolerance
	}
	return doc.HitTest(p, tol), nil
}

func encode(doc *document.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := codec.Save(&buf, doc); err != nil {
		return nil, fmt.Errorf("encode drawing: %w", err)
	}
	return buf.Bytes(), nil
}

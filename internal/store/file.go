package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

const (
	dataExt = ".bin"
	metaExt = ".json"
)

type fileMeta struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FileStore keeps each drawing as <dir>/<id>.bin with a <id>.json sidecar
// holding its name.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	slog.Info("using file store", "dir", dir)
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id, ext string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("invalid drawing id %q: %w", id, ErrNotFound)
	}
	return filepath.Join(s.dir, id+ext), nil
}

func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}

	var out []Summary
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, dataExt) || strings.HasPrefix(name, ".") {
			continue
		}
		id := strings.TrimSuffix(name, dataExt)
		info, err := e.Info()
		if err != nil {
			continue
		}
		meta := s.readMeta(id)
		if meta.UpdatedAt.IsZero() {
			meta.UpdatedAt = info.ModTime().UTC()
		}
		out = append(out, Summary{ID: id, Name: meta.Name, Size: int(info.Size()), UpdatedAt: meta.UpdatedAt})
	}
	slices.SortFunc(out, func(a, b Summary) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return out, nil
}

func (s *FileStore) readMeta(id string) fileMeta {
	var meta fileMeta
	p, err := s.path(id, metaExt)
	if err != nil {
		return meta
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return meta
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		slog.Warn("ignoring corrupt drawing metadata", "id", id, "error", err)
	}
	return meta
}

func (s *FileStore) Get(ctx context.Context, id string) (*Drawing, error) {
	p, err := s.path(id, dataExt)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read drawing %s: %w", id, err)
	}
	meta := s.readMeta(id)
	return &Drawing{ID: id, Name: meta.Name, Data: data, UpdatedAt: meta.UpdatedAt}, nil
}

func (s *FileStore) Put(ctx context.Context, d *Drawing) error {
	dp, err := s.path(d.ID, dataExt)
	if err != nil {
		return err
	}
	mp, _ := s.path(d.ID, metaExt)

	d.UpdatedAt = time.Now().UTC()
	meta, err := json.Marshal(fileMeta{Name: d.Name, UpdatedAt: d.UpdatedAt})
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := WriteFileAtomic(dp, func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(d.Data))
		return err
	}); err != nil {
		return fmt.Errorf("write drawing %s: %w", d.ID, err)
	}
	if err := WriteFileAtomic(mp, func(w io.Writer) error {
		_, err := w.Write(meta)
		return err
	}); err != nil {
		return fmt.Errorf("write metadata %s: %w", d.ID, err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	dp, err := s.path(id, dataExt)
	if err != nil {
		return err
	}
	mp, _ := s.path(id, metaExt)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(dp); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete drawing %s: %w", id, err)
	}
	if err := os.Remove(mp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to remove drawing metadata", "id", id, "error", err)
	}
	return nil
}

func (s *FileStore) Close() {}

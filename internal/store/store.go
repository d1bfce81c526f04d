// Package store persists encoded drawings by ID, either as files under a
// data directory or as rows in PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

var ErrNotFound = errors.New("drawing not found")

// Drawing is a stored drawing. Data holds the binary drawing format.
type Drawing struct {
	ID        string
	Name      string
	Data      []byte
	UpdatedAt time.Time
}

// Summary describes a drawing without its data.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is implemented by FileStore and PGStore.
type Store interface {
	List(ctx context.Context) ([]Summary, error)
	Get(ctx context.Context, id string) (*Drawing, error)
	// Put creates or replaces a drawing and stamps UpdatedAt.
	Put(ctx context.Context, d *Drawing) error
	Delete(ctx context.Context, id string) error
	Close()
}

// WriteFileAtomic writes path through a temporary file in the same
// directory and renames it into place, so readers never see a partial file.
func WriteFileAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

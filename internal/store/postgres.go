package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS drawings (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	data       BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PGStore keeps drawings in the drawings table.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects, pings and makes sure the table exists.
func NewPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	slog.Info("connected to database")
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, octet_length(data), updated_at FROM drawings ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Summary, error) {
		var sum Summary
		err := row.Scan(&sum.ID, &sum.Name, &sum.Size, &sum.UpdatedAt)
		return sum, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan drawings: %w", err)
	}
	return out, nil
}

func (s *PGStore) Get(ctx context.Context, id string) (*Drawing, error) {
	d := &Drawing{ID: id}
	err := s.pool.QueryRow(ctx,
		`SELECT name, data, updated_at FROM drawings WHERE id = $1`, id,
	).Scan(&d.Name, &d.Data, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get drawing: %w", err)
	}
	return d, nil
}

func (s *PGStore) Put(ctx context.Context, d *Drawing) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO drawings (id, name, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, data = EXCLUDED.data, updated_at = now()
		RETURNING updated_at`,
		d.ID, d.Name, d.Data,
	).Scan(&d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put drawing: %w", err)
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM drawings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete drawing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Close() { s.pool.Close() }

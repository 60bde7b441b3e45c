package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sentinela/pkg/platform/sentinel"
)

// PostgresBackend stores each snapshot as a single row in a key/blob table.
// Like the other backends it holds full-collection blobs; there is no
// row-per-entity schema because the repositories own all indexing in memory.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend connects, verifies the connection, and ensures the
// snapshots table exists.
func NewPostgresBackend(ctx context.Context, url string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	b := &PostgresBackend{pool: pool}
	if err := b.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return b, nil
}

// NewPostgresBackendFromPool wraps an existing pool (used by tests).
func NewPostgresBackendFromPool(ctx context.Context, pool *pgxpool.Pool) (*PostgresBackend, error) {
	b := &PostgresBackend{pool: pool}
	if err := b.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *PostgresBackend) ensureSchema(ctx context.Context) error {
	_, err := b.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			key        text PRIMARY KEY,
			blob       bytea NOT NULL,
			updated_at timestamptz NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure snapshots table: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Put(ctx context.Context, key string, blob []byte) error {
	_, err := b.pool.Exec(ctx, `
		INSERT INTO snapshots (key, blob, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET blob = EXCLUDED.blob, updated_at = EXCLUDED.updated_at`,
		key, blob, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", key, err)
	}
	return nil
}

func (b *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var blob []byte
	err := b.pool.QueryRow(ctx, `SELECT blob FROM snapshots WHERE key = $1`, key).Scan(&blob)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("snapshot %s: %w", key, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("select snapshot %s: %w", key, err)
	}
	return blob, nil
}

func (b *PostgresBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.pool.Exec(ctx, `DELETE FROM snapshots WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying pool.
func (b *PostgresBackend) Close() {
	b.pool.Close()
}

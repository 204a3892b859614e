// Package postgres provides a PostgreSQL-backed store implementation for
// engine payloads, stored in a single key/value table.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/lib/pq" // postgres driver

	"github.com/mcpadm/mcpadm/pkg/store"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS engine_payloads (
	namespace  TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store persists namespaces as rows of the engine_payloads table.
type Store struct {
	db *sql.DB
}

// NewStore opens a connection and ensures the payload table exists.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Load(ctx context.Context, namespace string) (string, error) {
	var payload string

	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM engine_payloads WHERE namespace = $1`, namespace,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", store.NewStoreError("Load", namespace, store.ErrStorageUnavailable)
	}

	return payload, nil
}

func (s *Store) Save(ctx context.Context, namespace string, payload string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO engine_payloads (namespace, payload, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (namespace) DO UPDATE SET payload = $2, updated_at = now()`,
		namespace, payload,
	)
	if err != nil {
		return store.NewStoreError("Save", namespace, store.ErrStorageUnavailable)
	}

	return nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

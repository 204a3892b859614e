// Package redis provides a Redis-backed store implementation for engine
// payloads. Each namespace maps to a single Redis string key.
package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mcpadm/mcpadm/pkg/store"
)

const keyPrefix = "mcpadm:"

// Store persists each namespace under the key "mcpadm:<namespace>".
type Store struct {
	client *goredis.Client
}

// NewStore creates a Redis store from a connection URL
// (redis://[user:pass@]host:port/db).
func NewStore(url string) (*Store, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	return &Store{client: goredis.NewClient(opts)}, nil
}

func (s *Store) Load(ctx context.Context, namespace string) (string, error) {
	payload, err := s.client.Get(ctx, keyPrefix+namespace).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", nil
		}

		return "", store.NewStoreError("Load", namespace, store.ErrStorageUnavailable)
	}

	return payload, nil
}

func (s *Store) Save(ctx context.Context, namespace string, payload string) error {
	if err := s.client.Set(ctx, keyPrefix+namespace, payload, 0).Err(); err != nil {
		return store.NewStoreError("Save", namespace, store.ErrStorageUnavailable)
	}

	return nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close(_ context.Context) error {
	return s.client.Close()
}

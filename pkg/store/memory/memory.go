// Package memory provides the default in-memory store implementation. It is
// ideal for unit tests and ephemeral sessions as it requires no external
// dependencies.
package memory

import (
	"context"
	"sync"
)

// Store keeps payloads in a process-local map.
type Store struct {
	mu       sync.RWMutex
	payloads map[string]string
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		payloads: make(map[string]string),
	}
}

func (s *Store) Load(_ context.Context, namespace string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.payloads[namespace], nil
}

func (s *Store) Save(_ context.Context, namespace string, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.payloads[namespace] = payload

	return nil
}

func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}

// Package file provides file-based store implementation for engine payloads.
// Each namespace is one JSON file under the configured root directory.
package file

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mcpadm/mcpadm/pkg/store"
)

// Store persists each namespace as <root>/<namespace>.json.
type Store struct {
	root string
}

// NewStore creates a file store rooted at the given directory. A "file://"
// prefix on the root is stripped.
func NewStore(root string) *Store {
	return &Store{root: strings.Replace(root, "file://", "", 1)}
}

func (s *Store) Load(_ context.Context, namespace string) (string, error) {
	filePath := filepath.Clean(path.Join(s.root, namespace+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}

		return "", store.NewStoreError("Load", namespace, store.ErrStorageUnavailable)
	}

	return string(body), nil
}

func (s *Store) Save(_ context.Context, namespace string, payload string) error {
	if err := os.MkdirAll(s.root, 0750); err != nil {
		return store.NewStoreError("Save", namespace, store.ErrStorageUnavailable)
	}

	filePath := path.Join(s.root, namespace+".json")

	if err := os.WriteFile(filePath, []byte(payload), 0600); err != nil {
		return store.NewStoreError("Save", namespace, store.ErrStorageUnavailable)
	}

	return nil
}

// HealthCheck verifies the root directory exists.
func (s *Store) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file-based storage there is
// nothing to clean up.
func (s *Store) Close(_ context.Context) error {
	return nil
}

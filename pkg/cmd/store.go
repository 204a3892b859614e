// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"context"
	"strings"

	"github.com/mcpadm/mcpadm/pkg/store"
	"github.com/mcpadm/mcpadm/pkg/store/file"
	"github.com/mcpadm/mcpadm/pkg/store/memory"
	"github.com/mcpadm/mcpadm/pkg/store/postgres"
	"github.com/mcpadm/mcpadm/pkg/store/redis"
)

var supportedStoreProviders = []string{"memory", "file", "redis", "postgres"}

// NewStore builds a store from a database URL. The scheme selects the
// adapter; unrecognized schemes fall back to the file store.
func NewStore(ctx context.Context, databaseURL string) (store.Store, error) {
	switch parseStoreProvider(databaseURL) {
	case "memory":
		return memory.NewStore(), nil
	case "redis":
		return redis.NewStore(databaseURL)
	case "postgres":
		return postgres.NewStore(ctx, databaseURL)
	default:
		return file.NewStore(databaseURL), nil
	}
}

func parseStoreProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	for _, supported := range supportedStoreProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}

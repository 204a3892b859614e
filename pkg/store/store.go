// Package store provides the persistence port for the configuration engine.
// Payloads are opaque JSON produced by the template registry and the version
// manager; implementations are responsible only for durability.
package store

import "context"

// Namespaces used by the engine.
const (
	NamespaceTemplates = "templates"
	NamespaceHistory   = "history"
)

// Store is a namespaced key/value port with string payloads.
type Store interface {
	// Load returns the payload for a namespace, or "" when nothing has been
	// stored yet.
	Load(ctx context.Context, namespace string) (string, error)

	// Save replaces the payload for a namespace.
	Save(ctx context.Context, namespace string, payload string) error

	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

// Package history maintains the append-only per-configuration version
// history: monotone version numbers, change summaries, restore, and
// import/export.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mcpadm/mcpadm/pkg/models"
	"github.com/mcpadm/mcpadm/pkg/store"
)

// DefaultRetention is how many most-recent versions are kept per config id.
const DefaultRetention = 20

// Standard history error types.
var (
	// ErrInvalidInput indicates a missing required argument.
	ErrInvalidInput = errors.New("invalid input")

	// ErrVersionNotFound indicates a version was not found by the given number.
	ErrVersionNotFound = errors.New("version not found")
)

// Manager owns the per-config version history map. Reads return deep clones;
// operations on the same config id must be serialised by the caller. The
// internal lock only guards map access for concurrent readers on distinct ids.
type Manager struct {
	logger    *slog.Logger
	store     store.Store
	retention int

	mu        sync.RWMutex
	histories map[string][]*models.Version
}

// Option configures a Manager at construction.
type Option func(*Manager)

// WithRetention overrides the per-id version retention cap.
func WithRetention(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retention = n
		}
	}
}

// NewManager loads existing history from the store. A parse error leaves
// history empty and is logged once.
func NewManager(ctx context.Context, logger *slog.Logger, st store.Store, opts ...Option) *Manager {
	m := &Manager{
		logger:    logger.With("module", "history"),
		store:     st,
		retention: DefaultRetention,
		histories: make(map[string][]*models.Version),
	}

	for _, opt := range opts {
		opt(m)
	}

	payload, err := st.Load(ctx, store.NamespaceHistory)
	if err != nil {
		m.logger.Error("Failed to load version history", "error", err)

		return m
	}

	if payload == "" {
		return m
	}

	if err := json.Unmarshal([]byte(payload), &m.histories); err != nil {
		m.logger.Error("Failed to parse version history payload", "error", err)
		m.histories = make(map[string][]*models.Version)
	}

	return m
}

// AddOption tunes a single AddVersion call.
type AddOption func(*models.Version)

// WithAuthor records who produced the version. Defaults to "system".
func WithAuthor(author string) AddOption {
	return func(v *models.Version) {
		v.Author = author
	}
}

// AddVersion appends a new version for a config id. Appending content
// identical to the current head returns the head unchanged. On persistence
// failure the in-memory history stays updated and the new version is returned
// together with the storage error.
func (m *Manager) AddVersion(ctx context.Context, configID string, cfg models.ConfigDocument, comment string, opts ...AddOption) (*models.Version, error) {
	if configID == "" || cfg == nil {
		return nil, fmt.Errorf("%w: config id and config are required", ErrInvalidInput)
	}

	m.mu.Lock()

	list := m.histories[configID]

	var latest *models.Version
	if len(list) > 0 {
		latest = list[len(list)-1]
	}

	if latest != nil && models.CanonicalJSON(latest.Config) == models.CanonicalJSON(cfg) {
		head := latest.Clone()
		m.mu.Unlock()

		return head, nil
	}

	next := 1

	var previous models.ConfigDocument

	if latest != nil {
		next = latest.Version + 1
		previous = latest.Config
	}

	version := &models.Version{
		Version:   next,
		Timestamp: time.Now().UnixMilli(),
		Author:    "system",
		Comment:   comment,
		Config:    cfg.Clone(),
		Changes:   computeChanges(previous, cfg),
	}

	for _, opt := range opts {
		opt(version)
	}

	list = append(list, version)

	// Trimming drops the oldest entries; survivors keep their numbers.
	if len(list) > m.retention {
		list = list[len(list)-m.retention:]
	}

	m.histories[configID] = list
	m.mu.Unlock()

	if err := m.persist(ctx); err != nil {
		return version.Clone(), err
	}

	m.logger.Debug("Version added", "config_id", configID, "version", version.Version)

	return version.Clone(), nil
}

// ConfigIDs returns the config ids that have history, sorted.
func (m *Manager) ConfigIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.histories))
	for id := range m.histories {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// History returns a deep clone of the version list for a config id. Unknown
// ids yield an empty list.
func (m *Manager) History(configID string) []*models.Version {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.histories[configID]

	out := make([]*models.Version, len(list))
	for i, version := range list {
		out[i] = version.Clone()
	}

	return out
}

// Get returns one version by number, or nil when absent.
func (m *Manager) Get(configID string, versionNumber int) *models.Version {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, version := range m.histories[configID] {
		if version.Version == versionNumber {
			return version.Clone()
		}
	}

	return nil
}

// Latest returns the newest version for a config id, or nil when absent.
func (m *Manager) Latest(configID string) *models.Version {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.histories[configID]
	if len(list) == 0 {
		return nil
	}

	return list[len(list)-1].Clone()
}

// Restore appends a new version carrying the content of an older one. The
// restored version never overwrites history.
func (m *Manager) Restore(ctx context.Context, configID string, versionNumber int) (*models.Version, error) {
	target := m.Get(configID, versionNumber)
	if target == nil {
		return nil, fmt.Errorf("%w: version %d of config %s", ErrVersionNotFound, versionNumber, configID)
	}

	comment := fmt.Sprintf("Restored from version %d (%s)",
		versionNumber, time.UnixMilli(target.Timestamp).UTC().Format(time.RFC3339))

	return m.AddVersion(ctx, configID, target.Config, comment)
}

// Export renders the full history of a config id as JSON.
func (m *Manager) Export(configID string) (string, error) {
	export := models.HistoryExport{
		ConfigID:   configID,
		ExportDate: time.Now().UTC().Format(time.RFC3339),
		Versions:   m.History(configID),
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Import replaces the history of the config id named in the payload. Payloads
// without configId and versions are rejected.
func (m *Manager) Import(ctx context.Context, payload string) error {
	var export models.HistoryExport
	if err := json.Unmarshal([]byte(payload), &export); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if export.ConfigID == "" || export.Versions == nil {
		return fmt.Errorf("%w: payload must carry configId and versions", ErrInvalidInput)
	}

	versions := make([]*models.Version, len(export.Versions))
	for i, version := range export.Versions {
		versions[i] = version.Clone()
	}

	m.mu.Lock()
	m.histories[export.ConfigID] = versions
	m.mu.Unlock()

	return m.persist(ctx)
}

// DeleteHistory removes all versions for a config id.
func (m *Manager) DeleteHistory(ctx context.Context, configID string) error {
	m.mu.Lock()
	delete(m.histories, configID)
	m.mu.Unlock()

	return m.persist(ctx)
}

// ClearAll removes every history.
func (m *Manager) ClearAll(ctx context.Context) error {
	m.mu.Lock()
	m.histories = make(map[string][]*models.Version)
	m.mu.Unlock()

	return m.persist(ctx)
}

func (m *Manager) persist(ctx context.Context) error {
	m.mu.RLock()
	data, err := json.MarshalIndent(m.histories, "", "  ")
	m.mu.RUnlock()

	if err != nil {
		return fmt.Errorf("failed to marshal version history: %w", err)
	}

	if err := m.store.Save(ctx, store.NamespaceHistory, string(data)); err != nil {
		m.logger.Error("Failed to persist version history", "error", err)

		return err
	}

	return nil
}

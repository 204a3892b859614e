// Package registry owns the set of configuration templates: the built-in
// definitions, user-created templates, and config generation from defaults.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mcpadm/mcpadm/pkg/models"
	"github.com/mcpadm/mcpadm/pkg/store"
)

// Registry exclusively owns the template map. Built-ins are held in a
// separate immutable map so reset remains possible after mutation. Every
// mutation persists eagerly; on persistence failure the in-memory change is
// retained and the next successful mutation persists the merged state.
type Registry struct {
	logger   *slog.Logger
	store    store.Store
	validate *validator.Validate

	mu        sync.RWMutex
	templates map[string]*models.Template
	builtins  map[string]*models.Template
}

// NewRegistry loads the template namespace from the store and seeds the
// built-in templates when it is absent or empty.
func NewRegistry(ctx context.Context, logger *slog.Logger, st store.Store) *Registry {
	r := &Registry{
		logger:    logger.With("module", "registry"),
		store:     st,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		templates: make(map[string]*models.Template),
		builtins:  builtinTemplates(),
	}

	payload, err := st.Load(ctx, store.NamespaceTemplates)
	if err != nil {
		r.logger.Error("Failed to load templates, seeding built-ins", "error", err)
	} else if payload != "" {
		if err := json.Unmarshal([]byte(payload), &r.templates); err != nil {
			r.logger.Error("Failed to parse templates payload, seeding built-ins", "error", err)
			r.templates = make(map[string]*models.Template)
		}
	}

	if len(r.templates) == 0 {
		for id, tpl := range r.builtins {
			r.templates[id] = tpl.Clone()
		}

		if err := r.persist(ctx); err != nil {
			r.logger.Error("Failed to persist seeded templates", "error", err)
		}

		r.logger.Info("Seeded built-in templates", "count", len(r.templates))
	}

	return r
}

// List returns deep clones of every template, sorted by id.
func (r *Registry) List() []*models.Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Template, 0, len(r.templates))
	for _, tpl := range r.templates {
		out = append(out, tpl.Clone())
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// Get returns a deep clone of one template.
func (r *Registry) Get(id string) (*models.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tpl, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}

	return tpl.Clone(), nil
}

// Create adds a new template. The id must be unused and id, name and
// serverType must be present.
func (r *Registry) Create(ctx context.Context, tpl *models.Template) error {
	if tpl == nil {
		return fmt.Errorf("%w: template is required", ErrInvalidTemplate)
	}

	if err := r.validate.Struct(tpl); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	r.mu.Lock()

	if _, exists := r.templates[tpl.ID]; exists {
		r.mu.Unlock()

		return fmt.Errorf("%w: %s", ErrDuplicateTemplate, tpl.ID)
	}

	r.templates[tpl.ID] = tpl.Clone()
	r.mu.Unlock()

	return r.persist(ctx)
}

// Update replaces a template wholesale.
func (r *Registry) Update(ctx context.Context, id string, tpl *models.Template) error {
	if tpl == nil {
		return fmt.Errorf("%w: template is required", ErrInvalidTemplate)
	}

	if err := r.validate.Struct(tpl); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	r.mu.Lock()

	if _, exists := r.templates[id]; !exists {
		r.mu.Unlock()

		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}

	replacement := tpl.Clone()
	replacement.ID = id
	r.templates[id] = replacement
	r.mu.Unlock()

	return r.persist(ctx)
}

// Delete removes a user template. Built-ins may be reset but never deleted.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()

	if _, exists := r.templates[id]; !exists {
		r.mu.Unlock()

		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}

	if _, builtin := r.builtins[id]; builtin {
		r.mu.Unlock()

		return fmt.Errorf("%w: %s", ErrBuiltInProtected, id)
	}

	delete(r.templates, id)
	r.mu.Unlock()

	return r.persist(ctx)
}

// Reset restores a single built-in template to its shipped definition.
func (r *Registry) Reset(ctx context.Context, id string) error {
	r.mu.Lock()

	builtin, ok := r.builtins[id]
	if !ok {
		r.mu.Unlock()

		return fmt.Errorf("%w: %s", ErrNoBuiltIn, id)
	}

	r.templates[id] = builtin.Clone()
	r.mu.Unlock()

	return r.persist(ctx)
}

// ResetAll replaces the registry with the shipped built-in set.
func (r *Registry) ResetAll(ctx context.Context) error {
	r.mu.Lock()

	r.templates = make(map[string]*models.Template, len(r.builtins))
	for id, builtin := range r.builtins {
		r.templates[id] = builtin.Clone()
	}

	r.mu.Unlock()

	return r.persist(ctx)
}

// GenerateConfig merges a template's defaults with overrides (overrides win)
// and attaches the reserved metadata keys. It does not validate; callers that
// require validity must invoke the validator.
func (r *Registry) GenerateConfig(id string, overrides models.ConfigDocument) (models.ConfigDocument, error) {
	tpl, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	doc := tpl.DefaultConfig.Clone()
	if doc == nil {
		doc = models.ConfigDocument{}
	}

	for key, value := range overrides {
		doc[key] = value
	}

	doc[models.ReservedTemplate] = id
	doc[models.ReservedGenerated] = time.Now().UnixMilli()
	doc[models.ReservedVersion] = tpl.Version

	return doc, nil
}

func (r *Registry) persist(ctx context.Context) error {
	r.mu.RLock()
	data, err := json.MarshalIndent(r.templates, "", "  ")
	r.mu.RUnlock()

	if err != nil {
		return fmt.Errorf("failed to marshal templates: %w", err)
	}

	if err := r.store.Save(ctx, store.NamespaceTemplates, string(data)); err != nil {
		r.logger.Error("Failed to persist templates", "error", err)

		return err
	}

	return nil
}

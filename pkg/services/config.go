// Package services composes the configuration engine behind one facade used
// by the CLI and the admin API: template registry, validator, auto-fixer and
// version history over a shared store, with lifecycle events published on an
// optional event bus.
package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/mcpadm/mcpadm/pkg/eventbus"
	"github.com/mcpadm/mcpadm/pkg/events"
	"github.com/mcpadm/mcpadm/pkg/history"
	"github.com/mcpadm/mcpadm/pkg/models"
	"github.com/mcpadm/mcpadm/pkg/otelhelper"
	"github.com/mcpadm/mcpadm/pkg/registry"
	"github.com/mcpadm/mcpadm/pkg/store"
	"github.com/mcpadm/mcpadm/pkg/validator"
)

// ConfigService is the engine facade. All reads return deep clones.
type ConfigService struct {
	logger    *slog.Logger
	store     store.Store
	registry  *registry.Registry
	validator *validator.Validator
	history   *history.Manager
	bus       eventbus.EventPublisher
	tracer    trace.Tracer

	build buildOptions
}

// Option configures the service at construction.
type Option func(*ConfigService)

// WithEventBus publishes lifecycle events to the given bus.
func WithEventBus(bus eventbus.EventPublisher) Option {
	return func(s *ConfigService) {
		s.bus = bus
	}
}

// WithTracer wraps mutating operations in spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *ConfigService) {
		s.tracer = tracer
	}
}

type buildOptions struct {
	historyOpts   []history.Option
	validatorOpts []validator.Option
}

// WithRetention caps versions kept per config id.
func WithRetention(n int) Option {
	return func(s *ConfigService) {
		s.build.historyOpts = append(s.build.historyOpts, history.WithRetention(n))
	}
}

// WithCustomValidator registers an extra named custom validator.
func WithCustomValidator(name string, fn validator.CustomFunc) Option {
	return func(s *ConfigService) {
		s.build.validatorOpts = append(s.build.validatorOpts, validator.WithCustomValidator(name, fn))
	}
}

// NewConfigService builds the engine over a store.
func NewConfigService(ctx context.Context, logger *slog.Logger, st store.Store, opts ...Option) *ConfigService {
	s := &ConfigService{
		logger: logger.With("module", "config-service"),
		store:  st,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registry = registry.NewRegistry(ctx, logger, st)
	s.validator = validator.NewValidator(logger, s.registry, s.build.validatorOpts...)
	s.history = history.NewManager(ctx, logger, st, s.build.historyOpts...)

	return s
}

// Templates returns every template.
func (s *ConfigService) Templates() []*models.Template {
	return s.registry.List()
}

// Template returns one template by id.
func (s *ConfigService) Template(id string) (*models.Template, error) {
	return s.registry.Get(id)
}

// CreateTemplate registers a new template and announces it.
func (s *ConfigService) CreateTemplate(ctx context.Context, tpl *models.Template) error {
	if err := s.registry.Create(ctx, tpl); err != nil {
		return err
	}

	s.publishTemplateEvent(ctx, events.TemplateCreatedEvent, tpl.ID)

	return nil
}

// UpdateTemplate replaces a template wholesale.
func (s *ConfigService) UpdateTemplate(ctx context.Context, id string, tpl *models.Template) error {
	if err := s.registry.Update(ctx, id, tpl); err != nil {
		return err
	}

	s.publishTemplateEvent(ctx, events.TemplateUpdatedEvent, id)

	return nil
}

// DeleteTemplate removes a user template.
func (s *ConfigService) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.registry.Delete(ctx, id); err != nil {
		return err
	}

	s.publishTemplateEvent(ctx, events.TemplateDeletedEvent, id)

	return nil
}

// ResetTemplate restores one built-in.
func (s *ConfigService) ResetTemplate(ctx context.Context, id string) error {
	if err := s.registry.Reset(ctx, id); err != nil {
		return err
	}

	s.publishTemplateEvent(ctx, events.TemplateResetEvent, id)

	return nil
}

// ResetAllTemplates restores the full built-in set.
func (s *ConfigService) ResetAllTemplates(ctx context.Context) error {
	if err := s.registry.ResetAll(ctx); err != nil {
		return err
	}

	s.publishTemplateEvent(ctx, events.TemplateResetEvent, "")

	return nil
}

// GenerateConfig produces a document from a template's defaults plus
// overrides, and assigns a fresh _id when the overrides carry none.
func (s *ConfigService) GenerateConfig(id string, overrides models.ConfigDocument) (models.ConfigDocument, error) {
	doc, err := s.registry.GenerateConfig(id, overrides)
	if err != nil {
		return nil, err
	}

	if doc.ID() == "" {
		doc[models.ReservedID] = uuid.New().String()
	}

	return doc, nil
}

// Validate checks a document against its template's schema.
func (s *ConfigService) Validate(doc models.ConfigDocument, templateID string) *validator.Report {
	return s.validator.ValidateAgainstTemplate(doc, templateID, nil)
}

// ValidateAll validates a cohort together so cross-document checks can see
// peers.
func (s *ConfigService) ValidateAll(docs []models.ConfigDocument) *validator.CohortReport {
	return s.validator.ValidateAll(docs)
}

// AutoFix applies schema-guided corrections. Callers should re-validate.
func (s *ConfigService) AutoFix(doc models.ConfigDocument, templateID string) models.ConfigDocument {
	return s.validator.AutoFix(doc, templateID)
}

// SaveVersion appends a config version and announces it.
func (s *ConfigService) SaveVersion(ctx context.Context, configID string, cfg models.ConfigDocument, comment string, opts ...history.AddOption) (*models.Version, error) {
	ctx, span := s.startSpan(ctx, "SaveVersion",
		attribute.String(otelhelper.ConfigIDKey, configID))
	defer span.End()

	version, err := s.history.AddVersion(ctx, configID, cfg, comment, opts...)
	if err != nil {
		otelhelper.SetError(span, err)

		return version, err
	}

	s.publishVersionEvent(ctx, events.VersionAddedEvent, configID, version)

	return version, nil
}

// ConfigIDs returns every config id with version history.
func (s *ConfigService) ConfigIDs() []string {
	return s.history.ConfigIDs()
}

// History returns the full version list for a config id.
func (s *ConfigService) History(configID string) []*models.Version {
	return s.history.History(configID)
}

// Version returns one version by number, or nil.
func (s *ConfigService) Version(configID string, n int) *models.Version {
	return s.history.Get(configID, n)
}

// LatestVersion returns the newest version, or nil.
func (s *ConfigService) LatestVersion(configID string) *models.Version {
	return s.history.Latest(configID)
}

// RestoreVersion appends a new version carrying older content.
func (s *ConfigService) RestoreVersion(ctx context.Context, configID string, n int) (*models.Version, error) {
	ctx, span := s.startSpan(ctx, "RestoreVersion",
		attribute.String(otelhelper.ConfigIDKey, configID),
		attribute.Int(otelhelper.VersionKey, n))
	defer span.End()

	version, err := s.history.Restore(ctx, configID, n)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	s.publishVersionEvent(ctx, events.VersionRestoredEvent, configID, version)

	return version, nil
}

// CompareVersions computes the structured difference between two versions.
func (s *ConfigService) CompareVersions(configID string, from, to int) (*history.Comparison, error) {
	return s.history.Compare(configID, from, to)
}

// DiffVersions renders the difference between two versions as text.
func (s *ConfigService) DiffVersions(configID string, from, to int) (string, error) {
	return s.history.Diff(configID, from, to)
}

// ExportHistory renders a config's history as JSON.
func (s *ConfigService) ExportHistory(configID string) (string, error) {
	return s.history.Export(configID)
}

// ImportHistory replaces the history named in the payload.
func (s *ConfigService) ImportHistory(ctx context.Context, payload string) error {
	return s.history.Import(ctx, payload)
}

// DeleteHistory removes all versions for a config id.
func (s *ConfigService) DeleteHistory(ctx context.Context, configID string) error {
	if err := s.history.DeleteHistory(ctx, configID); err != nil {
		return err
	}

	s.publishHistoryCleared(ctx, configID)

	return nil
}

// ClearHistories removes every history.
func (s *ConfigService) ClearHistories(ctx context.Context) error {
	if err := s.history.ClearAll(ctx); err != nil {
		return err
	}

	s.publishHistoryCleared(ctx, "")

	return nil
}

// HealthCheck reports whether the persistence port is reachable.
func (s *ConfigService) HealthCheck(ctx context.Context) (string, bool) {
	if err := s.store.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

func (s *ConfigService) publishTemplateEvent(ctx context.Context, eventType events.EventType, templateID string) {
	if s.bus == nil {
		return
	}

	event := events.TemplateChanged{
		BaseEvent:  events.NewBaseEvent(eventType),
		TemplateID: templateID,
	}

	if err := s.bus.Publish(ctx, event.Key(), event); err != nil {
		s.logger.Error("Failed to publish template event", "event_type", eventType, "error", err)
	}
}

func (s *ConfigService) publishVersionEvent(ctx context.Context, eventType events.EventType, configID string, version *models.Version) {
	if s.bus == nil || version == nil {
		return
	}

	event := events.VersionAdded{
		BaseEvent: events.NewBaseEvent(eventType),
		ConfigID:  configID,
		Version:   version.Version,
		Comment:   version.Comment,
	}

	if err := s.bus.Publish(ctx, event.Key(), event); err != nil {
		s.logger.Error("Failed to publish version event", "event_type", eventType, "error", err)
	}
}

func (s *ConfigService) publishHistoryCleared(ctx context.Context, configID string) {
	if s.bus == nil {
		return
	}

	event := events.HistoryCleared{
		BaseEvent: events.NewBaseEvent(events.HistoryClearedEvent),
		ConfigID:  configID,
	}

	if err := s.bus.Publish(ctx, event.Key(), event); err != nil {
		s.logger.Error("Failed to publish history event", "error", err)
	}
}

// startSpan is a no-op when no tracer is configured.
func (s *ConfigService) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if s.tracer == nil {
		return noop.NewTracerProvider().Tracer("").Start(ctx, name)
	}

	return otelhelper.StartSpan(ctx, s.tracer, name, attrs...)
}

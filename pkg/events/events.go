// Package events defines event types and structures for configuration
// lifecycle notifications. Consumers (dashboards, audit sinks) subscribe via
// the event bus; the engine itself never depends on a subscriber.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic carries every configuration lifecycle event.
const Topic = "mcpadm.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Template lifecycle events.
	TemplateCreatedEvent EventType = "template.created"
	TemplateUpdatedEvent EventType = "template.updated"
	TemplateDeletedEvent EventType = "template.deleted"
	TemplateResetEvent   EventType = "template.reset"

	// Version history events.
	VersionAddedEvent    EventType = "config.version.added"
	VersionRestoredEvent EventType = "config.version.restored"
	HistoryClearedEvent  EventType = "config.history.cleared"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

type TemplateChanged struct {
	BaseEvent

	TemplateID string `json:"template_id"`
}

func (t TemplateChanged) GetType() EventType {
	return t.Type
}

// Key returns the partitioning key for the event.
func (t TemplateChanged) Key() string {
	return t.TemplateID
}

type VersionAdded struct {
	BaseEvent

	ConfigID string `json:"config_id"`
	Version  int    `json:"version"`
	Comment  string `json:"comment,omitempty"`
}

func (v VersionAdded) GetType() EventType {
	return v.Type
}

func (v VersionAdded) Key() string {
	return v.ConfigID
}

type HistoryCleared struct {
	BaseEvent

	ConfigID string `json:"config_id,omitempty"` // empty when all histories were cleared
}

func (h HistoryCleared) GetType() EventType {
	return HistoryClearedEvent
}

func (h HistoryCleared) Key() string {
	return h.ConfigID
}

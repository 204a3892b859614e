// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/google/uuid"

	"github.com/mcpadm/mcpadm/pkg/models"
)

// CreateTestTemplate creates a test template with default values that can be
// overridden.
func CreateTestTemplate(overrides ...func(*models.Template)) *models.Template {
	tpl := &models.Template{
		ID:          "test-server",
		Name:        "Test Server",
		Description: "Template used in tests",
		Version:     "1.0.0",
		ServerType:  "test-server",
		ConfigSchema: &models.Schema{
			Type: "object",
			Properties: map[string]*models.Schema{
				"port": {
					Type:    "integer",
					Minimum: models.Ptr(1.0),
					Maximum: models.Ptr(65535.0),
				},
				"host": {Type: "string"},
			},
			Required: []string{"port"},
		},
		DefaultConfig: models.ConfigDocument{
			"port": float64(8080),
			"host": "localhost",
		},
	}

	for _, override := range overrides {
		override(tpl)
	}

	return tpl
}

// WithTemplateID sets the template id and server type together.
func WithTemplateID(id string) func(*models.Template) {
	return func(t *models.Template) {
		t.ID = id
		t.ServerType = id
	}
}

// WithSchema replaces the template schema.
func WithSchema(schema *models.Schema) func(*models.Template) {
	return func(t *models.Template) {
		t.ConfigSchema = schema
	}
}

// WithDefaults replaces the template default configuration.
func WithDefaults(defaults models.ConfigDocument) func(*models.Template) {
	return func(t *models.Template) {
		t.DefaultConfig = defaults
	}
}

// CreateTestConfig creates a configuration document with a generated id that
// can be overridden.
func CreateTestConfig(templateID string, overrides ...func(models.ConfigDocument)) models.ConfigDocument {
	doc := models.ConfigDocument{
		models.ReservedID:       uuid.New().String(),
		models.ReservedTemplate: templateID,
		"port":                  float64(8080),
		"host":                  "localhost",
	}

	for _, override := range overrides {
		override(doc)
	}

	return doc
}

// WithField sets one field on the document.
func WithField(key string, value any) func(models.ConfigDocument) {
	return func(doc models.ConfigDocument) {
		doc[key] = value
	}
}

// WithConfigID pins the document id.
func WithConfigID(id string) func(models.ConfigDocument) {
	return func(doc models.ConfigDocument) {
		doc[models.ReservedID] = id
	}
}

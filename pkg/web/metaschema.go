package web

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// templateMetaSchema gates template payloads at the HTTP boundary before the
// engine sees them. The engine's own validator handles configuration
// documents; this is only about the template wire form.
const templateMetaSchema = `{
	"type": "object",
	"required": ["id", "name", "serverType"],
	"properties": {
		"id":            {"type": "string", "minLength": 1},
		"name":          {"type": "string", "minLength": 1},
		"description":   {"type": "string"},
		"version":       {"type": "string"},
		"serverType":    {"type": "string", "minLength": 1},
		"configSchema":  {"type": "object"},
		"defaultConfig": {"type": "object"}
	}
}`

var templateSchemaLoader = gojsonschema.NewStringLoader(templateMetaSchema)

// checkTemplatePayload validates a raw template body against the meta-schema.
// It returns a human-readable description of the defects, or "" when valid.
func checkTemplatePayload(body []byte) (string, error) {
	result, err := gojsonschema.Validate(templateSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return "", fmt.Errorf("failed to validate template payload: %w", err)
	}

	if result.Valid() {
		return "", nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}

	return strings.Join(details, "; "), nil
}

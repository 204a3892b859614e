// Package models defines the core domain models for MCP server configuration management.
package models

// Schema describes the permitted shape of a configuration document or one of
// its values. It is a deliberate subset of JSON Schema: keywords outside this
// struct are ignored on load.
type Schema struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`

	// String constraints.
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
	Format    string `json:"format,omitempty"` // dispatched to the custom validator of the same name
	Enum      []any  `json:"enum,omitempty"`

	// Numeric constraints.
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty"`
	MultipleOf       *float64 `json:"multipleOf,omitempty"`

	// Array constraints.
	MinItems    *int    `json:"minItems,omitempty"`
	MaxItems    *int    `json:"maxItems,omitempty"`
	UniqueItems bool    `json:"uniqueItems,omitempty"`
	Items       *Schema `json:"items,omitempty"`

	// Object constraints. Required order affects error reporting.
	Properties           map[string]*Schema `json:"properties,omitempty"`
	PatternProperties    map[string]*Schema `json:"patternProperties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	MinProperties        *int               `json:"minProperties,omitempty"`
	MaxProperties        *int               `json:"maxProperties,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`

	// Default is applied by the auto-fixer when the property is absent.
	Default any `json:"default,omitempty"`

	CustomValidators []CustomValidatorRef `json:"customValidators,omitempty"`
}

// CustomValidatorRef names a registered custom validator and how to feed it.
type CustomValidatorRef struct {
	Name string         `json:"name"`
	Path string         `json:"path,omitempty"` // dotted traversal into the document
	Args map[string]any `json:"args,omitempty"`
}

// Ptr returns a pointer to v. Schema literals use it for optional bounds.
func Ptr[T any](v T) *T {
	return &v
}

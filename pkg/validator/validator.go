// Package validator validates configuration documents against schemas and
// applies schema-guided auto-corrections. The schema dialect is the subset
// described in models.Schema; deviations from standard JSON Schema (unknown
// keys are warnings, ordered required errors, reserved-key skipping) are part
// of the engine contract.
package validator

import (
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/mcpadm/mcpadm/pkg/models"
)

// TemplateSource resolves template ids for template-routed validation. The
// template registry implements it.
type TemplateSource interface {
	Get(id string) (*models.Template, error)
}

// CustomFunc is a named custom validator. It receives the target value, the
// root schema, the dotted path the value was extracted from, and the
// descriptor args (plus "configs" and "_id" injected by the engine).
type CustomFunc func(value any, schema *models.Schema, path string, args map[string]any) *CustomResult

// CustomResult is what a custom validator reports back.
type CustomResult struct {
	Valid  bool
	Errors []string
}

// Options tune a single validation call.
type Options struct {
	// Configs is the peer cohort handed to cross-document custom validators.
	Configs []models.ConfigDocument
}

type compiledPattern struct {
	re  *regexp.Regexp
	err error
}

// Validator is stateless except for the custom-validator registry (populated
// at construction) and a lazily filled regex cache.
type Validator struct {
	logger    *slog.Logger
	templates TemplateSource
	customs   map[string]CustomFunc

	patternMu sync.Mutex
	patterns  map[string]*compiledPattern
}

// Option configures a Validator at construction.
type Option func(*Validator)

// WithCustomValidator registers a named custom validator.
func WithCustomValidator(name string, fn CustomFunc) Option {
	return func(v *Validator) {
		v.customs[name] = fn
	}
}

// NewValidator creates a validator with the built-in custom validators
// (uniquePort and the format checks) plus any options.
func NewValidator(logger *slog.Logger, templates TemplateSource, opts ...Option) *Validator {
	v := &Validator{
		logger:    logger.With("module", "validator"),
		templates: templates,
		customs:   make(map[string]CustomFunc),
		patterns:  make(map[string]*compiledPattern),
	}

	registerBuiltinCustoms(v)

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// RegisterCustom adds a named custom validator after construction.
func (v *Validator) RegisterCustom(name string, fn CustomFunc) {
	v.customs[name] = fn
}

// Validate checks a document against a schema. It terminates on any finite
// schema/document pair and never panics; a missing document or schema yields
// a single synthetic error.
func (v *Validator) Validate(doc models.ConfigDocument, schema *models.Schema, opts *Options) *Report {
	rep := newReport()

	if doc == nil || schema == nil {
		rep.addError("Validation failed: configuration or schema is missing")

		return rep
	}

	// Required fields, in declaration order.
	for _, name := range schema.Required {
		if _, ok := doc[name]; !ok {
			rep.addError(fmt.Sprintf("Required field %q is missing", name))
		}
	}

	v.walkObject("", doc, schema, rep)
	v.runCustomValidators(doc, schema, opts, rep)

	return rep
}

// ValidateAgainstTemplate routes a document to its template's schema. An
// unknown template id yields an invalid report, not a Go error, so cohort
// validation stays total.
func (v *Validator) ValidateAgainstTemplate(doc models.ConfigDocument, templateID string, opts *Options) *Report {
	tpl, err := v.templates.Get(templateID)
	if err != nil || tpl == nil {
		rep := newReport()
		rep.addError(fmt.Sprintf("Validation failed: unknown template %q", templateID))

		return rep
	}

	return v.Validate(doc, tpl.ConfigSchema, opts)
}

// ValidateAll validates a cohort of documents together, routing each by its
// _template and handing the whole cohort to cross-document custom validators.
func (v *Validator) ValidateAll(docs []models.ConfigDocument) *CohortReport {
	cohort := &CohortReport{
		Valid:   true,
		Reports: make(map[string]*Report, len(docs)),
	}

	for i, doc := range docs {
		key := doc.ID()
		if key == "" {
			key = fmt.Sprintf("config-%d", i)
		}

		rep := v.ValidateAgainstTemplate(doc, doc.TemplateID(), &Options{Configs: docs})
		cohort.Reports[key] = rep

		if !rep.Valid {
			cohort.Valid = false
		}
	}

	return cohort
}

// walkObject validates every own key of a document level: property schemas,
// pattern properties, then the unknown-key warning. Keys are visited in
// sorted order so reports are deterministic.
func (v *Validator) walkObject(prefix string, doc map[string]any, schema *models.Schema, rep *Report) {
	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var unknown []string

	for _, key := range keys {
		if models.IsReservedKey(key) {
			continue
		}

		path := joinPath(prefix, key)

		if sub, ok := schema.Properties[key]; ok && sub != nil {
			v.validateValue(path, doc[key], sub, rep)

			continue
		}

		// Pattern properties cover keys that plain properties do not.
		matched := false

		for _, pattern := range sortedPatterns(schema.PatternProperties) {
			re, err := v.compilePattern(pattern)
			if err != nil {
				rep.addWarning(fmt.Sprintf("Internal schema error: invalid pattern %q", pattern))

				continue
			}

			if re.MatchString(key) {
				matched = true

				v.validateValue(path, doc[key], schema.PatternProperties[pattern], rep)
			}
		}

		if !matched {
			unknown = append(unknown, path)
		}
	}

	// Unknown keys are non-fatal so forward-compatible documents keep working.
	if schema.AdditionalProperties != nil && !*schema.AdditionalProperties && len(unknown) > 0 {
		rep.addWarning("Unknown properties found: " + strings.Join(unknown, ", "))
	}
}

// validateValue type-checks a value and, only when the type matches, applies
// the schema's constraints.
func (v *Validator) validateValue(path string, value any, schema *models.Schema, rep *Report) {
	if schema == nil {
		return
	}

	if schema.Type != "" && !typeMatches(value, schema.Type) {
		rep.addError(fmt.Sprintf("Field %q should be a %s", path, schema.Type))

		return
	}

	if len(schema.Enum) > 0 && !enumContains(schema.Enum, value) {
		rep.addError(fmt.Sprintf("Field %q should be one of: %s", path, renderEnum(schema.Enum)))
	}

	switch schema.Type {
	case "string":
		v.validateString(path, value.(string), schema, rep)
	case "number", "integer":
		f, _ := toFloat(value)
		v.validateNumber(path, f, schema, rep)
	case "array":
		v.validateArray(path, toSlice(value), schema, rep)
	case "object":
		v.validateObject(path, toMap(value), schema, rep)
	}
}

func (v *Validator) compilePattern(pattern string) (*regexp.Regexp, error) {
	v.patternMu.Lock()
	defer v.patternMu.Unlock()

	if cached, ok := v.patterns[pattern]; ok {
		return cached.re, cached.err
	}

	re, err := regexp.Compile(pattern)
	v.patterns[pattern] = &compiledPattern{re: re, err: err}

	return re, err
}

func (v *Validator) runCustomValidators(doc models.ConfigDocument, schema *models.Schema, opts *Options, rep *Report) {
	for _, ref := range schema.CustomValidators {
		fn, ok := v.customs[ref.Name]
		if !ok {
			rep.addWarning(fmt.Sprintf("Internal schema error: unknown custom validator %q", ref.Name))

			continue
		}

		value := resolvePath(doc, ref.Path)

		args := make(map[string]any, len(ref.Args)+2)
		for k, val := range ref.Args {
			args[k] = val
		}

		args["_id"] = doc.ID()

		if opts != nil && opts.Configs != nil {
			args["configs"] = opts.Configs
		}

		result := fn(value, schema, ref.Path, args)
		if result == nil {
			continue
		}

		for _, msg := range result.Errors {
			rep.addError(msg)
		}
	}
}

// resolvePath walks a dotted path into the document. Missing segments yield
// nil; an empty path yields the whole document.
func resolvePath(doc models.ConfigDocument, path string) any {
	if path == "" {
		return doc
	}

	var current any = map[string]any(doc)

	for _, segment := range strings.Split(path, ".") {
		m := toMap(current)
		if m == nil {
			return nil
		}

		current = m[segment]
	}

	return current
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "." + key
}

func sortedPatterns(patternProps map[string]*models.Schema) []string {
	patterns := make([]string, 0, len(patternProps))
	for pattern := range patternProps {
		patterns = append(patterns, pattern)
	}

	sort.Strings(patterns)

	return patterns
}

// typeMatches dispatches the runtime type predicate for a schema type.
// Unknown schema types match everything.
func typeMatches(value any, typ string) bool {
	switch typ {
	case "string":
		_, ok := value.(string)

		return ok
	case "number":
		_, ok := toFloat(value)

		return ok
	case "integer":
		f, ok := toFloat(value)

		return ok && f == float64(int64(f))
	case "boolean":
		_, ok := value.(bool)

		return ok
	case "array":
		return toSlice(value) != nil
	case "object":
		return toMap(value) != nil
	case "null":
		return value == nil
	default:
		return true
	}
}

// toFloat widens any numeric kind to float64. Booleans and strings are not
// numbers.
func toFloat(value any) (float64, bool) {
	if value == nil {
		return 0, false
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// toSlice normalises any slice or array value to []any, nil otherwise.
func toSlice(value any) []any {
	if items, ok := value.([]any); ok {
		return items
	}

	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil
	}

	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}

	return items
}

// toMap normalises any string-keyed map value to map[string]any, nil
// otherwise.
func toMap(value any) map[string]any {
	switch m := value.(type) {
	case map[string]any:
		return m
	case models.ConfigDocument:
		return m
	}

	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil
	}

	out := make(map[string]any, rv.Len())
	for _, key := range rv.MapKeys() {
		out[key.String()] = rv.MapIndex(key).Interface()
	}

	return out
}

func enumContains(enum []any, value any) bool {
	want := models.CanonicalJSON(value)
	for _, candidate := range enum {
		if models.CanonicalJSON(candidate) == want {
			return true
		}
	}

	return false
}

func renderEnum(enum []any) string {
	parts := make([]string, len(enum))
	for i, candidate := range enum {
		parts[i] = fmt.Sprintf("%v", candidate)
	}

	return strings.Join(parts, ", ")
}

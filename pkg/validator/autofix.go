package validator

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/mcpadm/mcpadm/pkg/models"
)

// AutoFix applies schema-guided corrections to a document: fills defaults,
// coerces scalar types best-effort, and clamps numerics to their inclusive
// bounds. The input is never mutated. Auto-fix is advisory; callers must
// re-validate afterwards.
func (v *Validator) AutoFix(doc models.ConfigDocument, templateID string) models.ConfigDocument {
	tpl, err := v.templates.Get(templateID)
	if err != nil || tpl == nil || tpl.ConfigSchema == nil {
		return doc
	}

	schema := tpl.ConfigSchema
	logger := v.logger.With("template_id", templateID)

	fixed := make(models.ConfigDocument, len(doc))
	for k, val := range doc {
		fixed[k] = val
	}

	// Defaults for absent properties.
	for _, name := range sortedPropertyNames(schema.Properties) {
		prop := schema.Properties[name]
		if prop.Default == nil {
			continue
		}

		if _, present := fixed[name]; !present {
			fixed[name] = prop.Default

			logger.Debug("Auto-fix applied default", "field", name, "value", prop.Default)
		}
	}

	// Scalar coercions, then clamping.
	for _, key := range sortedPropertyNames(schema.Properties) {
		if models.IsReservedKey(key) {
			continue
		}

		value, present := fixed[key]
		if !present {
			continue
		}

		prop := schema.Properties[key]

		if coerced, changed := coerce(value, prop.Type); changed {
			fixed[key] = coerced
			value = coerced

			logger.Debug("Auto-fix coerced value", "field", key, "type", prop.Type, "value", coerced)
		}

		if prop.Type != "number" && prop.Type != "integer" {
			continue
		}

		f, ok := toFloat(value)
		if !ok {
			continue
		}

		// Exclusive bounds are not clamped; the validator reports them.
		if prop.Minimum != nil && f < *prop.Minimum {
			fixed[key] = *prop.Minimum

			logger.Debug("Auto-fix clamped value", "field", key, "minimum", *prop.Minimum)
		}

		if prop.Maximum != nil && f > *prop.Maximum {
			fixed[key] = *prop.Maximum

			logger.Debug("Auto-fix clamped value", "field", key, "maximum", *prop.Maximum)
		}
	}

	return fixed
}

// coerce attempts a best-effort conversion of value to the declared scalar
// type. It reports whether anything changed; values it cannot convert are
// left untouched.
func coerce(value any, typ string) (any, bool) {
	switch typ {
	case "string":
		if _, ok := value.(string); ok || value == nil {
			return value, false
		}

		return stringify(value), true

	case "number", "integer":
		s, ok := value.(string)
		if !ok {
			if b, isBool := value.(bool); isBool {
				if b {
					return float64(1), true
				}

				return float64(0), true
			}

			return value, false
		}

		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return value, false
		}

		return f, true

	case "boolean":
		switch val := value.(type) {
		case bool:
			return value, false
		case string:
			if val == "true" {
				return true, true
			}

			if val == "false" {
				return false, true
			}
		default:
			if f, ok := toFloat(value); ok {
				if f == 1 {
					return true, true
				}

				if f == 0 {
					return false, true
				}
			}
		}

		return value, false

	case "array":
		if toSlice(value) != nil {
			return value, false
		}

		if s, ok := value.(string); ok && strings.HasPrefix(strings.TrimSpace(s), "[") {
			var items []any
			if err := json.Unmarshal([]byte(s), &items); err == nil {
				return items, true
			}
		}

		if value == nil {
			return value, false
		}

		return []any{value}, true

	default:
		return value, false
	}
}

func stringify(value any) string {
	if f, ok := toFloat(value); ok {
		return formatNumber(f)
	}

	if b, ok := value.(bool); ok {
		return strconv.FormatBool(b)
	}

	return models.CanonicalJSON(value)
}

func sortedPropertyNames(props map[string]*models.Schema) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

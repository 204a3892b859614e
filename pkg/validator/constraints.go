package validator

import (
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/mcpadm/mcpadm/pkg/models"
)

func (v *Validator) validateString(path, value string, schema *models.Schema, rep *Report) {
	length := utf8.RuneCountInString(value)

	if schema.MinLength != nil && length < *schema.MinLength {
		rep.addError(fmt.Sprintf("Field %q should have at least %d characters", path, *schema.MinLength))
	}

	if schema.MaxLength != nil && length > *schema.MaxLength {
		rep.addError(fmt.Sprintf("Field %q should have at most %d characters", path, *schema.MaxLength))
	}

	if schema.Pattern != "" {
		re, err := v.compilePattern(schema.Pattern)
		if err != nil {
			rep.addWarning(fmt.Sprintf("Internal schema error: invalid pattern %q", schema.Pattern))
		} else if !re.MatchString(value) {
			rep.addError(fmt.Sprintf("Field %q does not match the required pattern", path))
		}
	}

	if schema.Format != "" {
		fn, ok := v.customs[schema.Format]
		if !ok {
			rep.addWarning(fmt.Sprintf("Internal schema error: unknown format %q", schema.Format))

			return
		}

		if result := fn(value, schema, path, nil); result != nil {
			for _, msg := range result.Errors {
				rep.addError(msg)
			}
		}
	}
}

func (v *Validator) validateNumber(path string, value float64, schema *models.Schema, rep *Report) {
	if schema.Minimum != nil && value < *schema.Minimum {
		rep.addError(fmt.Sprintf("Field %q should be at least %s", path, formatNumber(*schema.Minimum)))
	}

	if schema.Maximum != nil && value > *schema.Maximum {
		rep.addError(fmt.Sprintf("Field %q should be at most %s", path, formatNumber(*schema.Maximum)))
	}

	// Exclusive bounds error on the closed boundary as well.
	if schema.ExclusiveMinimum != nil && value <= *schema.ExclusiveMinimum {
		rep.addError(fmt.Sprintf("Field %q should be greater than %s", path, formatNumber(*schema.ExclusiveMinimum)))
	}

	if schema.ExclusiveMaximum != nil && value >= *schema.ExclusiveMaximum {
		rep.addError(fmt.Sprintf("Field %q should be less than %s", path, formatNumber(*schema.ExclusiveMaximum)))
	}

	if schema.MultipleOf != nil && *schema.MultipleOf != 0 {
		remainder := math.Abs(math.Mod(value, *schema.MultipleOf))
		if remainder > 1e-9 && math.Abs(remainder-math.Abs(*schema.MultipleOf)) > 1e-9 {
			rep.addError(fmt.Sprintf("Field %q should be a multiple of %s", path, formatNumber(*schema.MultipleOf)))
		}
	}
}

func (v *Validator) validateArray(path string, items []any, schema *models.Schema, rep *Report) {
	if schema.MinItems != nil && len(items) < *schema.MinItems {
		rep.addError(fmt.Sprintf("Field %q should have at least %d items", path, *schema.MinItems))
	}

	if schema.MaxItems != nil && len(items) > *schema.MaxItems {
		rep.addError(fmt.Sprintf("Field %q should have at most %d items", path, *schema.MaxItems))
	}

	if schema.UniqueItems && hasDuplicates(items) {
		rep.addError(fmt.Sprintf("Field %q should not contain duplicate items", path))
	}

	if schema.Items != nil {
		for i, item := range items {
			v.validateValue(fmt.Sprintf("%s[%d]", path, i), item, schema.Items, rep)
		}
	}
}

func (v *Validator) validateObject(path string, value map[string]any, schema *models.Schema, rep *Report) {
	if schema.MinProperties != nil && len(value) < *schema.MinProperties {
		rep.addError(fmt.Sprintf("Field %q should have at least %d properties", path, *schema.MinProperties))
	}

	if schema.MaxProperties != nil && len(value) > *schema.MaxProperties {
		rep.addError(fmt.Sprintf("Field %q should have at most %d properties", path, *schema.MaxProperties))
	}

	for _, name := range schema.Required {
		if _, ok := value[name]; !ok {
			rep.addError(fmt.Sprintf("Required field %q is missing", joinPath(path, name)))
		}
	}

	v.walkObject(path, value, schema, rep)
}

func hasDuplicates(items []any) bool {
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		key := models.CanonicalJSON(item)
		if _, dup := seen[key]; dup {
			return true
		}

		seen[key] = struct{}{}
	}

	return false
}

// formatNumber renders a bound the way it appears in schemas: integral values
// without a decimal point.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}

	return strconv.FormatFloat(f, 'g', -1, 64)
}

package models

import (
	"encoding/json"
	"strings"
)

// Reserved document keys. Keys starting with "_" carry engine metadata and are
// invisible to validation, auto-fix and diffing.
const (
	ReservedTemplate  = "_template"  // originating template id
	ReservedID        = "_id"        // stable identifier used by the version manager
	ReservedGenerated = "_generated" // wall-clock millis when produced
	ReservedVersion   = "_version"   // template version at generation
)

// ConfigDocument is a configuration document: a free-form mapping from
// property name to value, plus reserved "_"-prefixed metadata.
type ConfigDocument map[string]any

// IsReservedKey reports whether a document key is engine metadata.
func IsReservedKey(name string) bool {
	return strings.HasPrefix(name, "_")
}

// Clone returns a deep copy. Consumers always receive clones, never live
// references into engine state.
func (d ConfigDocument) Clone() ConfigDocument {
	if d == nil {
		return nil
	}

	data, err := json.Marshal(d)
	if err != nil {
		// Documents are JSON values by construction; a marshal failure means a
		// caller handed us something non-serialisable. Fall back to a shallow copy.
		out := make(ConfigDocument, len(d))
		for k, v := range d {
			out[k] = v
		}

		return out
	}

	var out ConfigDocument

	_ = json.Unmarshal(data, &out)

	return out
}

// ID returns the document's _id, or "" when unset.
func (d ConfigDocument) ID() string {
	s, _ := d[ReservedID].(string)

	return s
}

// TemplateID returns the document's _template, or "" when unset.
func (d ConfigDocument) TemplateID() string {
	s, _ := d[ReservedTemplate].(string)

	return s
}

// CanonicalJSON renders v as compact JSON with object keys sorted, suitable
// for equality comparison. Unserialisable values render as "null".
func CanonicalJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}

	return string(data)
}

package models

import "encoding/json"

// Template bundles a configuration schema with its defaults for one kind of
// downstream MCP server.
type Template struct {
	ID            string         `json:"id"           validate:"required"`
	Name          string         `json:"name"         validate:"required"`
	Description   string         `json:"description"`
	Version       string         `json:"version"`
	ServerType    string         `json:"serverType"   validate:"required"`
	ConfigSchema  *Schema        `json:"configSchema"`
	DefaultConfig ConfigDocument `json:"defaultConfig"`

	// Extra holds unknown wire fields so they survive a round-trip.
	Extra map[string]json.RawMessage `json:"-"`
}

var knownTemplateFields = []string{
	"id", "name", "description", "version", "serverType", "configSchema", "defaultConfig",
}

func (t *Template) UnmarshalJSON(data []byte) error {
	type alias Template

	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for _, field := range knownTemplateFields {
		delete(raw, field)
	}

	if len(raw) > 0 {
		a.Extra = raw
	}

	*t = Template(a)

	return nil
}

func (t Template) MarshalJSON() ([]byte, error) {
	type alias Template

	data, err := json.Marshal(alias(t))
	if err != nil {
		return nil, err
	}

	if len(t.Extra) == 0 {
		return data, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}

	for k, v := range t.Extra {
		if _, known := merged[k]; !known {
			merged[k] = v
		}
	}

	return json.Marshal(merged)
}

// Clone returns a deep copy of the template.
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}

	data, err := json.Marshal(t)
	if err != nil {
		return nil
	}

	var out Template

	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}

	return &out
}

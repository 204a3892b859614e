package registry

import "github.com/mcpadm/mcpadm/pkg/models"

// builtinTemplates constructs the shipped template set, one per known server
// type. Each composes the common fragment (port, host, timeout, log_level)
// with a type-specific fragment.
func builtinTemplates() map[string]*models.Template {
	templates := []*models.Template{
		genericTemplate(),
		braveSearchTemplate(),
		filesystemTemplate(),
		githubTemplate(),
		memoryTemplate(),
		sequentialThinkingTemplate(),
	}

	out := make(map[string]*models.Template, len(templates))
	for _, tpl := range templates {
		out[tpl.ID] = tpl
	}

	return out
}

// commonProperties is the schema fragment shared by every server type.
func commonProperties(defaultPort int) map[string]*models.Schema {
	return map[string]*models.Schema{
		"port": {
			Type:        "integer",
			Description: "TCP port the server listens on",
			Minimum:     models.Ptr(1.0),
			Maximum:     models.Ptr(65535.0),
			Default:     defaultPort,
		},
		"host": {
			Type:        "string",
			Description: "Host the server binds to",
			Format:      "hostname",
			Default:     "localhost",
		},
		"timeout": {
			Type:        "integer",
			Description: "Request timeout in milliseconds",
			Minimum:     models.Ptr(1000.0),
			Maximum:     models.Ptr(300000.0),
			Default:     15000,
		},
		"log_level": {
			Type:    "string",
			Enum:    []any{"debug", "info", "warn", "error"},
			Default: "info",
		},
	}
}

func commonDefaults(defaultPort int) models.ConfigDocument {
	return models.ConfigDocument{
		"port":      defaultPort,
		"host":      "localhost",
		"timeout":   15000,
		"log_level": "info",
	}
}

// newBuiltin composes the common fragment with a type-specific one. Extra
// required names follow port and host so error ordering stays stable.
func newBuiltin(id, name, description string, defaultPort int,
	specific map[string]*models.Schema, required []string, defaults models.ConfigDocument,
) *models.Template {
	properties := commonProperties(defaultPort)
	for key, prop := range specific {
		properties[key] = prop
	}

	defaultConfig := commonDefaults(defaultPort)
	for key, value := range defaults {
		defaultConfig[key] = value
	}

	return &models.Template{
		ID:          id,
		Name:        name,
		Description: description,
		Version:     "1.0.0",
		ServerType:  id,
		ConfigSchema: &models.Schema{
			Type:                 "object",
			Properties:           properties,
			Required:             append([]string{"port", "host"}, required...),
			AdditionalProperties: models.Ptr(false),
			CustomValidators: []models.CustomValidatorRef{
				{Name: "uniquePort", Path: "port"},
			},
		},
		DefaultConfig: defaultConfig,
	}
}

func genericTemplate() *models.Template {
	return newBuiltin("generic", "Generic Server",
		"Minimal MCP server with only the common settings", 3000,
		nil, nil, nil)
}

func braveSearchTemplate() *models.Template {
	return newBuiltin("brave-search", "Brave Search",
		"Web search via the Brave Search API", 3003,
		map[string]*models.Schema{
			"api_key": {
				Type:        "string",
				Description: "Brave Search API key",
			},
			"max_results": {
				Type:    "integer",
				Minimum: models.Ptr(1.0),
				Maximum: models.Ptr(100.0),
				Default: 10,
			},
		},
		[]string{"api_key"},
		models.ConfigDocument{
			"api_key":     "",
			"max_results": 10,
		})
}

func filesystemTemplate() *models.Template {
	return newBuiltin("filesystem", "Filesystem",
		"Read and write files under a set of allowed directories", 3001,
		map[string]*models.Schema{
			"allowed_directories": {
				Type:     "array",
				MinItems: models.Ptr(1),
				Items: &models.Schema{
					Type:   "string",
					Format: "absolute-path",
				},
				Default: []any{"/data"},
			},
			"read_only": {
				Type:    "boolean",
				Default: false,
			},
		},
		[]string{"allowed_directories"},
		models.ConfigDocument{
			"allowed_directories": []any{"/data"},
			"read_only":           false,
		})
}

func githubTemplate() *models.Template {
	return newBuiltin("github", "GitHub",
		"Repository search and issue management via the GitHub API", 3002,
		map[string]*models.Schema{
			"auth_token": {
				Type:        "string",
				Description: "GitHub personal access token",
			},
			"default_owner": {
				Type: "string",
			},
		},
		[]string{"auth_token"},
		models.ConfigDocument{
			"auth_token": "",
		})
}

func memoryTemplate() *models.Template {
	return newBuiltin("memory", "Memory",
		"Persistent key/value memory for agent sessions", 3004,
		map[string]*models.Schema{
			"max_entries": {
				Type:    "integer",
				Minimum: models.Ptr(10.0),
				Maximum: models.Ptr(1000000.0),
				Default: 10000,
			},
			"persistence_path": {
				Type:    "string",
				Format:  "absolute-path",
				Default: "/var/lib/mcp/memory",
			},
		},
		nil,
		models.ConfigDocument{
			"max_entries":      10000,
			"persistence_path": "/var/lib/mcp/memory",
		})
}

func sequentialThinkingTemplate() *models.Template {
	return newBuiltin("sequential-thinking", "Sequential Thinking",
		"Step-by-step reasoning with bounded depth", 3005,
		map[string]*models.Schema{
			"max_depth": {
				Type:    "integer",
				Minimum: models.Ptr(1.0),
				Maximum: models.Ptr(50.0),
				Default: 10,
			},
			"branch_limit": {
				Type:    "integer",
				Minimum: models.Ptr(1.0),
				Maximum: models.Ptr(20.0),
				Default: 3,
			},
		},
		nil,
		models.ConfigDocument{
			"max_depth":    10,
			"branch_limit": 3,
		})
}

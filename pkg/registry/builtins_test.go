package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpadm/mcpadm/pkg/models"
	"github.com/mcpadm/mcpadm/pkg/validator"
)

// Every shipped template must produce a valid document from its own defaults.
func TestBuiltins_DefaultsValidate(t *testing.T) {
	r := newTestRegistry(t)
	v := validator.NewValidator(testLogger(), r)

	docs := make([]models.ConfigDocument, 0)

	for _, tpl := range r.List() {
		doc, err := r.GenerateConfig(tpl.ID, models.ConfigDocument{
			models.ReservedID: tpl.ID + "-defaults",
		})
		require.NoError(t, err)

		docs = append(docs, doc)
	}

	cohort := v.ValidateAll(docs)

	for key, rep := range cohort.Reports {
		assert.True(t, rep.Valid, "%s: %v", key, rep.Errors)
		assert.Empty(t, rep.Warnings, "%s: %v", key, rep.Warnings)
	}
}

func TestBuiltins_DistinctDefaultPorts(t *testing.T) {
	r := newTestRegistry(t)

	seen := make(map[any]string)

	for _, tpl := range r.List() {
		port := tpl.DefaultConfig["port"]
		if other, dup := seen[models.CanonicalJSON(port)]; dup {
			t.Fatalf("templates %s and %s share default port %v", tpl.ID, other, port)
		}

		seen[models.CanonicalJSON(port)] = tpl.ID
	}
}

func TestBuiltins_RequiredStartWithPortAndHost(t *testing.T) {
	r := newTestRegistry(t)

	for _, tpl := range r.List() {
		require.GreaterOrEqual(t, len(tpl.ConfigSchema.Required), 2, tpl.ID)
		assert.Equal(t, []string{"port", "host"}, tpl.ConfigSchema.Required[:2], tpl.ID)
	}
}

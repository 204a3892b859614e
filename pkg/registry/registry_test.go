package registry

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpadm/mcpadm/pkg/models"
	"github.com/mcpadm/mcpadm/pkg/store/memory"
	"github.com/mcpadm/mcpadm/pkg/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	return NewRegistry(context.Background(), testLogger(), memory.NewStore())
}

func TestNewRegistry_SeedsBuiltins(t *testing.T) {
	r := newTestRegistry(t)

	templates := r.List()
	require.Len(t, templates, 6)

	ids := make([]string, len(templates))
	for i, tpl := range templates {
		ids[i] = tpl.ID
	}

	assert.Equal(t, []string{
		"brave-search", "filesystem", "generic", "github", "memory", "sequential-thinking",
	}, ids)
}

func TestNewRegistry_DoesNotReseedExisting(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()

	r := NewRegistry(ctx, testLogger(), st)

	custom := testutil.CreateTestTemplate(testutil.WithTemplateID("custom"))
	require.NoError(t, r.Create(ctx, custom))
	require.NoError(t, r.Delete(ctx, "custom"))

	tpl, err := r.Get("generic")
	require.NoError(t, err)
	tpl.Name = "Renamed"
	require.NoError(t, r.Update(ctx, "generic", tpl))

	reloaded := NewRegistry(ctx, testLogger(), st)

	got, err := reloaded.Get("generic")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
}

func TestGet_UnknownTemplate(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Get("ghost")

	assert.True(t, IsTemplateNotFound(err))
}

func TestGet_ReturnsClone(t *testing.T) {
	r := newTestRegistry(t)

	tpl, err := r.Get("generic")
	require.NoError(t, err)

	tpl.Name = "mutated"
	tpl.ConfigSchema.Properties["port"].Maximum = models.Ptr(1.0)

	fresh, err := r.Get("generic")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", fresh.Name)
	assert.Equal(t, float64(65535), *fresh.ConfigSchema.Properties["port"].Maximum)
}

func TestCreate(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	tpl := testutil.CreateTestTemplate(testutil.WithTemplateID("custom"))
	require.NoError(t, r.Create(ctx, tpl))

	got, err := r.Get("custom")
	require.NoError(t, err)
	assert.Equal(t, "Test Server", got.Name)
}

func TestCreate_Duplicate(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	tpl := testutil.CreateTestTemplate(testutil.WithTemplateID("generic"))

	assert.ErrorIs(t, r.Create(ctx, tpl), ErrDuplicateTemplate)
}

func TestCreate_InvalidTemplate(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	testCases := []struct {
		name string
		tpl  *models.Template
	}{
		{name: "nil template", tpl: nil},
		{name: "missing name", tpl: &models.Template{ID: "x", ServerType: "x"}},
		{name: "missing server type", tpl: &models.Template{ID: "x", Name: "X"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, r.Create(ctx, tc.tpl), ErrInvalidTemplate)
		})
	}
}

func TestUpdate_PinsID(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	tpl := testutil.CreateTestTemplate(testutil.WithTemplateID("other-id"))
	require.NoError(t, r.Update(ctx, "generic", tpl))

	got, err := r.Get("generic")
	require.NoError(t, err)
	assert.Equal(t, "generic", got.ID)
	assert.Equal(t, "Test Server", got.Name)

	_, err = r.Get("other-id")
	assert.True(t, IsTemplateNotFound(err))
}

func TestUpdate_UnknownTemplate(t *testing.T) {
	r := newTestRegistry(t)

	tpl := testutil.CreateTestTemplate()

	assert.ErrorIs(t, r.Update(context.Background(), "ghost", tpl), ErrTemplateNotFound)
}

func TestDelete(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, testutil.CreateTestTemplate(testutil.WithTemplateID("custom"))))
	require.NoError(t, r.Delete(ctx, "custom"))

	_, err := r.Get("custom")
	assert.True(t, IsTemplateNotFound(err))
}

func TestDelete_BuiltInProtected(t *testing.T) {
	r := newTestRegistry(t)

	assert.ErrorIs(t, r.Delete(context.Background(), "generic"), ErrBuiltInProtected)
}

func TestDelete_UnknownTemplate(t *testing.T) {
	r := newTestRegistry(t)

	assert.ErrorIs(t, r.Delete(context.Background(), "ghost"), ErrTemplateNotFound)
}

func TestReset_RestoresBuiltin(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	tpl := testutil.CreateTestTemplate(testutil.WithTemplateID("generic"))
	require.NoError(t, r.Update(ctx, "generic", tpl))
	require.NoError(t, r.Reset(ctx, "generic"))

	got, err := r.Get("generic")
	require.NoError(t, err)
	assert.Equal(t, "Generic Server", got.Name)
}

func TestReset_NoBuiltIn(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, testutil.CreateTestTemplate(testutil.WithTemplateID("custom"))))

	assert.ErrorIs(t, r.Reset(ctx, "custom"), ErrNoBuiltIn)
}

func TestResetAll_DropsUserTemplates(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, testutil.CreateTestTemplate(testutil.WithTemplateID("custom"))))
	require.NoError(t, r.ResetAll(ctx))

	assert.Len(t, r.List(), 6)

	_, err := r.Get("custom")
	assert.True(t, IsTemplateNotFound(err))
}

func TestGenerateConfig(t *testing.T) {
	r := newTestRegistry(t)

	doc, err := r.GenerateConfig("generic", models.ConfigDocument{"port": float64(4000)})
	require.NoError(t, err)

	assert.Equal(t, float64(4000), doc["port"], "override wins over default")
	assert.Equal(t, "localhost", doc["host"])
	assert.Equal(t, "generic", doc[models.ReservedTemplate])
	assert.Equal(t, "1.0.0", doc[models.ReservedVersion])
	assert.NotNil(t, doc[models.ReservedGenerated])
}

func TestGenerateConfig_UnknownTemplate(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.GenerateConfig("ghost", nil)

	assert.True(t, IsTemplateNotFound(err))
}

func TestGenerateConfig_DefaultsNotShared(t *testing.T) {
	r := newTestRegistry(t)

	first, err := r.GenerateConfig("filesystem", nil)
	require.NoError(t, err)

	dirs, ok := first["allowed_directories"].([]any)
	require.True(t, ok)
	dirs[0] = "/mutated"

	second, err := r.GenerateConfig("filesystem", nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"/data"}, second["allowed_directories"])
}

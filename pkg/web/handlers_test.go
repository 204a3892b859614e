package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpadm/mcpadm/pkg/models"
	"github.com/mcpadm/mcpadm/pkg/services"
	"github.com/mcpadm/mcpadm/pkg/store/memory"
)

func setupTestApp(t *testing.T) (*fiber.App, *services.ConfigService) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := services.NewConfigService(context.Background(), logger, memory.NewStore())

	return NewApp(service), service
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	return resp, payload
}

func TestAPI_RootEndpoint(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "MCP Server Manager API", string(body))
}

func TestAPI_GetTemplates(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/templates", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Templates []*models.Template `json:"templates"`
	}

	require.NoError(t, json.Unmarshal(body, &out))
	assert.Len(t, out.Templates, 6)
}

func TestAPI_GetTemplate(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/templates/generic", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tpl models.Template
	require.NoError(t, json.Unmarshal(body, &tpl))
	assert.Equal(t, "generic", tpl.ID)
}

func TestAPI_GetTemplate_NotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/templates/ghost", "")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_CreateTemplate(t *testing.T) {
	app, service := setupTestApp(t)

	payload := `{
		"id": "custom",
		"name": "Custom",
		"serverType": "custom",
		"configSchema": {"type": "object"}
	}`

	resp, _ := doJSON(t, app, http.MethodPost, "/templates", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	tpl, err := service.Template("custom")
	require.NoError(t, err)
	assert.Equal(t, "Custom", tpl.Name)
}

func TestAPI_CreateTemplate_MetaSchemaRejects(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/templates", `{"name": "No ID"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "id")
}

func TestAPI_CreateTemplate_Duplicate(t *testing.T) {
	app, _ := setupTestApp(t)

	payload := `{"id": "generic", "name": "Generic", "serverType": "generic"}`

	resp, _ := doJSON(t, app, http.MethodPost, "/templates", payload)

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_DeleteTemplate_BuiltInProtected(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodDelete, "/templates/generic", "")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_GenerateConfig(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/templates/generic/generate", `{"port": 4000}`)

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var doc models.ConfigDocument
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, float64(4000), doc["port"])
	assert.Equal(t, "generic", doc.TemplateID())
	assert.NotEmpty(t, doc.ID())
}

func TestAPI_ValidateConfig(t *testing.T) {
	app, _ := setupTestApp(t)

	payload := `{
		"templateId": "generic",
		"config": {"port": 70000, "host": "localhost"}
	}`

	resp, body := doJSON(t, app, http.MethodPost, "/configs/validate", payload)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rep struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors"`
	}

	require.NoError(t, json.Unmarshal(body, &rep))
	assert.False(t, rep.Valid)
	assert.Contains(t, rep.Errors, `Field "port" should be at most 65535`)
}

func TestAPI_ValidateConfig_TemplateFromDocument(t *testing.T) {
	app, _ := setupTestApp(t)

	payload := `{
		"config": {"_template": "generic", "port": 8080, "host": "localhost"}
	}`

	resp, body := doJSON(t, app, http.MethodPost, "/configs/validate", payload)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rep struct {
		Valid bool `json:"valid"`
	}

	require.NoError(t, json.Unmarshal(body, &rep))
	assert.True(t, rep.Valid)
}

func TestAPI_ValidateAll(t *testing.T) {
	app, _ := setupTestApp(t)

	payload := `[
		{"_id": "a", "_template": "generic", "port": 3000, "host": "localhost"},
		{"_id": "b", "_template": "generic", "port": 3000, "host": "localhost"}
	]`

	resp, body := doJSON(t, app, http.MethodPost, "/configs/validate-all", payload)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cohort struct {
		Valid   bool `json:"valid"`
		Reports map[string]struct {
			Valid  bool     `json:"valid"`
			Errors []string `json:"errors"`
		} `json:"reports"`
	}

	require.NoError(t, json.Unmarshal(body, &cohort))
	assert.False(t, cohort.Valid)
	assert.Contains(t, cohort.Reports["a"].Errors, "Port 3000 is already in use by another server")
}

func TestAPI_AutoFix(t *testing.T) {
	app, _ := setupTestApp(t)

	payload := `{
		"templateId": "generic",
		"config": {"port": "70000"}
	}`

	resp, body := doJSON(t, app, http.MethodPost, "/configs/autofix", payload)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Config models.ConfigDocument `json:"config"`
		Report struct {
			Valid bool `json:"valid"`
		} `json:"report"`
	}

	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, float64(65535), out.Config["port"])
	assert.True(t, out.Report.Valid)
}

func TestAPI_VersionLifecycle(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/configs/cfg-1/versions",
		`{"config": {"port": 80}, "comment": "initial", "author": "alice"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var version models.Version
	require.NoError(t, json.Unmarshal(body, &version))
	assert.Equal(t, 1, version.Version)
	assert.Equal(t, "alice", version.Author)

	resp, _ = doJSON(t, app, http.MethodPost, "/configs/cfg-1/versions",
		`{"config": {"port": 81}, "comment": "bump"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/configs/cfg-1/history", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var history struct {
		ConfigID string            `json:"configId"`
		Versions []*models.Version `json:"versions"`
	}

	require.NoError(t, json.Unmarshal(body, &history))
	assert.Equal(t, "cfg-1", history.ConfigID)
	assert.Len(t, history.Versions, 2)

	resp, body = doJSON(t, app, http.MethodGet, "/configs/cfg-1/versions/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &version))
	assert.Equal(t, float64(80), version.Config["port"])

	resp, body = doJSON(t, app, http.MethodPost, "/configs/cfg-1/restore/1", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &version))
	assert.Equal(t, 3, version.Version)
	assert.Equal(t, float64(80), version.Config["port"])
}

func TestAPI_GetVersion_NotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/configs/cfg-1/versions/9", "")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_Diff(t *testing.T) {
	app, _ := setupTestApp(t)

	doJSON(t, app, http.MethodPost, "/configs/cfg-1/versions", `{"config": {"port": 80}}`)
	doJSON(t, app, http.MethodPost, "/configs/cfg-1/versions", `{"config": {"port": 81}}`)

	resp, body := doJSON(t, app, http.MethodGet, "/configs/cfg-1/diff?from=1&to=2", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Changes models.ChangeSet `json:"changes"`
		Diff    string           `json:"diff"`
	}

	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, []string{"port"}, out.Changes.Modified)
	assert.Contains(t, out.Diff, "~ port: - 80 / + 81")
}

func TestAPI_Diff_BadQuery(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/configs/cfg-1/diff?from=x&to=2", "")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ExportImport(t *testing.T) {
	app, _ := setupTestApp(t)

	doJSON(t, app, http.MethodPost, "/configs/cfg-1/versions", `{"config": {"port": 80}, "comment": "v1"}`)

	resp, export := doJSON(t, app, http.MethodGet, "/configs/cfg-1/export", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/configs/cfg-1/history", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/configs/import", string(export))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/configs/cfg-1/history", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var history struct {
		Versions []*models.Version `json:"versions"`
	}

	require.NoError(t, json.Unmarshal(body, &history))
	require.Len(t, history.Versions, 1)
	assert.Equal(t, "v1", history.Versions[0].Comment)
}

func TestAPI_Import_Invalid(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/configs/import", `{"versions": []}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_Health(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Status string `json:"status"`
	}

	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "healthy", out.Status)
}

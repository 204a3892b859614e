// Package web provides HTTP handlers and REST API endpoints for the
// configuration engine: the admin console surface. The engine itself stays
// network-free; this layer is a consumer of its public contracts.
package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/mcpadm/mcpadm/pkg/history"
	"github.com/mcpadm/mcpadm/pkg/models"
	"github.com/mcpadm/mcpadm/pkg/services"
)

type APIHandlers struct {
	service *services.ConfigService
}

func NewAPIHandlers(service *services.ConfigService) *APIHandlers {
	return &APIHandlers{service: service}
}

// NewApp builds the fiber application with all engine routes mounted.
func NewApp(service *services.ConfigService) *fiber.App {
	handlers := NewAPIHandlers(service)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("MCP Server Manager API")
	})

	t := app.Group("/templates")
	t.Get("/", handlers.GetTemplates)
	t.Post("/", handlers.CreateTemplate)
	t.Post("/reset", handlers.ResetAllTemplates)
	t.Get("/:id", handlers.GetTemplate)
	t.Put("/:id", handlers.UpdateTemplate)
	t.Delete("/:id", handlers.DeleteTemplate)
	t.Post("/:id/reset", handlers.ResetTemplate)
	t.Post("/:id/generate", handlers.GenerateConfig)

	cfg := app.Group("/configs")
	cfg.Post("/validate", handlers.ValidateConfig)
	cfg.Post("/validate-all", handlers.ValidateAllConfigs)
	cfg.Post("/autofix", handlers.AutoFixConfig)
	cfg.Post("/import", handlers.ImportHistory)
	cfg.Get("/:id/history", handlers.GetHistory)
	cfg.Delete("/:id/history", handlers.DeleteHistory)
	cfg.Post("/:id/versions", handlers.SaveVersion)
	cfg.Get("/:id/versions/:version", handlers.GetVersion)
	cfg.Post("/:id/restore/:version", handlers.RestoreVersion)
	cfg.Get("/:id/diff", handlers.DiffVersions)
	cfg.Get("/:id/export", handlers.ExportHistory)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (h *APIHandlers) GetTemplates(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"templates": h.service.Templates(),
	})
}

func (h *APIHandlers) GetTemplate(c fiber.Ctx) error {
	tpl, err := h.service.Template(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(tpl)
}

func (h *APIHandlers) CreateTemplate(c fiber.Ctx) error {
	tpl, errResp := h.decodeTemplate(c)
	if tpl == nil {
		return errResp
	}

	if err := h.service.CreateTemplate(c.Context(), tpl); err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(tpl)
}

func (h *APIHandlers) UpdateTemplate(c fiber.Ctx) error {
	tpl, errResp := h.decodeTemplate(c)
	if tpl == nil {
		return errResp
	}

	if err := h.service.UpdateTemplate(c.Context(), c.Params("id"), tpl); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(tpl)
}

// decodeTemplate gates the raw body with the meta-schema before decoding.
func (h *APIHandlers) decodeTemplate(c fiber.Ctx) (*models.Template, error) {
	defects, err := checkTemplatePayload(c.Body())
	if err != nil {
		return nil, badRequest(c, "Invalid template payload: "+err.Error())
	}

	if defects != "" {
		return nil, badRequest(c, "Invalid template payload: "+defects)
	}

	var tpl models.Template
	if err := json.Unmarshal(c.Body(), &tpl); err != nil {
		return nil, badRequest(c, "Invalid template payload: "+err.Error())
	}

	return &tpl, nil
}

func (h *APIHandlers) DeleteTemplate(c fiber.Ctx) error {
	if err := h.service.DeleteTemplate(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ResetTemplate(c fiber.Ctx) error {
	if err := h.service.ResetTemplate(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ResetAllTemplates(c fiber.Ctx) error {
	if err := h.service.ResetAllTemplates(c.Context()); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GenerateConfig(c fiber.Ctx) error {
	var overrides models.ConfigDocument

	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &overrides); err != nil {
			return badRequest(c, "Invalid overrides payload: "+err.Error())
		}
	}

	doc, err := h.service.GenerateConfig(c.Params("id"), overrides)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(doc)
}

type validateRequest struct {
	Config     models.ConfigDocument `json:"config"`
	TemplateID string                `json:"templateId"`
}

func (h *APIHandlers) ValidateConfig(c fiber.Ctx) error {
	var req validateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid validate payload: "+err.Error())
	}

	templateID := req.TemplateID
	if templateID == "" {
		templateID = req.Config.TemplateID()
	}

	return c.JSON(h.service.Validate(req.Config, templateID))
}

func (h *APIHandlers) ValidateAllConfigs(c fiber.Ctx) error {
	var docs []models.ConfigDocument
	if err := json.Unmarshal(c.Body(), &docs); err != nil {
		return badRequest(c, "Invalid configs payload: "+err.Error())
	}

	return c.JSON(h.service.ValidateAll(docs))
}

func (h *APIHandlers) AutoFixConfig(c fiber.Ctx) error {
	var req validateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid autofix payload: "+err.Error())
	}

	templateID := req.TemplateID
	if templateID == "" {
		templateID = req.Config.TemplateID()
	}

	fixed := h.service.AutoFix(req.Config, templateID)

	return c.JSON(fiber.Map{
		"config": fixed,
		"report": h.service.Validate(fixed, templateID),
	})
}

type saveVersionRequest struct {
	Config  models.ConfigDocument `json:"config"`
	Comment string                `json:"comment"`
	Author  string                `json:"author"`
}

func (h *APIHandlers) SaveVersion(c fiber.Ctx) error {
	var req saveVersionRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid version payload: "+err.Error())
	}

	opts := []history.AddOption{}
	if req.Author != "" {
		opts = append(opts, history.WithAuthor(req.Author))
	}

	version, err := h.service.SaveVersion(c.Context(), c.Params("id"), req.Config, req.Comment, opts...)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(version)
}

func (h *APIHandlers) GetHistory(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"configId": c.Params("id"),
		"versions": h.service.History(c.Params("id")),
	})
}

func (h *APIHandlers) GetVersion(c fiber.Ctx) error {
	n, err := strconv.Atoi(c.Params("version"))
	if err != nil {
		return badRequest(c, "Version must be a number")
	}

	version := h.service.Version(c.Params("id"), n)
	if version == nil {
		return notFound(c, "Version not found")
	}

	return c.JSON(version)
}

func (h *APIHandlers) RestoreVersion(c fiber.Ctx) error {
	n, err := strconv.Atoi(c.Params("version"))
	if err != nil {
		return badRequest(c, "Version must be a number")
	}

	version, err := h.service.RestoreVersion(c.Context(), c.Params("id"), n)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(version)
}

func (h *APIHandlers) DiffVersions(c fiber.Ctx) error {
	from, err := strconv.Atoi(c.Query("from"))
	if err != nil {
		return badRequest(c, "Query parameter \"from\" must be a number")
	}

	to, err := strconv.Atoi(c.Query("to"))
	if err != nil {
		return badRequest(c, "Query parameter \"to\" must be a number")
	}

	comparison, err := h.service.CompareVersions(c.Params("id"), from, to)
	if err != nil {
		return handleServiceError(c, err)
	}

	text, err := h.service.DiffVersions(c.Params("id"), from, to)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"changes": comparison.Changes,
		"details": comparison.Details,
		"diff":    text,
	})
}

func (h *APIHandlers) ExportHistory(c fiber.Ctx) error {
	payload, err := h.service.ExportHistory(c.Params("id"))
	if err != nil {
		return internalError(c, err)
	}

	c.Set("Content-Type", "application/json")

	return c.SendString(payload)
}

func (h *APIHandlers) ImportHistory(c fiber.Ctx) error {
	if err := h.service.ImportHistory(c.Context(), string(c.Body())); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) DeleteHistory(c fiber.Ctx) error {
	if err := h.service.DeleteHistory(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	message, healthy := h.service.HealthCheck(c.Context())

	status := "healthy"
	httpStatus := http.StatusOK

	if !healthy {
		status = "unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
	})
}

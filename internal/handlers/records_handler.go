package handlers

import (
	"strings"

	"cedi-api/internal/models"
	"cedi-api/internal/pkg/validation"
	"cedi-api/internal/schema"
	"cedi-api/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// BulkDeleteRequest carries the ids for a bulk delete
type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// RecordsHandler exposes the cached business records over REST. One set of
// routes covers every entity; the entity name is a path parameter resolved
// against the schema catalog.
type RecordsHandler struct {
	dataService services.DataService
	logger      *zap.Logger
}

// NewRecordsHandler creates a new RecordsHandler
func NewRecordsHandler(dataService services.DataService, logger *zap.Logger) *RecordsHandler {
	return &RecordsHandler{
		dataService: dataService,
		logger:      logger,
	}
}

// List handles GET /api/v1/data/:entity requests. With a page query
// parameter the response is paginated; without it the full filtered list
// comes back.
func (h *RecordsHandler) List(c *fiber.Ctx) error {
	entity, err := h.entityParam(c)
	if err != nil {
		return err
	}

	opts := services.ListOptions{
		RDCID:     c.Query("rdc_id"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	for key, vals := range c.Queries() {
		switch key {
		case "rdc_id", "sort_by", "sort_order", "page", "page_size", "search", "search_fields":
			continue
		}
		if opts.Filters == nil {
			opts.Filters = map[string]any{}
		}
		opts.Filters[key] = vals
	}

	if c.Query("page") == "" {
		records := h.dataService.GetAll(c.Context(), entity, opts)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": records, "total": len(records)})
	}

	pageOpts := services.PageOptions{
		ListOptions: opts,
		Page:        c.QueryInt("page", 1),
		PageSize:    c.QueryInt("page_size", 20),
		Search:      c.Query("search"),
	}
	if fields := c.Query("search_fields"); fields != "" {
		pageOpts.SearchFields = strings.Split(fields, ",")
	}
	return c.Status(fiber.StatusOK).JSON(h.dataService.GetPaginated(c.Context(), entity, pageOpts))
}

// Get handles GET /api/v1/data/:entity/:id requests
func (h *RecordsHandler) Get(c *fiber.Ctx) error {
	entity, err := h.entityParam(c)
	if err != nil {
		return err
	}

	rec := h.dataService.GetByID(c.Context(), entity, c.Params("id"))
	if rec == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "record not found"})
	}
	return c.Status(fiber.StatusOK).JSON(rec)
}

// Create handles POST /api/v1/data/:entity requests
func (h *RecordsHandler) Create(c *fiber.Ctx) error {
	entity, err := h.entityParam(c)
	if err != nil {
		return err
	}

	var fields map[string]any
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	rec := h.dataService.Create(c.Context(), entity, fields, h.userID(c))
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// Update handles PUT /api/v1/data/:entity/:id requests
func (h *RecordsHandler) Update(c *fiber.Ctx) error {
	entity, err := h.entityParam(c)
	if err != nil {
		return err
	}

	var partial map[string]any
	if err := c.BodyParser(&partial); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	rec := h.dataService.Update(c.Context(), entity, c.Params("id"), partial, h.userID(c))
	if rec == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "record not found"})
	}
	return c.Status(fiber.StatusOK).JSON(rec)
}

// Delete handles DELETE /api/v1/data/:entity/:id requests
func (h *RecordsHandler) Delete(c *fiber.Ctx) error {
	entity, err := h.entityParam(c)
	if err != nil {
		return err
	}

	if !h.dataService.Delete(c.Context(), entity, c.Params("id"), h.userID(c)) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "record not found"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// BulkDelete handles POST /api/v1/data/:entity/bulk-delete requests
func (h *RecordsHandler) BulkDelete(c *fiber.Ctx) error {
	entity, err := h.entityParam(c)
	if err != nil {
		return err
	}

	var req BulkDeleteRequest
	if !validation.ParseAndValidate(c, &req) {
		return nil
	}

	deleted := h.dataService.BulkDelete(c.Context(), entity, req.IDs, h.userID(c))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "deleted": deleted})
}

// AuditLogs handles GET /api/v1/audit-logs requests
func (h *RecordsHandler) AuditLogs(c *fiber.Ctx) error {
	filter := services.AuditFilter{
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
		UserID:     c.Query("user_id"),
		Action:     models.AuditAction(c.Query("action")),
		FromDate:   c.Query("from_date"),
		ToDate:     c.Query("to_date"),
		Limit:      c.QueryInt("limit", 0),
	}
	logs := h.dataService.GetAuditLogs(c.Context(), filter)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": logs, "total": len(logs)})
}

// Export handles GET /api/v1/export requests
func (h *RecordsHandler) Export(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.dataService.ExportAll(c.Context(), h.userID(c)))
}

// Import handles POST /api/v1/import requests
func (h *RecordsHandler) Import(c *fiber.Ctx) error {
	var data map[string][]models.Record
	if err := c.BodyParser(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	h.dataService.ImportData(c.Context(), data)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// Stats handles GET /api/v1/stats requests
func (h *RecordsHandler) Stats(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.dataService.Stats(c.Context()))
}

// RefreshCache handles POST /api/v1/cache/refresh requests. Without an
// entity query parameter every entity is refreshed.
func (h *RecordsHandler) RefreshCache(c *fiber.Ctx) error {
	h.dataService.Refresh(c.Context(), c.Query("entity"))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// ClearCache handles POST /api/v1/cache/clear requests
func (h *RecordsHandler) ClearCache(c *fiber.Ctx) error {
	h.dataService.ClearCache()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// SetupRecordsRoutes registers the record routes with the Fiber app
func (h *RecordsHandler) SetupRecordsRoutes(router fiber.Router) {
	router.Get("/data/:entity", h.List)
	router.Post("/data/:entity", h.Create)
	router.Post("/data/:entity/bulk-delete", h.BulkDelete)
	router.Get("/data/:entity/:id", h.Get)
	router.Put("/data/:entity/:id", h.Update)
	router.Delete("/data/:entity/:id", h.Delete)
	router.Get("/audit-logs", h.AuditLogs)
	router.Get("/export", h.Export)
	router.Post("/import", h.Import)
	router.Get("/stats", h.Stats)
	router.Post("/cache/refresh", h.RefreshCache)
	router.Post("/cache/clear", h.ClearCache)
}

// entityParam validates the :entity path parameter against the catalog.
func (h *RecordsHandler) entityParam(c *fiber.Ctx) (string, error) {
	entity := c.Params("entity")
	if !schema.IsKnownEntity(entity) {
		return "", fiber.NewError(fiber.StatusNotFound, "unknown entity: "+entity)
	}
	return entity, nil
}

// userID reads the acting user from the request header, defaulting on the
// service side when absent.
func (h *RecordsHandler) userID(c *fiber.Ctx) string {
	return c.Get("X-User-ID")
}

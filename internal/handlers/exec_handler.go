package handlers

import (
	"encoding/json"

	"cedi-api/internal/models"
	"cedi-api/internal/pkg/validation"
	"cedi-api/internal/schema"
	"cedi-api/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ExecHandler handles the remote execution endpoint. Write clients POST
// their requests as text/plain JSON or as a form with a "data" field, so
// the body is decoded by hand rather than by content type. Failures are
// reported inside the response body with HTTP 200; only transport-level
// problems surface as non-2xx.
type ExecHandler struct {
	execService services.ExecService
	logger      *zap.Logger
}

// NewExecHandler creates a new ExecHandler
func NewExecHandler(execService services.ExecService, logger *zap.Logger) *ExecHandler {
	return &ExecHandler{
		execService: execService,
		logger:      logger,
	}
}

// Execute handles POST /api/v1/exec requests
func (h *ExecHandler) Execute(c *fiber.Ctx) error {
	body := []byte(c.FormValue("data"))
	if len(body) == 0 {
		body = c.Body()
	}

	var req models.SyncRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.Warn("Exec request with undecodable body", zap.Error(err))
		return c.Status(fiber.StatusOK).JSON(models.SyncResponse{
			Success: false,
			Error:   "invalid request body: " + err.Error(),
		})
	}

	if errs := validation.ValidateStruct(req); errs != nil {
		msg := validation.Messages(errs)
		h.logger.Warn("Exec request failed validation", zap.String("details", msg))
		return c.Status(fiber.StatusOK).JSON(models.SyncResponse{
			Success: false,
			Error:   msg,
		})
	}

	h.logger.Debug("Handling exec request",
		zap.String("action", req.Action),
		zap.String("entity", req.Entity),
		zap.String("id", req.ID))

	resp := h.execService.Execute(c.Context(), req)
	if !resp.Success {
		h.logger.Warn("Exec request failed",
			zap.String("action", req.Action),
			zap.String("entity", req.Entity),
			zap.String("error", resp.Error))
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// Ping handles GET /api/v1/exec requests, confirming the endpoint is up
func (h *ExecHandler) Ping(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":         true,
		"message":         "exec endpoint is running",
		"availableSheets": schema.Entities(),
	})
}

// SetupExecRoutes registers the execution endpoint with the Fiber app
func (h *ExecHandler) SetupExecRoutes(router fiber.Router) {
	router.Get("/exec", h.Ping)
	router.Post("/exec", h.Execute)
}

package handlers

import (
	"net/url"

	"cedi-api/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SheetsHandler serves the spreadsheet read path in the same shape the
// Google Sheets values API uses, so the cache reader can point at either.
type SheetsHandler struct {
	execService services.ExecService
	readKey     string
	logger      *zap.Logger
}

// NewSheetsHandler creates a new SheetsHandler. An empty readKey disables
// the key check.
func NewSheetsHandler(execService services.ExecService, readKey string, logger *zap.Logger) *SheetsHandler {
	return &SheetsHandler{
		execService: execService,
		readKey:     readKey,
		logger:      logger,
	}
}

// GetValues handles GET /api/v1/sheets/:spreadsheet/values/:sheet requests
func (h *SheetsHandler) GetValues(c *fiber.Ctx) error {
	if h.readKey != "" && c.Query("key") != h.readKey {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "invalid or missing API key",
		})
	}

	sheet, err := urlDecodeParam(c, "sheet")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid sheet name"})
	}

	grid, err := h.execService.ReadValues(c.Context(), sheet)
	if err != nil {
		h.logger.Error("Failed to read sheet values", zap.String("sheet", sheet), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read sheet"})
	}
	if grid == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "sheet not found: " + sheet,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"values": grid})
}

// SetupSheetsRoutes registers the read path with the Fiber app
func (h *SheetsHandler) SetupSheetsRoutes(router fiber.Router) {
	router.Get("/sheets/:spreadsheet/values/:sheet", h.GetValues)
}

// urlDecodeParam unescapes a path parameter; sheet names carry spaces.
func urlDecodeParam(c *fiber.Ctx, name string) (string, error) {
	return url.PathUnescape(c.Params(name))
}

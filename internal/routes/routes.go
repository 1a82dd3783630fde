package routes

import (
	"database/sql"
	"time"

	"cedi-api/internal/config"
	"cedi-api/internal/handlers"
	"cedi-api/internal/logging"
	"cedi-api/internal/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SetupRoutes configures the application routes.
func SetupRoutes(
	app *fiber.App,
	cfg *config.Config,
	logger *zap.Logger,
	recordsHandler *handlers.RecordsHandler,
	execHandler *handlers.ExecHandler,
	sheetsHandler *handlers.SheetsHandler,
	cache *store.Cache,
	sqliteDB *sql.DB, // Pass DB handle for health check
) {
	logger.Info("Setting up application routes...")

	// --- Public Routes ---

	// Health Check
	app.Get("/health", func(c *fiber.Ctx) error {
		lg := logging.GetLogger()
		healthStatus := fiber.Map{"status": "healthy", "timestamp": time.Now().UTC()}
		dbStatus := fiber.Map{}

		if sqliteDB != nil {
			if err := sqliteDB.PingContext(c.Context()); err == nil {
				dbStatus["sqlite"] = "connected"
			} else {
				dbStatus["sqlite"] = "disconnected"
				lg.Warn("Health check: SQLite ping failed", zap.Error(err))
			}
		} else {
			dbStatus["sqlite"] = "uninitialized"
		}

		if cache != nil {
			if cache.Initialized() {
				dbStatus["cache"] = "initialized"
			} else {
				dbStatus["cache"] = "initializing"
			}
		} else {
			dbStatus["cache"] = "uninitialized"
		}
		healthStatus["dependencies"] = dbStatus
		return c.Status(fiber.StatusOK).JSON(healthStatus)
	})

	// --- API v1 Routes ---
	api := app.Group("/api/v1")

	// Record CRUD over the local cache
	recordsHandler.SetupRecordsRoutes(api) // Example: GET /api/v1/data/products

	// Remote execution endpoint. Write clients POST here; it mutates the
	// sheet rows directly, bypassing the cache.
	execHandler.SetupExecRoutes(api) // Example: POST /api/v1/exec

	// Sheets-shaped read path over the same rows
	sheetsHandler.SetupSheetsRoutes(api) // Example: GET /api/v1/sheets/main/values/productos
}

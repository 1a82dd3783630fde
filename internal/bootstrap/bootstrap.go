package bootstrap

import (
	"database/sql"

	"cedi-api/internal/config"
	"cedi-api/internal/handlers"
	"cedi-api/internal/schema"
	"cedi-api/internal/services"
	"cedi-api/internal/sheets"
	"cedi-api/internal/store"
	"cedi-api/internal/syncer"
	"cedi-api/internal/tables"

	"go.uber.org/zap"
)

// AppComponents holds the initialized components like handlers, stores, and services.
type AppComponents struct {
	RecordsHandler *handlers.RecordsHandler
	ExecHandler    *handlers.ExecHandler
	SheetsHandler  *handlers.SheetsHandler
	Cache          *store.Cache
	Dispatcher     *syncer.Dispatcher
	DataService    services.DataService
	ExecService    services.ExecService
}

// InitializeAppComponents creates and wires up the application's core
// components: stores, the cache, the sync dispatcher, services, and handlers.
func InitializeAppComponents(
	cfg *config.Config,
	logger *zap.Logger,
	sqliteDB *sql.DB,
) (*AppComponents, error) {

	logger.Info("Initializing application components: Stores, Cache, Dispatcher, Services, Handlers...")

	// --- 1. Initialize Stores ---
	// Snapshots back the record cache; the table store backs the exec endpoint.
	snapshots := store.NewSQLiteSnapshotStore(sqliteDB)
	tableStore := tables.NewSQLiteTableStore(sqliteDB, logger)
	logger.Info("Stores initialized.")

	// --- 2. Initialize Remote Reader and Cache ---
	// Without a configured base URL the cache runs local-only and serves
	// whatever the snapshot store holds.
	var reader store.TableReader
	if cfg.SheetsBaseURL != "" {
		reader = sheets.NewReader(cfg.SheetsBaseURL, cfg.SheetsSpreadsheetID, cfg.SheetsAPIKey, logger)
		logger.Info("Remote sheet reader initialized.", zap.String("baseURL", cfg.SheetsBaseURL))
	} else {
		logger.Warn("SHEETS_BASE_URL not set, cache will run in local-only mode.")
	}
	cache := store.NewCache(snapshots, reader, schema.Entities(), logger)
	logger.Info("Cache initialized.")

	// --- 3. Initialize Sync Dispatcher ---
	dispatcher := syncer.NewDispatcher(cfg.ExecEndpointURL, cfg.SyncQueueSize, logger)
	logger.Info("Sync dispatcher initialized.")

	// --- 4. Initialize Services ---
	dataService := services.NewDataService(cache, dispatcher, schema.Entities(), cfg.DefaultRDC, logger)
	execService := services.NewExecService(tableStore, logger)
	logger.Info("Services initialized.")

	// --- 5. Initialize Handlers ---
	recordsHandler := handlers.NewRecordsHandler(dataService, logger)
	execHandler := handlers.NewExecHandler(execService, logger)
	sheetsHandler := handlers.NewSheetsHandler(execService, cfg.SheetsAPIKey, logger)
	logger.Info("Handlers initialized.")

	logger.Info("Application components initialization complete.")

	return &AppComponents{
		RecordsHandler: recordsHandler,
		ExecHandler:    execHandler,
		SheetsHandler:  sheetsHandler,
		Cache:          cache,
		Dispatcher:     dispatcher,
		DataService:    dataService,
		ExecService:    execService,
	}, nil
}

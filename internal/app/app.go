package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"cedi-api/internal/bootstrap"
	"cedi-api/internal/config"
	"cedi-api/internal/database"
	"cedi-api/internal/logging"
	"cedi-api/internal/middleware"
	routes "cedi-api/internal/routes"
	"cedi-api/internal/utils"

	"github.com/DeRuina/timberjack"
	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Run initializes and starts the application
func Run() {
	var logger *zap.Logger
	var sqliteDB *sql.DB
	var cfg *config.Config
	var err error
	var appFiber *fiber.App
	var components *bootstrap.AppComponents
	var fileSyncer zapcore.WriteSyncer

	initAppStartTime := time.Now()

	// --- 1. Load Configuration ---
	tempConfigLogger, _ := zap.NewProduction(zap.ErrorOutput(zapcore.Lock(os.Stderr)))
	defer tempConfigLogger.Sync()

	cfg, err = config.LoadConfig(tempConfigLogger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- 2. Create File Writer/Syncer for timberjack ---
	logDir := filepath.Dir(cfg.LogFilePath)
	if logDir != "." && logDir != "/" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: Failed to ensure log directory %s exists: %v\n", logDir, err)
			os.Exit(1)
		}
	}
	timberJackLogger := &timberjack.Logger{
		Filename:         cfg.LogFilePath,
		MaxSize:          cfg.LogMaxSize,
		MaxBackups:       cfg.LogMaxBackups,
		MaxAge:           cfg.LogMaxAge,
		Compress:         cfg.LogCompress,
		LocalTime:        true,
		RotationInterval: time.Duration(cfg.LogRotateInterval) * time.Hour,
	}
	fileSyncer = zapcore.AddSync(timberJackLogger)
	fmt.Fprintf(os.Stderr, "[INFO] File syncer created for path: %s with MaxSize: %d MB, RotateInterval: %d hours\n", cfg.LogFilePath, cfg.LogMaxSize, cfg.LogRotateInterval)

	// --- 3. Initialize Main Application Logger ---
	logger, err = logging.InitializeLogger(cfg, fileSyncer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize application logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobalLogger(logger)
	logger.Info("Global application logger has been set.")

	// --- 4. Trace Config Details ---
	utils.TraceConfigDetails(logger, cfg)

	// --- 5. Initialize SQLite Database ---
	sqliteDB, err = database.InitSQLite(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize SQLite database", zap.Error(err))
	}

	// --- 6. Initialize Fiber App ---
	logger.Info("Initializing Fiber application...")
	appFiber = fiber.New(fiber.Config{
		AppName: "cedi-api",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			lg := middleware.GetRequestLogger(c)
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) && e != nil {
				code = e.Code
			}
			fields := []zap.Field{
				zap.Int("status", code),
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
				zap.String("ip", c.IP()),
				zap.Error(err),
			}
			if reqIDStr, ok := c.Locals(middleware.RequestIDKey).(string); ok && reqIDStr != "" {
				fields = append(fields, zap.String("request_id", reqIDStr))
			}
			if code == fiber.StatusNotFound {
				lg.Warn("Resource not found", fields...)
			} else {
				lg.Error("Generic ErrorHandler", fields...)
			}
			resp := fiber.Map{"error": "An unexpected error occurred"}
			if cfg != nil && cfg.AppEnv != "production" {
				if err != nil {
					resp["detail"] = err.Error()
				} else {
					resp["detail"] = "Error object was nil"
				}
			}
			return c.Status(code).JSON(resp)
		},
	})

	// --- 7. Initialize Application Components (Bootstrap) ---
	components, err = bootstrap.InitializeAppComponents(cfg, logger, sqliteDB)
	if err != nil {
		logger.Fatal("Failed to initialize application components", zap.Error(err))
	}

	// --- 8. Register Middleware ---
	appFiber.Use(recover.New(recover.Config{
		EnableStackTrace: strings.ToLower(cfg.LogLevel) == "debug",
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			lg := middleware.GetRequestLogger(c)
			if lg == nil {
				lg = logging.GetLogger()
			}
			lg.Error("Panic recovered", zap.Any("panic_value", e))
		},
	}))
	logger.Info("Configuring CORS", zap.String("origins", cfg.CORSAllowOrigins), zap.String("methods", cfg.CORSAllowMethods), zap.String("headers", cfg.CORSAllowHeaders))
	appFiber.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: cfg.CORSAllowMethods,
		AllowHeaders: cfg.CORSAllowHeaders,
	}))
	appFiber.Use(middleware.RequestLogger(logger))
	if strings.ToLower(cfg.LogLevel) == "debug" {
		appFiber.Use(middleware.RequestDebugLogger())
	}
	appFiber.Use(fiberzap.New(fiberzap.Config{
		Logger: logger,
		Fields: []string{"status", "method", "url", "ip", "latency", "error"},
		FieldsFunc: func(c *fiber.Ctx) []zap.Field {
			fields := []zap.Field{zap.String("log_type", "access")}
			reqID := ""
			if idVal := c.Locals(middleware.RequestIDKey); idVal != nil {
				if idStr, ok := idVal.(string); ok {
					reqID = idStr
				}
			}
			if reqID == "" {
				reqID = c.Get(middleware.RequestIDHeader)
			}
			if reqID != "" {
				fields = append(fields, zap.String("request_id", reqID))
			}
			return fields
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))

	// --- 9. Setup Application Routes ---
	routes.SetupRoutes(appFiber, cfg, logger, components.RecordsHandler, components.ExecHandler, components.SheetsHandler, components.Cache, sqliteDB)

	// --- 10. Start Dispatcher and Warm the Cache ---
	components.Dispatcher.Start()
	go components.Cache.Initialize(context.Background())

	// --- 11. Start Server & Graceful Shutdown ---
	serverCtx, cancelServerCtx := context.WithCancel(context.Background())
	defer cancelServerCtx()
	serverStopped := make(chan struct{})

	initAppDurationMs := time.Since(initAppStartTime).Milliseconds()

	go func() {
		defer close(serverStopped)
		listenAddr := ":" + cfg.Port
		logger.Info(fmt.Sprintf("Completed initialization application in %d ms.", initAppDurationMs))
		logger.Info("Starting Fiber server...",
			zap.String("address", listenAddr),
			zap.Int("pid", os.Getpid()),
			zap.String("app_env", cfg.AppEnv),
		)

		if err := appFiber.Listen(listenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server listener failed", zap.String("address", listenAddr), zap.Error(err))
			cancelServerCtx()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	select {
	case s := <-sig:
		logger.Info("Shutdown signal received.", zap.String("signal", s.String()))
	case <-serverCtx.Done():
		logger.Info("Server context cancelled, initiating shutdown.")
	}

	logger.Info("Initiating graceful shutdown...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancelShutdown()

	// Stop the dispatcher first so queued writes drain before the DB closes
	components.Dispatcher.Stop()

	if err := appFiber.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Fiber server shutdown failed", zap.Error(err))
	} else {
		logger.Info("Fiber server gracefully stopped.")
	}
	<-serverStopped
	logger.Info("HTTP listener goroutine stopped.")

	logger.Info("Syncing file/console logger before shutdown...")
	if errSync := logger.Sync(); errSync != nil {
		errMsg := errSync.Error()
		if strings.Contains(errMsg, "handle is invalid") || strings.Contains(errMsg, "sync /dev/stdout") {
			logger.Debug("Logger sync warning for stdout (handle likely invalid during shutdown).", zap.Error(errSync))
		} else {
			logger.Warn("Error syncing file/console logger.", zap.Error(errSync))
			fmt.Fprintf(os.Stderr, "[WARN] Error syncing file/console logger: %v\n", errSync)
		}
	}
	fmt.Println("[INFO] Logger sync attempts completed.")

	if sqliteDB != nil {
		if errClose := sqliteDB.Close(); errClose != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] Error closing SQLite database: %v\n", errClose)
		} else {
			fmt.Println("[INFO] SQLite database connection closed.")
		}
	}

	fmt.Println("[INFO] Application shutdown complete.")
}

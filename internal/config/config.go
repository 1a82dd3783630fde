package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap" // Use logger for loading errors
)

// Config holds all configuration for the application
type Config struct {
	AppEnv           string
	Port             string
	CORSAllowOrigins string
	CORSAllowMethods string
	CORSAllowHeaders string

	// Spreadsheet read path. SheetsBaseURL may point at the real Sheets
	// values API or at this service's own /api/v1/sheets route. Empty
	// means local-only mode: no remote reads on startup.
	SheetsBaseURL       string
	SheetsSpreadsheetID string
	SheetsAPIKey        string

	// Remote write endpoint. Empty disables outbound sync entirely.
	ExecEndpointURL string
	SyncQueueSize   int

	SQLiteDBPath string
	DefaultRDC   string

	LogFilePath       string
	LogLevel          string
	LogRotateInterval int // Hour
	LogMaxSize        int // MB
	LogMaxBackups     int
	LogMaxAge         int // Days
	LogCompress       bool
}

// LoadConfig reads configuration from environment variables or .env file
func LoadConfig(logger *zap.Logger) (*Config, error) { // logger can be nil here
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "local" // Default to local if not set
	}

	envFileName := fmt.Sprintf(".env.%s", appEnv)
	if _, err := os.Stat(envFileName); err == nil {
		if err := godotenv.Load(envFileName); err != nil {
			if logger != nil {
				logger.Warn("Error loading .env file, continuing with environment variables", zap.String("file", envFileName), zap.Error(err))
			}
		} else {
			if logger != nil {
				logger.Info("Loaded configuration", zap.String("file", envFileName))
			}
		}
	} else if appEnv == "local" {
		// Try loading .env.local by default if .env.local specifically exists
		if _, err := os.Stat(".env.local"); err == nil {
			if err := godotenv.Load(".env.local"); err != nil {
				if logger != nil {
					logger.Warn("Error loading .env.local file", zap.Error(err))
				}
			} else {
				if logger != nil {
					logger.Info("Loaded configuration from .env.local")
				}
			}
		} else {
			if logger != nil {
				logger.Warn(".env.local not found, relying on environment variables or defaults")
			}
		}
	} else {
		if logger != nil {
			logger.Warn("No specific .env file found for environment, relying on environment variables or defaults", zap.String("environment", appEnv))
		}
	}

	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "local"),
		Port:   getEnv("PORT", "3000"),

		SheetsBaseURL:       getEnv("SHEETS_BASE_URL", ""),
		SheetsSpreadsheetID: getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetsAPIKey:        getEnv("SHEETS_API_KEY", ""),

		ExecEndpointURL: getEnv("EXEC_ENDPOINT_URL", ""),
		SyncQueueSize:   getEnvAsInt("SYNC_QUEUE_SIZE", 256),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/cedi.db"),
		DefaultRDC:   getEnv("DEFAULT_RDC_ID", ""),

		LogFilePath:       getEnv("LOG_FILE_PATH", "./logs/app.log"),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogRotateInterval: getEnvAsInt("LOG_ROTATE_INTERVAL", 1),
		LogMaxSize:        getEnvAsInt("LOG_MAX_SIZE", 100),
		LogMaxBackups:     getEnvAsInt("LOG_MAX_BACKUPS", 5),
		LogMaxAge:         getEnvAsInt("LOG_MAX_AGE", 30),
		LogCompress:       getEnvAsBool("LOG_COMPRESS", false),

		// Default AllowOrigins to "*" for local, empty for others (forcing explicit setting)
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", func() string {
			if getEnv("APP_ENV", "local") == "local" || getEnv("APP_ENV", "local") == "development" {
				return "*" // Be permissive in local/dev
			}
			return "" // Force setting in prod/other envs
		}()),
		CORSAllowMethods: getEnv("CORS_ALLOW_METHODS", "GET,POST,HEAD,PUT,DELETE,PATCH"),
		CORSAllowHeaders: getEnv("CORS_ALLOW_HEADERS", "Origin,Content-Type,Accept,Authorization,X-User-ID"),
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "dpanic": true, "panic": true, "fatal": true}
	if !validLevels[cfg.LogLevel] {
		if logger != nil {
			logger.Warn("Invalid LOG_LEVEL specified, defaulting to 'info'", zap.String("invalidLevel", cfg.LogLevel))
		}
		cfg.LogLevel = "info" // Reset to default if invalid
	}

	if cfg.SheetsBaseURL != "" && cfg.SheetsSpreadsheetID == "" {
		if logger != nil {
			logger.Error("SHEETS_SPREADSHEET_ID must be set when SHEETS_BASE_URL is configured")
		}
		return nil, fmt.Errorf("SHEETS_SPREADSHEET_ID is required when SHEETS_BASE_URL is set")
	}
	if cfg.ExecEndpointURL == "" {
		if logger != nil {
			logger.Warn("EXEC_ENDPOINT_URL is not set. Writes will stay local and will not be synced.")
		}
	}

	// Add warning for default/empty CORS origins in production
	if cfg.AppEnv != "local" && cfg.AppEnv != "development" && (cfg.CORSAllowOrigins == "*" || cfg.CORSAllowOrigins == "") {
		if logger != nil {
			logger.Warn("CORS_ALLOW_ORIGINS is set to '*' or is empty in a non-local/dev environment. This is insecure. Set specific origins for production.")
		}
		return nil, fmt.Errorf("CORS_ALLOW_ORIGINS must be set explicitly in production environments")
	}

	return cfg, nil
}

// Helper function to get env var or default
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Helper function to get env var as int or default
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// Helper function to get env var as bool or default
func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

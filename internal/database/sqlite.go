package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cedi-api/internal/config"

	_ "github.com/mattn/go-sqlite3" // SQLite Driver
	"go.uber.org/zap"
)

const createSnapshotTableSQL = `
CREATE TABLE IF NOT EXISTS tbl_snapshot (
key TEXT PRIMARY KEY,
data TEXT NOT NULL, -- Entity records as a JSON array
updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const createSheetRowTableSQL = `
CREATE TABLE IF NOT EXISTS tbl_sheet_row (
sheet TEXT NOT NULL,
rownum INTEGER NOT NULL,
cells TEXT NOT NULL, -- Row cells as a JSON array of strings
PRIMARY KEY (sheet, rownum)
);
`

// InitSQLite initializes the SQLite database connection and ensures the
// snapshot and sheet row tables exist. It also creates the necessary
// directory path if it does not exist.
func InitSQLite(cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	logger.Info("Initializing SQLite database...", zap.String("requested_path", cfg.SQLiteDBPath))

	dbDir := filepath.Dir(cfg.SQLiteDBPath) // Get the directory part of the path
	if dbDir != "." && dbDir != "/" {       // Avoid trying to create "." or "/"
		logger.Debug("Checking if SQLite directory exists", zap.String("path", dbDir))
		if _, err := os.Stat(dbDir); os.IsNotExist(err) {
			logger.Info("SQLite database directory does not exist, creating...", zap.String("path", dbDir))
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				logger.Error("Failed to create SQLite database directory", zap.String("path", dbDir), zap.Error(err))
				return nil, fmt.Errorf("failed to create sqlite db directory %s: %w", dbDir, err)
			}
			logger.Info("SQLite database directory created successfully", zap.String("path", dbDir))
		} else if err != nil {
			logger.Error("Failed to check status of SQLite database directory", zap.String("path", dbDir), zap.Error(err))
			return nil, fmt.Errorf("failed to check status of sqlite db directory %s: %w", dbDir, err)
		}
	}

	// Open the database connection (file will be created if it doesn't exist)
	logger.Info("Opening SQLite database connection...", zap.String("path", cfg.SQLiteDBPath))
	db, err := sql.Open("sqlite3", cfg.SQLiteDBPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode is generally good for concurrent reads/writes
	if err != nil {
		logger.Error("Failed to open SQLite database", zap.String("path", cfg.SQLiteDBPath), zap.Error(err))
		return nil, fmt.Errorf("failed to open sqlite database at %s: %w", cfg.SQLiteDBPath, err)
	}

	db.SetMaxOpenConns(1) // Serializes writers; reads go through WAL
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close() // Close if ping fails
		logger.Error("Failed to ping SQLite database after open", zap.Error(err))
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	logger.Debug("SQLite ping successful.")

	for _, stmt := range []string{createSnapshotTableSQL, createSheetRowTableSQL} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close() // Close if table creation fails
			logger.Error("Failed to create table in SQLite", zap.Error(err))
			return nil, fmt.Errorf("failed to create sqlite tables: %w", err)
		}
	}
	logger.Debug("SQLite tables verified/created.")

	logger.Info("SQLite database initialized successfully", zap.String("path", cfg.SQLiteDBPath))
	return db, nil
}

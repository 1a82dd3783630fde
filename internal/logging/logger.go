package logging

import (
	"fmt"
	"os"
	"sync"

	"cedi-api/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger    *zap.Logger
	globalLoggersMu sync.RWMutex
)

// Custom level encoder function
func customLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + level.CapitalString() + "]") // Format with brackets
}

// Custom level encoder function with color for console
func customColorLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	var colorPrefix, colorSuffix string
	switch level {
	case zapcore.DebugLevel:
		colorPrefix = "\x1b[35m" // Magenta
		colorSuffix = "\x1b[0m"
	case zapcore.InfoLevel:
		colorPrefix = "\x1b[32m" // Green
		colorSuffix = "\x1b[0m"
	case zapcore.WarnLevel:
		colorPrefix = "\x1b[33m" // Yellow
		colorSuffix = "\x1b[0m"
	case zapcore.ErrorLevel:
		colorPrefix = "\x1b[31m" // Red
		colorSuffix = "\x1b[0m"
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		colorPrefix = "\x1b[31m" // Red
		colorSuffix = "\x1b[0m"
	default:
		colorPrefix = ""
		colorSuffix = ""
	}
	enc.AppendString(colorPrefix + "[" + level.CapitalString() + "]" + colorSuffix)
}

// CreateFileConsoleEncoderConfigs sets up the encoder configurations.
func CreateFileConsoleEncoderConfigs() (zapcore.EncoderConfig, zapcore.EncoderConfig) {
	// Console Encoder (human-readable, colored)
	consoleEncoderCfg := zap.NewDevelopmentEncoderConfig()
	consoleEncoderCfg.EncodeLevel = customColorLevelEncoder
	consoleEncoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleEncoderCfg.EncodeCaller = zapcore.ShortCallerEncoder

	// File Encoder, bracketed plain text matching the console output shape
	fileEncoderCfg := zap.NewProductionEncoderConfig()
	fileEncoderCfg.EncodeLevel = customLevelEncoder
	fileEncoderCfg.TimeKey = "timestamp"
	fileEncoderCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	fileEncoderCfg.EncodeCaller = zapcore.ShortCallerEncoder

	return consoleEncoderCfg, fileEncoderCfg
}

// InitializeLogger creates the file/console application logger.
func InitializeLogger(cfg *config.Config, fileSyncer zapcore.WriteSyncer) (*zap.Logger, error) {
	var logLevel zapcore.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] Invalid LOG_LEVEL '%s' for file/console logger, defaulting to info: %v\n", cfg.LogLevel, err)
		logLevel = zapcore.InfoLevel
	}

	consoleEncoderCfg, fileEncoderCfg := CreateFileConsoleEncoderConfigs()
	consoleSyncer := zapcore.Lock(os.Stdout)

	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderCfg), consoleSyncer, logLevel)
	fileOutputCore := zapcore.NewCore(zapcore.NewConsoleEncoder(fileEncoderCfg), fileSyncer, logLevel)

	logger := zap.New(zapcore.NewTee(consoleCore, fileOutputCore),
		zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	logger.Info("======================================================================================")
	logger.Info("File/Console application logger initialized",
		zap.String("environment", cfg.AppEnv),
		zap.String("configuredLevel", cfg.LogLevel),
		zap.String("effectiveLevel", logLevel.String()),
		zap.String("logFile", cfg.LogFilePath),
	)

	return logger, nil
}

// SetGlobalLogger sets the global logger instance.
func SetGlobalLogger(logger *zap.Logger) {
	globalLoggersMu.Lock()
	defer globalLoggersMu.Unlock()
	globalLogger = logger
}

// GetLogger returns the initialized global file/console logger.
func GetLogger() *zap.Logger {
	globalLoggersMu.RLock()
	l := globalLogger
	globalLoggersMu.RUnlock()

	if l == nil {
		fallbackLogger, _ := zap.NewProduction()
		fallbackLogger.Warn("Global file/console logger accessed before being set!")
		return fallbackLogger
	}
	return l
}

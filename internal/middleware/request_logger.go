package middleware

import (
	"cedi-api/internal/logging" // To get the base logger

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestLogger is a middleware that injects a request-scoped logger into
// c.Locals(). The logger includes a unique "request_id" field. It also
// stores the request ID string and the acting user in Locals.
func RequestLogger(baseLogger *zap.Logger) fiber.Handler {
	if baseLogger == nil {
		baseLogger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		// Generate a unique request ID
		requestID := uuid.NewString()

		// Add request_id to response headers for client-side correlation
		c.Set(RequestIDHeader, requestID)

		c.Locals(RequestIDKey, requestID)
		if userID := c.Get(UserIDHeader); userID != "" {
			c.Locals(UserIDKey, userID)
		}

		reqLogger := baseLogger.With(
			zap.String("request_id", requestID),
		)
		c.Locals(RequestLoggerKey, reqLogger)

		return c.Next()
	}
}

// GetRequestLogger retrieves the request-scoped logger from fiber.Ctx.Locals.
// Falls back to the global logger if not found.
func GetRequestLogger(c *fiber.Ctx) *zap.Logger {
	if logger, ok := c.Locals(RequestLoggerKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return logging.GetLogger()
}

// GetRequestID retrieves the request ID string from fiber.Ctx.Locals.
// Returns an empty string if not found.
func GetRequestID(c *fiber.Ctx) string {
	if reqID, ok := c.Locals(RequestIDKey).(string); ok {
		return reqID
	}
	return ""
}

// GetUserID retrieves the acting user from fiber.Ctx.Locals.
func GetUserID(c *fiber.Ctx) string {
	if userID, ok := c.Locals(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

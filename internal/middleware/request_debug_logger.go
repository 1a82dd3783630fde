package middleware

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gofiber/fiber/v2"
)

const maxBodyLogSize = 1024 // Limit body size logged (e.g., 1KB)

// RequestDebugLogger logs detailed request information (headers, body) if the logger level is Debug,
// and also logs response status and latency after the request is handled.
func RequestDebugLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		logger := GetRequestLogger(c)

		startTime := time.Now()

		// Log Request Details only if Debug is enabled
		if logger.Core().Enabled(zapcore.DebugLevel) {
			headersMap := make(map[string]string)
			c.Request().Header.VisitAll(func(key, value []byte) {
				headerKey := string(key)
				if headerKey == "Authorization" || headerKey == "Cookie" {
					headersMap[headerKey] = "*** HIDDEN ***"
				} else {
					headersMap[headerKey] = string(value)
				}
			})

			var bodyLog string
			contentType := string(c.Request().Header.ContentType())

			if len(c.BodyRaw()) > 0 && (strings.Contains(contentType, "json") || strings.Contains(contentType, "text") || strings.Contains(contentType, "form")) {
				bodyBytes := c.BodyRaw()
				if len(bodyBytes) > maxBodyLogSize {
					bodyLog = string(bodyBytes[:maxBodyLogSize]) + "... (truncated)"
				} else {
					bodyLog = string(bodyBytes)
				}
			} else if len(c.BodyRaw()) > 0 {
				bodyLog = "(Binary or non-text body, size: " + fmt.Sprintf("%d", len(c.BodyRaw())) + " bytes)"
			} else {
				bodyLog = "(Empty Body)"
			}

			logger.Debug("Incoming Request Details",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
				zap.Any("headers", headersMap),
				zap.String("body", bodyLog),
			)
		}

		err := c.Next()

		// Latency is measured across the whole downstream chain
		latency := time.Since(startTime)

		logger.Debug("Request Handled",
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", latency),
		)

		return err
	}
}

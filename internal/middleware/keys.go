package middleware

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Constants for middleware keys and values
const (
	RequestLoggerKey ContextKey = "requestLogger"
	RequestIDHeader             = "X-Request-ID" // Header name

	// Acting user for audit attribution
	UserIDHeader            = "X-User-ID"
	UserIDKey    ContextKey = "userID"

	RequestIDKey ContextKey = "requestID" // Key to store the request ID string in Locals
)

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wms-platform/inventory-lifecycle/pkg/logging"
)

// Context keys used to store request-scoped values in the Gin context.
const (
	ContextKeyRequestID     = "requestId"
	ContextKeyCorrelationID = "correlationId"
	ContextKeyTraceID       = "traceId"
	ContextKeySpanID        = "spanId"
)

// HTTP headers recognized and propagated by the middleware chain.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderTenantID      = "X-WMS-Tenant-ID"
	HeaderWarehouseID   = "X-WMS-Warehouse-ID"
	HeaderUserID        = "X-WMS-User-ID"
)

// RequestID ensures every request carries a request ID, generating one
// when the client did not supply it. The ID is echoed in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(ContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		ctx := logging.ContextWithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// CorrelationID ensures every request carries a correlation ID for tracing
// across service boundaries. Unlike the request ID, the correlation ID is
// preserved across hops.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(HeaderCorrelationID)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Set(ContextKeyCorrelationID, correlationID)
		c.Header(HeaderCorrelationID, correlationID)

		ctx := logging.ContextWithCorrelationID(c.Request.Context(), correlationID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// LoggerConfig holds configuration for the request logging middleware
type LoggerConfig struct {
	// Logger is the structured logger to use
	Logger *logging.Logger

	// ExcludePaths lists paths that should not be logged (e.g., health checks)
	ExcludePaths []string
}

// DefaultLoggerConfig returns a sensible default logging configuration
func DefaultLoggerConfig(logger *logging.Logger) *LoggerConfig {
	return &LoggerConfig{
		Logger:       logger,
		ExcludePaths: []string{"/health", "/ready", "/metrics"},
	}
}

// Logger returns request logging middleware with default configuration
func Logger(logger *logging.Logger) gin.HandlerFunc {
	return LoggerWithConfig(DefaultLoggerConfig(logger))
}

// LoggerWithConfig returns request logging middleware with the given configuration
func LoggerWithConfig(config *LoggerConfig) gin.HandlerFunc {
	skipMap := make(map[string]bool, len(config.ExcludePaths))
	for _, path := range config.ExcludePaths {
		skipMap[path] = true
	}

	return func(c *gin.Context) {
		if skipMap[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		config.Logger.HTTPRequest(
			c.Request.Context(),
			c.Request.Method,
			path,
			c.Writer.Status(),
			duration,
			c.ClientIP(),
			c.Request.UserAgent(),
		)
	}
}

// Recovery returns middleware that recovers from panics and responds
// with a structured 500 error instead of crashing the process.
func Recovery(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Panic(c.Request.Context(), recovered)
				AbortWithAppError(c, panicError(recovered))
			}
		}()
		c.Next()
	}
}

// GetRequestID returns the request ID stored in the Gin context
func GetRequestID(c *gin.Context) string {
	if v, exists := c.Get(ContextKeyRequestID); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetCorrelationID returns the correlation ID stored in the Gin context
func GetCorrelationID(c *gin.Context) string {
	if v, exists := c.Get(ContextKeyCorrelationID); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetTraceID returns the trace ID stored in the Gin context
func GetTraceID(c *gin.Context) string {
	if v, exists := c.Get(ContextKeyTraceID); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

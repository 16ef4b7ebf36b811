// Package middleware provides the HTTP middleware chain shared by all
// API surfaces: request identity, tenant extraction, logging, metrics,
// tracing, validation and error handling.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/inventory-lifecycle/pkg/logging"
	"github.com/wms-platform/inventory-lifecycle/pkg/metrics"
)

// Config holds configuration for the standard middleware chain
type Config struct {
	// ServiceName identifies the service in logs and traces
	ServiceName string

	// Logger is the structured logger used throughout the chain
	Logger *logging.Logger

	// Metrics, when set, enables HTTP metrics recording
	Metrics *metrics.Metrics

	// EnableCORS enables permissive CORS headers
	EnableCORS bool

	// EnableTracing enables the OpenTelemetry server span middleware
	EnableTracing bool

	// TenantAuth configures tenant extraction; nil uses defaults
	TenantAuth *TenantAuthConfig

	// LoggerConfig configures request logging; nil uses defaults
	LoggerConfig *LoggerConfig

	// RequestTimeout bounds handler execution; zero disables the deadline
	RequestTimeout time.Duration
}

// DefaultConfig returns a standard middleware configuration
func DefaultConfig(serviceName string, logger *logging.Logger) *Config {
	return &Config{
		ServiceName:    serviceName,
		Logger:         logger,
		EnableTracing:  true,
		RequestTimeout: 30 * time.Second,
	}
}

// Setup installs the full middleware chain on the router. Order matters:
// recovery first, then identity, then tenant, then observability, then
// validation, with error handling last so it sees every handler error.
func Setup(router *gin.Engine, config *Config) {
	InitValidator()

	router.Use(Recovery(config.Logger))
	router.Use(SecurityHeaders())
	if config.RequestTimeout > 0 {
		router.Use(Timeout(config.RequestTimeout))
	}
	router.Use(RequestID())
	router.Use(CorrelationID())
	router.Use(TenantAuth(config.TenantAuth))

	if config.EnableTracing {
		router.Use(TracingMiddleware(DefaultTracingConfig(config.ServiceName)))
	}
	if config.Metrics != nil {
		router.Use(MetricsMiddleware(config.Metrics))
	}

	if config.LoggerConfig != nil {
		router.Use(LoggerWithConfig(config.LoggerConfig))
	} else {
		router.Use(Logger(config.Logger))
	}

	router.Use(InputSanitizer())

	if config.EnableCORS {
		router.Use(CORS())
	}

	router.Use(ContentType())
	router.Use(ErrorHandler(config.Logger))

	router.NoRoute(NoRoute())
	router.NoMethod(NoMethod())
}

// CORS returns permissive CORS middleware
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, X-Correlation-ID, X-WMS-Tenant-ID, X-WMS-Warehouse-ID, X-WMS-User-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, X-Correlation-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Timeout wraps the request context with a deadline
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// SecurityHeaders sets standard security response headers
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Next()
	}
}

// HealthCheck returns a liveness handler
func HealthCheck(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   serviceName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// ReadinessCheck returns a readiness handler backed by a dependency probe
func ReadinessCheck(serviceName string, checkFn func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if checkFn != nil {
			if err := checkFn(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "not ready",
					"service": serviceName,
					"reason":  err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"service":   serviceName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// NoRoute returns the handler for unmatched routes
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, &APIErrorResponse{
			Code:      "ROUTE_NOT_FOUND",
			Message:   "The requested route does not exist",
			RequestID: GetRequestID(c),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Path:      c.Request.URL.Path,
		})
	}
}

// NoMethod returns the handler for unsupported methods on known routes
func NoMethod() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, &APIErrorResponse{
			Code:      "METHOD_NOT_ALLOWED",
			Message:   "The requested method is not allowed on this route",
			RequestID: GetRequestID(c),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Path:      c.Request.URL.Path,
		})
	}
}

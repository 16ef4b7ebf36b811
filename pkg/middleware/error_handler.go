package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/inventory-lifecycle/pkg/errors"
	"github.com/wms-platform/inventory-lifecycle/pkg/logging"
)

// APIErrorResponse is the JSON body returned for all error responses
type APIErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
	TraceID   string            `json:"traceId,omitempty"`
	Timestamp string            `json:"timestamp"`
	Path      string            `json:"path,omitempty"`
}

// ErrorHandler returns middleware that converts errors attached to the Gin
// context into structured API error responses. It should run last in the
// chain so it sees errors from every handler.
func ErrorHandler(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		appErr := errors.MapDomainError(err)

		logError(c, logger, appErr)

		if c.Writer.Written() {
			return
		}

		c.JSON(appErr.HTTPStatus, toResponse(c, appErr))
	}
}

func toResponse(c *gin.Context, appErr *errors.AppError) *APIErrorResponse {
	return &APIErrorResponse{
		Code:      appErr.Code,
		Message:   appErr.Message,
		Details:   appErr.Details,
		RequestID: GetRequestID(c),
		TraceID:   GetTraceID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      c.Request.URL.Path,
	}
}

func logError(c *gin.Context, logger *logging.Logger, appErr *errors.AppError) {
	contextLogger := logger.WithContext(c.Request.Context()).WithError(appErr)

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		SetSpanError(c, appErr)
		contextLogger.Error("Request failed",
			"code", appErr.Code,
			"status", appErr.HTTPStatus,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
	} else {
		contextLogger.Warn("Request rejected",
			"code", appErr.Code,
			"status", appErr.HTTPStatus,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
	}
}

// ErrorResponder provides consistent error responses for handlers that
// need to respond directly instead of using the error-handler middleware.
type ErrorResponder struct {
	logger *logging.Logger
}

// NewErrorResponder creates a new ErrorResponder
func NewErrorResponder(logger *logging.Logger) *ErrorResponder {
	return &ErrorResponder{logger: logger}
}

// RespondWithError maps any error to an API response and writes it
func (r *ErrorResponder) RespondWithError(c *gin.Context, err error) {
	appErr := errors.MapDomainError(err)
	r.RespondWithAppError(c, appErr)
}

// RespondWithAppError writes an AppError as an API response
func (r *ErrorResponder) RespondWithAppError(c *gin.Context, appErr *errors.AppError) {
	logError(c, r.logger, appErr)
	c.JSON(appErr.HTTPStatus, toResponse(c, appErr))
}

// AbortWithAppError writes an AppError response immediately and aborts
func AbortWithAppError(c *gin.Context, appErr *errors.AppError) {
	c.AbortWithStatusJSON(appErr.HTTPStatus, toResponse(c, appErr))
}

func panicError(recovered any) *errors.AppError {
	return errors.ErrInternal("an internal error occurred").Wrap(fmt.Errorf("panic: %v", recovered))
}

package application

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/wms-platform/inventory-lifecycle/internal/domain"
	"github.com/wms-platform/inventory-lifecycle/pkg/errors"
	"github.com/wms-platform/inventory-lifecycle/pkg/logging"
	"github.com/wms-platform/inventory-lifecycle/pkg/resilience"
)

// DefaultAssignmentBatchSize bounds how many unassigned items a single
// assignment run picks up when no explicit ids are given.
const DefaultAssignmentBatchSize = 100

// DefaultCandidateLimit bounds how many candidate locations an assignment
// run loads when no explicit location ids are given.
const DefaultCandidateLimit = 500

func newStockItemID() string {
	return fmt.Sprintf("STK-%s", uuid.New().String()[:8])
}

func newMovementID() string {
	return fmt.Sprintf("MOV-%s", uuid.New().String()[:8])
}

func newPickingTaskID() string {
	return fmt.Sprintf("PCK-%s", uuid.New().String()[:8])
}

func newConsignmentID() string {
	return fmt.Sprintf("CSG-%s", uuid.New().String()[:8])
}

// versionConflictRetry returns the retry policy applied to save paths that
// can lose an optimistic-versioning race. The mutating closure reloads the
// aggregate on every attempt.
func versionConflictRetry() *resilience.RetryConfig {
	config := resilience.DefaultRetryConfig()
	config.MaxAttempts = 3
	config.InitialDelay = 20 * time.Millisecond
	config.RetryableErrors = domain.IsVersionConflict
	return config
}

// mapError normalizes errors crossing the application boundary: domain
// errors keep their semantics through MapDomainError, anything else is
// logged once and wrapped as an internal error.
func mapError(ctx context.Context, logger *logging.Logger, err error, message string) error {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	if mapped := errors.MapDomainError(err); mapped.HTTPStatus != http.StatusInternalServerError {
		return mapped
	}
	logger.WithContext(ctx).WithError(err).Error(message)
	return errors.ErrInternal(message).Wrap(err)
}

func paginationFrom(page, pageSize int64) domain.Pagination {
	p := domain.DefaultPagination()
	if page > 0 {
		p.Page = page
	}
	if pageSize > 0 && pageSize <= 200 {
		p.PageSize = pageSize
	}
	return p
}

package tenant

import (
	"context"
	"errors"
)

type contextKey string

const (
	tenantIDKey    contextKey = "tenantId"
	warehouseIDKey contextKey = "warehouseId"
	userIDKey      contextKey = "userId"
)

var (
	ErrMissingTenantContext = errors.New("tenant context is required")
	ErrMissingTenantID      = errors.New("tenantId is required")
	ErrMissingWarehouseID   = errors.New("warehouseId is required")
)

// Context holds the identifiers that scope every query and operation to a
// single tenant's warehouse.
type Context struct {
	// TenantID identifies the operator owning the inventory
	TenantID string `json:"tenantId"`

	// WarehouseID identifies the physical warehouse
	WarehouseID string `json:"warehouseId"`

	// UserID identifies the acting operator, when known
	UserID string `json:"userId,omitempty"`
}

// FromContext extracts the tenant Context from a context.Context.
// Returns an error when no tenant scoping information is present.
func FromContext(ctx context.Context) (*Context, error) {
	tc := &Context{}

	if id, ok := ctx.Value(tenantIDKey).(string); ok {
		tc.TenantID = id
	}
	if id, ok := ctx.Value(warehouseIDKey).(string); ok {
		tc.WarehouseID = id
	}
	if id, ok := ctx.Value(userIDKey).(string); ok {
		tc.UserID = id
	}

	if tc.TenantID == "" {
		return nil, ErrMissingTenantContext
	}

	return tc, nil
}

// ToContext adds the tenant Context values to a context.Context.
func ToContext(ctx context.Context, tc *Context) context.Context {
	if tc == nil {
		return ctx
	}

	if tc.TenantID != "" {
		ctx = context.WithValue(ctx, tenantIDKey, tc.TenantID)
	}
	if tc.WarehouseID != "" {
		ctx = context.WithValue(ctx, warehouseIDKey, tc.WarehouseID)
	}
	if tc.UserID != "" {
		ctx = context.WithValue(ctx, userIDKey, tc.UserID)
	}

	return ctx
}

// WithTenantID returns a new context with the tenant ID set
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// WithWarehouseID returns a new context with the warehouse ID set
func WithWarehouseID(ctx context.Context, warehouseID string) context.Context {
	return context.WithValue(ctx, warehouseIDKey, warehouseID)
}

// GetTenantID extracts the tenant ID from context
func GetTenantID(ctx context.Context) string {
	if id, ok := ctx.Value(tenantIDKey).(string); ok {
		return id
	}
	return ""
}

// GetWarehouseID extracts the warehouse ID from context
func GetWarehouseID(ctx context.Context) string {
	if id, ok := ctx.Value(warehouseIDKey).(string); ok {
		return id
	}
	return ""
}

// GetUserID extracts the user ID from context
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// HasWarehouse returns true if a warehouse ID is set
func (tc *Context) HasWarehouse() bool {
	return tc.WarehouseID != ""
}

// Validate checks that the required scoping fields are present.
func (tc *Context) Validate() error {
	if tc.TenantID == "" {
		return ErrMissingTenantID
	}
	if tc.WarehouseID == "" {
		return ErrMissingWarehouseID
	}
	return nil
}

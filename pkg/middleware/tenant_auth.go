package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/inventory-lifecycle/pkg/tenant"
)

// TenantAuthConfig holds configuration for tenant extraction middleware
type TenantAuthConfig struct {
	// Required when true, requests without a tenant header are rejected
	Required bool

	// Validator optionally checks that the caller may act on the tenant
	Validator TenantValidator

	// DefaultTenantID is applied when no tenant header is present and
	// Required is false. Useful for single-tenant deployments.
	DefaultTenantID string

	// DefaultWarehouseID is applied when no warehouse header is present
	// and Required is false.
	DefaultWarehouseID string
}

// TenantValidator checks whether a user may act within a tenant
type TenantValidator interface {
	ValidateTenantAccess(userID, tenantID, warehouseID string) error
}

// DefaultTenantAuthConfig returns a permissive configuration suitable
// for development environments.
func DefaultTenantAuthConfig() *TenantAuthConfig {
	return &TenantAuthConfig{
		Required:           false,
		DefaultTenantID:    "default",
		DefaultWarehouseID: "default",
	}
}

// TenantAuth extracts the tenant context from request headers and attaches
// it to the request context. All repository operations downstream scope
// their queries by this context.
func TenantAuth(config *TenantAuthConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultTenantAuthConfig()
	}

	return func(c *gin.Context) {
		tenantID := c.GetHeader(HeaderTenantID)
		warehouseID := c.GetHeader(HeaderWarehouseID)
		userID := c.GetHeader(HeaderUserID)

		if tenantID == "" && !config.Required {
			tenantID = config.DefaultTenantID
		}
		if warehouseID == "" && !config.Required {
			warehouseID = config.DefaultWarehouseID
		}

		if config.Required && tenantID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "MISSING_TENANT_CONTEXT",
				"message": "Tenant context is required",
			})
			return
		}

		if config.Validator != nil && tenantID != "" && userID != "" {
			if err := config.Validator.ValidateTenantAccess(userID, tenantID, warehouseID); err != nil {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"code":    "UNAUTHORIZED_TENANT_ACCESS",
					"message": "Access to this tenant is not authorized",
				})
				return
			}
		}

		tc := &tenant.Context{
			TenantID:    tenantID,
			WarehouseID: warehouseID,
			UserID:      userID,
		}

		ctx := tenant.ToContext(c.Request.Context(), tc)
		c.Request = c.Request.WithContext(ctx)
		c.Set("tenantContext", tc)

		c.Next()
	}
}

// GetTenantContext retrieves the tenant context stored by TenantAuth
func GetTenantContext(c *gin.Context) *tenant.Context {
	if val, exists := c.Get("tenantContext"); exists {
		if tc, ok := val.(*tenant.Context); ok {
			return tc
		}
	}
	if tc, err := tenant.FromContext(c.Request.Context()); err == nil {
		return tc
	}
	return &tenant.Context{}
}

// RequireWarehouse rejects requests without a warehouse context. Stock and
// location operations are always warehouse-scoped.
func RequireWarehouse() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := GetTenantContext(c)
		if tc == nil || !tc.HasWarehouse() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "MISSING_WAREHOUSE_CONTEXT",
				"message": "Warehouse context is required for this endpoint",
			})
			return
		}
		c.Next()
	}
}

package cloudevents

import (
	"github.com/wms-platform/inventory-lifecycle/pkg/tenant"
)

// CloudEvents extension attribute names for tenant context and tracing.
// On the wire each becomes a "ce-" prefixed Kafka header.
const (
	ExtTenantID    = "wmstenantid"
	ExtWarehouseID = "wmswarehouseid"

	ExtCorrelationID = "wmscorrelationid"
	ExtTraceParent   = "traceparent"
)

// SetTenantContext sets tenant context extensions on a WMSCloudEvent
func (e *WMSCloudEvent) SetTenantContext(tc *tenant.Context) {
	if tc == nil {
		return
	}
	e.TenantID = tc.TenantID
	e.WarehouseID = tc.WarehouseID
}

// GetTenantContext extracts tenant context from a WMSCloudEvent
func (e *WMSCloudEvent) GetTenantContext() *tenant.Context {
	return &tenant.Context{
		TenantID:    e.TenantID,
		WarehouseID: e.WarehouseID,
	}
}

// ValidateTenantContext validates that required tenant context is present
func (e *WMSCloudEvent) ValidateTenantContext() error {
	return e.GetTenantContext().Validate()
}

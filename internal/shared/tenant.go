package shared

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/forecourt-erp/forecourt-erp/internal/platform/httpx"
)

// TenantHeader lets the cross-tenant developer identity address a tenant
// explicitly. Ordinary users are bound to their session tenant.
const TenantHeader = "X-Tenant-Id"

// RequestTenant resolves the tenant partition a request may touch. For a
// regular user that is always the session tenant; the developer identity
// must name one via the tenantId query parameter or the X-Tenant-Id header.
func RequestTenant(r *http.Request, scope Scope) (uuid.UUID, error) {
	if !scope.Developer {
		if scope.TenantID == uuid.Nil {
			return uuid.Nil, fmt.Errorf("%w: no tenant bound to session", httpx.ErrUnauthorized)
		}
		return scope.TenantID, nil
	}

	raw := r.URL.Query().Get("tenantId")
	if raw == "" {
		raw = r.Header.Get(TenantHeader)
	}
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: tenantId required for cross-tenant access", httpx.ErrValidation)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed tenant id %q", httpx.ErrValidation, raw)
	}
	return id, nil
}

// Package directory is the master list of tenants and users. It resolves an
// email to its tenant memberships and drives tenant provisioning. A user row
// belongs to exactly one tenant; the same email may exist as distinct rows
// across tenants, so the identity key is the email at directory level and
// (tenantID, userID) at authorization level.
package directory

import (
	"time"

	"github.com/google/uuid"
)

// Tenant lifecycle states. Provisioning happens in the background; callers
// poll until the tenant turns active.
const (
	TenantStatusProvisioning = "provisioning"
	TenantStatusActive       = "active"
	TenantStatusFailed       = "failed"
)

// User lifecycle states.
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
	UserStatusDeleted   = "deleted"
)

// Tenant is one isolated customer organization. Every business record in
// the system carries a tenant ID.
type Tenant struct {
	ID               uuid.UUID `json:"id"`
	OrganizationName string    `json:"organizationName"`
	SuperAdminEmail  string    `json:"superAdminEmail"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// TenantSummary is the listing shape, including the member head count.
type TenantSummary struct {
	ID               uuid.UUID `json:"id"`
	OrganizationName string    `json:"organizationName"`
	Status           string    `json:"status"`
	UserCount        int       `json:"userCount"`
	CreatedAt        time.Time `json:"createdAt"`
}

// User is one account inside one tenant.
type User struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenantId"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Membership links an email to one (tenant, user) pair.
type Membership struct {
	TenantID         uuid.UUID `json:"tenantId"`
	OrganizationName string    `json:"organizationName"`
	UserID           uuid.UUID `json:"userId"`
}

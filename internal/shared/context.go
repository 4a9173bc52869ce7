package shared

import (
	"context"

	"github.com/google/uuid"
)

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// Scope describes the authenticated actor and the tenant partition the
// request is allowed to touch. For ordinary users the tenant is bound to the
// session; the developer identity picks one per request.
type Scope struct {
	UserID    uuid.UUID
	TenantID  uuid.UUID
	Email     string
	Role      string
	Developer bool
}

// Elevated reports whether the actor may perform privileged writes such as
// feature assignment changes.
func (s Scope) Elevated() bool {
	return s.Developer || s.Role == RoleSuperAdmin
}

// Roles recognised by the authorization layer.
const (
	RoleSuperAdmin = "super_admin"
	RoleManager    = "manager"
	RoleDSM        = "dsm"
)

type scopeContextKey struct{}

// ContextWithScope stores the resolved request scope in context.
func ContextWithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// ScopeFromContext extracts the request scope. The zero Scope means the
// request is unauthenticated.
func ScopeFromContext(ctx context.Context) Scope {
	scope, _ := ctx.Value(scopeContextKey{}).(Scope)
	return scope
}

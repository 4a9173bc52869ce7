package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forecourt-erp/forecourt-erp/internal/platform/httpx"
)

const uniqueViolation = "23505"

// Repository defines persistence for tenants, users and memberships.
type Repository interface {
	InsertTenant(ctx context.Context, tenant Tenant) error
	GetTenant(ctx context.Context, id uuid.UUID) (Tenant, error)
	FindTenantBySuperAdminEmail(ctx context.Context, email string) (*Tenant, error)
	ListTenants(ctx context.Context) ([]TenantSummary, error)
	UpdateTenantStatus(ctx context.Context, id uuid.UUID, status string) error

	InsertUser(ctx context.Context, user User, passwordHash string) (User, error)
	ListUsers(ctx context.Context, tenantID uuid.UUID) ([]User, error)
	FindMembershipsByEmail(ctx context.Context, email string) ([]Membership, error)
	FindUserByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*User, string, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// InsertTenant writes a new tenant row.
func (r *PGRepository) InsertTenant(ctx context.Context, tenant Tenant) error {
	const query = `
		INSERT INTO tenants (id, organization_name, super_admin_email, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())`

	_, err := r.pool.Exec(ctx, query, tenant.ID, tenant.OrganizationName, strings.ToLower(tenant.SuperAdminEmail), tenant.Status)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: tenant already exists for %s", httpx.ErrDuplicate, tenant.SuperAdminEmail)
	}
	return err
}

// GetTenant fetches a tenant by ID.
func (r *PGRepository) GetTenant(ctx context.Context, id uuid.UUID) (Tenant, error) {
	const query = `
		SELECT id, organization_name, super_admin_email, status, created_at, updated_at
		FROM tenants WHERE id = $1`

	var t Tenant
	err := r.pool.QueryRow(ctx, query, id).Scan(&t.ID, &t.OrganizationName, &t.SuperAdminEmail, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tenant{}, fmt.Errorf("%w: tenant %s", httpx.ErrNotFound, id)
	}
	return t, err
}

// FindTenantBySuperAdminEmail returns nil when no tenant matches. The match
// is case-insensitive; emails are stored folded to lower case.
func (r *PGRepository) FindTenantBySuperAdminEmail(ctx context.Context, email string) (*Tenant, error) {
	const query = `
		SELECT id, organization_name, super_admin_email, status, created_at, updated_at
		FROM tenants WHERE super_admin_email = $1`

	var t Tenant
	err := r.pool.QueryRow(ctx, query, strings.ToLower(email)).Scan(&t.ID, &t.OrganizationName, &t.SuperAdminEmail, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTenants returns all tenants with their member counts, oldest first.
func (r *PGRepository) ListTenants(ctx context.Context) ([]TenantSummary, error) {
	const query = `
		SELECT t.id, t.organization_name, t.status, COUNT(u.id), t.created_at
		FROM tenants t
		LEFT JOIN users u ON u.tenant_id = t.id AND u.status <> 'deleted'
		GROUP BY t.id
		ORDER BY t.created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TenantSummary
	for rows.Next() {
		var s TenantSummary
		if err := rows.Scan(&s.ID, &s.OrganizationName, &s.Status, &s.UserCount, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateTenantStatus moves a tenant through its lifecycle.
func (r *PGRepository) UpdateTenantStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE tenants SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: tenant %s", httpx.ErrNotFound, id)
	}
	return nil
}

// InsertUser writes a new user row. A duplicate email within the tenant
// maps to ErrDuplicate.
func (r *PGRepository) InsertUser(ctx context.Context, user User, passwordHash string) (User, error) {
	const query = `
		INSERT INTO users (id, tenant_id, email, full_name, password_hash, role, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at`

	user.Email = strings.ToLower(user.Email)
	err := r.pool.QueryRow(ctx, query,
		user.ID, user.TenantID, user.Email, user.FullName, passwordHash, user.Role, user.Status,
	).Scan(&user.CreatedAt)
	if isUniqueViolation(err) {
		return User{}, fmt.Errorf("%w: user with email %s already exists in this organization", httpx.ErrDuplicate, user.Email)
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// ListUsers returns non-deleted users of one tenant, oldest first.
func (r *PGRepository) ListUsers(ctx context.Context, tenantID uuid.UUID) ([]User, error) {
	const query = `
		SELECT id, tenant_id, email, full_name, role, status, created_at
		FROM users
		WHERE tenant_id = $1 AND status <> 'deleted'
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.TenantID, &u.Email, &u.FullName, &u.Role, &u.Status, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// FindMembershipsByEmail resolves an email to all its (tenant, user) pairs.
func (r *PGRepository) FindMembershipsByEmail(ctx context.Context, email string) ([]Membership, error) {
	const query = `
		SELECT u.tenant_id, t.organization_name, u.id
		FROM users u
		JOIN tenants t ON t.id = u.tenant_id
		WHERE u.email = $1 AND u.status <> 'deleted'
		ORDER BY t.created_at`

	rows, err := r.pool.Query(ctx, query, strings.ToLower(email))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Membership
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.TenantID, &m.OrganizationName, &m.UserID); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// FindUserByEmail returns the user and password hash for login, or nil when
// no such user exists in the tenant.
func (r *PGRepository) FindUserByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*User, string, error) {
	const query = `
		SELECT id, tenant_id, email, full_name, role, status, created_at, password_hash
		FROM users
		WHERE tenant_id = $1 AND email = $2 AND status <> 'deleted'`

	var u User
	var hash string
	err := r.pool.QueryRow(ctx, query, tenantID, strings.ToLower(email)).Scan(
		&u.ID, &u.TenantID, &u.Email, &u.FullName, &u.Role, &u.Status, &u.CreatedAt, &hash,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return &u, hash, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

var _ Repository = (*PGRepository)(nil)

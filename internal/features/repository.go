package features

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forecourt-erp/forecourt-erp/internal/platform/db"
	"github.com/forecourt-erp/forecourt-erp/internal/platform/httpx"
)

// Repository defines persistence for feature overrides. UpsertOverrides must
// be atomic per user: either every row lands or none does.
type Repository interface {
	ListOverrides(ctx context.Context, tenantID, userID uuid.UUID) ([]Override, error)
	UpsertOverrides(ctx context.Context, tenantID, userID uuid.UUID, assignments []Assignment) error
	FindUserEmail(ctx context.Context, tenantID, userID uuid.UUID) (string, error)
	ListUserIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error)
}

// PGRepository implements Repository using PostgreSQL. Overrides live in a
// sparse table keyed (tenant_id, user_id, feature_key).
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ListOverrides returns all override rows for one user in one tenant.
func (r *PGRepository) ListOverrides(ctx context.Context, tenantID, userID uuid.UUID) ([]Override, error) {
	const query = `
		SELECT tenant_id, user_id, feature_key, allowed, updated_at
		FROM feature_overrides
		WHERE tenant_id = $1 AND user_id = $2`

	rows, err := r.pool.Query(ctx, query, tenantID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []Override
	for rows.Next() {
		var o Override
		if err := rows.Scan(&o.TenantID, &o.UserID, &o.FeatureKey, &o.Allowed, &o.UpdatedAt); err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

// UpsertOverrides writes one row per assignment inside a single transaction.
func (r *PGRepository) UpsertOverrides(ctx context.Context, tenantID, userID uuid.UUID, assignments []Assignment) error {
	const query = `
		INSERT INTO feature_overrides (tenant_id, user_id, feature_key, allowed, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (tenant_id, user_id, feature_key)
		DO UPDATE SET allowed = EXCLUDED.allowed, updated_at = NOW()`

	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, a := range assignments {
			if _, err := tx.Exec(ctx, query, tenantID, userID, a.FeatureKey, a.Allowed); err != nil {
				return fmt.Errorf("features: upsert %s: %w", a.FeatureKey, err)
			}
		}
		return nil
	})
}

// FindUserEmail resolves the email of an active user within a tenant.
func (r *PGRepository) FindUserEmail(ctx context.Context, tenantID, userID uuid.UUID) (string, error) {
	const query = `
		SELECT email FROM users
		WHERE tenant_id = $1 AND id = $2 AND status <> 'deleted'`

	var email string
	err := r.pool.QueryRow(ctx, query, tenantID, userID).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: user %s in tenant %s", httpx.ErrNotFound, userID, tenantID)
		}
		return "", err
	}
	return email, nil
}

// ListUserIDs returns the IDs of all non-deleted users in a tenant.
func (r *PGRepository) ListUserIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	const query = `
		SELECT id FROM users
		WHERE tenant_id = $1 AND status <> 'deleted'
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ Repository = (*PGRepository)(nil)

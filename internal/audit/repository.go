package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence for the audit log. There is intentionally
// no update or delete operation.
type Repository interface {
	Insert(ctx context.Context, entry Entry) (Entry, error)
	List(ctx context.Context, q Query) ([]Entry, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Insert appends one entry and returns it with ID and timestamp filled in.
func (r *PGRepository) Insert(ctx context.Context, entry Entry) (Entry, error) {
	var key pgtype.Text
	if entry.FeatureKey != nil {
		key = pgtype.Text{String: *entry.FeatureKey, Valid: true}
	}

	const query = `
		INSERT INTO feature_audit_logs (developer_email, target_user_email, feature_key, action, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		strings.ToLower(entry.DeveloperEmail),
		strings.ToLower(entry.TargetUserEmail),
		key,
		entry.Action,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// List returns entries most-recent-first, optionally filtered by target email.
func (r *PGRepository) List(ctx context.Context, q Query) ([]Entry, error) {
	query := `
		SELECT id, developer_email, target_user_email, feature_key, action, created_at
		FROM feature_audit_logs`
	args := []any{}
	if q.TargetEmail != "" {
		query += ` WHERE target_user_email = $1`
		args = append(args, strings.ToLower(q.TargetEmail))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args)+1)
	args = append(args, q.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var key pgtype.Text
		if err := rows.Scan(&e.ID, &e.DeveloperEmail, &e.TargetUserEmail, &key, &e.Action, &e.CreatedAt); err != nil {
			return nil, err
		}
		if key.Valid {
			k := key.String
			e.FeatureKey = &k
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ Repository = (*PGRepository)(nil)

package fuelproducts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forecourt-erp/forecourt-erp/internal/platform/httpx"
)

// Repository defines fuel product persistence. Every query is scoped to one
// tenant.
type Repository interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]FuelProduct, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (FuelProduct, error)
	Create(ctx context.Context, product FuelProduct) (FuelProduct, error)
	Update(ctx context.Context, product FuelProduct) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const selectColumns = `id, tenant_id, product_name, short_name, gst_percentage, tds_percentage, wgt_percentage, lfrn, is_active, created_at`

func (r *repository) List(ctx context.Context, tenantID uuid.UUID) ([]FuelProduct, error) {
	query := `SELECT ` + selectColumns + ` FROM fuel_products WHERE tenant_id = $1 ORDER BY product_name`

	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FuelProduct
	for rows.Next() {
		var p FuelProduct
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, tenantID, id uuid.UUID) (FuelProduct, error) {
	query := `SELECT ` + selectColumns + ` FROM fuel_products WHERE tenant_id = $1 AND id = $2`

	var p FuelProduct
	err := scanProduct(r.db.QueryRow(ctx, query, tenantID, id), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return FuelProduct{}, fmt.Errorf("%w: fuel product %s", httpx.ErrNotFound, id)
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, product FuelProduct) (FuelProduct, error) {
	query := `
		INSERT INTO fuel_products (id, tenant_id, product_name, short_name, gst_percentage, tds_percentage, wgt_percentage, lfrn, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		product.ID, product.TenantID, product.ProductName, product.ShortName,
		product.GSTPercentage, product.TDSPercentage, product.WGTPercentage,
		product.LFRN, product.IsActive,
	).Scan(&product.CreatedAt)
	if err != nil {
		return FuelProduct{}, err
	}
	return product, nil
}

func (r *repository) Update(ctx context.Context, product FuelProduct) error {
	query := `
		UPDATE fuel_products
		SET product_name = $3, short_name = $4, gst_percentage = $5, tds_percentage = $6, wgt_percentage = $7, lfrn = $8, is_active = $9
		WHERE tenant_id = $1 AND id = $2`

	tag, err := r.db.Exec(ctx, query,
		product.TenantID, product.ID, product.ProductName, product.ShortName,
		product.GSTPercentage, product.TDSPercentage, product.WGTPercentage,
		product.LFRN, product.IsActive,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: fuel product %s", httpx.ErrNotFound, product.ID)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM fuel_products WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: fuel product %s", httpx.ErrNotFound, id)
	}
	return nil
}

func scanProduct(row pgx.Row, p *FuelProduct) error {
	return row.Scan(
		&p.ID, &p.TenantID, &p.ProductName, &p.ShortName,
		&p.GSTPercentage, &p.TDSPercentage, &p.WGTPercentage,
		&p.LFRN, &p.IsActive, &p.CreatedAt,
	)
}

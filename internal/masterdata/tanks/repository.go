package tanks

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forecourt-erp/forecourt-erp/internal/platform/httpx"
)

// Repository defines tank and nozzle persistence, scoped to one tenant.
type Repository interface {
	ListTanks(ctx context.Context, tenantID uuid.UUID) ([]Tank, error)
	GetTank(ctx context.Context, tenantID, id uuid.UUID) (Tank, error)
	CreateTank(ctx context.Context, tank Tank) (Tank, error)

	ListNozzles(ctx context.Context, tenantID uuid.UUID) ([]Nozzle, error)
	CreateNozzle(ctx context.Context, nozzle Nozzle) (Nozzle, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) ListTanks(ctx context.Context, tenantID uuid.UUID) ([]Tank, error) {
	const query = `
		SELECT id, tenant_id, tank_number, fuel_product_id, capacity, current_stock, created_at
		FROM tanks WHERE tenant_id = $1 ORDER BY tank_number`

	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Tank
	for rows.Next() {
		var t Tank
		if err := rows.Scan(&t.ID, &t.TenantID, &t.TankNumber, &t.FuelProductID, &t.Capacity, &t.CurrentStock, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) GetTank(ctx context.Context, tenantID, id uuid.UUID) (Tank, error) {
	const query = `
		SELECT id, tenant_id, tank_number, fuel_product_id, capacity, current_stock, created_at
		FROM tanks WHERE tenant_id = $1 AND id = $2`

	var t Tank
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&t.ID, &t.TenantID, &t.TankNumber, &t.FuelProductID, &t.Capacity, &t.CurrentStock, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tank{}, fmt.Errorf("%w: tank %s", httpx.ErrNotFound, id)
	}
	return t, err
}

func (r *repository) CreateTank(ctx context.Context, tank Tank) (Tank, error) {
	const query = `
		INSERT INTO tanks (id, tenant_id, tank_number, fuel_product_id, capacity, current_stock, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		tank.ID, tank.TenantID, tank.TankNumber, tank.FuelProductID, tank.Capacity, tank.CurrentStock,
	).Scan(&tank.CreatedAt)
	if err != nil {
		return Tank{}, err
	}
	return tank, nil
}

func (r *repository) ListNozzles(ctx context.Context, tenantID uuid.UUID) ([]Nozzle, error) {
	const query = `
		SELECT id, tenant_id, nozzle_number, tank_id, fuel_product_id, COALESCE(pump_station, ''), is_active, created_at
		FROM nozzles WHERE tenant_id = $1 ORDER BY nozzle_number`

	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Nozzle
	for rows.Next() {
		var n Nozzle
		if err := rows.Scan(&n.ID, &n.TenantID, &n.NozzleNumber, &n.TankID, &n.FuelProductID, &n.PumpStation, &n.IsActive, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *repository) CreateNozzle(ctx context.Context, nozzle Nozzle) (Nozzle, error) {
	const query = `
		INSERT INTO nozzles (id, tenant_id, nozzle_number, tank_id, fuel_product_id, pump_station, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, NOW())
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		nozzle.ID, nozzle.TenantID, nozzle.NozzleNumber, nozzle.TankID, nozzle.FuelProductID, nozzle.PumpStation, nozzle.IsActive,
	).Scan(&nozzle.CreatedAt)
	if err != nil {
		return Nozzle{}, err
	}
	return nozzle, nil
}

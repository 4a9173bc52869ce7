package fuelproducts

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/forecourt-erp/forecourt-erp/internal/platform/httpx"
	"github.com/forecourt-erp/forecourt-erp/internal/shared"
)

type memoryRepo struct {
	products map[uuid.UUID]FuelProduct
	order    []uuid.UUID
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[uuid.UUID]FuelProduct)}
}

func (r *memoryRepo) List(ctx context.Context, tenantID uuid.UUID) ([]FuelProduct, error) {
	var out []FuelProduct
	for _, id := range r.order {
		if p := r.products[id]; p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, tenantID, id uuid.UUID) (FuelProduct, error) {
	p, ok := r.products[id]
	if !ok || p.TenantID != tenantID {
		return FuelProduct{}, fmt.Errorf("%w: fuel product %s", httpx.ErrNotFound, id)
	}
	return p, nil
}

func (r *memoryRepo) Create(ctx context.Context, product FuelProduct) (FuelProduct, error) {
	r.products[product.ID] = product
	r.order = append(r.order, product.ID)
	return product, nil
}

func (r *memoryRepo) Update(ctx context.Context, product FuelProduct) error {
	existing, ok := r.products[product.ID]
	if !ok || existing.TenantID != product.TenantID {
		return fmt.Errorf("%w: fuel product %s", httpx.ErrNotFound, product.ID)
	}
	product.CreatedAt = existing.CreatedAt
	r.products[product.ID] = product
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok || p.TenantID != tenantID {
		return fmt.Errorf("%w: fuel product %s", httpx.ErrNotFound, id)
	}
	delete(r.products, id)
	return nil
}

func managerScope(tenantID uuid.UUID) shared.Scope {
	return shared.Scope{UserID: uuid.New(), TenantID: tenantID, Email: "mgr@station.example", Role: shared.RoleManager}
}

func pct(v float64) *float64 { return &v }

func TestCreateAndListStaysWithinTenant(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	tenantA := uuid.New()
	tenantB := uuid.New()

	_, err := svc.Create(ctx, managerScope(tenantA), tenantA, FuelProductForm{
		ProductName:   "High Speed Diesel",
		ShortName:     "HSD",
		GSTPercentage: pct(18),
		LFRN:          "LFRN-001",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, managerScope(tenantB), tenantB, FuelProductForm{
		ProductName: "Motor Spirit",
		ShortName:   "MS",
		LFRN:        "LFRN-002",
	})
	require.NoError(t, err)

	listA, err := svc.List(ctx, tenantA)
	require.NoError(t, err)
	require.Len(t, listA, 1)
	require.Equal(t, "High Speed Diesel", listA[0].ProductName)
	require.True(t, listA[0].IsActive, "products default to active")
}

func TestWritesNeedManagingRole(t *testing.T) {
	svc := NewService(newMemoryRepo())
	tenantID := uuid.New()
	dsm := shared.Scope{UserID: uuid.New(), TenantID: tenantID, Role: shared.RoleDSM}

	_, err := svc.Create(context.Background(), dsm, tenantID, FuelProductForm{
		ProductName: "High Speed Diesel",
		ShortName:   "HSD",
		LFRN:        "LFRN-001",
	})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestValidationRejectsBadInput(t *testing.T) {
	svc := NewService(newMemoryRepo())
	tenantID := uuid.New()
	scope := managerScope(tenantID)
	ctx := context.Background()

	_, err := svc.Create(ctx, scope, tenantID, FuelProductForm{ProductName: "  ", ShortName: "HSD", LFRN: "L"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(ctx, scope, tenantID, FuelProductForm{
		ProductName:   "High Speed Diesel",
		ShortName:     "HSD",
		LFRN:          "LFRN-001",
		GSTPercentage: pct(180),
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateAndDelete(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	tenantID := uuid.New()
	scope := managerScope(tenantID)
	ctx := context.Background()

	created, err := svc.Create(ctx, scope, tenantID, FuelProductForm{
		ProductName: "High Speed Diesel",
		ShortName:   "HSD",
		LFRN:        "LFRN-001",
	})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.Update(ctx, scope, tenantID, created.ID, FuelProductForm{
		ProductName: "High Speed Diesel Premium",
		ShortName:   "HSD-P",
		LFRN:        "LFRN-001",
		IsActive:    &inactive,
	})
	require.NoError(t, err)
	require.Equal(t, "High Speed Diesel Premium", updated.ProductName)
	require.False(t, updated.IsActive)

	// A foreign tenant cannot touch the row even with the right ID.
	other := uuid.New()
	_, err = svc.Update(ctx, managerScope(other), other, created.ID, FuelProductForm{
		ProductName: "Hijack",
		ShortName:   "X",
		LFRN:        "L",
	})
	require.ErrorIs(t, err, httpx.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, scope, tenantID, created.ID))
	_, err = svc.Get(ctx, tenantID, created.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

package tanks

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/forecourt-erp/forecourt-erp/internal/masterdata/fuelproducts"
	"github.com/forecourt-erp/forecourt-erp/internal/platform/httpx"
	"github.com/forecourt-erp/forecourt-erp/internal/shared"
)

type memoryRepo struct {
	tanks   map[uuid.UUID]Tank
	nozzles []Nozzle
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{tanks: make(map[uuid.UUID]Tank)}
}

func (r *memoryRepo) ListTanks(ctx context.Context, tenantID uuid.UUID) ([]Tank, error) {
	var out []Tank
	for _, t := range r.tanks {
		if t.TenantID == tenantID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetTank(ctx context.Context, tenantID, id uuid.UUID) (Tank, error) {
	t, ok := r.tanks[id]
	if !ok || t.TenantID != tenantID {
		return Tank{}, fmt.Errorf("%w: tank %s", httpx.ErrNotFound, id)
	}
	return t, nil
}

func (r *memoryRepo) CreateTank(ctx context.Context, tank Tank) (Tank, error) {
	r.tanks[tank.ID] = tank
	return tank, nil
}

func (r *memoryRepo) ListNozzles(ctx context.Context, tenantID uuid.UUID) ([]Nozzle, error) {
	var out []Nozzle
	for _, n := range r.nozzles {
		if n.TenantID == tenantID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memoryRepo) CreateNozzle(ctx context.Context, nozzle Nozzle) (Nozzle, error) {
	r.nozzles = append(r.nozzles, nozzle)
	return nozzle, nil
}

type fakeCatalog struct {
	products map[uuid.UUID]uuid.UUID // product -> tenant
}

func (c *fakeCatalog) Get(ctx context.Context, tenantID, id uuid.UUID) (fuelproducts.FuelProduct, error) {
	if owner, ok := c.products[id]; ok && owner == tenantID {
		return fuelproducts.FuelProduct{ID: id, TenantID: tenantID}, nil
	}
	return fuelproducts.FuelProduct{}, fmt.Errorf("%w: fuel product %s", httpx.ErrNotFound, id)
}

func managerScope(tenantID uuid.UUID) shared.Scope {
	return shared.Scope{UserID: uuid.New(), TenantID: tenantID, Email: "mgr@station.example", Role: shared.RoleManager}
}

func fl(v float64) *float64 { return &v }
func str(v string) *string  { return &v }

func TestCreateTankValidatesStockAgainstCapacity(t *testing.T) {
	svc := NewService(newMemoryRepo(), &fakeCatalog{})
	tenantID := uuid.New()
	scope := managerScope(tenantID)
	ctx := context.Background()

	_, err := svc.CreateTank(ctx, scope, tenantID, TankForm{
		TankNumber:   "T1",
		Capacity:     fl(10000),
		CurrentStock: fl(12000),
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	tank, err := svc.CreateTank(ctx, scope, tenantID, TankForm{
		TankNumber:   "T1",
		Capacity:     fl(10000),
		CurrentStock: fl(8000),
	})
	require.NoError(t, err)
	require.Equal(t, "T1", tank.TankNumber)
}

func TestCreateTankChecksProductReference(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()
	catalog := &fakeCatalog{products: map[uuid.UUID]uuid.UUID{productID: tenantID}}
	svc := NewService(newMemoryRepo(), catalog)
	scope := managerScope(tenantID)
	ctx := context.Background()

	tank, err := svc.CreateTank(ctx, scope, tenantID, TankForm{
		TankNumber:    "T1",
		FuelProductID: str(productID.String()),
	})
	require.NoError(t, err)
	require.Equal(t, productID, *tank.FuelProductID)

	// An unknown product is rejected.
	_, err = svc.CreateTank(ctx, scope, tenantID, TankForm{
		TankNumber:    "T2",
		FuelProductID: str(uuid.NewString()),
	})
	require.ErrorIs(t, err, httpx.ErrNotFound)

	// Another tenant's product is invisible here.
	otherTenant := uuid.New()
	_, err = svc.CreateTank(ctx, managerScope(otherTenant), otherTenant, TankForm{
		TankNumber:    "T1",
		FuelProductID: str(productID.String()),
	})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestCreateNozzleInheritsTankProduct(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()
	catalog := &fakeCatalog{products: map[uuid.UUID]uuid.UUID{productID: tenantID}}
	svc := NewService(newMemoryRepo(), catalog)
	scope := managerScope(tenantID)
	ctx := context.Background()

	tank, err := svc.CreateTank(ctx, scope, tenantID, TankForm{
		TankNumber:    "T1",
		FuelProductID: str(productID.String()),
	})
	require.NoError(t, err)

	nozzle, err := svc.CreateNozzle(ctx, scope, tenantID, tank.ID, NozzleForm{
		NozzleNumber: "N1",
		PumpStation:  "Pump 1",
	})
	require.NoError(t, err)
	require.Equal(t, tank.ID, nozzle.TankID)
	require.Equal(t, productID, *nozzle.FuelProductID)
	require.True(t, nozzle.IsActive)
}

func TestCreateNozzleRequiresTankInTenant(t *testing.T) {
	svc := NewService(newMemoryRepo(), &fakeCatalog{})
	tenantID := uuid.New()
	scope := managerScope(tenantID)
	ctx := context.Background()

	tank, err := svc.CreateTank(ctx, scope, tenantID, TankForm{TankNumber: "T1"})
	require.NoError(t, err)

	// A foreign tenant cannot attach to this tank.
	other := uuid.New()
	_, err = svc.CreateNozzle(ctx, managerScope(other), other, tank.ID, NozzleForm{NozzleNumber: "N1"})
	require.ErrorIs(t, err, httpx.ErrNotFound)

	// Day-shift accounts cannot write the registry at all.
	dsm := shared.Scope{UserID: uuid.New(), TenantID: tenantID, Role: shared.RoleDSM}
	_, err = svc.CreateNozzle(ctx, dsm, tenantID, tank.ID, NozzleForm{NozzleNumber: "N1"})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

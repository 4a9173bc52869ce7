package tanks

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/forecourt-erp/forecourt-erp/internal/masterdata/fuelproducts"
	"github.com/forecourt-erp/forecourt-erp/internal/platform/httpx"
	"github.com/forecourt-erp/forecourt-erp/internal/shared"
)

// ProductCatalog resolves fuel product references. Satisfied by
// *fuelproducts.Service.
type ProductCatalog interface {
	Get(ctx context.Context, tenantID, id uuid.UUID) (fuelproducts.FuelProduct, error)
}

// Service wraps tank and nozzle business rules.
type Service struct {
	repo    Repository
	catalog ProductCatalog
}

// NewService constructs a new Service.
func NewService(repo Repository, catalog ProductCatalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// ListTanks returns the tenant's tanks.
func (s *Service) ListTanks(ctx context.Context, tenantID uuid.UUID) ([]Tank, error) {
	return s.repo.ListTanks(ctx, tenantID)
}

// GetTank fetches one tank.
func (s *Service) GetTank(ctx context.Context, tenantID, id uuid.UUID) (Tank, error) {
	return s.repo.GetTank(ctx, tenantID, id)
}

// CreateTank registers a storage tank. Stock may not exceed capacity and a
// referenced fuel product must exist in the tenant's catalogue.
func (s *Service) CreateTank(ctx context.Context, scope shared.Scope, tenantID uuid.UUID, form TankForm) (Tank, error) {
	if err := mayWrite(scope); err != nil {
		return Tank{}, err
	}

	number := strings.TrimSpace(form.TankNumber)
	if number == "" {
		return Tank{}, fmt.Errorf("%w: tank number is required", httpx.ErrValidation)
	}
	if form.Capacity != nil && *form.Capacity < 0 {
		return Tank{}, fmt.Errorf("%w: capacity must not be negative", httpx.ErrValidation)
	}
	if form.CurrentStock != nil && *form.CurrentStock < 0 {
		return Tank{}, fmt.Errorf("%w: current stock must not be negative", httpx.ErrValidation)
	}
	if form.Capacity != nil && form.CurrentStock != nil && *form.CurrentStock > *form.Capacity {
		return Tank{}, fmt.Errorf("%w: current stock exceeds tank capacity", httpx.ErrValidation)
	}

	productID, err := s.resolveProduct(ctx, tenantID, form.FuelProductID)
	if err != nil {
		return Tank{}, err
	}

	return s.repo.CreateTank(ctx, Tank{
		ID:            uuid.New(),
		TenantID:      tenantID,
		TankNumber:    number,
		FuelProductID: productID,
		Capacity:      form.Capacity,
		CurrentStock:  form.CurrentStock,
	})
}

// ListNozzles returns the tenant's nozzles.
func (s *Service) ListNozzles(ctx context.Context, tenantID uuid.UUID) ([]Nozzle, error) {
	return s.repo.ListNozzles(ctx, tenantID)
}

// CreateNozzle attaches a nozzle to a tank. When no product is named the
// nozzle dispenses whatever the tank holds.
func (s *Service) CreateNozzle(ctx context.Context, scope shared.Scope, tenantID, tankID uuid.UUID, form NozzleForm) (Nozzle, error) {
	if err := mayWrite(scope); err != nil {
		return Nozzle{}, err
	}

	number := strings.TrimSpace(form.NozzleNumber)
	if number == "" {
		return Nozzle{}, fmt.Errorf("%w: nozzle number is required", httpx.ErrValidation)
	}

	tank, err := s.repo.GetTank(ctx, tenantID, tankID)
	if err != nil {
		return Nozzle{}, err
	}

	productID, err := s.resolveProduct(ctx, tenantID, form.FuelProductID)
	if err != nil {
		return Nozzle{}, err
	}
	if productID == nil {
		productID = tank.FuelProductID
	}

	active := true
	if form.IsActive != nil {
		active = *form.IsActive
	}

	return s.repo.CreateNozzle(ctx, Nozzle{
		ID:            uuid.New(),
		TenantID:      tenantID,
		NozzleNumber:  number,
		TankID:        tank.ID,
		FuelProductID: productID,
		PumpStation:   strings.TrimSpace(form.PumpStation),
		IsActive:      active,
	})
}

func (s *Service) resolveProduct(ctx context.Context, tenantID uuid.UUID, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed fuel product id %q", httpx.ErrValidation, *raw)
	}
	if s.catalog != nil {
		if _, err := s.catalog.Get(ctx, tenantID, id); err != nil {
			return nil, err
		}
	}
	return &id, nil
}

func mayWrite(scope shared.Scope) error {
	if scope.Elevated() || scope.Role == shared.RoleManager {
		return nil
	}
	return fmt.Errorf("%w: forecourt registry changes need a manager or super admin", httpx.ErrForbidden)
}

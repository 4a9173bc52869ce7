package fuelproducts

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/forecourt-erp/forecourt-erp/internal/platform/httpx"
	"github.com/forecourt-erp/forecourt-erp/internal/shared"
)

// Service wraps fuel product business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the tenant's fuel products.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]FuelProduct, error) {
	return s.repo.List(ctx, tenantID)
}

// Get fetches one product.
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (FuelProduct, error) {
	return s.repo.Get(ctx, tenantID, id)
}

// Create adds a product to the tenant's catalogue. Catalogue writes need a
// managing role; day-shift accounts only read.
func (s *Service) Create(ctx context.Context, scope shared.Scope, tenantID uuid.UUID, form FuelProductForm) (FuelProduct, error) {
	if err := mayWrite(scope); err != nil {
		return FuelProduct{}, err
	}
	product := form.model()
	if err := s.validate(&product); err != nil {
		return FuelProduct{}, err
	}
	product.ID = uuid.New()
	product.TenantID = tenantID
	return s.repo.Create(ctx, product)
}

// Update replaces an existing product.
func (s *Service) Update(ctx context.Context, scope shared.Scope, tenantID, id uuid.UUID, form FuelProductForm) (FuelProduct, error) {
	if err := mayWrite(scope); err != nil {
		return FuelProduct{}, err
	}
	product := form.model()
	if err := s.validate(&product); err != nil {
		return FuelProduct{}, err
	}
	product.ID = id
	product.TenantID = tenantID
	if err := s.repo.Update(ctx, product); err != nil {
		return FuelProduct{}, err
	}
	return s.repo.Get(ctx, tenantID, id)
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, scope shared.Scope, tenantID, id uuid.UUID) error {
	if err := mayWrite(scope); err != nil {
		return err
	}
	return s.repo.Delete(ctx, tenantID, id)
}

func mayWrite(scope shared.Scope) error {
	if scope.Elevated() || scope.Role == shared.RoleManager {
		return nil
	}
	return fmt.Errorf("%w: catalogue changes need a manager or super admin", httpx.ErrForbidden)
}

func (s *Service) validate(p *FuelProduct) error {
	p.ProductName = strings.TrimSpace(p.ProductName)
	p.ShortName = strings.TrimSpace(p.ShortName)
	p.LFRN = strings.TrimSpace(p.LFRN)
	if p.ProductName == "" {
		return fmt.Errorf("%w: product name is required", httpx.ErrValidation)
	}
	if p.ShortName == "" {
		return fmt.Errorf("%w: short name is required", httpx.ErrValidation)
	}
	if p.LFRN == "" {
		return fmt.Errorf("%w: lfrn is required", httpx.ErrValidation)
	}
	for _, pct := range []*float64{p.GSTPercentage, p.TDSPercentage, p.WGTPercentage} {
		if pct != nil && (*pct < 0 || *pct > 100) {
			return fmt.Errorf("%w: percentages must lie between 0 and 100", httpx.ErrValidation)
		}
	}
	return nil
}

package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/forecourt-erp/forecourt-erp/internal/features"
	"github.com/forecourt-erp/forecourt-erp/internal/platform/httpx"
	"github.com/forecourt-erp/forecourt-erp/internal/shared"
)

// ProvisionJob is the payload handed to the background worker. The password
// is already hashed; plaintext never leaves the provisioning request.
type ProvisionJob struct {
	TenantID        uuid.UUID `json:"tenant_id"`
	SuperAdminEmail string    `json:"super_admin_email"`
	PasswordHash    string    `json:"password_hash"`
	ActorEmail      string    `json:"actor_email"`
}

// Enqueuer schedules background provisioning work.
type Enqueuer interface {
	EnqueueTenantProvision(ctx context.Context, job ProvisionJob) error
}

// FeatureSeeder assigns default feature access to new users. Satisfied by
// *features.Service.
type FeatureSeeder interface {
	ApplyTemplate(ctx context.Context, scope shared.Scope, tenantID uuid.UUID, templateName string, targetUserID *uuid.UUID) (features.TemplateSummary, error)
}

// ProvisionTenantRequest creates a new tenant with its super admin.
type ProvisionTenantRequest struct {
	OrganizationName   string `json:"organizationName" validate:"required,max=200"`
	SuperAdminEmail    string `json:"superAdminEmail" validate:"required,email"`
	SuperAdminPassword string `json:"superAdminPassword" validate:"omitempty,min=8"`
}

// CreateUserRequest adds a user to an existing tenant.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required,max=200"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=super_admin manager dsm"`
}

// Service orchestrates directory operations.
type Service struct {
	repo     Repository
	enqueuer Enqueuer
	seeder   FeatureSeeder
	logger   *slog.Logger

	pollInterval time.Duration
	pollWindow   time.Duration
}

// NewService constructs a Service. pollInterval and pollWindow bound the
// WaitForTenantActive loop.
func NewService(repo Repository, enqueuer Enqueuer, seeder FeatureSeeder, logger *slog.Logger, pollInterval, pollWindow time.Duration) *Service {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	if pollWindow <= 0 {
		pollWindow = 30 * time.Second
	}
	return &Service{
		repo:         repo,
		enqueuer:     enqueuer,
		seeder:       seeder,
		logger:       logger,
		pollInterval: pollInterval,
		pollWindow:   pollWindow,
	}
}

// ProvisionTenant registers a tenant and schedules its background setup.
// The returned tenant is in the provisioning state; callers poll
// ListTenants or WaitForTenantActive until it turns active.
func (s *Service) ProvisionTenant(ctx context.Context, scope shared.Scope, req ProvisionTenantRequest) (Tenant, error) {
	if !scope.Developer {
		return Tenant{}, fmt.Errorf("%w: tenant provisioning requires the developer identity", httpx.ErrForbidden)
	}

	org := strings.TrimSpace(req.OrganizationName)
	email := strings.ToLower(strings.TrimSpace(req.SuperAdminEmail))
	if org == "" || email == "" {
		return Tenant{}, fmt.Errorf("%w: organizationName and superAdminEmail are required", httpx.ErrValidation)
	}

	existing, err := s.repo.FindTenantBySuperAdminEmail(ctx, email)
	if err != nil {
		return Tenant{}, err
	}
	if existing != nil {
		return Tenant{}, fmt.Errorf("%w: a tenant already exists for %s", httpx.ErrDuplicate, email)
	}

	password := req.SuperAdminPassword
	if password == "" {
		// No password supplied: generate one; the super admin resets it
		// through the usual recovery flow.
		password = uuid.NewString()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Tenant{}, err
	}

	tenant := Tenant{
		ID:               uuid.New(),
		OrganizationName: org,
		SuperAdminEmail:  email,
		Status:           TenantStatusProvisioning,
	}
	if err := s.repo.InsertTenant(ctx, tenant); err != nil {
		return Tenant{}, err
	}

	job := ProvisionJob{
		TenantID:        tenant.ID,
		SuperAdminEmail: email,
		PasswordHash:    string(hash),
		ActorEmail:      scope.Email,
	}
	if err := s.enqueuer.EnqueueTenantProvision(ctx, job); err != nil {
		if statusErr := s.repo.UpdateTenantStatus(ctx, tenant.ID, TenantStatusFailed); statusErr != nil {
			s.logger.Error("mark tenant failed", slog.Any("error", statusErr))
		}
		return Tenant{}, fmt.Errorf("directory: enqueue provisioning: %w", err)
	}
	return tenant, nil
}

// CompleteProvisioning runs in the worker: it creates the super admin user,
// seeds their default feature access and activates the tenant. The method
// is idempotent so the job can be retried safely.
func (s *Service) CompleteProvisioning(ctx context.Context, job ProvisionJob) error {
	tenant, err := s.repo.GetTenant(ctx, job.TenantID)
	if err != nil {
		return err
	}
	if tenant.Status == TenantStatusActive {
		return nil
	}

	user, err := s.repo.InsertUser(ctx, User{
		ID:       uuid.New(),
		TenantID: job.TenantID,
		Email:    job.SuperAdminEmail,
		FullName: tenant.OrganizationName + " Super Admin",
		Role:     shared.RoleSuperAdmin,
		Status:   UserStatusActive,
	}, job.PasswordHash)
	if err != nil {
		if !errors.Is(err, httpx.ErrDuplicate) {
			if statusErr := s.repo.UpdateTenantStatus(ctx, job.TenantID, TenantStatusFailed); statusErr != nil {
				s.logger.Error("mark tenant failed", slog.Any("error", statusErr))
			}
			return err
		}
		// Retried job: the user row already landed on a previous attempt.
		existing, _, findErr := s.repo.FindUserByEmail(ctx, job.TenantID, job.SuperAdminEmail)
		if findErr != nil || existing == nil {
			return fmt.Errorf("directory: resolve existing super admin: %w", findErr)
		}
		user = *existing
	}

	s.seedDefaults(ctx, job.ActorEmail, job.TenantID, user.ID)

	return s.repo.UpdateTenantStatus(ctx, job.TenantID, TenantStatusActive)
}

// WaitForTenantActive polls until the tenant is active or the window
// elapses. Callers surface the timeout as retryable.
func (s *Service) WaitForTenantActive(ctx context.Context, tenantID uuid.UUID) (Tenant, error) {
	deadline := time.Now().Add(s.pollWindow)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		tenant, err := s.repo.GetTenant(ctx, tenantID)
		if err != nil {
			return Tenant{}, err
		}
		switch tenant.Status {
		case TenantStatusActive:
			return tenant, nil
		case TenantStatusFailed:
			return Tenant{}, fmt.Errorf("directory: tenant %s provisioning failed", tenantID)
		}
		if time.Now().After(deadline) {
			return Tenant{}, fmt.Errorf("%w: tenant %s still provisioning after %s", httpx.ErrProvisioningTimeout, tenantID, s.pollWindow)
		}
		select {
		case <-ctx.Done():
			return Tenant{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// CreateUser adds a user under a tenant and assigns default feature access.
// Feature seeding is best-effort: its failure does not fail user creation.
func (s *Service) CreateUser(ctx context.Context, scope shared.Scope, tenantID uuid.UUID, req CreateUserRequest) (User, error) {
	if !s.mayManageTenant(scope, tenantID) {
		return User{}, fmt.Errorf("%w: creating users requires the tenant super admin or the developer identity", httpx.ErrForbidden)
	}

	if _, err := s.repo.GetTenant(ctx, tenantID); err != nil {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user, err := s.repo.InsertUser(ctx, User{
		ID:       uuid.New(),
		TenantID: tenantID,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		FullName: strings.TrimSpace(req.FullName),
		Role:     req.Role,
		Status:   UserStatusActive,
	}, string(hash))
	if err != nil {
		return User{}, err
	}

	s.seedDefaults(ctx, scope.Email, tenantID, user.ID)

	return user, nil
}

// ListTenants returns every tenant. Developer only.
func (s *Service) ListTenants(ctx context.Context, scope shared.Scope) ([]TenantSummary, error) {
	if !scope.Developer {
		return nil, fmt.Errorf("%w: listing tenants requires the developer identity", httpx.ErrForbidden)
	}
	return s.repo.ListTenants(ctx)
}

// ListTenantUsers returns the users of one tenant.
func (s *Service) ListTenantUsers(ctx context.Context, scope shared.Scope, tenantID uuid.UUID) ([]User, error) {
	if !s.mayManageTenant(scope, tenantID) {
		return nil, fmt.Errorf("%w: listing users requires the tenant super admin or the developer identity", httpx.ErrForbidden)
	}
	if _, err := s.repo.GetTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.repo.ListUsers(ctx, tenantID)
}

// FindMembershipsByEmail resolves an email across all tenants. Developer only.
func (s *Service) FindMembershipsByEmail(ctx context.Context, scope shared.Scope, email string) ([]Membership, error) {
	if !scope.Developer {
		return nil, fmt.Errorf("%w: membership lookup requires the developer identity", httpx.ErrForbidden)
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", httpx.ErrValidation)
	}
	return s.repo.FindMembershipsByEmail(ctx, email)
}

func (s *Service) mayManageTenant(scope shared.Scope, tenantID uuid.UUID) bool {
	if scope.Developer {
		return true
	}
	return scope.Role == shared.RoleSuperAdmin && scope.TenantID == tenantID
}

func (s *Service) seedDefaults(ctx context.Context, actorEmail string, tenantID, userID uuid.UUID) {
	if s.seeder == nil {
		return
	}
	actor := shared.Scope{Email: actorEmail, Developer: true}
	if _, err := s.seeder.ApplyTemplate(ctx, actor, tenantID, features.TemplateBasic, &userID); err != nil {
		s.logger.Warn("seed default features",
			slog.String("tenant", tenantID.String()),
			slog.String("user", userID.String()),
			slog.Any("error", err))
	}
}

package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/forecourt-erp/forecourt-erp/internal/features"
	"github.com/forecourt-erp/forecourt-erp/internal/platform/httpx"
	"github.com/forecourt-erp/forecourt-erp/internal/shared"
)

type memoryDirectoryRepo struct {
	mu      sync.Mutex
	tenants map[uuid.UUID]Tenant
	users   map[uuid.UUID][]User // tenant -> users
	hashes  map[uuid.UUID]string // user -> password hash
}

func newMemoryDirectoryRepo() *memoryDirectoryRepo {
	return &memoryDirectoryRepo{
		tenants: make(map[uuid.UUID]Tenant),
		users:   make(map[uuid.UUID][]User),
		hashes:  make(map[uuid.UUID]string),
	}
}

func (r *memoryDirectoryRepo) InsertTenant(ctx context.Context, tenant Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tenants {
		if t.SuperAdminEmail == tenant.SuperAdminEmail {
			return fmt.Errorf("%w: tenant already exists for %s", httpx.ErrDuplicate, tenant.SuperAdminEmail)
		}
	}
	tenant.CreatedAt = time.Now()
	tenant.UpdatedAt = tenant.CreatedAt
	r.tenants[tenant.ID] = tenant
	return nil
}

func (r *memoryDirectoryRepo) GetTenant(ctx context.Context, id uuid.UUID) (Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[id]
	if !ok {
		return Tenant{}, fmt.Errorf("%w: tenant %s", httpx.ErrNotFound, id)
	}
	return t, nil
}

func (r *memoryDirectoryRepo) FindTenantBySuperAdminEmail(ctx context.Context, email string) (*Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(email)
	for _, t := range r.tenants {
		if t.SuperAdminEmail == email {
			copied := t
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryDirectoryRepo) ListTenants(ctx context.Context) ([]TenantSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []TenantSummary
	for _, t := range r.tenants {
		out = append(out, TenantSummary{
			ID:               t.ID,
			OrganizationName: t.OrganizationName,
			Status:           t.Status,
			UserCount:        len(r.users[t.ID]),
			CreatedAt:        t.CreatedAt,
		})
	}
	return out, nil
}

func (r *memoryDirectoryRepo) UpdateTenantStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[id]
	if !ok {
		return fmt.Errorf("%w: tenant %s", httpx.ErrNotFound, id)
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	r.tenants[id] = t
	return nil
}

func (r *memoryDirectoryRepo) InsertUser(ctx context.Context, user User, passwordHash string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users[user.TenantID] {
		if u.Email == user.Email {
			return User{}, fmt.Errorf("%w: user with email %s already exists in this organization", httpx.ErrDuplicate, user.Email)
		}
	}
	user.CreatedAt = time.Now()
	r.users[user.TenantID] = append(r.users[user.TenantID], user)
	r.hashes[user.ID] = passwordHash
	return user, nil
}

func (r *memoryDirectoryRepo) ListUsers(ctx context.Context, tenantID uuid.UUID) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]User(nil), r.users[tenantID]...), nil
}

func (r *memoryDirectoryRepo) FindMembershipsByEmail(ctx context.Context, email string) ([]Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(email)
	var out []Membership
	for tenantID, users := range r.users {
		for _, u := range users {
			if u.Email == email {
				out = append(out, Membership{
					TenantID:         tenantID,
					OrganizationName: r.tenants[tenantID].OrganizationName,
					UserID:           u.ID,
				})
			}
		}
	}
	return out, nil
}

func (r *memoryDirectoryRepo) FindUserByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*User, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range r.users[tenantID] {
		if u.Email == email {
			copied := u
			return &copied, r.hashes[u.ID], nil
		}
	}
	return nil, "", nil
}

type recordingEnqueuer struct {
	jobs []ProvisionJob
	fail bool
}

func (e *recordingEnqueuer) EnqueueTenantProvision(ctx context.Context, job ProvisionJob) error {
	if e.fail {
		return fmt.Errorf("asynq: broker unavailable")
	}
	e.jobs = append(e.jobs, job)
	return nil
}

type recordingSeeder struct {
	calls []uuid.UUID
}

func (s *recordingSeeder) ApplyTemplate(ctx context.Context, scope shared.Scope, tenantID uuid.UUID, templateName string, targetUserID *uuid.UUID) (features.TemplateSummary, error) {
	if targetUserID != nil {
		s.calls = append(s.calls, *targetUserID)
	}
	return features.TemplateSummary{UsersUpdated: 1, FeaturesApplied: features.CatalogSize()}, nil
}

func developerScope() shared.Scope {
	return shared.Scope{Email: "dev@forecourt.local", Developer: true}
}

func testDirectoryService(t *testing.T, interval, window time.Duration) (*Service, *memoryDirectoryRepo, *recordingEnqueuer, *recordingSeeder) {
	t.Helper()
	repo := newMemoryDirectoryRepo()
	enq := &recordingEnqueuer{}
	seeder := &recordingSeeder{}
	svc := NewService(repo, enq, seeder, slog.Default(), interval, window)
	return svc, repo, enq, seeder
}

func TestProvisionTenantFlow(t *testing.T) {
	svc, repo, enq, seeder := testDirectoryService(t, 10*time.Millisecond, time.Second)
	ctx := context.Background()

	tenant, err := svc.ProvisionTenant(ctx, developerScope(), ProvisionTenantRequest{
		OrganizationName:   "Hilltop Fuels",
		SuperAdminEmail:    "Owner@Hilltop.example",
		SuperAdminPassword: "s3cret-pass",
	})
	require.NoError(t, err)
	require.Equal(t, TenantStatusProvisioning, tenant.Status)
	require.Equal(t, "owner@hilltop.example", tenant.SuperAdminEmail, "email folded to lower case")
	require.Len(t, enq.jobs, 1)
	require.NotEqual(t, "s3cret-pass", enq.jobs[0].PasswordHash, "plaintext never leaves the request")

	// Worker side completes the job.
	require.NoError(t, svc.CompleteProvisioning(ctx, enq.jobs[0]))

	active, err := svc.WaitForTenantActive(ctx, tenant.ID)
	require.NoError(t, err)
	require.Equal(t, TenantStatusActive, active.Status)

	users, err := repo.ListUsers(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, shared.RoleSuperAdmin, users[0].Role)
	require.Equal(t, "owner@hilltop.example", users[0].Email)
	require.Equal(t, []uuid.UUID{users[0].ID}, seeder.calls, "super admin gets default features")

	// Retrying the job must not duplicate the user or fail.
	require.NoError(t, svc.CompleteProvisioning(ctx, enq.jobs[0]))
	users, err = repo.ListUsers(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestProvisionTenantDuplicateEmailIsCaseInsensitive(t *testing.T) {
	svc, _, _, _ := testDirectoryService(t, time.Millisecond, time.Second)
	ctx := context.Background()

	_, err := svc.ProvisionTenant(ctx, developerScope(), ProvisionTenantRequest{
		OrganizationName: "Hilltop Fuels",
		SuperAdminEmail:  "owner@hilltop.example",
	})
	require.NoError(t, err)

	_, err = svc.ProvisionTenant(ctx, developerScope(), ProvisionTenantRequest{
		OrganizationName: "Hilltop Two",
		SuperAdminEmail:  "OWNER@HILLTOP.EXAMPLE",
	})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestProvisionTenantRequiresDeveloper(t *testing.T) {
	svc, _, _, _ := testDirectoryService(t, time.Millisecond, time.Second)

	scope := shared.Scope{Email: "admin@station.example", Role: shared.RoleSuperAdmin, TenantID: uuid.New()}
	_, err := svc.ProvisionTenant(context.Background(), scope, ProvisionTenantRequest{
		OrganizationName: "Hilltop Fuels",
		SuperAdminEmail:  "owner@hilltop.example",
	})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestWaitForTenantActiveTimesOut(t *testing.T) {
	svc, _, enq, _ := testDirectoryService(t, 5*time.Millisecond, 30*time.Millisecond)
	ctx := context.Background()

	tenant, err := svc.ProvisionTenant(ctx, developerScope(), ProvisionTenantRequest{
		OrganizationName: "Stalled Station",
		SuperAdminEmail:  "owner@stalled.example",
	})
	require.NoError(t, err)
	require.Len(t, enq.jobs, 1) // never completed

	_, err = svc.WaitForTenantActive(ctx, tenant.ID)
	require.ErrorIs(t, err, httpx.ErrProvisioningTimeout)
}

func TestEnqueueFailureMarksTenantFailed(t *testing.T) {
	svc, repo, enq, _ := testDirectoryService(t, time.Millisecond, time.Second)
	enq.fail = true

	_, err := svc.ProvisionTenant(context.Background(), developerScope(), ProvisionTenantRequest{
		OrganizationName: "Broken Broker",
		SuperAdminEmail:  "owner@broken.example",
	})
	require.Error(t, err)

	tenants, listErr := repo.ListTenants(context.Background())
	require.NoError(t, listErr)
	require.Len(t, tenants, 1)
	require.Equal(t, TenantStatusFailed, tenants[0].Status)
}

func provisionActiveTenant(t *testing.T, svc *Service, enq *recordingEnqueuer, email string) Tenant {
	t.Helper()
	ctx := context.Background()
	tenant, err := svc.ProvisionTenant(ctx, developerScope(), ProvisionTenantRequest{
		OrganizationName: "Station " + email,
		SuperAdminEmail:  email,
	})
	require.NoError(t, err)
	require.NoError(t, svc.CompleteProvisioning(ctx, enq.jobs[len(enq.jobs)-1]))
	return tenant
}

func TestCreateUserAuthorizationAndDuplicates(t *testing.T) {
	svc, _, enq, seeder := testDirectoryService(t, time.Millisecond, time.Second)
	ctx := context.Background()
	tenant := provisionActiveTenant(t, svc, enq, "owner@hilltop.example")

	superAdmin := shared.Scope{
		Email:    "owner@hilltop.example",
		Role:     shared.RoleSuperAdmin,
		TenantID: tenant.ID,
	}

	user, err := svc.CreateUser(ctx, superAdmin, tenant.ID, CreateUserRequest{
		Email:    "Clerk@Hilltop.example",
		FullName: "Day Clerk",
		Password: "clerk-pass-1",
		Role:     shared.RoleDSM,
	})
	require.NoError(t, err)
	require.Equal(t, "clerk@hilltop.example", user.Email)
	require.Contains(t, seeder.calls, user.ID)

	// Same email again in the same tenant.
	_, err = svc.CreateUser(ctx, superAdmin, tenant.ID, CreateUserRequest{
		Email:    "clerk@hilltop.example",
		FullName: "Duplicate Clerk",
		Password: "clerk-pass-2",
		Role:     shared.RoleDSM,
	})
	require.ErrorIs(t, err, httpx.ErrDuplicate)

	// A manager may not create users.
	manager := shared.Scope{Email: "mgr@hilltop.example", Role: shared.RoleManager, TenantID: tenant.ID}
	_, err = svc.CreateUser(ctx, manager, tenant.ID, CreateUserRequest{
		Email:    "other@hilltop.example",
		FullName: "Other",
		Password: "other-pass-1",
		Role:     shared.RoleDSM,
	})
	require.ErrorIs(t, err, httpx.ErrForbidden)

	// A super admin of a different tenant may not reach in either.
	foreign := shared.Scope{Email: "owner@other.example", Role: shared.RoleSuperAdmin, TenantID: uuid.New()}
	_, err = svc.CreateUser(ctx, foreign, tenant.ID, CreateUserRequest{
		Email:    "spy@hilltop.example",
		FullName: "Spy",
		Password: "spy-pass-11",
		Role:     shared.RoleDSM,
	})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestMembershipsSpanTenants(t *testing.T) {
	svc, _, enq, _ := testDirectoryService(t, time.Millisecond, time.Second)
	ctx := context.Background()

	tenantA := provisionActiveTenant(t, svc, enq, "owner@alpha.example")
	tenantB := provisionActiveTenant(t, svc, enq, "owner@beta.example")

	// The same email exists as distinct user rows in both tenants.
	for _, tenant := range []Tenant{tenantA, tenantB} {
		_, err := svc.CreateUser(ctx, developerScope(), tenant.ID, CreateUserRequest{
			Email:    "shared@clerk.example",
			FullName: "Travelling Clerk",
			Password: "clerk-pass-1",
			Role:     shared.RoleManager,
		})
		require.NoError(t, err)
	}

	memberships, err := svc.FindMembershipsByEmail(ctx, developerScope(), "SHARED@clerk.example")
	require.NoError(t, err)
	require.Len(t, memberships, 2)
	require.NotEqual(t, memberships[0].UserID, memberships[1].UserID)

	// Non-developers cannot use the cross-tenant lookup.
	_, err = svc.FindMembershipsByEmail(ctx, shared.Scope{Role: shared.RoleSuperAdmin, TenantID: tenantA.ID}, "shared@clerk.example")
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

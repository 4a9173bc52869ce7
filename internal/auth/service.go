package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/forecourt-erp/forecourt-erp/internal/directory"
	"github.com/forecourt-erp/forecourt-erp/internal/shared"
)

// Directory is the slice of the user directory the login flow needs.
// Satisfied by directory.Repository implementations.
type Directory interface {
	FindMembershipsByEmail(ctx context.Context, email string) ([]directory.Membership, error)
	FindUserByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*directory.User, string, error)
}

// Service wraps authentication business rules.
type Service struct {
	directory Directory
	repo      Repository
}

// NewService constructs a new Service.
func NewService(dir Directory, repo Repository) *Service {
	return &Service{directory: dir, repo: repo}
}

// Authenticate validates credentials against every tenant the email belongs
// to, or against one tenant when tenantID is given. It returns the matched
// user, or the list of tenants the password unlocked when the caller still
// has to choose one. Every credential failure collapses into
// shared.ErrInvalidCredentials so responses cannot be used to probe which
// emails exist.
func (s *Service) Authenticate(ctx context.Context, email, password string, tenantID *uuid.UUID) (*directory.User, []directory.Membership, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	memberships, err := s.directory.FindMembershipsByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if tenantID != nil {
		memberships = filterTenant(memberships, *tenantID)
	}
	if len(memberships) == 0 {
		return nil, nil, shared.ErrInvalidCredentials
	}

	var matchedUser *directory.User
	var matched []directory.Membership
	for _, m := range memberships {
		user, hash, err := s.directory.FindUserByEmail(ctx, m.TenantID, email)
		if err != nil {
			return nil, nil, err
		}
		if user == nil || user.Status != directory.UserStatusActive {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
			continue
		}
		matchedUser = user
		matched = append(matched, m)
	}

	switch len(matched) {
	case 0:
		return nil, nil, shared.ErrInvalidCredentials
	case 1:
		return matchedUser, nil, nil
	default:
		// The password is valid in several tenants; the client must pick
		// one and retry with tenantId set.
		return nil, matched, nil
	}
}

// RegisterSession persists session metadata for audit and revocation.
func (s *Service) RegisterSession(ctx context.Context, id string, tenantID, userID uuid.UUID, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, tenantID, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

func filterTenant(memberships []directory.Membership, tenantID uuid.UUID) []directory.Membership {
	var out []directory.Membership
	for _, m := range memberships {
		if m.TenantID == tenantID {
			out = append(out, m)
		}
	}
	return out
}

package features

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/forecourt-erp/forecourt-erp/internal/audit"
	"github.com/forecourt-erp/forecourt-erp/internal/platform/httpx"
	"github.com/forecourt-erp/forecourt-erp/internal/shared"
)

// applyAllConcurrency bounds the fan-out of apply-to-all runs.
const applyAllConcurrency = 4

// Auditor records permission changes. Satisfied by audit.Service.
type Auditor interface {
	Append(ctx context.Context, entry audit.Entry) (audit.Entry, error)
}

// Service is the authoritative per-user, per-tenant allow/deny store.
type Service struct {
	repo    Repository
	auditor Auditor
	logger  *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, auditor Auditor, logger *slog.Logger) *Service {
	return &Service{repo: repo, auditor: auditor, logger: logger}
}

// GetAssignments returns the effective state for every catalog feature:
// the override value where one exists, the catalog default otherwise. The
// result always has exactly one entry per catalog feature, in catalog order.
func (s *Service) GetAssignments(ctx context.Context, tenantID, userID uuid.UUID) ([]Assignment, error) {
	if _, err := s.repo.FindUserEmail(ctx, tenantID, userID); err != nil {
		return nil, err
	}
	overrides, err := s.repo.ListOverrides(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	return effective(overrides), nil
}

// SetAssignments upserts one override per incoming pair, atomically for the
// user, and audits every key whose effective value actually changed. It
// returns the refreshed full assignment list.
func (s *Service) SetAssignments(ctx context.Context, scope shared.Scope, tenantID, userID uuid.UUID, incoming []Assignment) ([]Assignment, error) {
	if !scope.Elevated() {
		return nil, fmt.Errorf("%w: changing feature access requires an elevated role", httpx.ErrForbidden)
	}
	if len(incoming) == 0 {
		return nil, fmt.Errorf("%w: features list must not be empty", httpx.ErrValidation)
	}
	seen := make(map[string]struct{}, len(incoming))
	for _, a := range incoming {
		if _, ok := CatalogLookup(a.FeatureKey); !ok {
			return nil, fmt.Errorf("%w: unknown feature key %q", httpx.ErrValidation, a.FeatureKey)
		}
		if _, dup := seen[a.FeatureKey]; dup {
			return nil, fmt.Errorf("%w: duplicate feature key %q", httpx.ErrValidation, a.FeatureKey)
		}
		seen[a.FeatureKey] = struct{}{}
	}

	targetEmail, err := s.repo.FindUserEmail(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	overrides, err := s.repo.ListOverrides(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	before := effectiveMap(overrides)

	// Only keys that actually flip are audited; resubmitting an identical
	// payload must not grow the log.
	var changed []Assignment
	for _, a := range incoming {
		if before[a.FeatureKey] != a.Allowed {
			changed = append(changed, a)
		}
	}

	if err := s.repo.UpsertOverrides(ctx, tenantID, userID, incoming); err != nil {
		return nil, err
	}

	for _, a := range changed {
		action := audit.ActionDisabled
		if a.Allowed {
			action = audit.ActionEnabled
		}
		featureKey := a.FeatureKey
		if _, err := s.auditor.Append(ctx, audit.Entry{
			DeveloperEmail:  scope.Email,
			TargetUserEmail: targetEmail,
			FeatureKey:      &featureKey,
			Action:          action,
		}); err != nil {
			s.logger.Warn("audit append failed",
				slog.String("feature", a.FeatureKey),
				slog.String("target", targetEmail),
				slog.Any("error", err))
		}
	}

	return s.GetAssignments(ctx, tenantID, userID)
}

// ApplyTemplate applies a named preset to one user, or to every user in the
// tenant when targetUserID is nil. Across users the operation is best-effort:
// failures are reported per user and the run continues.
func (s *Service) ApplyTemplate(ctx context.Context, scope shared.Scope, tenantID uuid.UUID, templateName string, targetUserID *uuid.UUID) (TemplateSummary, error) {
	if !scope.Elevated() {
		return TemplateSummary{}, fmt.Errorf("%w: applying templates requires an elevated role", httpx.ErrForbidden)
	}
	template, ok := TemplateAssignments(templateName)
	if !ok {
		return TemplateSummary{}, fmt.Errorf("%w: unknown template %q", httpx.ErrValidation, templateName)
	}

	if targetUserID != nil {
		if _, err := s.SetAssignments(ctx, scope, tenantID, *targetUserID, template); err != nil {
			return TemplateSummary{}, err
		}
		return TemplateSummary{UsersUpdated: 1, FeaturesApplied: len(template)}, nil
	}

	userIDs, err := s.repo.ListUserIDs(ctx, tenantID)
	if err != nil {
		return TemplateSummary{}, err
	}

	var (
		mu      sync.Mutex
		summary = TemplateSummary{FeaturesApplied: len(template)}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(applyAllConcurrency)
	for _, userID := range userIDs {
		g.Go(func() error {
			if _, err := s.SetAssignments(gctx, scope, tenantID, userID, template); err != nil {
				mu.Lock()
				summary.Failures = append(summary.Failures, UserFailure{
					UserID: userID,
					Reason: httpx.UserSafeMessage(err),
				})
				mu.Unlock()
				return nil
			}
			mu.Lock()
			summary.UsersUpdated++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return summary, nil
}

// EffectiveForUser resolves the calling user's own feature set.
func (s *Service) EffectiveForUser(ctx context.Context, scope shared.Scope) ([]Assignment, error) {
	return s.GetAssignments(ctx, scope.TenantID, scope.UserID)
}

// effective merges override rows over catalog defaults, in catalog order.
func effective(overrides []Override) []Assignment {
	byKey := effectiveMap(overrides)
	out := make([]Assignment, 0, len(catalogItems))
	for _, item := range catalogItems {
		out = append(out, Assignment{FeatureKey: item.FeatureKey, Allowed: byKey[item.FeatureKey]})
	}
	return out
}

// effectiveMap computes featureKey -> allowed for every catalog feature.
func effectiveMap(overrides []Override) map[string]bool {
	byKey := make(map[string]bool, len(catalogItems))
	for _, item := range catalogItems {
		byKey[item.FeatureKey] = item.DefaultEnabled
	}
	for _, o := range overrides {
		// Overrides for keys dropped from the catalog are ignored.
		if _, ok := catalogIndex[o.FeatureKey]; ok {
			byKey[o.FeatureKey] = o.Allowed
		}
	}
	return byKey
}

package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/forecourt-erp/forecourt-erp/internal/platform/httpx"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 500
)

// Service wraps the audit log with input checks.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Append records one entry. Only required-field validation is applied; the
// insert itself is a single O(1) statement.
func (s *Service) Append(ctx context.Context, entry Entry) (Entry, error) {
	if strings.TrimSpace(entry.DeveloperEmail) == "" {
		return Entry{}, fmt.Errorf("%w: developer email required", httpx.ErrValidation)
	}
	if strings.TrimSpace(entry.TargetUserEmail) == "" {
		return Entry{}, fmt.Errorf("%w: target user email required", httpx.ErrValidation)
	}
	if entry.Action != ActionEnabled && entry.Action != ActionDisabled {
		return Entry{}, fmt.Errorf("%w: action must be %q or %q", httpx.ErrValidation, ActionEnabled, ActionDisabled)
	}
	return s.repo.Insert(ctx, entry)
}

// Query returns entries most-recent-first. Limit defaults to 50 and is
// clamped to 500.
func (s *Service) Query(ctx context.Context, q Query) ([]Entry, error) {
	if q.Limit <= 0 {
		q.Limit = defaultQueryLimit
	}
	if q.Limit > maxQueryLimit {
		q.Limit = maxQueryLimit
	}
	return s.repo.List(ctx, q)
}

package features

import (
	"time"

	"github.com/google/uuid"
)

// Assignment is the effective allow/deny state of one feature for one user.
type Assignment struct {
	FeatureKey string `json:"featureKey"`
	Allowed    bool   `json:"allowed"`
}

// Override is a persisted per-user assignment row. Absence of a row means
// "use the catalog default"; an override with Allowed=false is an explicit
// deny, which must never be conflated with absence.
type Override struct {
	TenantID   uuid.UUID
	UserID     uuid.UUID
	FeatureKey string
	Allowed    bool
	UpdatedAt  time.Time
}

// TemplateSummary reports the outcome of a bulk template application.
type TemplateSummary struct {
	UsersUpdated    int           `json:"usersUpdated"`
	FeaturesApplied int           `json:"featuresApplied"`
	Failures        []UserFailure `json:"failures,omitempty"`
}

// UserFailure names one user a bulk operation could not update. Bulk apply
// is best-effort across users: one bad user does not block the rest.
type UserFailure struct {
	UserID uuid.UUID `json:"userId"`
	Reason string    `json:"reason"`
}

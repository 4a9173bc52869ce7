// Package audit keeps the append-only trail of feature permission changes.
// Entries are never updated or deleted; that is a policy decision, not an
// oversight.
package audit

import "time"

// Actions recorded for a feature flip.
const (
	ActionEnabled  = "enabled"
	ActionDisabled = "disabled"
)

// Entry is one permission change: who flipped what for whom, and when.
// FeatureKey is nil for entries that describe a whole-account action.
type Entry struct {
	ID              int64     `json:"id"`
	DeveloperEmail  string    `json:"developerEmail"`
	TargetUserEmail string    `json:"targetUserEmail"`
	FeatureKey      *string   `json:"featureKey"`
	Action          string    `json:"action"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Query filters the log. Results are most-recent-first.
type Query struct {
	TargetEmail string
	Limit       int
}

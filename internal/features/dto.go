package features

// AssignmentInput is one featureKey/allowed pair in a write request.
// Allowed is a pointer so an explicit false is distinguishable from a
// missing field; validator rejects the latter.
type AssignmentInput struct {
	FeatureKey string `json:"featureKey" validate:"required,max=100"`
	Allowed    *bool  `json:"allowed" validate:"required"`
}

// SetAssignmentsRequest replaces a user's feature state.
type SetAssignmentsRequest struct {
	Features []AssignmentInput `json:"features" validate:"required,min=1,dive"`
}

func (req SetAssignmentsRequest) assignments() []Assignment {
	out := make([]Assignment, 0, len(req.Features))
	for _, f := range req.Features {
		allowed := false
		if f.Allowed != nil {
			allowed = *f.Allowed
		}
		out = append(out, Assignment{FeatureKey: f.FeatureKey, Allowed: allowed})
	}
	return out
}

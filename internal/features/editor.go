package features

import "fmt"

// Editor is the client-side editing model for a user's feature checklist.
// It tracks the last server-confirmed state (baseline) and the in-progress
// working copy (draft) separately, so an explicit false is never mistaken
// for "not set". All lookups use the comma-ok form for that reason.
type Editor struct {
	baseline map[string]bool
	draft    map[string]bool
}

// NewEditor returns an empty editor. Call Load with a server response
// before editing.
func NewEditor() *Editor {
	return &Editor{
		baseline: make(map[string]bool),
		draft:    make(map[string]bool),
	}
}

// Load replaces the baseline with a fresh server response and resets the
// draft to match. Every baseline key is carried into the draft with the
// same value; no key is dropped.
func (e *Editor) Load(assignments []Assignment) {
	e.baseline = make(map[string]bool, len(assignments))
	for _, a := range assignments {
		e.baseline[a.FeatureKey] = a.Allowed
	}
	e.draft = cloneBools(e.baseline)
}

// Toggle sets the draft value for a feature unconditionally; it never
// merges or ORs with the previous value. Keys outside the catalog are
// rejected so a typo cannot silently vanish at submission time.
func (e *Editor) Toggle(featureKey string, value bool) error {
	if _, ok := CatalogLookup(featureKey); !ok {
		return fmt.Errorf("features: unknown feature key %q", featureKey)
	}
	e.draft[featureKey] = value
	return nil
}

// IsDirty reports whether any key differs between baseline and draft.
func (e *Editor) IsDirty() bool {
	if len(e.baseline) != len(e.draft) {
		return true
	}
	for key, value := range e.draft {
		base, ok := e.baseline[key]
		if !ok || base != value {
			return true
		}
	}
	return false
}

// BuildSubmission emits one entry per catalog feature, in catalog order:
// the draft value if explicitly set, else the baseline value, else the
// catalog default. A feature is never omitted, because the store treats
// the submitted list as the complete desired state.
func (e *Editor) BuildSubmission() []Assignment {
	out := make([]Assignment, 0, len(catalogItems))
	for _, item := range catalogItems {
		allowed := item.DefaultEnabled
		if v, ok := e.baseline[item.FeatureKey]; ok {
			allowed = v
		}
		if v, ok := e.draft[item.FeatureKey]; ok {
			allowed = v
		}
		out = append(out, Assignment{FeatureKey: item.FeatureKey, Allowed: allowed})
	}
	return out
}

// Revert discards edits, resetting the draft to the last-saved server state.
func (e *Editor) Revert() {
	e.draft = cloneBools(e.baseline)
}

// ResetToCatalogDefaults sets every draft value to the catalog default.
// Distinct from Revert, which goes back to the last-saved server state.
func (e *Editor) ResetToCatalogDefaults() {
	e.draft = make(map[string]bool, len(catalogItems))
	for _, item := range catalogItems {
		e.draft[item.FeatureKey] = item.DefaultEnabled
	}
}

// CommitSaved installs the store's response after a successful save as the
// new baseline and clears the dirty state.
func (e *Editor) CommitSaved(result []Assignment) {
	e.Load(result)
}

// Draft returns the current draft value for a key and whether it is set.
func (e *Editor) Draft(featureKey string) (bool, bool) {
	v, ok := e.draft[featureKey]
	return v, ok
}

// Baseline returns the baseline value for a key and whether it is set.
func (e *Editor) Baseline(featureKey string) (bool, bool) {
	v, ok := e.baseline[featureKey]
	return v, ok
}

func cloneBools(src map[string]bool) map[string]bool {
	dst := make(map[string]bool, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

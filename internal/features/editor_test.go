package features

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func loadedEditor(t *testing.T) *Editor {
	t.Helper()
	e := NewEditor()
	baseline := make([]Assignment, 0, CatalogSize())
	for _, item := range Catalog() {
		baseline = append(baseline, Assignment{FeatureKey: item.FeatureKey, Allowed: item.DefaultEnabled})
	}
	e.Load(baseline)
	return e
}

func TestLoadCopiesEveryBaselineKeyIntoDraft(t *testing.T) {
	e := loadedEditor(t)
	for _, item := range Catalog() {
		base, ok := e.Baseline(item.FeatureKey)
		require.True(t, ok)
		draft, ok := e.Draft(item.FeatureKey)
		require.True(t, ok, "no key may be silently dropped on load")
		require.Equal(t, base, draft)
	}
	require.False(t, e.IsDirty())
}

func TestToggleSetsUnconditionally(t *testing.T) {
	e := loadedEditor(t)

	require.NoError(t, e.Toggle("dashboard", false))
	v, ok := e.Draft("dashboard")
	require.True(t, ok)
	require.False(t, v)
	require.True(t, e.IsDirty())

	// Toggling back to the baseline value clears the dirty state.
	require.NoError(t, e.Toggle("dashboard", true))
	require.False(t, e.IsDirty())

	require.Error(t, e.Toggle("warp_drive", true))
}

func TestBuildSubmissionNeverOmitsAChangedKey(t *testing.T) {
	e := NewEditor()
	e.Load([]Assignment{
		{FeatureKey: "dashboard", Allowed: true},
		{FeatureKey: "reports", Allowed: false},
		{FeatureKey: "vendors", Allowed: true},
	})
	require.NoError(t, e.Toggle("reports", true))

	submission := e.BuildSubmission()
	require.Len(t, submission, CatalogSize(), "submission carries every catalog feature")

	byKey := make(map[string]bool, len(submission))
	for _, a := range submission {
		byKey[a.FeatureKey] = a.Allowed
	}
	require.True(t, byKey["reports"], "the changed key must be present with its new value")
	require.True(t, byKey["dashboard"])
	require.True(t, byKey["vendors"])

	// Keys absent from the baseline fall back to catalog defaults.
	require.True(t, byKey["fuel_products"])
	require.False(t, byKey["attendance"])
}

func TestRevertRestoresBaseline(t *testing.T) {
	e := loadedEditor(t)
	require.NoError(t, e.Toggle("dashboard", false))
	require.NoError(t, e.Toggle("reports", true))
	require.True(t, e.IsDirty())

	e.Revert()
	require.False(t, e.IsDirty())
	for _, item := range Catalog() {
		base, _ := e.Baseline(item.FeatureKey)
		draft, ok := e.Draft(item.FeatureKey)
		require.True(t, ok)
		require.Equal(t, base, draft)
	}
}

func TestResetToCatalogDefaultsIsNotRevert(t *testing.T) {
	e := NewEditor()
	// Server state diverges from the catalog defaults.
	e.Load([]Assignment{
		{FeatureKey: "dashboard", Allowed: false},
		{FeatureKey: "reports", Allowed: true},
	})

	e.ResetToCatalogDefaults()
	v, ok := e.Draft("dashboard")
	require.True(t, ok)
	require.True(t, v, "defaults, not last-saved state")
	v, ok = e.Draft("reports")
	require.True(t, ok)
	require.False(t, v)
	require.True(t, e.IsDirty())

	e.Revert()
	v, _ = e.Draft("dashboard")
	require.False(t, v, "revert goes back to server state")
}

func TestCommitSavedClearsDirtyState(t *testing.T) {
	e := loadedEditor(t)
	require.NoError(t, e.Toggle("reports", true))
	require.True(t, e.IsDirty())

	// Simulate a successful save echoing the new effective state.
	saved := e.BuildSubmission()
	e.CommitSaved(saved)
	require.False(t, e.IsDirty())

	base, ok := e.Baseline("reports")
	require.True(t, ok)
	require.True(t, base)
}

package features

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/forecourt-erp/forecourt-erp/internal/shared"
)

func testRouter(t *testing.T, repo *memoryFeatureRepo, scope shared.Scope) http.Handler {
	t.Helper()
	svc := NewService(repo, &memoryAuditor{}, slog.Default())
	h := NewHandler(slog.Default(), svc)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.ContextWithScope(req.Context(), scope)))
		})
	})
	h.MountRoutes(r)
	return r
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCatalogEndpoint(t *testing.T) {
	repo := newMemoryFeatureRepo()
	router := testRouter(t, repo, adminScope())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/features", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeEnvelope(t, rec)
	require.Equal(t, true, body["ok"])
	require.Len(t, body["features"], CatalogSize())
}

func TestPutAssignmentsRoundTrip(t *testing.T) {
	repo := newMemoryFeatureRepo()
	tenantID, userID := uuid.New(), uuid.New()
	repo.addUser(tenantID, userID, "u@station.example")
	router := testRouter(t, repo, adminScope())

	payload := `{"features":[{"featureKey":"dashboard","allowed":false},{"featureKey":"reports","allowed":true}]}`
	url := fmt.Sprintf("/users/%s/features?tenantId=%s", userID, tenantID)
	req := httptest.NewRequest(http.MethodPut, url, bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeEnvelope(t, rec)
	require.Equal(t, true, body["ok"])
	features, ok := body["features"].([]any)
	require.True(t, ok)
	require.Len(t, features, CatalogSize(), "response echoes the complete effective state")

	// Reload confirms the explicit false persisted.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	for _, raw := range decodeEnvelope(t, rec)["features"].([]any) {
		entry := raw.(map[string]any)
		switch entry["featureKey"] {
		case "dashboard":
			require.Equal(t, false, entry["allowed"])
		case "reports":
			require.Equal(t, true, entry["allowed"])
		}
	}
}

func TestPutAssignmentsRejectsMissingAllowedField(t *testing.T) {
	repo := newMemoryFeatureRepo()
	tenantID, userID := uuid.New(), uuid.New()
	repo.addUser(tenantID, userID, "u@station.example")
	router := testRouter(t, repo, adminScope())

	// "allowed" absent is a validation error, not an implicit false.
	payload := `{"features":[{"featureKey":"dashboard"}]}`
	url := fmt.Sprintf("/users/%s/features?tenantId=%s", userID, tenantID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, url, bytes.NewBufferString(payload)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeEnvelope(t, rec)
	require.Equal(t, false, body["ok"])
	require.Equal(t, "ValidationError", body["kind"])
}

func TestDeveloperMustNameATenant(t *testing.T) {
	repo := newMemoryFeatureRepo()
	userID := uuid.New()
	router := testRouter(t, repo, adminScope())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/"+userID.String()+"/features", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "ValidationError", decodeEnvelope(t, rec)["kind"])

	// The header form works too.
	tenantID := uuid.New()
	repo.addUser(tenantID, userID, "u@station.example")
	req := httptest.NewRequest(http.MethodGet, "/users/"+userID.String()+"/features", nil)
	req.Header.Set(shared.TenantHeader, tenantID.String())
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegularUserIsBoundToSessionTenant(t *testing.T) {
	repo := newMemoryFeatureRepo()
	tenantID, userID := uuid.New(), uuid.New()
	otherTenant := uuid.New()
	repo.addUser(tenantID, userID, "admin@station.example")

	scope := shared.Scope{
		UserID:   userID,
		TenantID: tenantID,
		Email:    "admin@station.example",
		Role:     shared.RoleSuperAdmin,
	}
	router := testRouter(t, repo, scope)

	// A foreign tenantId on the query string is ignored for non-developers.
	url := fmt.Sprintf("/users/%s/features?tenantId=%s", userID, otherTenant)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeEnvelope(t, rec)["features"], CatalogSize())
}

func TestApplyTemplateEndpoints(t *testing.T) {
	repo := newMemoryFeatureRepo()
	tenantID := uuid.New()
	u1, u2 := uuid.New(), uuid.New()
	repo.addUser(tenantID, u1, "one@station.example")
	repo.addUser(tenantID, u2, "two@station.example")
	router := testRouter(t, repo, adminScope())

	url := fmt.Sprintf("/admin/users/%s/apply-basic-features?tenantId=%s", u1, tenantID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, url, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeEnvelope(t, rec)["summary"].(map[string]any)
	require.Equal(t, float64(1), summary["usersUpdated"])

	url = fmt.Sprintf("/admin/tenant/apply-advanced-features-to-all?tenantId=%s", tenantID)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, url, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	summary = decodeEnvelope(t, rec)["summary"].(map[string]any)
	require.Equal(t, float64(2), summary["usersUpdated"])
}

func TestNonElevatedCallerGetsPermissionError(t *testing.T) {
	repo := newMemoryFeatureRepo()
	tenantID, userID := uuid.New(), uuid.New()
	repo.addUser(tenantID, userID, "u@station.example")

	scope := shared.Scope{UserID: userID, TenantID: tenantID, Email: "u@station.example", Role: shared.RoleDSM}
	router := testRouter(t, repo, scope)

	payload := `{"features":[{"featureKey":"dashboard","allowed":true}]}`
	req := httptest.NewRequest(http.MethodPut, "/users/"+userID.String()+"/features", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "PermissionError", decodeEnvelope(t, rec)["kind"])
}

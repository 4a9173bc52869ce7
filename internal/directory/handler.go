package directory

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/forecourt-erp/forecourt-erp/internal/platform/httpx"
	"github.com/forecourt-erp/forecourt-erp/internal/shared"
)

// Handler serves tenant and user directory endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers directory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/tenants", h.provisionTenant)
	r.Get("/tenants", h.listTenants)
	r.Get("/tenants/{tenantID}/users", h.listUsers)
	r.Post("/tenants/{tenantID}/users", h.createUser)
	r.Get("/memberships", h.memberships)
}

// provisionTenant accepts the request and answers 202: provisioning runs in
// the background and the caller polls GET /tenants until the tenant is
// active.
func (h *Handler) provisionTenant(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())

	var req ProvisionTenantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	tenant, err := h.service.ProvisionTenant(r.Context(), scope, req)
	if err != nil {
		h.logger.Error("provision tenant", slog.String("org", req.OrganizationName), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusAccepted, httpx.Envelope{"tenant": tenant})
}

func (h *Handler) listTenants(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	tenants, err := h.service.ListTenants(r.Context(), scope)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if tenants == nil {
		tenants = []TenantSummary{}
	}
	httpx.OK(w, http.StatusOK, httpx.Envelope{"tenants": tenants})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	tenantID, err := pathTenantID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	users, err := h.service.ListTenantUsers(r.Context(), scope, tenantID)
	if err != nil {
		h.logger.Error("list tenant users", slog.String("tenant", tenantID.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if users == nil {
		users = []User{}
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
	pagination := shared.NewPagination(page, perPage, len(users))
	start, end := pagination.Slice()

	httpx.OK(w, http.StatusOK, httpx.Envelope{
		"users":      users[start:end],
		"pagination": pagination,
	})
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	tenantID, err := pathTenantID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	var req CreateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	user, err := h.service.CreateUser(r.Context(), scope, tenantID, req)
	if err != nil {
		h.logger.Error("create user", slog.String("tenant", tenantID.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, httpx.Envelope{"user": user})
}

func (h *Handler) memberships(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	memberships, err := h.service.FindMembershipsByEmail(r.Context(), scope, r.URL.Query().Get("email"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if memberships == nil {
		memberships = []Membership{}
	}
	httpx.OK(w, http.StatusOK, httpx.Envelope{"memberships": memberships})
}

func pathTenantID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "tenantID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed tenant id %q", httpx.ErrValidation, raw)
	}
	return id, nil
}

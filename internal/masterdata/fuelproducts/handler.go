package fuelproducts

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/forecourt-erp/forecourt-erp/internal/platform/httpx"
	"github.com/forecourt-erp/forecourt-erp/internal/shared"
)

// Handler serves fuel product endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers fuel product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/fuel-products", h.list)
	r.Post("/fuel-products", h.create)
	r.Get("/fuel-products/{productID}", h.get)
	r.Put("/fuel-products/{productID}", h.update)
	r.Delete("/fuel-products/{productID}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	tenantID, err := shared.RequestTenant(r, scope)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	products, err := h.service.List(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("list fuel products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if products == nil {
		products = []FuelProduct{}
	}
	httpx.OK(w, http.StatusOK, httpx.Envelope{"fuelProducts": products})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	tenantID, err := shared.RequestTenant(r, scope)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := pathProductID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	product, err := h.service.Get(r.Context(), tenantID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, httpx.Envelope{"fuelProduct": product})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	tenantID, err := shared.RequestTenant(r, scope)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	var form FuelProductForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	product, err := h.service.Create(r.Context(), scope, tenantID, form)
	if err != nil {
		h.logger.Error("create fuel product", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, httpx.Envelope{"fuelProduct": product})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	tenantID, err := shared.RequestTenant(r, scope)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := pathProductID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	var form FuelProductForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	product, err := h.service.Update(r.Context(), scope, tenantID, id, form)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, httpx.Envelope{"fuelProduct": product})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	tenantID, err := shared.RequestTenant(r, scope)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := pathProductID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), scope, tenantID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, httpx.Envelope{})
}

func pathProductID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "productID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed product id %q", httpx.ErrValidation, raw)
	}
	return id, nil
}

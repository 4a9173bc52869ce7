package tanks

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

// Handler serves tank and nozzle endpoints.
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

// MountRoutes registers forecourt registry routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/tanks", h.listTanks)
	r.Post("/tanks", h.createTank)
	r.Get("/tanks/{tankID}", h.getTank)
	r.Post("/tanks/{tankID}/nozzles", h.createNozzle)
	r.Get("/nozzles", h.listNozzles)
}

func (h *Handler) listTanks(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	tenantID, err := shared.RequestTenant(r, scope)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	tanks, err := h.service.ListTanks(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("list tanks", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if tanks == nil {
		tanks = []Tank{}
	}
	httpx.OK(w, http.StatusOK, httpx.Envelope{"tanks": tanks})
}

func (h *Handler) getTank(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	tenantID, err := shared.RequestTenant(r, scope)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := pathTankID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	tank, err := h.service.GetTank(r.Context(), tenantID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, httpx.Envelope{"tank": tank})
}

func (h *Handler) createTank(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	tenantID, err := shared.RequestTenant(r, scope)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	var form TankForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	tank, err := h.service.CreateTank(r.Context(), scope, tenantID, form)
	if err != nil {
		h.logger.Error("create tank", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, httpx.Envelope{"tank": tank})
}

func (h *Handler) createNozzle(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	tenantID, err := shared.RequestTenant(r, scope)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	tankID, err := pathTankID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	var form NozzleForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	nozzle, err := h.service.CreateNozzle(r.Context(), scope, tenantID, tankID, form)
	if err != nil {
		h.logger.Error("create nozzle", slog.String("tank", tankID.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, httpx.Envelope{"nozzle": nozzle})
}

func (h *Handler) listNozzles(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	tenantID, err := shared.RequestTenant(r, scope)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	nozzles, err := h.service.ListNozzles(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("list nozzles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if nozzles == nil {
		nozzles = []Nozzle{}
	}
	httpx.OK(w, http.StatusOK, httpx.Envelope{"nozzles": nozzles})
}

func pathTankID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "tankID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed tank id %q", httpx.ErrValidation, raw)
	}
	return id, nil
}

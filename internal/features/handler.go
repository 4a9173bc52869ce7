package features

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

// Handler serves the feature catalog and assignment endpoints.
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

// MountRoutes registers feature routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/features", h.catalog)
	r.Get("/features/me", h.mine)
	r.Get("/users/{userID}/features", h.getAssignments)
	r.Put("/users/{userID}/features", h.setAssignments)

	r.Post("/admin/users/{userID}/apply-basic-features", h.applyToUser(TemplateBasic))
	r.Post("/admin/users/{userID}/apply-advanced-features", h.applyToUser(TemplateAdvanced))
	r.Post("/admin/tenant/apply-basic-features-to-all", h.applyToAll(TemplateBasic))
	r.Post("/admin/tenant/apply-advanced-features-to-all", h.applyToAll(TemplateAdvanced))
}

// catalog lists the immutable feature catalog.
func (h *Handler) catalog(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, http.StatusOK, httpx.Envelope{"features": Catalog()})
}

// mine returns the calling user's own effective feature set, used by the
// admin UI to decide which sidebar entries to render.
func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	assignments, err := h.service.EffectiveForUser(r.Context(), scope)
	if err != nil {
		h.logger.Error("resolve own features", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "private, max-age=0, must-revalidate")
	httpx.OK(w, http.StatusOK, httpx.Envelope{"features": assignments})
}

func (h *Handler) getAssignments(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	tenantID, err := shared.RequestTenant(r, scope)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	userID, err := pathUserID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	assignments, err := h.service.GetAssignments(r.Context(), tenantID, userID)
	if err != nil {
		h.logger.Error("get assignments",
			slog.String("tenant", tenantID.String()),
			slog.String("user", userID.String()),
			slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, httpx.Envelope{"features": assignments})
}

func (h *Handler) setAssignments(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	tenantID, err := shared.RequestTenant(r, scope)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	userID, err := pathUserID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	var req SetAssignmentsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	assignments, err := h.service.SetAssignments(r.Context(), scope, tenantID, userID, req.assignments())
	if err != nil {
		h.logger.Error("set assignments",
			slog.String("tenant", tenantID.String()),
			slog.String("user", userID.String()),
			slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, httpx.Envelope{"features": assignments})
}

func (h *Handler) applyToUser(template string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope := shared.ScopeFromContext(r.Context())
		tenantID, err := shared.RequestTenant(r, scope)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		userID, err := pathUserID(r)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}

		summary, err := h.service.ApplyTemplate(r.Context(), scope, tenantID, template, &userID)
		if err != nil {
			h.logger.Error("apply template",
				slog.String("template", template),
				slog.String("user", userID.String()),
				slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.OK(w, http.StatusOK, httpx.Envelope{"summary": summary})
	}
}

func (h *Handler) applyToAll(template string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope := shared.ScopeFromContext(r.Context())
		tenantID, err := shared.RequestTenant(r, scope)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}

		summary, err := h.service.ApplyTemplate(r.Context(), scope, tenantID, template, nil)
		if err != nil {
			h.logger.Error("apply template to all",
				slog.String("template", template),
				slog.String("tenant", tenantID.String()),
				slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.OK(w, http.StatusOK, httpx.Envelope{"summary": summary})
	}
}

func pathUserID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "userID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed user id %q", httpx.ErrValidation, raw)
	}
	return id, nil
}

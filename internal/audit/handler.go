package audit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/forecourt-erp/forecourt-erp/internal/platform/httpx"
	"github.com/forecourt-erp/forecourt-erp/internal/shared"
)

// Handler serves the audit log query endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/audit-logs", h.list)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	if !scope.Elevated() {
		httpx.RespondError(w, fmt.Errorf("%w: audit log requires an elevated role", httpx.ErrForbidden))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: limit must be an integer", httpx.ErrValidation))
			return
		}
		limit = parsed
	}

	entries, err := h.service.Query(r.Context(), Query{
		TargetEmail: r.URL.Query().Get("targetUser"),
		Limit:       limit,
	})
	if err != nil {
		h.logger.Error("query audit log", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}

	httpx.OK(w, http.StatusOK, httpx.Envelope{"entries": entries})
}

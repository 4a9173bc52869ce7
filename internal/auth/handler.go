package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/forecourt-erp/forecourt-erp/internal/platform/httpx"
	"github.com/forecourt-erp/forecourt-erp/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validate       *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		csrfManager:    csrf,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
	r.Get("/auth/me", h.handleMe)
}

// LoginRequest carries credentials. TenantID is only needed when the email
// belongs to more than one organization.
type LoginRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=8"`
	TenantID *uuid.UUID `json:"tenantId" validate:"omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	user, choices, err := h.service.Authenticate(r.Context(), req.Email, req.Password, req.TenantID)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.RespondError(w, fmt.Errorf("%w: invalid email or password", httpx.ErrUnauthorized))
			return
		}
		h.logger.Error("authenticate", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	if user == nil {
		// Credentials are valid in several organizations; the client picks
		// one and retries with tenantId.
		httpx.OK(w, http.StatusOK, httpx.Envelope{
			"requiresTenantSelection": true,
			"memberships":             choices,
		})
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.RespondError(w, errors.New("session unavailable"))
		return
	}
	sess.SetUser(user.ID.String())
	sess.Set(shared.SessionKeyEmail, user.Email)
	sess.Set(shared.SessionKeyRole, user.Role)
	sess.Set(shared.SessionKeyTenantID, user.TenantID.String())

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.TenantID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}

	csrfToken, err := h.csrfManager.EnsureToken(r.Context(), sess)
	if err != nil {
		h.logger.Warn("issue csrf token", slog.Any("error", err))
	}

	httpx.OK(w, http.StatusOK, httpx.Envelope{
		"user":      user,
		"csrfToken": csrfToken,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	httpx.OK(w, http.StatusOK, httpx.Envelope{})
}

// handleMe describes the authenticated actor, including the developer flag
// the client uses to unlock cross-tenant screens.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	if scope.Email == "" {
		httpx.RespondError(w, fmt.Errorf("%w: not signed in", httpx.ErrUnauthorized))
		return
	}
	httpx.OK(w, http.StatusOK, httpx.Envelope{
		"user": httpx.Envelope{
			"id":       scope.UserID,
			"tenantId": scope.TenantID,
			"email":    scope.Email,
			"role":     scope.Role,
		},
		"developer": scope.Developer,
	})
}

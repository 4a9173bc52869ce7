package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/forecourt-erp/forecourt-erp/internal/audit"
	"github.com/forecourt-erp/forecourt-erp/internal/auth"
	"github.com/forecourt-erp/forecourt-erp/internal/directory"
	"github.com/forecourt-erp/forecourt-erp/internal/features"
	"github.com/forecourt-erp/forecourt-erp/internal/masterdata/fuelproducts"
	"github.com/forecourt-erp/forecourt-erp/internal/masterdata/tanks"
	"github.com/forecourt-erp/forecourt-erp/internal/observability"
	"github.com/forecourt-erp/forecourt-erp/internal/shared"
	"github.com/forecourt-erp/forecourt-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	AuthHandler         *auth.Handler
	FeaturesHandler     *features.Handler
	DirectoryHandler    *directory.Handler
	AuditHandler        *audit.Handler
	FuelProductsHandler *fuelproducts.Handler
	TanksHandler        *tanks.Handler
	JobsHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router serving the JSON API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		// Login and logout run before a scope exists.
		params.AuthHandler.MountRoutes(api)

		api.Group(func(protected chi.Router) {
			protected.Use(RequireAuth)
			params.FeaturesHandler.MountRoutes(protected)
			params.DirectoryHandler.MountRoutes(protected)
			if params.AuditHandler != nil {
				params.AuditHandler.MountRoutes(protected)
			}
			if params.FuelProductsHandler != nil {
				params.FuelProductsHandler.MountRoutes(protected)
			}
			if params.TanksHandler != nil {
				params.TanksHandler.MountRoutes(protected)
			}
			if params.JobsHandler != nil {
				protected.Route("/jobs", params.JobsHandler.MountRoutes)
			}
		})
	})

	return r
}

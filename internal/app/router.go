package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ncrtrack/ncrtrack/internal/analytics"
	"github.com/ncrtrack/ncrtrack/internal/auth"
	"github.com/ncrtrack/ncrtrack/internal/authz"
	"github.com/ncrtrack/ncrtrack/internal/fieldlocks"
	"github.com/ncrtrack/ncrtrack/internal/groups"
	"github.com/ncrtrack/ncrtrack/internal/observability"
	"github.com/ncrtrack/ncrtrack/internal/rnc"
	"github.com/ncrtrack/ncrtrack/internal/shared"
	"github.com/ncrtrack/ncrtrack/internal/shares"
	"github.com/ncrtrack/ncrtrack/internal/users"
	"github.com/ncrtrack/ncrtrack/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler       *auth.Handler
	RecordsHandler    *rnc.Handler
	SharesHandler     *shares.Handler
	FieldLocksHandler *fieldlocks.Handler
	GroupsHandler     *groups.Handler
	UsersHandler      *users.Handler
	AnalyticsHandler  *analytics.Handler
	JobHandler        *jobs.Handler

	Metrics *observability.Metrics
}

// NewRequestAuthorizer adapts the permission resolver to the per-request
// check handlers take: the principal comes from the session in context.
func NewRequestAuthorizer(resolver *authz.Resolver) func(r *http.Request, perm string) bool {
	return func(r *http.Request, perm string) bool {
		principalID := shared.PrincipalIDFromContext(r.Context())
		if principalID == 0 {
			return false
		}
		return resolver.HasPermission(r.Context(), principalID, perm)
	}
}

// NewRouter constructs the chi.Router.
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

	r.Route("/api/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth)

		r.Route("/api/rncs", func(r chi.Router) {
			var shareRoutes func(chi.Router)
			if params.SharesHandler != nil {
				shareRoutes = params.SharesHandler.MountRoutes
			}
			params.RecordsHandler.MountRoutes(r, shareRoutes)
		})
		if params.AnalyticsHandler != nil {
			r.Route("/api/dashboard", params.AnalyticsHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/api/users", params.UsersHandler.MountRoutes)
		}
		if params.FieldLocksHandler != nil {
			r.Route("/admin/field-locks", params.FieldLocksHandler.MountRoutes)
		}
		if params.GroupsHandler != nil {
			r.Route("/admin/groups", params.GroupsHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

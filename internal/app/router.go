package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/slotwise/slotwise/internal/appointments"
	"github.com/slotwise/slotwise/internal/auth"
	"github.com/slotwise/slotwise/internal/businesses"
	"github.com/slotwise/slotwise/internal/catalog"
	"github.com/slotwise/slotwise/internal/galleries"
	"github.com/slotwise/slotwise/internal/notifications"
	"github.com/slotwise/slotwise/internal/observability"
	"github.com/slotwise/slotwise/internal/shared"
	"github.com/slotwise/slotwise/internal/staff"
	"github.com/slotwise/slotwise/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	IdentityLoader *auth.IdentityLoader

	AuthHandler          *auth.Handler
	BusinessesHandler    *businesses.Handler
	CatalogHandler       *catalog.Handler
	StaffHandler         *staff.Handler
	AppointmentsHandler  *appointments.Handler
	GalleriesHandler     *galleries.Handler
	NotificationsHandler *notifications.Handler
	JobHandler           *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router for the API.
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
	if params.IdentityLoader != nil {
		r.Use(params.IdentityLoader.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		r.Route("/appointments", params.AppointmentsHandler.MountRoutes)
		if params.NotificationsHandler != nil {
			r.Route("/notifications", params.NotificationsHandler.MountRoutes)
		}
		r.Route("/businesses", func(r chi.Router) {
			params.BusinessesHandler.MountRoutes(r)
			r.Route("/{businessID}/offerings", params.CatalogHandler.MountRoutes)
			r.Route("/{businessID}/staff", params.StaffHandler.MountRoutes)
			r.Route("/{businessID}/gallery", params.GalleriesHandler.MountRoutes)
			r.Route("/{businessID}/calendar", params.AppointmentsHandler.MountCalendar)
		})
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

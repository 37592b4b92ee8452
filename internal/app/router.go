package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/voli-hq/voli/internal/assets"
	"github.com/voli-hq/voli/internal/auth"
	"github.com/voli-hq/voli/internal/contacts"
	"github.com/voli-hq/voli/internal/observability"
	"github.com/voli-hq/voli/internal/rbac"
	"github.com/voli-hq/voli/internal/tasks"
	"github.com/voli-hq/voli/internal/templates"
	"github.com/voli-hq/voli/internal/users"
	"github.com/voli-hq/voli/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthHandler      *auth.Handler
	UsersHandler     *users.Handler
	ContactsHandler  *contacts.Handler
	TasksHandler     *tasks.Handler
	TemplatesHandler *templates.Handler
	AssetsHandler    *assets.Handler
	RolesHandler     *rbac.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with Voli defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
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

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/contacts", params.ContactsHandler.MountRoutes)
		r.Route("/tasks", params.TasksHandler.MountRoutes)
		r.Route("/task-templates", params.TemplatesHandler.MountRoutes)
		r.Route("/assets", params.AssetsHandler.MountRoutes)
		r.Route("/roles", params.RolesHandler.MountRoutes)
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}

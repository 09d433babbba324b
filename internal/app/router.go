package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/teamhub/internal/calendar"
	"github.com/odyssey-erp/teamhub/internal/chat"
	"github.com/odyssey-erp/teamhub/internal/companies"
	"github.com/odyssey-erp/teamhub/internal/files"
	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/observability"
	"github.com/odyssey-erp/teamhub/internal/platform/httpx"
	"github.com/odyssey-erp/teamhub/internal/polls"
	"github.com/odyssey-erp/teamhub/internal/projects"
	"github.com/odyssey-erp/teamhub/internal/rbac"
	"github.com/odyssey-erp/teamhub/internal/session"
	"github.com/odyssey-erp/teamhub/internal/tasks"
	"github.com/odyssey-erp/teamhub/internal/users"
	"github.com/odyssey-erp/teamhub/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger    *slog.Logger
	Config    *Config
	Container *Container
	Metrics   *observability.Metrics
	// Jobs reports queue health. Nil hides the endpoint.
	Jobs *jobs.Handler
}

// NewRouter constructs the chi.Router with TeamHub defaults.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := params.Container
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.Jobs != nil {
		r.Route("/jobs", params.Jobs.MountRoutes)
	}

	secureCookie := params.Config != nil && params.Config.IsProduction()
	usersHandler := users.NewHandler(logger, c.Users, c.Companies)
	sessionHandler := session.NewHandler(logger, c.Sessions, secureCookie)

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(LoginLimiter())
			usersHandler.MountPublicRoutes(r)
			sessionHandler.MountPublicRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(c.Sessions.Middleware)
			sessionHandler.MountRoutes(r)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(c.Sessions.Middleware)
		r.Route("/me", usersHandler.MountRoutes)
		r.Route("/roles", rbac.NewHandler().MountRoutes)
		r.Route("/notifications", notifications.NewHandler(logger, c.Notifications).MountRoutes)
		r.Route("/companies", companies.NewHandler(logger, c.Companies, c.RBAC).MountRoutes)
		r.Route("/tasks", tasks.NewHandler(logger, c.Tasks, c.RBAC).MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(c.Companies.RequireCompany)
			r.Route("/chat", chat.NewHandler(logger, c.Chat).MountRoutes)
			r.Route("/files", files.NewHandler(logger, c.Files).MountRoutes)
			r.Route("/calendar", calendar.NewHandler(logger, c.Calendar).MountRoutes)
			r.Route("/polls", polls.NewHandler(logger, c.Polls).MountRoutes)
			r.Route("/projects", projects.NewHandler(logger, c.Projects).MountRoutes)
		})
	})

	return r
}

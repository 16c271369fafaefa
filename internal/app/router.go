package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/IshuSinghSE/wallpaperz-sub000/internal/auth"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/categories"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/collections"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/observability"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/shared"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/users"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/wallpapers"
	"github.com/IshuSinghSE/wallpaperz-sub000/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SessionManager     *shared.SessionManager
	Guard              auth.Guard
	AuthHandler        *auth.Handler
	WallpapersHandler  *wallpapers.Handler
	CategoriesHandler  *categories.Handler
	CollectionsHandler *collections.Handler
	UsersHandler       *users.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router for the admin API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
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

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Everything under /api is admin-only.
	r.Route("/api", func(r chi.Router) {
		r.Use(params.Guard.RequireAdmin)

		if params.WallpapersHandler != nil {
			r.Route("/wallpapers", params.WallpapersHandler.MountRoutes)
		}
		if params.CategoriesHandler != nil {
			r.Route("/categories", params.CategoriesHandler.MountRoutes)
		}
		if params.CollectionsHandler != nil {
			r.Route("/collections", params.CollectionsHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
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

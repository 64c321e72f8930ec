package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"portal-united/directory/internal/api"
	"portal-united/directory/internal/auth"
	"portal-united/directory/internal/logging"
	"portal-united/directory/internal/middleware"
	"portal-united/directory/web/ui"
)

// Options configures the router beyond the wired dependencies.
type Options struct {
	AllowedOrigins []string
	CookieSecure   bool
}

// RegisterRoutes builds the handler for the whole site.
func RegisterRoutes(deps *api.Dependencies, opts Options, upSince time.Time) (http.Handler, error) {
	sessions := auth.NewSessionManager(deps.Services.Sessions, opts.CookieSecure)

	renderer, err := ui.NewRenderer(sessions)
	if err != nil {
		return nil, err
	}

	handler := ui.NewUIHandler(ui.Deps{
		Renderer:    renderer,
		Sessions:    sessions,
		Accounts:    deps.Services.Accounts,
		Profiles:    deps.Services.Profiles,
		Communities: deps.Services.Communities,
		Memberships: deps.Services.Memberships,
		Admin:       deps.Services.Admin,
		Invites:     deps.Services.Invites,
	})
	pages := handler.Pages()

	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.Recoverer(pages))
	r.Use(middleware.ThemeMiddleware)
	r.Use(middleware.SessionAuthMiddleware(sessions, deps.Services.Accounts))
	r.Use(middleware.CSRFMiddleware(pages, opts.CookieSecure))
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	r.NotFound(pages.NotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	// operational endpoints
	health := api.HealthCheckHandler(deps, upSince)
	r.Get("/healthCheck", health)

	r.Route("/api", func(apiRouter chi.Router) {
		apiRouter.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
		apiRouter.Get("/health", health)
	})

	RegisterUIRoutes(r, handler, deps, sessions)
	RegisterAdminRoutes(r, handler)

	logging.Info("Router initialized")
	return r, nil
}

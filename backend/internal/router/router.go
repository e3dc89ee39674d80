package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Serubin/AJD-Site/backend/internal/setup"
	"github.com/Serubin/AJD-Site/shared/csrf"
	"github.com/Serubin/AJD-Site/shared/logger"
	mw "github.com/Serubin/AJD-Site/shared/middleware"
	"github.com/Serubin/AJD-Site/shared/middleware/metrics"
	rl "github.com/Serubin/AJD-Site/shared/middleware/ratelimiter"
)

// New creates the chi router with all middleware and routes.
// Limiters passed to Use are shared by every route of that group.
func New(deps *setup.Dependencies) http.Handler {
	cfg := deps.Config
	h := deps.Handler

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger(logger.Component("http")))
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(mw.SecurityHeadersWithCSP(cfg.CSRF.SecureCookies, mw.APIContentSecurityPolicy))

	origins := []string{"http://localhost:5173"}
	if cfg.App.BaseURL != "" {
		origins = []string{cfg.App.BaseURL}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", csrf.HeaderName},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.IssueCSRFToken(mw.CSRFConfig{SecureCookies: cfg.CSRF.SecureCookies}))

	r.Get("/healthz", h.Health)
	r.Get("/readyz", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(mw.RequireCSRFToken)
		api.Use(chimw.Timeout(30 * time.Second))

		api.Get("/users", h.LookupUser)
		api.Post("/users", h.CreateUser)

		api.Route("/presigned-links", func(links chi.Router) {
			links.With(
				mw.GlobalRateLimit(rl.PerMinute(600)),
				mw.RateLimit(rl.PerMinute(10), mw.GetIP),
				mw.RateLimit(rl.New(3.0/600, 3, time.Hour), mw.GetContactFromBody), // 3 per 10 minutes per contact
			).Post("/", h.RequestUpdateLink)
			links.Patch("/", h.UpdateViaLink)
			links.Get("/{slug}", h.Prefill)
		})

		api.Get("/congressional-district", h.GetCongressionalDistrict)
		api.Get("/content/{page}", h.GetPageContent)
		api.Get("/get-involved", h.GetInvolved)
	})

	return r
}

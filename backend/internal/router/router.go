package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ptchurch/site/backend/internal/setup"
	"github.com/ptchurch/site/shared/csrf"
	mw "github.com/ptchurch/site/shared/middleware"
	"github.com/ptchurch/site/shared/middleware/metrics"
)

// New creates the chi router with all routes.
// Every mutating public route runs origin check, then CSRF, then its own
// rate-limit bucket, in that order.
func New(deps *setup.Dependencies) http.Handler {
	cfg := deps.Config
	h := deps.Handler
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(mw.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)

	r.Use(mw.SecurityHeaders(mw.SecurityHeadersConfig{
		HSTS: cfg.IsProduction(),
		CSP:  "default-src 'none'; frame-ancestors 'none'",
	}))

	allowed := append([]string{cfg.Public.SiteOrigin}, cfg.Public.Security.AllowedOrigins...)
	if !cfg.IsProduction() {
		allowed = append(allowed, mw.DevOrigins...)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", csrf.HeaderName, mw.AdminSecretHeader, mw.RemindersSecretHeader},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", metrics.Handler())

	gate := mw.SameOrigin(mw.OriginConfig{
		SiteOrigin:     cfg.Public.SiteOrigin,
		AllowedOrigins: cfg.Public.Security.AllowedOrigins,
		Production:     cfg.IsProduction(),
		Strict:         cfg.Public.Security.StrictOrigin,
	})
	limit := func(endpoint string, resource func(*http.Request) string) func(http.Handler) http.Handler {
		rl := cfg.RateLimit(endpoint)
		return mw.RateLimit(deps.Limiter, mw.RateLimitRule{Endpoint: endpoint, Max: rl.Max, Window: rl.Window, Resource: resource})
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/csrf", mw.CSRFTokenHandler(mw.CSRFConfig{SecureCookies: cfg.IsProduction()}))
		r.Get("/config", h.GetSiteConfig)

		// Catalog and feeds
		r.Get("/services", h.ListServices)
		r.Get("/services/{slug}/calendar.ics", h.ServiceCalendar)
		r.Get("/events", h.ListEvents)
		r.Get("/events/{slug}", h.GetEvent)
		r.Get("/events/{slug}/calendar.ics", h.EventCalendar)
		r.Get("/calendar.ics", h.CalendarFeed)
		r.Get("/sermons", h.ListSermons)
		r.Get("/blog", h.ListBlogPosts)
		r.Get("/blog/{slug}", h.GetBlogPost)
		r.Get("/blog/{slug}/comments", h.ListComments)
		r.Get("/prayer", h.ListPrayers)
		r.Get("/bible/{book}/{chapter}", h.BiblePassage)

		// Form submissions
		r.Group(func(r chi.Router) {
			r.Use(gate)
			r.Use(mw.ValidateCSRFToken())

			r.With(limit("prayer", nil)).Post("/prayer", h.CreatePrayer)
			r.With(limit("pray", mw.URLParamResource("id"))).Post("/prayer/{id}/pray", h.Pray)
			r.With(limit("comment", nil)).Post("/blog/{slug}/comments", h.CreateComment)
			r.With(limit("rsvp", nil)).Post("/events/{slug}/rsvp", h.CreateRSVP)
			r.With(limit("rsvp_cancel", nil)).Post("/rsvp/cancel", h.CancelRSVP)
			r.With(limit("newsletter", nil)).Post("/newsletter", h.Subscribe)
			r.With(limit("unsubscribe", nil)).Post("/newsletter/unsubscribe", h.Unsubscribe)
			r.With(limit("contact", nil)).Post("/contact", h.Contact)
		})

		// Moderation
		r.Route("/admin", func(r chi.Router) {
			// Throttled ahead of the secret check, which may run bcrypt.
			r.Use(limit("admin", nil))
			r.With(mw.RequireSecret(mw.RemindersSecretHeader, cfg.Private.RemindersSecret)).Post("/reminders", h.SendReminders)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireSecret(mw.AdminSecretHeader, cfg.Private.AdminSecret))
				r.Get("/prayer", h.AdminListPrayers)
				r.Post("/prayer/{id}/approve", h.ApprovePrayer)
				r.Delete("/prayer/{id}", h.DeletePrayer)
				r.Get("/comments", h.AdminListComments)
				r.Post("/comments/{id}/approve", h.ApproveComment)
				r.Delete("/comments/{id}", h.DeleteComment)
				r.Get("/events/{slug}/rsvps", h.AdminListRSVPs)
			})
		})
	})

	return r
}

package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tellbill/server/internal/http/handlers"
	"github.com/tellbill/server/internal/infra"
	"github.com/tellbill/server/internal/middleware"
)

// Options carries the cross-cutting router configuration.
type Options struct {
	JWTSecret       string
	RateLimitPerMin int
	AllowedOrigins  []string
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	Logger          infra.Logger
}

// NewRouter assembles the API surface. Health is unauthenticated;
// everything under /v1 requires a bearer token.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(opts.JWTSecret))
		r.Use(middleware.I18N(opts.DefaultLocale, opts.CountryLookup))
		if opts.RateLimitPerMin > 0 {
			r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
		}

		r.Post("/v1/usage/increment", app.UsageIncrement)
		r.Post("/v1/billing/verify", app.BillingVerify)
		r.Get("/v1/me/entitlements", app.Entitlements)
	})

	return r
}

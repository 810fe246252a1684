package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"donatrack/internal/domain"
	"donatrack/internal/http/handlers"
	"donatrack/internal/infra"
	"donatrack/internal/middleware"
)

// NewRouter wires the full HTTP surface. The session middleware runs for
// every route so templates can tell who is signed in; enforcement happens in
// the staff group.
func NewRouter(app *handlers.App, cfg *infra.Config, logger zerolog.Logger, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.AccessLog(logger, lookup),
		app.Sessions.Sessions,
	)

	// Public surface
	r.Get("/healthz", app.Health)
	r.Get("/login", app.LoginForm)
	r.With(middleware.RateLimit(cfg.LoginRatePerMin, time.Minute)).Post("/login", app.Login)
	r.Get("/track/{token}", app.Track)
	r.Get("/uploads/{filename}", app.ServeUpload)
	r.Get("/qr/{filename}", app.ServeQR)

	// Staff panel
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireLogin)
		r.Get("/", app.DonationsList)
		r.Get("/logout", app.Logout)
		r.Get("/new", app.DonationNewForm)
		r.Post("/new", app.DonationCreate)
		r.Get("/donation/{token}/qr", app.DonationQR)
		r.Get("/donation/{token}/print", app.DonationPrint)
		r.Get("/admin/update/{id}", app.DonationUpdateForm)
		r.Post("/admin/update/{id}", app.DonationUpdate)
		r.With(middleware.RequireRole(domain.UserRoleAdmin)).Post("/admin/delete/{id}", app.DonationDelete)
	})

	return r
}

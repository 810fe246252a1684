package handlers

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"donatrack/internal/adapter/repo"
	"donatrack/internal/domain"
	"donatrack/internal/infra"
	"donatrack/internal/middleware"
	"donatrack/internal/storage"
	"donatrack/internal/tracking"
)

//go:embed templates/*.html
var templateFS embed.FS

// DonationStore is the persistence surface the donation handlers depend on.
// The SQLite repository satisfies it.
type DonationStore interface {
	Create(ctx context.Context, donation *domain.Donation) error
	List(ctx context.Context, query, status string) ([]domain.Donation, error)
	GetByID(ctx context.Context, id int64) (domain.Donation, error)
	GetByToken(ctx context.Context, token string) (domain.Donation, error)
	Update(ctx context.Context, donation domain.Donation) error
	Delete(ctx context.Context, id int64) error
}

// App bundles the dependencies shared by all HTTP handlers.
type App struct {
	Logger    zerolog.Logger
	Cfg       *infra.Config
	Donations DonationStore
	Users     *repo.UserRepositorySQLite
	Sessions  *middleware.SessionManager
	Store     *storage.FileStore
	Issuer    *tracking.Issuer

	tmpl *template.Template
}

// NewApp constructs the handler container and parses the embedded templates.
func NewApp(
	logger zerolog.Logger,
	cfg *infra.Config,
	donations DonationStore,
	users *repo.UserRepositorySQLite,
	sessions *middleware.SessionManager,
	store *storage.FileStore,
	issuer *tracking.Issuer,
) *App {
	funcs := template.FuncMap{
		// cases.Caser is stateful, so build one per call rather than sharing
		// a single instance across concurrent renders.
		"title": func(s string) string {
			return cases.Title(language.Spanish).String(s)
		},
	}
	tmpl := template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
	return &App{
		Logger:    logger,
		Cfg:       cfg,
		Donations: donations,
		Users:     users,
		Sessions:  sessions,
		Store:     store,
		Issuer:    issuer,
		tmpl:      tmpl,
	}
}

// viewData wraps page data with the session context every template can use,
// mirroring what the base navigation needs.
type viewData struct {
	LoggedIn bool
	User     middleware.Identity
	Data     any
}

func (a *App) render(w http.ResponseWriter, r *http.Request, code int, name string, data any) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := a.tmpl.ExecuteTemplate(w, name, viewData{LoggedIn: ok, User: identity, Data: data}); err != nil {
		a.Logger.Error().Err(err).Str("template", name).Msg("render failed")
	}
}

func (a *App) notFound(w http.ResponseWriter) {
	http.Error(w, "No encontrado.", http.StatusNotFound)
}

func (a *App) serverError(w http.ResponseWriter, err error, msg string) {
	a.Logger.Error().Err(err).Msg(msg)
	http.Error(w, "Error interno.", http.StatusInternalServerError)
}

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"donatrack/internal/domain"
	"donatrack/internal/middleware"
)

type loginView struct {
	Error string
	Next  string
}

// LoginForm renders the login page. Authenticated users are sent straight to
// the admin list.
func (a *App) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.IdentityFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	a.render(w, r, http.StatusOK, "login.html", loginView{Next: safeNext(r.URL.Query().Get("next"))})
}

// Login validates the submitted credentials and establishes the session.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Solicitud inválida.", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := strings.TrimSpace(r.PostFormValue("password"))
	next := safeNext(r.URL.Query().Get("next"))

	user, err := a.Users.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			a.render(w, r, http.StatusUnauthorized, "login.html", loginView{
				Error: "Usuario o contraseña incorrectos.",
				Next:  next,
			})
			return
		}
		a.serverError(w, err, "authenticate failed")
		return
	}

	token, err := a.Sessions.Issue(user)
	if err != nil {
		a.serverError(w, err, "issue session failed")
		return
	}
	a.Sessions.SetCookie(w, token)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout clears the session cookie.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	a.Sessions.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}

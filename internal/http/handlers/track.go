package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"donatrack/internal/domain"
)

type trackView struct {
	Donation    domain.Donation
	TrackURL    string
	WhatsAppURL string
}

// Track is the public status page donors reach by scanning the QR code.
// Possession of the token is the only access control.
func (a *App) Track(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	donation, err := a.Donations.GetByToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.notFound(w)
			return
		}
		a.serverError(w, err, "load donation failed")
		return
	}

	trackURL := a.Issuer.TrackURL(token)
	shareText := "Te comparto el seguimiento de esta donación de Ágape en acción: " + trackURL

	a.render(w, r, http.StatusOK, "track.html", trackView{
		Donation:    donation,
		TrackURL:    trackURL,
		WhatsAppURL: "https://wa.me/?text=" + url.QueryEscape(shareText),
	})
}

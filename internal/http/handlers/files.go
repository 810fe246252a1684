package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ServeUpload serves an uploaded donation photo.
func (a *App) ServeUpload(w http.ResponseWriter, r *http.Request) {
	a.serveStored(w, r, "uploads/"+chi.URLParam(r, "filename"))
}

// ServeQR serves a generated QR image.
func (a *App) ServeQR(w http.ResponseWriter, r *http.Request) {
	a.serveStored(w, r, "qr/"+chi.URLParam(r, "filename"))
}

func (a *App) serveStored(w http.ResponseWriter, r *http.Request, key string) {
	path, err := a.Store.Path(key)
	if err != nil || !a.Store.Exists(key) {
		a.notFound(w)
		return
	}
	http.ServeFile(w, r, path)
}

package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"donatrack/internal/domain"
)

// statusOptions are the states offered in the status dropdowns. The column
// itself is free text, so older records with other labels keep working.
var statusOptions = []string{
	domain.StatusRegistered,
	"En preparación",
	"En camino",
	"Entregada",
}

const maxTokenAttempts = 5

type listView struct {
	Donations    []domain.Donation
	Query        string
	StatusFilter string
	Statuses     []string
}

// DonationsList renders the admin panel with search and status filtering.
func (a *App) DonationsList(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	status := strings.TrimSpace(r.URL.Query().Get("status"))

	items, err := a.Donations.List(r.Context(), q, status)
	if err != nil {
		a.serverError(w, err, "list donations failed")
		return
	}
	a.render(w, r, http.StatusOK, "admin_list.html", listView{
		Donations:    items,
		Query:        q,
		StatusFilter: status,
		Statuses:     statusOptions,
	})
}

type newDonationView struct {
	Error string
}

// DonationNewForm renders the registration form.
func (a *App) DonationNewForm(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, "new_donation.html", newDonationView{})
}

// DonationCreate registers a new donation, mints its tracking token and
// generates the QR artifact before redirecting to the QR page.
func (a *App) DonationCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Solicitud inválida.", http.StatusBadRequest)
		return
	}

	donation := domain.Donation{
		DonorName:    strings.TrimSpace(r.PostFormValue("donor_name")),
		DonorPhone:   strings.TrimSpace(r.PostFormValue("donor_phone")),
		DonorEmail:   strings.TrimSpace(r.PostFormValue("donor_email")),
		DonationType: strings.TrimSpace(r.PostFormValue("donation_type")),
		Quantity:     parseQuantity(r.PostFormValue("quantity")),
		Destination:  strings.TrimSpace(r.PostFormValue("destination")),
		CreatedAt:    time.Now(),
		Status:       domain.StatusRegistered,
	}
	if donation.DonorName == "" {
		a.render(w, r, http.StatusBadRequest, "new_donation.html", newDonationView{
			Error: "El nombre del donante es obligatorio.",
		})
		return
	}

	// Collisions are vanishingly rare at 16 bytes of entropy, but the unique
	// constraint makes retrying a correctness matter, not an optimization.
	var err error
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		donation.Token, err = a.Issuer.NewToken()
		if err != nil {
			a.serverError(w, err, "generate token failed")
			return
		}
		err = a.Donations.Create(r.Context(), &donation)
		if !errors.Is(err, domain.ErrDuplicateToken) {
			break
		}
	}
	if err != nil {
		a.serverError(w, err, "create donation failed")
		return
	}

	if _, err := a.Issuer.EnsureQR(r.Context(), donation.Token); err != nil {
		// The QR and print pages regenerate missing artifacts on view.
		a.Logger.Warn().Err(err).Str("token", donation.Token).Msg("qr generation failed")
	}

	http.Redirect(w, r, "/donation/"+donation.Token+"/qr", http.StatusSeeOther)
}

type ticketView struct {
	Donation domain.Donation
	QRPath   string
	TrackURL string
}

// DonationQR shows the QR code and donation summary for staff.
func (a *App) DonationQR(w http.ResponseWriter, r *http.Request) {
	a.renderTicket(w, r, "donation_qr.html")
}

// DonationPrint shows the printable POS-style ticket.
func (a *App) DonationPrint(w http.ResponseWriter, r *http.Request) {
	a.renderTicket(w, r, "donation_print.html")
}

func (a *App) renderTicket(w http.ResponseWriter, r *http.Request, tmplName string) {
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

	qrKey, err := a.Issuer.EnsureQR(r.Context(), token)
	if err != nil {
		a.serverError(w, err, "ensure qr failed")
		return
	}

	a.render(w, r, http.StatusOK, tmplName, ticketView{
		Donation: donation,
		QRPath:   "/" + qrKey,
		TrackURL: a.Issuer.TrackURL(token),
	})
}

type updateView struct {
	Donation    domain.Donation
	EditAllowed bool
	Statuses    []string
}

// DonationUpdateForm renders the update screen. Core donor fields are shown
// read-only once the donation has left the initial status.
func (a *App) DonationUpdateForm(w http.ResponseWriter, r *http.Request) {
	donation, ok := a.donationFromID(w, r)
	if !ok {
		return
	}
	a.render(w, r, http.StatusOK, "update_donation.html", updateView{
		Donation:    donation,
		EditAllowed: donation.Editable(),
		Statuses:    statusOptions,
	})
}

// DonationUpdate applies a status/photo update. Core donor fields are only
// accepted while the donation is still in the initial status; otherwise the
// submitted values are ignored and the stored ones retained.
func (a *App) DonationUpdate(w http.ResponseWriter, r *http.Request) {
	donation, ok := a.donationFromID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.Cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.Cfg.MaxUploadBytes); err != nil {
		http.Error(w, "Solicitud inválida.", http.StatusBadRequest)
		return
	}

	if donation.Editable() {
		donation.DonorName = strings.TrimSpace(r.PostFormValue("donor_name"))
		donation.DonorPhone = strings.TrimSpace(r.PostFormValue("donor_phone"))
		donation.DonorEmail = strings.TrimSpace(r.PostFormValue("donor_email"))
		donation.DonationType = strings.TrimSpace(r.PostFormValue("donation_type"))
		donation.Quantity = parseQuantity(r.PostFormValue("quantity"))
		donation.Destination = strings.TrimSpace(r.PostFormValue("destination"))
	}
	donation.Status = strings.TrimSpace(r.PostFormValue("status"))

	file, header, err := r.FormFile("photo")
	switch {
	case err == nil:
		defer file.Close()
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			a.serverError(w, readErr, "read upload failed")
			return
		}
		ext := strings.ToLower(filepath.Ext(header.Filename))
		key, writeErr := a.Store.Write(r.Context(), fmt.Sprintf("uploads/donation_%d%s", donation.ID, ext), data)
		if writeErr != nil {
			a.serverError(w, writeErr, "store upload failed")
			return
		}
		donation.PhotoPath = key
	case errors.Is(err, http.ErrMissingFile):
		// no new photo, keep the stored reference
	default:
		http.Error(w, "Solicitud inválida.", http.StatusBadRequest)
		return
	}

	if err := a.Donations.Update(r.Context(), donation); err != nil {
		// The row can disappear between the load above and this write.
		if errors.Is(err, domain.ErrNotFound) {
			a.notFound(w)
			return
		}
		a.serverError(w, err, "update donation failed")
		return
	}

	http.Redirect(w, r, "/donation/"+donation.Token+"/qr", http.StatusSeeOther)
}

// DonationDelete removes a donation that is still in the initial status.
func (a *App) DonationDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		a.notFound(w)
		return
	}
	switch err := a.Donations.Delete(r.Context(), id); {
	case errors.Is(err, domain.ErrNotFound):
		a.notFound(w)
	case errors.Is(err, domain.ErrDonationFinalized):
		http.Error(w, "Solo se pueden eliminar donaciones en estado 'Registrada'.", http.StatusBadRequest)
	case err != nil:
		a.serverError(w, err, "delete donation failed")
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (a *App) donationFromID(w http.ResponseWriter, r *http.Request) (domain.Donation, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		a.notFound(w)
		return domain.Donation{}, false
	}
	donation, err := a.Donations.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.notFound(w)
		} else {
			a.serverError(w, err, "load donation failed")
		}
		return domain.Donation{}, false
	}
	return donation, true
}

// parseQuantity tolerates missing or malformed input, defaulting to zero.
func parseQuantity(raw string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"event-banner/internal/banner"
	"event-banner/internal/models"
)

// Page renders the banner with whichever modals are open
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "index.html", h.banner.Snapshot()); err != nil {
		h.log.Error().Err(err).Msg("Failed to render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// ToggleRSVP opens or closes the RSVP form
func (h *Handler) ToggleRSVP(w http.ResponseWriter, r *http.Request) {
	h.banner.ToggleRSVPModal()
	backToPage(w, r)
}

// ToggleGuestList opens or closes the guest list
func (h *Handler) ToggleGuestList(w http.ResponseWriter, r *http.Request) {
	h.banner.ToggleGuestListModal()
	backToPage(w, r)
}

// SubmitRSVP stores the posted form values and submits them.
// Rejected input keeps the form open with the values the guest typed.
func (h *Handler) SubmitRSVP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	h.banner.SetForm(formFromRequest(r))
	if _, err := h.banner.Submit(r.Context()); err != nil {
		h.log.Debug().Err(err).Msg("RSVP not accepted")
	}
	backToPage(w, r)
}

// ClearGuests empties the guest list
func (h *Handler) ClearGuests(w http.ResponseWriter, r *http.Request) {
	_ = h.banner.ClearAll(r.Context())
	backToPage(w, r)
}

func formFromRequest(r *http.Request) banner.Form {
	// a non-numeric count becomes 0, which the roster rejects
	count, _ := strconv.Atoi(strings.TrimSpace(r.PostFormValue("numberOfGuests")))
	return banner.Form{
		Name:           r.PostFormValue("name"),
		NumberOfGuests: count,
		ContactType:    models.ParseContactType(r.PostFormValue("contactType")),
		ContactValue:   r.PostFormValue("contactValue"),
	}
}

func backToPage(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

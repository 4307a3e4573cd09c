package handler

import (
	"net/http"

	"event-banner/internal/qr"
)

// QRCode serves a QR code pointing at the public page
func (h *Handler) QRCode(w http.ResponseWriter, r *http.Request) {
	png, err := qr.PNG(h.cfg.PublicURL)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to render QR code")
		internalError(w, "could not render qr code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(png)
}

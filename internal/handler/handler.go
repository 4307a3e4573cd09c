package handler

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"event-banner/internal/banner"
)

//go:embed templates/*.html
var templateFS embed.FS

// Config holds what the HTTP layer needs beyond the banner itself
type Config struct {
	PublicURL      string
	MediaDir       string
	AllowedOrigins []string
}

// Handler serves the banner page, its JSON API and the countdown stream
type Handler struct {
	banner *banner.Banner
	hub    *Hub
	cfg    *Config
	tmpl   *template.Template
	log    zerolog.Logger
}

// New creates the HTTP handler for b. Countdown publishes reach WebSocket
// clients through hub, which must already be registered with b.OnCountdown.
func New(b *banner.Banner, hub *Hub, cfg *Config, log zerolog.Logger) (*Handler, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{
		banner: b,
		hub:    hub,
		cfg:    cfg,
		tmpl:   tmpl,
		log:    log.With().Str("component", "http").Logger(),
	}, nil
}

// Routes builds the router
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(hlog.NewHandler(h.log))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", size).
			Dur("elapsed", duration).
			Msg("HTTP request completed")
	}))
	r.Use(RequestIDLogger)

	r.Get("/", h.Page)
	r.Post("/rsvp/toggle", h.ToggleRSVP)
	r.Post("/guests/toggle", h.ToggleGuestList)
	r.Post("/rsvp", h.SubmitRSVP)
	r.Post("/guests/clear", h.ClearGuests)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: h.allowedOrigins(),
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
		r.Get("/guests", h.ListGuests)
		r.Post("/guests", h.CreateGuest)
		r.Delete("/guests", h.DeleteGuests)
		r.Get("/countdown", h.GetCountdown)
	})

	r.Get("/ws", h.hub.ServeHTTP)
	r.Get("/qr.png", h.QRCode)
	r.Get("/healthz", h.Health)

	media := http.FileServer(http.Dir(h.cfg.MediaDir))
	r.Handle("/video/*", media)
	r.Handle("/assets/*", media)

	return r
}

func (h *Handler) allowedOrigins() []string {
	if len(h.cfg.AllowedOrigins) > 0 {
		return h.cfg.AllowedOrigins
	}
	return []string{h.cfg.PublicURL}
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

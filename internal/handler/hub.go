package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/olahol/melody"
	"github.com/rs/zerolog"

	"event-banner/internal/countdown"
)

// Hub pushes countdown publishes to every connected WebSocket client
type Hub struct {
	m   *melody.Melody
	log zerolog.Logger
}

// NewHub creates a hub; register Publish with the banner's OnCountdown
func NewHub(log zerolog.Logger) *Hub {
	m := melody.New()
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	h := &Hub{
		m:   m,
		log: log.With().Str("component", "ws").Logger(),
	}

	m.HandleConnect(func(s *melody.Session) {
		h.log.Debug().Str("remote", s.Request.RemoteAddr).Msg("Countdown client connected")
	})
	m.HandleDisconnect(func(s *melody.Session) {
		h.log.Debug().Str("remote", s.Request.RemoteAddr).Msg("Countdown client disconnected")
	})
	m.HandleError(func(s *melody.Session, err error) {
		h.log.Warn().Err(err).Msg("WebSocket error")
	})

	return h
}

// ServeHTTP upgrades the request to a countdown stream
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.m.HandleRequest(w, r); err != nil {
		h.log.Warn().Err(err).Msg("Failed to upgrade websocket")
	}
}

// Publish broadcasts s to all clients
func (h *Hub) Publish(s countdown.State) {
	msg, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := h.m.Broadcast(msg); err != nil && !errors.Is(err, melody.ErrClosed) {
		h.log.Warn().Err(err).Msg("Failed to broadcast countdown")
	}
}

// Sessions returns the number of connected clients
func (h *Hub) Sessions() int {
	return h.m.Len()
}

// Close disconnects every client
func (h *Hub) Close() error {
	return h.m.Close()
}

// Package banner is the event hero widget: the RSVP form, the guest list
// and the countdown to the event, independent of how it is rendered.
package banner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"event-banner/internal/countdown"
	"event-banner/internal/models"
	"event-banner/internal/roster"
)

// Config is the static content of the banner
type Config struct {
	Title          string
	Tagline        string
	HeroVideo      string
	CountdownImage string
	// ContactFields enables the contact type/value pair on the RSVP form
	ContactFields bool
}

// Form holds the in-progress RSVP form values
type Form struct {
	Name           string
	NumberOfGuests int
	ContactType    models.ContactType
	ContactValue   string
}

// DefaultForm is the form as it looks before any input
func DefaultForm() Form {
	return Form{
		NumberOfGuests: 1,
		ContactType:    models.ContactEmail,
	}
}

// Snapshot is a consistent view of everything a renderer needs
type Snapshot struct {
	Config
	Countdown     countdown.State
	Target        time.Time
	Guests        []models.Guest
	TotalGuests   int
	ShowRSVP      bool
	ShowGuestList bool
	Form          Form
	Notice        string
}

// Banner wires the roster store and the countdown engine to the modal state
type Banner struct {
	cfg    Config
	roster *roster.Store
	engine *countdown.Engine
	log    zerolog.Logger

	mu            sync.RWMutex
	form          Form
	showRSVP      bool
	showGuestList bool
	notice        string
	state         countdown.State
	listeners     []func(countdown.State)
	ticker        *countdown.Ticker
	mounted       bool
}

// New creates an unmounted banner
func New(cfg Config, store *roster.Store, engine *countdown.Engine, log zerolog.Logger) *Banner {
	return &Banner{
		cfg:    cfg,
		roster: store,
		engine: engine,
		log:    log.With().Str("component", "banner").Logger(),
		form:   DefaultForm(),
	}
}

// OnCountdown registers fn to receive every countdown publish
func (b *Banner) OnCountdown(fn func(countdown.State)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// Mount rehydrates the roster and starts the countdown.
// A failing roster read is logged and the banner starts with an empty list.
func (b *Banner) Mount(ctx context.Context) error {
	b.mu.Lock()
	if b.mounted {
		b.mu.Unlock()
		return models.ErrAlreadyMounted
	}
	b.mounted = true
	b.mu.Unlock()

	if err := b.roster.Load(ctx); err != nil {
		b.log.Error().Err(err).Msg("Could not restore guest list, starting empty")
	}

	ticker := b.engine.Start(ctx, b.publish)

	b.mu.Lock()
	b.ticker = ticker
	b.mu.Unlock()

	b.log.Debug().Time("target", b.engine.Target()).Msg("Banner mounted")
	return nil
}

// Unmount stops the countdown. No listener is called once it returns.
func (b *Banner) Unmount() {
	b.mu.Lock()
	ticker := b.ticker
	b.ticker = nil
	b.mounted = false
	b.mu.Unlock()

	if ticker != nil {
		ticker.Stop()
	}
}

func (b *Banner) publish(s countdown.State) {
	b.mu.Lock()
	b.state = s
	listeners := make([]func(countdown.State), len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}

// Countdown returns the most recently published state
func (b *Banner) Countdown() countdown.State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// ToggleRSVPModal shows or hides the RSVP form
func (b *Banner) ToggleRSVPModal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.showRSVP = !b.showRSVP
}

// ToggleGuestListModal shows or hides the guest list
func (b *Banner) ToggleGuestListModal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.showGuestList = !b.showGuestList
}

// SetForm replaces the in-progress form values
func (b *Banner) SetForm(f Form) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.form = f
}

// Form returns the in-progress form values
func (b *Banner) Form() Form {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.form
}

// Submit turns the current form into a guest entry.
// On success the form is reset and the RSVP modal closed. Invalid input
// returns models.ErrInvalidGuest and leaves everything as it was.
func (b *Banner) Submit(ctx context.Context) (models.Guest, error) {
	b.mu.RLock()
	guest := b.guestFromFormLocked()
	b.mu.RUnlock()

	if err := b.roster.Validate(guest); err != nil {
		return models.Guest{}, err
	}

	// the write runs unlocked so countdown publishes never wait on storage
	guest.ID = b.roster.NextID()
	saved, err := b.roster.Append(ctx, guest)

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		if !errors.Is(err, models.ErrInvalidGuest) {
			b.notice = "Your RSVP could not be saved. Please try again."
			b.log.Error().Err(err).Msg("Failed to save RSVP")
		}
		return models.Guest{}, err
	}

	b.form = DefaultForm()
	b.showRSVP = false
	b.notice = ""
	return saved, nil
}

// AddGuest appends a guest that did not come through the form, leaving the
// form and modal state alone.
func (b *Banner) AddGuest(ctx context.Context, guest models.Guest) (models.Guest, error) {
	if !b.cfg.ContactFields {
		guest.ContactType = ""
		guest.ContactValue = ""
	} else if guest.ContactType == "" {
		guest.ContactType = models.ContactEmail
	}
	guest.ID = 0
	return b.roster.Append(ctx, guest)
}

// ClearAll removes every guest and the persisted list
func (b *Banner) ClearAll(ctx context.Context) error {
	if err := b.roster.Clear(ctx); err != nil {
		b.mu.Lock()
		b.notice = "The guest list could not be cleared. Please try again."
		b.mu.Unlock()
		b.log.Error().Err(err).Msg("Failed to clear guest list")
		return err
	}

	b.mu.Lock()
	b.notice = ""
	b.mu.Unlock()
	return nil
}

// Guests returns the roster in RSVP order
func (b *Banner) Guests() []models.Guest {
	return b.roster.Guests()
}

// TotalGuests is the head count shown in the guest list
func (b *Banner) TotalGuests() int {
	return b.roster.TotalAttendance()
}

// Snapshot captures the banner for rendering
func (b *Banner) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return Snapshot{
		Config:        b.cfg,
		Countdown:     b.state,
		Target:        b.engine.Target(),
		Guests:        b.roster.Guests(),
		TotalGuests:   b.roster.TotalAttendance(),
		ShowRSVP:      b.showRSVP,
		ShowGuestList: b.showGuestList,
		Form:          b.form,
		Notice:        b.notice,
	}
}

func (b *Banner) guestFromFormLocked() models.Guest {
	g := models.Guest{
		Name:           b.form.Name,
		NumberOfGuests: b.form.NumberOfGuests,
	}
	if b.cfg.ContactFields {
		g.ContactType = b.form.ContactType
		if g.ContactType == "" {
			g.ContactType = models.ContactEmail
		}
		g.ContactValue = b.form.ContactValue
	}
	return g
}

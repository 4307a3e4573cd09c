// Package roster holds the ordered list of RSVP'd guests and keeps it
// mirrored into device storage after every change.
package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"event-banner/internal/models"
	"event-banner/internal/storage"
)

// DefaultKey is the storage key the roster lives under
const DefaultKey = "guests"

// Store is the in-memory roster and its persisted mirror.
// Writers are serialised by writeMu and only publish the new roster once
// storage accepted it, so readers never wait on storage I/O.
type Store struct {
	writeMu sync.Mutex

	mu       sync.RWMutex
	guests   []models.Guest
	storage  storage.Storage
	key      string
	validate *validator.Validate
	log      zerolog.Logger

	now    func() time.Time
	lastID int64
}

// NewStore creates an empty roster persisted under key. Call Load to rehydrate.
func NewStore(st storage.Storage, key string, log zerolog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{
		guests:   make([]models.Guest, 0),
		storage:  st,
		key:      key,
		validate: validator.New(),
		log:      log.With().Str("component", "roster").Logger(),
		now:      time.Now,
	}
}

// Load replaces the roster with the persisted copy.
// Missing or malformed data leaves an empty roster; only backend failures are returned.
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.replace(make([]models.Guest, 0))

	data, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("failed to read roster: %w", err)
	}
	if !ok || data == "" {
		return nil
	}

	var guests []models.Guest
	if err := json.Unmarshal([]byte(data), &guests); err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("Discarding malformed roster")
		return nil
	}
	if guests == nil {
		guests = make([]models.Guest, 0)
	}
	s.replace(guests)

	s.log.Debug().Int("guests", len(guests)).Msg("Roster loaded")
	return nil
}

// Validate reports whether guest would be accepted by Append
func (s *Store) Validate(guest models.Guest) error {
	if err := s.validate.Struct(guest.Normalized()); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidGuest, err)
	}
	return nil
}

// Append adds guest to the end of the roster and persists the whole roster.
// Invalid guests are rejected with models.ErrInvalidGuest before anything is written.
func (s *Store) Append(ctx context.Context, guest models.Guest) (models.Guest, error) {
	guest = guest.Normalized()
	if err := s.Validate(guest); err != nil {
		return models.Guest{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if guest.ID == 0 {
		guest.ID = s.NextID()
	}

	next := append(s.Guests(), guest)
	if err := s.persist(ctx, next); err != nil {
		return models.Guest{}, err
	}
	s.replace(next)

	s.log.Info().Int64("id", guest.ID).Str("name", guest.Name).Int("party", guest.NumberOfGuests).Msg("Guest added")
	return guest, nil
}

// Clear empties the roster and removes the persisted key entirely
func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.storage.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("failed to remove roster: %w", err)
	}
	s.replace(make([]models.Guest, 0))

	s.log.Info().Msg("Roster cleared")
	return nil
}

// Guests returns a copy of the roster in insertion order
func (s *Store) Guests() []models.Guest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	guests := make([]models.Guest, len(s.guests))
	copy(guests, s.guests)
	return guests
}

// Len returns the number of entries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.guests)
}

// TotalAttendance counts every entry as its stated party size plus one
func (s *Store) TotalAttendance() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, g := range s.guests {
		total += g.Attendance()
	}
	return total
}

// HasRSVPd reports whether a roster has ever been persisted and not cleared since
func (s *Store) HasRSVPd(ctx context.Context) (bool, error) {
	_, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return false, fmt.Errorf("failed to read roster: %w", err)
	}
	return ok, nil
}

// NextID returns a fresh time-derived id, strictly greater than any issued or loaded before
func (s *Store) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextIDLocked()
}

func (s *Store) nextIDLocked() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// replace swaps in guests and keeps lastID ahead of every id in it
func (s *Store) replace(guests []models.Guest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.guests = guests
	for _, g := range guests {
		if g.ID > s.lastID {
			s.lastID = g.ID
		}
	}
}

func (s *Store) persist(ctx context.Context, guests []models.Guest) error {
	data, err := json.Marshal(guests)
	if err != nil {
		return fmt.Errorf("failed to marshal roster: %w", err)
	}
	if err := s.storage.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("failed to persist roster: %w", err)
	}
	return nil
}

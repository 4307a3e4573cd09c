package banner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"event-banner/internal/countdown"
	"event-banner/internal/models"
	"event-banner/internal/roster"
	"event-banner/internal/storage"
)

var eventDate = time.Date(2025, time.August, 30, 0, 0, 0, 0, time.UTC)

type failingStorage struct {
	*storage.Memory
}

func (failingStorage) Set(context.Context, string, string) error {
	return errors.New("quota exceeded")
}

func newTestBanner(t *testing.T, st storage.Storage, contactFields bool) *Banner {
	t.Helper()
	if st == nil {
		st = storage.NewMemory()
	}
	store := roster.NewStore(st, roster.DefaultKey, zerolog.Nop())
	now := eventDate.Add(-90061 * time.Second)
	engine := countdown.NewEngine(eventDate,
		countdown.WithInterval(time.Millisecond),
		countdown.WithClock(func() time.Time { return now }),
	)
	return New(Config{Title: "Party", ContactFields: contactFields}, store, engine, zerolog.Nop())
}

func TestSubmit_Valid(t *testing.T) {
	ctx := context.Background()
	b := newTestBanner(t, nil, true)

	b.ToggleRSVPModal()
	b.SetForm(Form{Name: " Ada ", NumberOfGuests: 2, ContactType: models.ContactPhone, ContactValue: "555"})

	guest, err := b.Submit(ctx)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if guest.Name != "Ada" || guest.ID == 0 || guest.ContactType != models.ContactPhone {
		t.Fatalf("unexpected guest %+v", guest)
	}

	snap := b.Snapshot()
	if snap.ShowRSVP {
		t.Error("RSVP modal still open after successful submit")
	}
	if snap.Form != DefaultForm() {
		t.Errorf("form not reset: %+v", snap.Form)
	}
	if len(snap.Guests) != 1 || snap.TotalGuests != 3 {
		t.Errorf("guests = %d total = %d", len(snap.Guests), snap.TotalGuests)
	}
}

func TestSubmit_InvalidKeepsModalAndForm(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		form Form
	}{
		{"blank name", Form{Name: "  ", NumberOfGuests: 1, ContactType: models.ContactEmail, ContactValue: "a@b.c"}},
		{"zero guests", Form{Name: "Ada", NumberOfGuests: 0, ContactType: models.ContactEmail, ContactValue: "a@b.c"}},
		{"missing contact", Form{Name: "Ada", NumberOfGuests: 1, ContactType: models.ContactEmail}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBanner(t, nil, true)
			b.ToggleRSVPModal()
			b.SetForm(tt.form)

			if _, err := b.Submit(ctx); !errors.Is(err, models.ErrInvalidGuest) {
				t.Fatalf("err = %v, want ErrInvalidGuest", err)
			}
			snap := b.Snapshot()
			if !snap.ShowRSVP {
				t.Error("modal closed on invalid submit")
			}
			if snap.Form != tt.form {
				t.Errorf("form changed: %+v", snap.Form)
			}
			if len(snap.Guests) != 0 {
				t.Errorf("invalid guest appended")
			}
			if snap.Notice != "" {
				t.Errorf("unexpected notice %q", snap.Notice)
			}
		})
	}
}

func TestSubmit_WithoutContactFields(t *testing.T) {
	b := newTestBanner(t, nil, false)
	b.SetForm(Form{Name: "Ada", NumberOfGuests: 1})

	guest, err := b.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if guest.ContactType != "" || guest.ContactValue != "" {
		t.Fatalf("contact fields recorded: %+v", guest)
	}
}

func TestSubmit_StorageFailure(t *testing.T) {
	b := newTestBanner(t, failingStorage{storage.NewMemory()}, true)
	b.ToggleRSVPModal()
	form := Form{Name: "Ada", NumberOfGuests: 1, ContactType: models.ContactEmail, ContactValue: "a@b.c"}
	b.SetForm(form)

	if _, err := b.Submit(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	snap := b.Snapshot()
	if snap.Notice == "" {
		t.Error("no notice after storage failure")
	}
	if !snap.ShowRSVP || snap.Form != form {
		t.Error("modal or form changed after storage failure")
	}
	if len(snap.Guests) != 0 {
		t.Error("guest kept in memory after failed write")
	}
}

func TestModals_ToggleIndependently(t *testing.T) {
	b := newTestBanner(t, nil, true)
	form := Form{Name: "Half typed", NumberOfGuests: 4, ContactType: models.ContactEmail}
	b.SetForm(form)

	b.ToggleRSVPModal()
	b.ToggleGuestListModal()
	if s := b.Snapshot(); !s.ShowRSVP || !s.ShowGuestList {
		t.Fatalf("both modals should be open: %+v", s)
	}

	b.ToggleRSVPModal()
	if s := b.Snapshot(); s.ShowRSVP || !s.ShowGuestList {
		t.Fatalf("only guest list should be open: rsvp=%v list=%v", s.ShowRSVP, s.ShowGuestList)
	}

	b.ToggleRSVPModal()
	if b.Form() != form {
		t.Errorf("form reset by toggling modal: %+v", b.Form())
	}
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	b := newTestBanner(t, st, false)

	for _, n := range []string{"Ada", "Grace"} {
		if _, err := b.AddGuest(ctx, models.Guest{Name: n, NumberOfGuests: 1}); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if len(b.Guests()) != 0 || b.TotalGuests() != 0 {
		t.Fatal("roster not empty after clear")
	}
	if _, ok, _ := st.Get(ctx, roster.DefaultKey); ok {
		t.Fatal("persisted key not removed")
	}
}

func TestMount_RehydratesAndCountsDown(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	_ = st.Set(ctx, roster.DefaultKey, `[{"id":7,"name":"Ada","numberOfGuests":3}]`)

	b := newTestBanner(t, st, false)
	var mu sync.Mutex
	var published []countdown.State
	b.OnCountdown(func(s countdown.State) {
		mu.Lock()
		published = append(published, s)
		mu.Unlock()
	})

	if err := b.Mount(ctx); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if err := b.Mount(ctx); !errors.Is(err, models.ErrAlreadyMounted) {
		t.Fatalf("second Mount err = %v", err)
	}

	if b.TotalGuests() != 4 {
		t.Fatalf("total = %d, want 4", b.TotalGuests())
	}

	deadline := time.Now().Add(2 * time.Second)
	for b.Countdown() != (countdown.State{Days: 1, Hours: 1, Minutes: 1, Seconds: 1}) {
		if time.Now().After(deadline) {
			t.Fatalf("countdown never published, got %+v", b.Countdown())
		}
		time.Sleep(time.Millisecond)
	}

	b.Unmount()
	mu.Lock()
	n := len(published)
	mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if len(published) != n {
		t.Fatalf("%d publishes after unmount", len(published)-n)
	}
}

func TestMount_MalformedStorage(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	_ = st.Set(ctx, roster.DefaultKey, "not json at all")

	b := newTestBanner(t, st, false)
	if err := b.Mount(ctx); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer b.Unmount()

	if len(b.Guests()) != 0 {
		t.Fatal("expected empty roster from malformed storage")
	}
}

func TestAddGuest_LeavesFormAlone(t *testing.T) {
	b := newTestBanner(t, nil, true)
	form := Form{Name: "typing", NumberOfGuests: 2, ContactType: models.ContactEmail}
	b.SetForm(form)
	b.ToggleRSVPModal()

	if _, err := b.AddGuest(context.Background(), models.Guest{
		Name: "Grace", NumberOfGuests: 1, ContactType: models.ContactEmail, ContactValue: "g@h.io",
	}); err != nil {
		t.Fatal(err)
	}
	if s := b.Snapshot(); s.Form != form || !s.ShowRSVP {
		t.Fatal("AddGuest touched form state")
	}
}

func TestAddGuest_RequiresContactWhenEnabled(t *testing.T) {
	b := newTestBanner(t, nil, true)

	_, err := b.AddGuest(context.Background(), models.Guest{Name: "NoContact", NumberOfGuests: 1})
	if !errors.Is(err, models.ErrInvalidGuest) {
		t.Fatalf("err = %v, want ErrInvalidGuest", err)
	}
	if len(b.Guests()) != 0 {
		t.Fatal("contactless guest stored")
	}

	guest, err := b.AddGuest(context.Background(), models.Guest{Name: "Grace", NumberOfGuests: 1, ContactValue: "g@h.io"})
	if err != nil {
		t.Fatalf("AddGuest: %v", err)
	}
	if guest.ContactType != models.ContactEmail {
		t.Errorf("ContactType = %q, want email by default", guest.ContactType)
	}
}

// slowStorage blocks every Set until release is closed
type slowStorage struct {
	*storage.Memory
	entered chan struct{}
	release chan struct{}
}

func (s *slowStorage) Set(ctx context.Context, key, value string) error {
	close(s.entered)
	<-s.release
	return s.Memory.Set(ctx, key, value)
}

func TestSubmit_SlowStorageDoesNotBlockReaders(t *testing.T) {
	st := &slowStorage{Memory: storage.NewMemory(), entered: make(chan struct{}), release: make(chan struct{})}
	b := newTestBanner(t, st, true)
	b.ToggleRSVPModal()
	b.SetForm(Form{Name: "Ada", NumberOfGuests: 1, ContactType: models.ContactEmail, ContactValue: "a@b.c"})

	submitted := make(chan error, 1)
	go func() {
		_, err := b.Submit(context.Background())
		submitted <- err
	}()

	select {
	case <-st.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("Submit never reached storage")
	}

	readers := make(chan Snapshot, 1)
	go func() {
		b.publish(countdown.State{Days: 7})
		readers <- b.Snapshot()
	}()

	select {
	case snap := <-readers:
		if snap.Countdown.Days != 7 {
			t.Errorf("countdown = %+v, want the published state", snap.Countdown)
		}
		if len(snap.Guests) != 0 || !snap.ShowRSVP {
			t.Error("guest visible before storage accepted it")
		}
	case <-time.After(2 * time.Second):
		close(st.release)
		t.Fatal("publish or Snapshot blocked behind a storage write")
	}

	close(st.release)
	if err := <-submitted; err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if snap := b.Snapshot(); len(snap.Guests) != 1 || snap.ShowRSVP {
		t.Errorf("after write: guests=%d showRSVP=%v", len(snap.Guests), snap.ShowRSVP)
	}
}

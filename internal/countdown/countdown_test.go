package countdown

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var target = time.Date(2025, time.August, 30, 0, 0, 0, 0, time.UTC)

func TestRemaining(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want State
	}{
		{"one of each", target.Add(-90061 * time.Second), State{1, 1, 1, 1}},
		{"sub-second is floored", target.Add(-1500 * time.Millisecond), State{0, 0, 0, 1}},
		{"under a second", target.Add(-999 * time.Millisecond), State{}},
		{"exactly at target", target, State{}},
		{"after target", target.Add(time.Hour), State{}},
		{"ten days", target.Add(-240 * time.Hour), State{Days: 10}},
		{"just under a day", target.Add(-(24*time.Hour - time.Second)), State{0, 23, 59, 59}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Remaining(target, tt.now); got != tt.want {
				t.Fatalf("Remaining = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestState(t *testing.T) {
	if !(State{}).Reached() {
		t.Error("zero state should be reached")
	}
	if (State{Seconds: 1}).Reached() {
		t.Error("non-zero state should not be reached")
	}
	if got := (State{1, 2, 3, 4}).String(); got != "1d 02h 03m 04s" {
		t.Errorf("String = %q", got)
	}
}

// recorder collects published states
type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) publish(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) snapshot() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestEngine_PublishesImmediately(t *testing.T) {
	now := target.Add(-90061 * time.Second)
	e := NewEngine(target, WithInterval(time.Hour), WithClock(func() time.Time { return now }))

	var rec recorder
	ticker := e.Start(context.Background(), rec.publish)
	defer ticker.Stop()

	waitFor(t, func() bool { return len(rec.snapshot()) >= 1 })
	if got := rec.snapshot()[0]; got != (State{1, 1, 1, 1}) {
		t.Fatalf("first publish = %+v", got)
	}
}

func TestEngine_ClampsAfterTarget(t *testing.T) {
	var calls atomic.Int64
	// every call moves the clock one second past the previous reading
	clock := func() time.Time {
		n := calls.Add(1)
		return target.Add(time.Duration(n-3) * time.Second)
	}
	e := NewEngine(target, WithInterval(time.Millisecond), WithClock(clock))

	var rec recorder
	ticker := e.Start(context.Background(), rec.publish)
	waitFor(t, func() bool { return len(rec.snapshot()) >= 8 })
	ticker.Stop()

	states := rec.snapshot()
	if states[0] != (State{Seconds: 2}) || states[1] != (State{Seconds: 1}) {
		t.Fatalf("unexpected leading states: %+v", states[:2])
	}
	for i, s := range states[2:] {
		if s != (State{}) {
			t.Fatalf("state %d after target = %+v, want zero", i+2, s)
		}
	}
}

func TestTicker_StopHaltsPublishing(t *testing.T) {
	e := NewEngine(target, WithInterval(time.Millisecond), WithClock(func() time.Time { return target.Add(-time.Hour) }))

	var rec recorder
	ticker := e.Start(context.Background(), rec.publish)
	waitFor(t, func() bool { return len(rec.snapshot()) >= 3 })

	ticker.Stop()
	ticker.Stop() // idempotent

	n := len(rec.snapshot())
	time.Sleep(20 * time.Millisecond)
	if got := len(rec.snapshot()); got != n {
		t.Fatalf("published %d more states after Stop", got-n)
	}

	select {
	case <-ticker.Done():
	default:
		t.Fatal("Done not closed after Stop")
	}
}

func TestTicker_ContextCancel(t *testing.T) {
	e := NewEngine(target, WithInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	ticker := e.Start(ctx, func(State) {})
	cancel()

	select {
	case <-ticker.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("ticker did not exit after context cancel")
	}
}

func TestNewEngine_Defaults(t *testing.T) {
	e := NewEngine(target, WithInterval(0), WithClock(nil))
	if e.interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", e.interval, DefaultInterval)
	}
	if e.now == nil {
		t.Error("clock not defaulted")
	}
	if !e.Target().Equal(target) {
		t.Errorf("Target = %v", e.Target())
	}
}

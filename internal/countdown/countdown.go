package countdown

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// DefaultInterval is how often the remaining time is republished
const DefaultInterval = time.Second

// State is the time left until the target, never negative
type State struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// Reached reports whether the countdown has run out
func (s State) Reached() bool {
	return s == State{}
}

func (s State) String() string {
	return fmt.Sprintf("%dd %02dh %02dm %02ds", s.Days, s.Hours, s.Minutes, s.Seconds)
}

// Remaining splits max(0, target-now) into days, hours, minutes and seconds
// using fixed 24h days.
func Remaining(target, now time.Time) State {
	diff := target.Sub(now).Milliseconds()
	if diff <= 0 {
		return State{}
	}
	return State{
		Days:    diff / msPerDay,
		Hours:   diff % msPerDay / msPerHour,
		Minutes: diff % msPerHour / msPerMinute,
		Seconds: diff % msPerMinute / msPerSecond,
	}
}

// Engine publishes the remaining time to a fixed target on a fixed interval
type Engine struct {
	target   time.Time
	interval time.Duration
	now      func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithInterval overrides the publish interval
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithClock overrides the wall clock
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine counting down to target
func NewEngine(target time.Time, opts ...Option) *Engine {
	e := &Engine{
		target:   target,
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Target returns the instant being counted down to
func (e *Engine) Target() time.Time { return e.target }

// Current computes the state for the engine's clock right now
func (e *Engine) Current() State {
	return Remaining(e.target, e.now())
}

// Ticker is a running countdown. Stop it to release the goroutine.
type Ticker struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start publishes the current state immediately and then once per interval
// until ctx is cancelled or the returned Ticker is stopped.
func (e *Engine) Start(ctx context.Context, publish func(State)) *Ticker {
	ctx, cancel := context.WithCancel(ctx)
	t := &Ticker{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)

		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		for {
			// a tick racing with cancellation must not publish
			select {
			case <-ctx.Done():
				return
			default:
			}
			publish(e.Current())

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return t
}

// Stop cancels the ticker and waits until no further publish can happen
func (t *Ticker) Stop() {
	t.once.Do(t.cancel)
	<-t.done
}

// Done is closed once the ticker goroutine has exited
func (t *Ticker) Done() <-chan struct{} {
	return t.done
}

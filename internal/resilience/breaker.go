// Package resilience protects calls to remote dependencies with a
// three-state circuit breaker (closed → open → half-open).
//
// The game API is the only network dependency starbridge cannot work
// without. When it is down, failing fast lets the design caches keep
// serving their previous tables instead of stacking up timeouts.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by [Breaker.Do] when the breaker rejects a call
// without running it.
var ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

// State represents the current operating mode of a [Breaker].
type State int

const (
	// StateClosed forwards every call.
	StateClosed State = iota

	// StateOpen rejects calls with [ErrCircuitOpen] until the cool-down
	// elapses.
	StateOpen

	// StateHalfOpen lets a limited number of probe calls through. Enough
	// successes close the breaker; any failure re-opens it.
	StateHalfOpen
)

// String returns the human-readable name of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config holds tuning knobs for a [Breaker].
type Config struct {
	// Name labels the breaker in logs and metrics.
	Name string

	// MaxFailures is the number of consecutive failures that trips the
	// breaker. Default: 5.
	MaxFailures int

	// Cooldown is how long the breaker stays open before probing. Default: 30s.
	Cooldown time.Duration

	// Probes is the number of consecutive successful half-open calls needed
	// to close the breaker. Default: 2.
	Probes int

	// IsFailure classifies a returned error. Errors for which it returns
	// false (e.g. a caller cancelling its context or a 404) pass through
	// without counting against the dependency. Default: every non-nil error
	// except context.Canceled.
	IsFailure func(error) bool

	// OnStateChange is called, with the breaker lock released, after every
	// transition.
	OnStateChange func(name string, from, to State)

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Breaker implements the circuit breaker pattern. It is safe for concurrent
// use.
type Breaker struct {
	name      string
	maxFails  int
	cooldown  time.Duration
	probes    int
	isFailure func(error) bool
	onChange  func(name string, from, to State)
	now       func() time.Time

	mu        sync.Mutex
	state     State
	fails     int
	openedAt  time.Time
	inflight  int
	successes int
}

// New creates a [Breaker]. Zero-value config fields get defaults.
func New(cfg Config) *Breaker {
	b := &Breaker{
		name:      cfg.Name,
		maxFails:  cfg.MaxFailures,
		cooldown:  cfg.Cooldown,
		probes:    cfg.Probes,
		isFailure: cfg.IsFailure,
		onChange:  cfg.OnStateChange,
		now:       cfg.Now,
	}
	if b.maxFails <= 0 {
		b.maxFails = 5
	}
	if b.cooldown <= 0 {
		b.cooldown = 30 * time.Second
	}
	if b.probes <= 0 {
		b.probes = 2
	}
	if b.isFailure == nil {
		b.isFailure = func(err error) bool { return !errors.Is(err, context.Canceled) }
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// Name returns the breaker label.
func (b *Breaker) Name() string { return b.name }

// Do runs fn if the breaker admits the call and records its outcome.
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error) error {
	probe, err := b.admit()
	if err != nil {
		return err
	}
	err = fn(ctx)
	b.record(probe, err)
	return err
}

func (b *Breaker) admit() (probe bool, err error) {
	b.mu.Lock()
	var from State
	changed := false
	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			b.mu.Unlock()
			return false, ErrCircuitOpen
		}
		from, changed = b.state, true
		b.state = StateHalfOpen
		b.inflight = 0
		b.successes = 0
		fallthrough
	case StateHalfOpen:
		if b.inflight >= b.probes {
			b.mu.Unlock()
			b.notify(changed, from, StateHalfOpen)
			return false, ErrCircuitOpen
		}
		b.inflight++
		b.mu.Unlock()
		b.notify(changed, from, StateHalfOpen)
		return true, nil
	}
	b.mu.Unlock()
	return false, nil
}

func (b *Breaker) record(probe bool, err error) {
	failed := err != nil && b.isFailure(err)

	b.mu.Lock()
	from := b.state
	if probe && b.state == StateHalfOpen {
		b.inflight--
		if failed {
			b.trip()
		} else {
			b.successes++
			if b.successes >= b.probes {
				b.state = StateClosed
				b.fails = 0
			}
		}
	} else if b.state == StateClosed {
		if failed {
			b.fails++
			if b.fails >= b.maxFails {
				b.trip()
			}
		} else if err == nil {
			b.fails = 0
		}
	}
	to := b.state
	fails := b.fails
	b.mu.Unlock()

	if from != to {
		switch to {
		case StateOpen:
			slog.Warn("resilience: circuit breaker opened", "name", b.name, "consecutive_failures", fails, "err", err)
		case StateClosed:
			slog.Info("resilience: circuit breaker closed", "name", b.name)
		}
	}
	b.notify(from != to, from, to)
}

// trip opens the breaker. Must be called with b.mu held.
func (b *Breaker) trip() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.fails = b.maxFails
	b.inflight = 0
	b.successes = 0
}

func (b *Breaker) notify(changed bool, from, to State) {
	if changed && b.onChange != nil {
		b.onChange(b.name, from, to)
	}
}

// State returns the current [State]. An open breaker whose cool-down has
// elapsed reports [StateHalfOpen]; the transition itself happens on the
// next [Breaker.Do].
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cooldown {
		return StateHalfOpen
	}
	return b.state
}

// Reset forces the breaker back to [StateClosed].
func (b *Breaker) Reset() {
	b.mu.Lock()
	from := b.state
	b.state = StateClosed
	b.fails = 0
	b.inflight = 0
	b.successes = 0
	b.mu.Unlock()
	b.notify(from != StateClosed, from, StateClosed)
}

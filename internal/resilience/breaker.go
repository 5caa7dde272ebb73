// Package resilience guards calls to external search and fetch services with
// retries and per-service circuit breakers.
package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/orgmap-cli/internal/config"
)

// State is a circuit breaker state.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned without calling through while a breaker is open.
var ErrOpen = eris.New("circuit open")

// BreakerSettings controls when a breaker opens and how long it stays open.
type BreakerSettings struct {
	Threshold int
	Cooldown  time.Duration
}

// BreakerSettingsFromConfig fills BreakerSettings from the circuit config
// section, keeping defaults for unset values.
func BreakerSettingsFromConfig(cfg config.CircuitConfig) BreakerSettings {
	s := BreakerSettings{Threshold: 5, Cooldown: 30 * time.Second}
	if cfg.FailureThreshold > 0 {
		s.Threshold = cfg.FailureThreshold
	}
	if cfg.ResetTimeoutSecs > 0 {
		s.Cooldown = time.Duration(cfg.ResetTimeoutSecs) * time.Second
	}
	return s
}

// Breaker opens after Threshold consecutive transient failures. Once the
// cooldown passes it lets one trial call through; its outcome closes or
// reopens it. Permanent failures such as a 404 do not count.
type Breaker struct {
	name     string
	settings BreakerSettings

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trialing bool
	now      func() time.Time
}

// NewBreaker returns a closed breaker.
func NewBreaker(name string, s BreakerSettings) *Breaker {
	if s.Threshold <= 0 {
		s.Threshold = 5
	}
	if s.Cooldown <= 0 {
		s.Cooldown = 30 * time.Second
	}
	return &Breaker{name: name, settings: s, now: time.Now}
}

// State reports the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Open && b.now().Sub(b.openedAt) >= b.settings.Cooldown {
		return HalfOpen
	}
	return b.state
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if b.now().Sub(b.openedAt) < b.settings.Cooldown {
			return eris.Wrapf(ErrOpen, "resilience: %s", b.name)
		}
		b.setState(HalfOpen)
		b.trialing = true
		return nil
	case HalfOpen:
		if b.trialing {
			return eris.Wrapf(ErrOpen, "resilience: %s trial call in flight", b.name)
		}
		b.trialing = true
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.trialing = false
	if !IsTransient(err) {
		b.failures = 0
		if b.state != Closed {
			b.setState(Closed)
		}
		return
	}

	b.failures++
	switch {
	case b.state == HalfOpen:
		b.openedAt = b.now()
		b.setState(Open)
	case b.state == Closed && b.failures >= b.settings.Threshold:
		b.openedAt = b.now()
		b.setState(Open)
	}
}

func (b *Breaker) setState(to State) {
	if b.state == to {
		return
	}
	zap.L().Info("resilience: circuit state change",
		zap.String("service", b.name),
		zap.Stringer("from", b.state),
		zap.Stringer("to", to),
	)
	b.state = to
}

// Call runs fn through b.
func Call[T any](ctx context.Context, b *Breaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := b.allow(); err != nil {
		return zero, err
	}
	val, err := fn(ctx)
	b.record(err)
	return val, err
}

// Breakers hands out one Breaker per service name.
type Breakers struct {
	settings BreakerSettings

	mu     sync.Mutex
	byName map[string]*Breaker
}

// NewBreakers creates an empty registry.
func NewBreakers(s BreakerSettings) *Breakers {
	return &Breakers{settings: s, byName: make(map[string]*Breaker)}
}

// Get returns the breaker for service, creating it on first use.
func (r *Breakers) Get(service string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byName[service]
	if !ok {
		b = NewBreaker(service, r.settings)
		r.byName[service] = b
	}
	return b
}

// States snapshots every breaker's state.
func (r *Breakers) States() map[string]State {
	r.mu.Lock()
	names := make([]*Breaker, 0, len(r.byName))
	for _, b := range r.byName {
		names = append(names, b)
	}
	r.mu.Unlock()

	out := make(map[string]State, len(names))
	for _, b := range names {
		out[b.name] = b.State()
	}
	return out
}

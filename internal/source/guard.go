// Package source adapts the search and page-fetch backends to the pipeline's
// Searcher and Fetcher interfaces.
package source

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/orgmap-cli/internal/config"
	"github.com/sells-group/orgmap-cli/internal/resilience"
	"github.com/sells-group/orgmap-cli/internal/store"
)

// Guard wraps every outbound call with a response cache, a per-host rate
// limit, retries of transient failures and a circuit breaker per service.
type Guard struct {
	backoff  resilience.Backoff
	breakers *resilience.Breakers
	cache    store.Store
	ttl      time.Duration
	hostRate rate.Limit

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithCache enables response caching in st for ttl. A nil store disables it.
func WithCache(st store.Store, ttl time.Duration) GuardOption {
	return func(g *Guard) {
		g.cache = st
		g.ttl = ttl
	}
}

// WithHostRate limits calls to any single host to perSec. Zero disables it.
func WithHostRate(perSec float64) GuardOption {
	return func(g *Guard) {
		if perSec <= 0 {
			g.hostRate = rate.Inf
			return
		}
		g.hostRate = rate.Limit(perSec)
	}
}

// WithBackoff sets the retry policy.
func WithBackoff(b resilience.Backoff) GuardOption {
	return func(g *Guard) { g.backoff = b }
}

// WithBreakers shares a breaker registry.
func WithBreakers(b *resilience.Breakers) GuardOption {
	return func(g *Guard) { g.breakers = b }
}

// NewGuard returns a Guard with default retry and breaker settings, no cache
// and no host limit.
func NewGuard(opts ...GuardOption) *Guard {
	g := &Guard{
		backoff:  resilience.DefaultBackoff(),
		breakers: resilience.NewBreakers(resilience.BreakerSettings{}),
		hostRate: rate.Inf,
		limiters: make(map[string]*rate.Limiter),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// GuardFromConfig builds a Guard from the retry, circuit and discovery sections.
func GuardFromConfig(cfg *config.Config, st store.Store) *Guard {
	return NewGuard(
		WithBackoff(resilience.BackoffFromConfig(cfg.Retry)),
		WithBreakers(resilience.NewBreakers(resilience.BreakerSettingsFromConfig(cfg.Circuit))),
		WithCache(st, cfg.Discovery.CacheTTL()),
		WithHostRate(float64(cfg.Discovery.HostRatePerSec)),
	)
}

// Breakers exposes the breaker registry.
func (g *Guard) Breakers() *resilience.Breakers {
	return g.breakers
}

func (g *Guard) limiter(host string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.limiters[host]
	if !ok {
		l = rate.NewLimiter(g.hostRate, 1)
		g.limiters[host] = l
	}
	return l
}

// call describes one guarded request.
type call struct {
	service string // breaker name
	host    string // rate limit key
	kind    store.CacheKind
	key     string // cache key; empty disables caching
}

// Do runs fn under c's guards. Empty results are returned but not cached.
func (g *Guard) Do(ctx context.Context, c call, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	log := zap.L().With(zap.String("service", c.service), zap.String("kind", string(c.kind)))

	if g.cache != nil && g.ttl > 0 && c.key != "" {
		data, err := g.cache.GetCached(ctx, c.kind, c.key)
		if err != nil {
			log.Warn("source: cache read failed", zap.Error(err))
		} else if data != nil {
			log.Debug("source: cache hit")
			return data, nil
		}
	}

	breaker := g.breakers.Get(c.service)
	limiter := g.limiter(c.host)
	data, err := resilience.Retry(ctx, g.backoff, c.service, func(ctx context.Context) ([]byte, error) {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return resilience.Call(ctx, breaker, fn)
	})
	if err != nil {
		return nil, err
	}

	if g.cache != nil && g.ttl > 0 && c.key != "" && len(data) > 0 {
		if err := g.cache.SetCached(ctx, c.kind, c.key, data, g.ttl); err != nil {
			log.Warn("source: cache write failed", zap.Error(err))
		}
	}
	return data, nil
}

// hostOf returns the lowercase host of rawURL, or rawURL itself when it has none.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return strings.ToLower(rawURL)
	}
	return strings.ToLower(u.Hostname())
}

package scrape

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/orgmap-cli/internal/resilience"
)

// ErrExcluded is returned for URLs the path matcher rejects.
var ErrExcluded = eris.New("scrape: url excluded")

// Chain tries scrapers in priority order, returning the first success.
type Chain struct {
	matcher  *PathMatcher
	scrapers []Scraper
}

// NewChain creates a Chain. A nil matcher uses the default exclusions.
func NewChain(matcher *PathMatcher, scrapers ...Scraper) *Chain {
	if matcher == nil {
		matcher = NewPathMatcher(nil)
	}
	return &Chain{matcher: matcher, scrapers: scrapers}
}

// Names lists the scrapers in the order they are tried.
func (c *Chain) Names() []string {
	names := make([]string, len(c.scrapers))
	for i, s := range c.scrapers {
		names[i] = s.Name()
	}
	return names
}

// Scrape tries each supporting scraper in order. The returned error is
// transient only when every attempted scraper failed transiently, so a
// caller retrying the chain does not hammer a page that is simply gone.
func (c *Chain) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	if c.matcher.IsExcluded(targetURL) {
		return nil, eris.Wrapf(ErrExcluded, "scrape: %s", targetURL)
	}

	var (
		errs      []error
		transient = true
	)
	for _, s := range c.scrapers {
		if !s.Supports(targetURL) {
			continue
		}
		result, err := s.Scrape(ctx, targetURL)
		if err == nil && result != nil {
			return result, nil
		}
		if err == nil {
			err = eris.Errorf("%s: no content", s.Name())
		}
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "scrape: canceled")
		}
		zap.L().Debug("scrape: scraper failed, trying next",
			zap.String("scraper", s.Name()),
			zap.String("url", targetURL),
			zap.Error(err),
		)
		transient = transient && resilience.IsTransient(err)
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil, eris.Errorf("scrape: no suitable scraper for url: %s", targetURL)
	}
	joined := errors.Join(errs...)
	if transient {
		return nil, resilience.NewTransientError(eris.Wrap(joined, "scrape: all scrapers failed"), 0)
	}
	// Flattened so a transient member does not mark the whole chain retryable.
	return nil, eris.Errorf("scrape: all scrapers failed: %s", joined.Error())
}

package source

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/orgmap-cli/internal/config"
	"github.com/sells-group/orgmap-cli/internal/pipeline"
	"github.com/sells-group/orgmap-cli/internal/scrape"
	"github.com/sells-group/orgmap-cli/pkg/anthropic"
	"github.com/sells-group/orgmap-cli/pkg/firecrawl"
	"github.com/sells-group/orgmap-cli/pkg/jina"
	"github.com/sells-group/orgmap-cli/pkg/perplexity"
)

func jinaClient(cfg config.JinaConfig) jina.Client {
	var opts []jina.Option
	if cfg.BaseURL != "" {
		opts = append(opts, jina.WithBaseURL(cfg.BaseURL))
	}
	if cfg.SearchBaseURL != "" {
		opts = append(opts, jina.WithSearchBaseURL(cfg.SearchBaseURL))
	}
	return jina.NewClient(cfg.Key, opts...)
}

func perplexityClient(cfg config.PerplexityConfig) perplexity.Client {
	var opts []perplexity.Option
	if cfg.BaseURL != "" {
		opts = append(opts, perplexity.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Model != "" {
		opts = append(opts, perplexity.WithModel(cfg.Model))
	}
	return perplexity.NewClient(cfg.Key, opts...)
}

// NewSearcher picks the search backend named by discovery.searcher. "auto"
// uses Jina with Perplexity as fallback when both keys are set.
func NewSearcher(cfg *config.Config, guard *Guard) (pipeline.Searcher, error) {
	hasJina, hasPplx := cfg.Jina.Key != "", cfg.Perplexity.Key != ""

	switch cfg.Discovery.Searcher {
	case "jina":
		return NewJinaSearcher(jinaClient(cfg.Jina), guard), nil
	case "perplexity":
		return NewPerplexitySearcher(perplexityClient(cfg.Perplexity), guard), nil
	case "auto", "":
		switch {
		case hasJina && hasPplx:
			return NewFallbackSearcher(
				NewJinaSearcher(jinaClient(cfg.Jina), guard),
				NewPerplexitySearcher(perplexityClient(cfg.Perplexity), guard),
			), nil
		case hasJina:
			return NewJinaSearcher(jinaClient(cfg.Jina), guard), nil
		case hasPplx:
			return NewPerplexitySearcher(perplexityClient(cfg.Perplexity), guard), nil
		}
		return nil, eris.New("source: no search backend configured")
	default:
		return nil, eris.Errorf("source: unknown searcher %q", cfg.Discovery.Searcher)
	}
}

// NewScrapeChain orders the page backends: direct HTTP, Jina Reader, then
// Firecrawl when a key is set.
func NewScrapeChain(cfg *config.Config) *scrape.Chain {
	scrapers := []scrape.Scraper{
		scrape.NewLocalScraper(),
		scrape.NewJinaAdapter(jinaClient(cfg.Jina)),
	}
	if cfg.Firecrawl.Key != "" {
		var opts []firecrawl.Option
		if cfg.Firecrawl.BaseURL != "" {
			opts = append(opts, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
		}
		scrapers = append(scrapers, scrape.NewFirecrawlAdapter(firecrawl.NewClient(cfg.Firecrawl.Key, opts...)))
	}
	return scrape.NewChain(nil, scrapers...)
}

// NewFetcher builds the page fetcher, reducing pages with Anthropic when a
// key is set.
func NewFetcher(cfg *config.Config, guard *Guard) pipeline.Fetcher {
	var f pipeline.Fetcher = NewChainFetcher(NewScrapeChain(cfg), guard)
	if cfg.Anthropic.Key == "" {
		return f
	}
	return NewInstructedFetcher(f, anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, guard)
}

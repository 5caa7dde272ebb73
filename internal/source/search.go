package source

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/orgmap-cli/internal/pipeline"
	"github.com/sells-group/orgmap-cli/internal/store"
	"github.com/sells-group/orgmap-cli/pkg/jina"
	"github.com/sells-group/orgmap-cli/pkg/perplexity"
)

const maxSnippetChars = 600

// searchKey is the cache key for a query restricted to a set of sites.
func searchKey(backend, query string, allowed []string) string {
	sites := slices.Clone(allowed)
	slices.Sort(sites)
	return backend + "|" + query + "|" + strings.Join(sites, ",")
}

func encodeResults(results []pipeline.SearchResult) ([]byte, error) {
	if len(results) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(results)
	return data, eris.Wrap(err, "source: encode search results")
}

func decodeResults(data []byte) ([]pipeline.SearchResult, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var results []pipeline.SearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, eris.Wrap(err, "source: decode search results")
	}
	return results, nil
}

// truncate trims s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// JinaSearcher searches the web through Jina Search.
type JinaSearcher struct {
	client jina.Client
	guard  *Guard
}

// NewJinaSearcher creates a JinaSearcher.
func NewJinaSearcher(client jina.Client, guard *Guard) *JinaSearcher {
	return &JinaSearcher{client: client, guard: guard}
}

// Search implements pipeline.Searcher.
func (s *JinaSearcher) Search(ctx context.Context, query string, allowedSources []string) ([]pipeline.SearchResult, error) {
	data, err := s.guard.Do(ctx, call{
		service: "jina-search",
		host:    "s.jina.ai",
		kind:    store.CacheSearch,
		key:     searchKey("jina", query, allowedSources),
	}, func(ctx context.Context) ([]byte, error) {
		resp, err := s.client.Search(ctx, query, jina.WithSites(allowedSources...))
		if err != nil {
			return nil, err
		}
		results := make([]pipeline.SearchResult, 0, len(resp.Data))
		for _, r := range resp.Data {
			if r.URL == "" {
				continue
			}
			snippet := r.Description
			if snippet == "" {
				snippet = r.Content
			}
			results = append(results, pipeline.SearchResult{
				Title:   strings.TrimSpace(r.Title),
				Snippet: truncate(snippet, maxSnippetChars),
				URL:     r.URL,
			})
		}
		return encodeResults(results)
	})
	if err != nil {
		return nil, eris.Wrap(err, "source: jina search")
	}
	return decodeResults(data)
}

const perplexityInstruction = "You are a research assistant. Search the web and answer with facts only. " +
	"For each person found, give one line in the form \"Name - Title\". Do not speculate."

// PerplexitySearcher uses Perplexity's grounded answers as a search backend.
// The pages it consulted become the results.
type PerplexitySearcher struct {
	client perplexity.Client
	guard  *Guard
}

// NewPerplexitySearcher creates a PerplexitySearcher.
func NewPerplexitySearcher(client perplexity.Client, guard *Guard) *PerplexitySearcher {
	return &PerplexitySearcher{client: client, guard: guard}
}

// Search implements pipeline.Searcher.
func (s *PerplexitySearcher) Search(ctx context.Context, query string, allowedSources []string) ([]pipeline.SearchResult, error) {
	data, err := s.guard.Do(ctx, call{
		service: "perplexity",
		host:    "api.perplexity.ai",
		kind:    store.CacheSearch,
		key:     searchKey("perplexity", query, allowedSources),
	}, func(ctx context.Context) ([]byte, error) {
		temp := 0.0
		resp, err := s.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
			Messages: []perplexity.Message{
				{Role: "system", Content: perplexityInstruction},
				{Role: "user", Content: query},
			},
			Temperature:        &temp,
			SearchDomainFilter: allowedSources,
		})
		if err != nil {
			return nil, err
		}
		return encodeResults(perplexityResults(query, resp))
	})
	if err != nil {
		return nil, eris.Wrap(err, "source: perplexity search")
	}
	return decodeResults(data)
}

// perplexityResults prefers the structured search results. Older responses
// carry only citation URLs, in which case the answer text rides on the first.
func perplexityResults(query string, resp *perplexity.ChatCompletionResponse) []pipeline.SearchResult {
	var out []pipeline.SearchResult
	seen := make(map[string]bool)
	for _, r := range resp.SearchResults {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		out = append(out, pipeline.SearchResult{
			Title:   strings.TrimSpace(r.Title),
			Snippet: truncate(r.Snippet, maxSnippetChars),
			URL:     r.URL,
		})
	}
	if len(out) > 0 {
		return out
	}

	answer := resp.Content()
	for i, u := range resp.Citations {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		r := pipeline.SearchResult{Title: fmt.Sprintf("%s [%d]", query, i+1), URL: u}
		if len(out) == 0 {
			r.Snippet = truncate(answer, maxSnippetChars)
		}
		out = append(out, r)
	}
	return out
}

// FallbackSearcher asks the primary backend first and the secondary when the
// primary fails or finds nothing.
type FallbackSearcher struct {
	primary   pipeline.Searcher
	secondary pipeline.Searcher
}

// NewFallbackSearcher creates a FallbackSearcher.
func NewFallbackSearcher(primary, secondary pipeline.Searcher) *FallbackSearcher {
	return &FallbackSearcher{primary: primary, secondary: secondary}
}

// Search implements pipeline.Searcher.
func (s *FallbackSearcher) Search(ctx context.Context, query string, allowedSources []string) ([]pipeline.SearchResult, error) {
	results, err := s.primary.Search(ctx, query, allowedSources)
	if err == nil && len(results) > 0 {
		return results, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	if err != nil {
		zap.L().Debug("source: primary search failed, trying fallback",
			zap.String("query", query),
			zap.Error(err),
		)
	}

	fallback, ferr := s.secondary.Search(ctx, query, allowedSources)
	switch {
	case ferr == nil:
		return fallback, nil
	case err != nil:
		return nil, eris.Wrapf(ferr, "source: both searchers failed (primary: %v)", err)
	default:
		// The primary answered; an empty answer stands.
		zap.L().Debug("source: fallback search failed", zap.String("query", query), zap.Error(ferr))
		return results, nil
	}
}

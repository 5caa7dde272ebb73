package pipeline

import "context"

// SearchResult is one hit returned by a Searcher.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// Searcher runs a web search, optionally restricted to the given sites.
// Implementations may be slow and unreliable; an error or an empty slice is
// treated as zero results.
type Searcher interface {
	Search(ctx context.Context, query string, allowedSources []string) ([]SearchResult, error)
}

// Fetcher retrieves a page as text. The instruction is a natural-language
// directive the fetcher may honor (for example by reducing the page with a
// model); plain scrapers can ignore it.
type Fetcher interface {
	Fetch(ctx context.Context, url, instruction string) (string, error)
}

// SearchFunc adapts a function to the Searcher interface.
type SearchFunc func(ctx context.Context, query string, allowedSources []string) ([]SearchResult, error)

// Search calls f.
func (f SearchFunc) Search(ctx context.Context, query string, allowedSources []string) ([]SearchResult, error) {
	return f(ctx, query, allowedSources)
}

// FetchFunc adapts a function to the Fetcher interface.
type FetchFunc func(ctx context.Context, url, instruction string) (string, error)

// Fetch calls f.
func (f FetchFunc) Fetch(ctx context.Context, url, instruction string) (string, error) {
	return f(ctx, url, instruction)
}

// Package scrape fetches a single web page as markdown through an ordered
// chain of backends: a direct HTTP fetch, Jina Reader, then Firecrawl.
package scrape

import "context"

// Page is a fetched page rendered as markdown.
type Page struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	Markdown   string `json:"markdown"`
	StatusCode int    `json:"status_code"`
}

// Result holds a scraped page with the backend that produced it.
type Result struct {
	Page   Page
	Source string // "local_http", "jina" or "firecrawl"
}

// Scraper fetches a single URL and returns its content.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Result, error)
	Name() string
	Supports(url string) bool
}

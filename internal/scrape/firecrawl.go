package scrape

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/orgmap-cli/pkg/firecrawl"
)

// FirecrawlAdapter is the paid last resort in the chain.
type FirecrawlAdapter struct {
	client firecrawl.Client
}

// NewFirecrawlAdapter creates a FirecrawlAdapter from a Firecrawl client.
func NewFirecrawlAdapter(client firecrawl.Client) *FirecrawlAdapter {
	return &FirecrawlAdapter{client: client}
}

func (f *FirecrawlAdapter) Name() string           { return "firecrawl" }
func (f *FirecrawlAdapter) Supports(_ string) bool { return true }

// Scrape fetches the main content of a URL via Firecrawl.
func (f *FirecrawlAdapter) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	resp, err := f.client.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:             targetURL,
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
	})
	if err != nil {
		return nil, err
	}
	if bt := UnusableContent(resp.Data.Markdown); bt != BlockNone {
		return nil, eris.Errorf("firecrawl: unusable page (%s)", bt)
	}

	meta := resp.Data.Metadata
	pageURL := meta.SourceURL
	if pageURL == "" {
		pageURL = targetURL
	}
	return &Result{
		Page: Page{
			URL:        pageURL,
			Title:      meta.Title,
			Markdown:   resp.Data.Markdown,
			StatusCode: meta.StatusCode,
		},
		Source: "firecrawl",
	}, nil
}

package scrape

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/orgmap-cli/pkg/jina"
)

// JinaAdapter fetches pages through Jina Reader, which renders JavaScript
// and gets past most bot walls.
type JinaAdapter struct {
	client jina.Client
}

// NewJinaAdapter creates a JinaAdapter from a Jina client.
func NewJinaAdapter(client jina.Client) *JinaAdapter {
	return &JinaAdapter{client: client}
}

func (j *JinaAdapter) Name() string           { return "jina" }
func (j *JinaAdapter) Supports(_ string) bool { return true }

// Scrape reads a URL via Jina and rejects interstitials.
func (j *JinaAdapter) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	resp, err := j.client.Read(ctx, targetURL)
	if err != nil {
		return nil, err
	}
	if resp.Code != 0 && resp.Code != 200 {
		return nil, eris.Errorf("jina: reader returned code %d", resp.Code)
	}
	if bt := UnusableContent(resp.Data.Content); bt != BlockNone {
		return nil, eris.Errorf("jina: unusable page (%s)", bt)
	}

	pageURL := resp.Data.URL
	if pageURL == "" {
		pageURL = targetURL
	}
	return &Result{
		Page: Page{
			URL:        pageURL,
			Title:      resp.Data.Title,
			Markdown:   resp.Data.Content,
			StatusCode: 200,
		},
		Source: "jina",
	}, nil
}

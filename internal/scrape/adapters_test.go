package scrape

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/orgmap-cli/pkg/firecrawl"
	"github.com/sells-group/orgmap-cli/pkg/jina"
)

type fakeJina struct {
	resp *jina.ReadResponse
	err  error
}

func (f *fakeJina) Read(_ context.Context, _ string) (*jina.ReadResponse, error) { return f.resp, f.err }
func (f *fakeJina) Search(_ context.Context, _ string, _ ...jina.SearchOption) (*jina.SearchResponse, error) {
	return nil, errors.New("unused")
}

type fakeFirecrawl struct {
	resp *firecrawl.ScrapeResponse
	err  error
	req  firecrawl.ScrapeRequest
}

func (f *fakeFirecrawl) Scrape(_ context.Context, req firecrawl.ScrapeRequest) (*firecrawl.ScrapeResponse, error) {
	f.req = req
	return f.resp, f.err
}

var teamMarkdown = "# Team\n\n" + strings.Repeat("- Jane Doe, Chief Executive Officer\n", 5)

func TestJinaAdapter(t *testing.T) {
	a := NewJinaAdapter(&fakeJina{resp: &jina.ReadResponse{Code: 200, Data: jina.ReadData{Title: "Team", Content: teamMarkdown}}})
	result, err := a.Scrape(context.Background(), "https://acme.com/team")
	require.NoError(t, err)
	assert.Equal(t, "jina", result.Source)
	assert.Equal(t, "https://acme.com/team", result.Page.URL)
	assert.Equal(t, teamMarkdown, result.Page.Markdown)

	_, err = NewJinaAdapter(&fakeJina{resp: &jina.ReadResponse{Code: 200, Data: jina.ReadData{Content: "Just a moment..." + strings.Repeat(" ", 10) + strings.Repeat("x", 100)}}}).
		Scrape(context.Background(), "https://acme.com/team")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "challenge")

	_, err = NewJinaAdapter(&fakeJina{resp: &jina.ReadResponse{Code: 451, Data: jina.ReadData{Content: teamMarkdown}}}).
		Scrape(context.Background(), "https://acme.com/team")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "451")

	boom := errors.New("boom")
	_, err = NewJinaAdapter(&fakeJina{err: boom}).Scrape(context.Background(), "https://acme.com/team")
	assert.ErrorIs(t, err, boom)
}

func TestFirecrawlAdapter(t *testing.T) {
	fc := &fakeFirecrawl{resp: &firecrawl.ScrapeResponse{Success: true, Data: firecrawl.PageData{
		Markdown: teamMarkdown,
		Metadata: firecrawl.Metadata{Title: "Team", SourceURL: "https://www.acme.com/team", StatusCode: 200},
	}}}
	result, err := NewFirecrawlAdapter(fc).Scrape(context.Background(), "https://acme.com/team")
	require.NoError(t, err)
	assert.Equal(t, "firecrawl", result.Source)
	assert.Equal(t, "https://www.acme.com/team", result.Page.URL)
	assert.Equal(t, 200, result.Page.StatusCode)
	assert.True(t, fc.req.OnlyMainContent)
	assert.Equal(t, []string{"markdown"}, fc.req.Formats)

	empty := &fakeFirecrawl{resp: &firecrawl.ScrapeResponse{Success: true}}
	_, err = NewFirecrawlAdapter(empty).Scrape(context.Background(), "https://acme.com/team")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unusable page")
}

package scrape

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/orgmap-cli/internal/resilience"
)

const (
	maxBodyBytes    = 2 << 20
	maxContentChars = 120_000
	defaultAgent    = "Mozilla/5.0 (compatible; orgmap/1.0)"
)

var boilerplateSelectors = strings.Join([]string{
	"script", "style", "noscript", "iframe", "svg",
	"nav", "footer", "form",
	"[role=navigation]", "[role=contentinfo]",
	".cookie-banner", "#cookie-consent",
}, ", ")

var contentSelectors = "main, article, [role=main], #content, .content"

// LocalScraper fetches HTML directly and renders the main content as
// markdown. It costs nothing, so it runs first.
type LocalScraper struct {
	client    *http.Client
	userAgent string
}

// LocalOption configures a LocalScraper.
type LocalOption func(*LocalScraper)

// WithLocalHTTPClient sets the HTTP client.
func WithLocalHTTPClient(hc *http.Client) LocalOption {
	return func(l *LocalScraper) { l.client = hc }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) LocalOption {
	return func(l *LocalScraper) { l.userAgent = ua }
}

// NewLocalScraper creates a LocalScraper.
func NewLocalScraper(opts ...LocalOption) *LocalScraper {
	l := &LocalScraper{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		userAgent: defaultAgent,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *LocalScraper) Name() string           { return "local_http" }
func (l *LocalScraper) Supports(_ string) bool { return true }

// Scrape fetches a URL, rejects blocked responses and renders markdown.
func (l *LocalScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: create request")
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: fetch")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "local_http: read body")
	}

	if bt := DetectBlock(resp, body); bt != BlockNone {
		return nil, eris.Errorf("local_http: blocked (%s)", bt)
	}
	if resp.StatusCode >= 400 {
		return nil, resilience.StatusError("local_http", resp.StatusCode, nil)
	}

	title, md, err := renderMarkdown(body)
	if err != nil {
		return nil, err
	}
	if bt := UnusableContent(md); bt != BlockNone {
		return nil, eris.Errorf("local_http: unusable page (%s)", bt)
	}

	return &Result{
		Page: Page{
			URL:        targetURL,
			Title:      title,
			Markdown:   md,
			StatusCode: resp.StatusCode,
		},
		Source: "local_http",
	}, nil
}

// renderMarkdown strips boilerplate and converts the main content to markdown.
func renderMarkdown(body []byte) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", eris.Wrap(err, "local_http: parse html")
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title, _ = doc.Find("meta[property='og:title']").First().Attr("content")
	}

	doc.Find(boilerplateSelectors).Remove()

	sel := doc.Find(contentSelectors).First()
	if sel.Length() == 0 {
		sel = doc.Find("body")
	}
	html, err := goquery.OuterHtml(sel)
	if err != nil {
		return "", "", eris.Wrap(err, "local_http: render html")
	}

	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		// Fall back to plain text when conversion fails.
		md = sel.Text()
	}
	md = strings.TrimSpace(md)
	if len(md) > maxContentChars {
		md = md[:maxContentChars]
	}
	return title, md, nil
}

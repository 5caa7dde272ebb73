package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/orgmap-cli/internal/pipeline"
	"github.com/sells-group/orgmap-cli/pkg/jina"
	"github.com/sells-group/orgmap-cli/pkg/perplexity"
)

func TestJinaSearcher_MapsResultsAndSites(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, []string{"linkedin.com", "theorg.com"}, r.URL.Query()["site"])
		w.Write([]byte(`{"code":200,"data":[
			{"title":" Jane Doe - CEO - Acme Corp ","url":"https://www.linkedin.com/in/janedoe","description":"Jane Doe is CEO of Acme Corp."},
			{"title":"Acme Corp | The Org","url":"https://theorg.com/acme","content":"Bob Smith, CFO at Acme Corp"},
			{"title":"no url"}
		]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	s := NewJinaSearcher(jina.NewClient("k", jina.WithSearchBaseURL(srv.URL)), testGuard(WithCache(newCacheStore(t), time.Hour)))
	got, err := s.Search(context.Background(), `"Acme Corp" CEO`, []string{"linkedin.com", "theorg.com"})
	require.NoError(t, err)
	assert.Equal(t, []pipeline.SearchResult{
		{Title: "Jane Doe - CEO - Acme Corp", Snippet: "Jane Doe is CEO of Acme Corp.", URL: "https://www.linkedin.com/in/janedoe"},
		{Title: "Acme Corp | The Org", Snippet: "Bob Smith, CFO at Acme Corp", URL: "https://theorg.com/acme"},
	}, got)

	// Site order does not change the cache key.
	again, err := s.Search(context.Background(), `"Acme Corp" CEO`, []string{"theorg.com", "linkedin.com"})
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, int32(1), hits.Load())
}

func TestJinaSearcher_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewJinaSearcher(jina.NewClient("bad", jina.WithSearchBaseURL(srv.URL)), testGuard())
	_, err := s.Search(context.Background(), "acme", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source: jina search")
}

func TestJinaSearcher_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	got, err := NewJinaSearcher(jina.NewClient("k", jina.WithSearchBaseURL(srv.URL)), testGuard()).
		Search(context.Background(), "nobody", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPerplexitySearcher_SearchResults(t *testing.T) {
	client := &mockPerplexity{}
	client.On("ChatCompletion", mock.Anything, mock.MatchedBy(func(req perplexity.ChatCompletionRequest) bool {
		return len(req.Messages) == 2 &&
			req.Messages[1].Content == "Acme Corp leadership team" &&
			assert.ObjectsAreEqual([]string{"acme.com"}, req.SearchDomainFilter) &&
			req.Temperature != nil && *req.Temperature == 0
	})).Return(&perplexity.ChatCompletionResponse{
		Choices: []perplexity.Choice{{Message: perplexity.Message{Content: "Jane Doe - CEO"}}},
		SearchResults: []perplexity.SearchResult{
			{Title: "Leadership", URL: "https://acme.com/leadership", Snippet: "Jane Doe, Chief Executive Officer"},
			{Title: "Leadership (dup)", URL: "https://acme.com/leadership"},
			{Title: "About", URL: "https://acme.com/about", Snippet: "Founded 1999"},
		},
		Citations: []string{"https://acme.com/leadership"},
	}, nil).Once()

	got, err := NewPerplexitySearcher(client, testGuard()).Search(context.Background(), "Acme Corp leadership team", []string{"acme.com"})
	require.NoError(t, err)
	assert.Equal(t, []pipeline.SearchResult{
		{Title: "Leadership", Snippet: "Jane Doe, Chief Executive Officer", URL: "https://acme.com/leadership"},
		{Title: "About", Snippet: "Founded 1999", URL: "https://acme.com/about"},
	}, got)
	client.AssertExpectations(t)
}

func TestPerplexityResults_CitationsOnly(t *testing.T) {
	resp := &perplexity.ChatCompletionResponse{
		Choices:   []perplexity.Choice{{Message: perplexity.Message{Content: "Jane Doe - CEO of Acme Corp"}}},
		Citations: []string{"https://acme.com/team", "", "https://news.example.com/acme", "https://acme.com/team"},
	}
	got := perplexityResults("Acme Corp CEO", resp)
	assert.Equal(t, []pipeline.SearchResult{
		{Title: "Acme Corp CEO [1]", Snippet: "Jane Doe - CEO of Acme Corp", URL: "https://acme.com/team"},
		{Title: "Acme Corp CEO [3]", URL: "https://news.example.com/acme"},
	}, got)

	assert.Empty(t, perplexityResults("q", &perplexity.ChatCompletionResponse{}))
}

func TestPerplexitySearcher_Error(t *testing.T) {
	client := &mockPerplexity{}
	client.On("ChatCompletion", mock.Anything, mock.Anything).Return(nil, errors.New("http 401")).Once()

	_, err := NewPerplexitySearcher(client, testGuard()).Search(context.Background(), "acme", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source: perplexity search")
	client.AssertExpectations(t)
}

func TestFallbackSearcher(t *testing.T) {
	hit := []pipeline.SearchResult{{Title: "t", URL: "https://acme.com"}}
	other := []pipeline.SearchResult{{Title: "o", URL: "https://theorg.com/acme"}}

	t.Run("primary answers", func(t *testing.T) {
		p, s := &mockSearcher{}, &mockSearcher{}
		p.On("Search", mock.Anything, "q", []string(nil)).Return(hit, nil)

		got, err := NewFallbackSearcher(p, s).Search(context.Background(), "q", nil)
		require.NoError(t, err)
		assert.Equal(t, hit, got)
		s.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("primary empty", func(t *testing.T) {
		p, s := &mockSearcher{}, &mockSearcher{}
		p.On("Search", mock.Anything, "q", []string(nil)).Return(nil, nil)
		s.On("Search", mock.Anything, "q", []string(nil)).Return(other, nil)

		got, err := NewFallbackSearcher(p, s).Search(context.Background(), "q", nil)
		require.NoError(t, err)
		assert.Equal(t, other, got)
	})

	t.Run("primary fails", func(t *testing.T) {
		p, s := &mockSearcher{}, &mockSearcher{}
		p.On("Search", mock.Anything, "q", []string(nil)).Return(nil, errors.New("503"))
		s.On("Search", mock.Anything, "q", []string(nil)).Return(other, nil)

		got, err := NewFallbackSearcher(p, s).Search(context.Background(), "q", nil)
		require.NoError(t, err)
		assert.Equal(t, other, got)
	})

	t.Run("both fail", func(t *testing.T) {
		p, s := &mockSearcher{}, &mockSearcher{}
		p.On("Search", mock.Anything, "q", []string(nil)).Return(nil, errors.New("503"))
		s.On("Search", mock.Anything, "q", []string(nil)).Return(nil, errors.New("429"))

		_, err := NewFallbackSearcher(p, s).Search(context.Background(), "q", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "both searchers failed")
	})

	t.Run("primary empty and fallback fails", func(t *testing.T) {
		p, s := &mockSearcher{}, &mockSearcher{}
		p.On("Search", mock.Anything, "q", []string(nil)).Return(nil, nil)
		s.On("Search", mock.Anything, "q", []string(nil)).Return(nil, errors.New("429"))

		got, err := NewFallbackSearcher(p, s).Search(context.Background(), "q", nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestSearchKey(t *testing.T) {
	assert.Equal(t, searchKey("jina", "q", []string{"b.com", "a.com"}), searchKey("jina", "q", []string{"a.com", "b.com"}))
	assert.NotEqual(t, searchKey("jina", "q", nil), searchKey("perplexity", "q", nil))
	assert.NotEqual(t, searchKey("jina", "q", nil), searchKey("jina", "q", []string{"a.com"}))
}

func TestTruncate_RuneBoundary(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "  Jane Doe  ", 20, "Jane Doe"},
		{"ascii cut", "abcdef", 3, "abc"},
		{"inside two-byte rune", "Zoë Müller", 3, "Zo"},
		{"on rune start", "Zoë Müller", 4, "Zoë"},
		{"inside three-byte rune", "日本語", 4, "日"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, len(got), tt.n)
		})
	}
}

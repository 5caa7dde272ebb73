package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathMatcher_Defaults(t *testing.T) {
	m := NewPathMatcher(nil)
	assert.Equal(t, defaultExcludePatterns, m.Patterns())

	tests := []struct {
		url  string
		want bool
	}{
		{"https://acme.com/leadership", false},
		{"https://acme.com/about/team", false},
		{"https://acme.com/annual-report.pdf", true},
		{"https://acme.com/docs/2024/Report.PDF", true},
		{"https://acme.com/wp-content/uploads/x", true},
		{"https://acme.com/login", true},
		{"ftp://acme.com/team", true},
		{"not a url", true},
		{"://", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, m.IsExcluded(tt.url))
		})
	}
}

func TestPathMatcher_Custom(t *testing.T) {
	m := NewPathMatcher([]string{"/Blog/*"})
	assert.True(t, m.IsExcluded("https://acme.com/blog"))
	assert.True(t, m.IsExcluded("https://acme.com/blog/2024/new-cfo"))
	assert.False(t, m.IsExcluded("https://acme.com/blogger"))
	assert.False(t, m.IsExcluded("https://acme.com/leadership.pdf"))
}

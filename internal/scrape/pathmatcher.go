package scrape

import (
	"net/url"
	"path"
	"strings"
)

// defaultExcludePatterns skip paths that never list people.
var defaultExcludePatterns = []string{
	"/*.pdf",
	"/*.jpg",
	"/*.png",
	"/*.zip",
	"/cdn-cgi/*",
	"/wp-content/*",
	"/login",
	"/cart/*",
}

// PathMatcher rejects URLs whose path matches a glob pattern. A trailing
// "/*" also matches every deeper path under that prefix.
type PathMatcher struct {
	patterns []string
}

// NewPathMatcher creates a PathMatcher, using the defaults when patterns is empty.
func NewPathMatcher(patterns []string) *PathMatcher {
	if len(patterns) == 0 {
		patterns = defaultExcludePatterns
	}
	lower := make([]string, len(patterns))
	for i, p := range patterns {
		lower[i] = strings.ToLower(p)
	}
	return &PathMatcher{patterns: lower}
}

// Patterns returns the configured patterns.
func (m *PathMatcher) Patterns() []string {
	return m.patterns
}

// IsExcluded reports whether rawURL is unparseable, not http(s), or matches a pattern.
func (m *PathMatcher) IsExcluded(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return true
	}
	p := strings.ToLower(u.Path)
	for _, pattern := range m.patterns {
		if matchPattern(pattern, p) {
			return true
		}
	}
	return false
}

func matchPattern(pattern, urlPath string) bool {
	if ok, _ := path.Match(pattern, urlPath); ok {
		return true
	}
	// "/*.pdf" should match "/docs/a.pdf" too.
	if strings.HasPrefix(pattern, "/*.") {
		return strings.HasSuffix(urlPath, pattern[2:])
	}
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return urlPath == prefix || strings.HasPrefix(urlPath, prefix+"/")
	}
	return false
}

package scrape

import (
	"net/http"
	"strings"
)

// BlockType describes why a page was judged unusable.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
	BlockChallenge  BlockType = "challenge"
)

// DetectBlock inspects a raw HTTP response for anti-bot protection.
func DetectBlock(resp *http.Response, body []byte) BlockType {
	if resp == nil {
		return BlockNone
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("Cf-Ray") != "" || strings.EqualFold(resp.Header.Get("Server"), "cloudflare") {
			return BlockCloudflare
		}
	}

	lower := strings.ToLower(string(body))
	switch {
	case strings.Contains(lower, "cf-browser-verification"),
		strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge"):
		return BlockCloudflare
	case strings.Contains(lower, "captcha"):
		return BlockCaptcha
	}

	if len(body) < 2000 {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return BlockJSShell
		}
		if strings.Contains(lower, `http-equiv="refresh"`) {
			return BlockJSShell
		}
	}
	return BlockNone
}

var challengePhrases = []string{
	"checking your browser",
	"enable javascript",
	"please enable cookies",
	"access denied",
	"403 forbidden",
	"just a moment",
	"attention required",
	"verify you are human",
}

// minContentLen is the shortest rendered page worth extracting from.
const minContentLen = 100

// UnusableContent reports whether rendered markdown is empty or an
// interstitial rather than the page itself.
func UnusableContent(content string) BlockType {
	content = strings.TrimSpace(content)
	if len(content) < minContentLen {
		return BlockJSShell
	}
	if len(content) >= 1000 {
		return BlockNone
	}
	lower := strings.ToLower(content)
	for _, p := range challengePhrases {
		if strings.Contains(lower, p) {
			return BlockChallenge
		}
	}
	return BlockNone
}

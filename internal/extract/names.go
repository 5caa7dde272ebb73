package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sells-group/orgmap-cli/internal/resolve"
)

// stopWords never appear as a token of a person name. The first row is the
// core list; the rest catches page chrome, company words and title words that
// get capitalized next to names.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "at": true, "in": true, "on": true,
	"to": true, "from": true, "view": true, "add": true, "send": true, "more": true,

	"about": true, "contact": true, "us": true, "our": true, "meet": true, "team": true,
	"leadership": true, "management": true, "board": true, "directors": true, "profile": true,
	"read": true, "learn": true, "see": true, "all": true, "follow": true, "connect": true,
	"message": true, "linkedin": true, "home": true, "news": true, "careers": true,
	"inc": true, "llc": true, "corp": true, "ltd": true, "company": true, "group": true,
	"chief": true, "officer": true, "president": true, "vice": true, "director": true,
	"head": true, "manager": true, "senior": true, "executive": true, "founder": true,
	"co-founder": true, "ceo": true, "cto": true, "cfo": true, "coo": true, "ciso": true,
	"vp": true, "svp": true, "evp": true, "of": true, "is": true, "new": true,
}

// nameTokenRe matches one token of a person name: an uppercase letter followed
// by letters, apostrophes, hyphens or a trailing initial dot.
var nameTokenRe = regexp.MustCompile(`^\p{Lu}[\p{L}'’\-]*\.?$`)

// ValidName reports whether s is acceptable as a person name: at least two
// space-separated tokens, each starting uppercase, 2 to 25 characters, no
// stop-list token, and no email or URL fragments.
func ValidName(s string) bool {
	if strings.Contains(s, "@") || strings.Contains(strings.ToLower(s), "http") {
		return false
	}
	if n := utf8.RuneCountInString(s); n < 2 || n > 25 {
		return false
	}
	tokens := strings.Split(s, " ")
	if len(tokens) < 2 {
		return false
	}
	for _, tok := range tokens {
		if tok == "" || !nameTokenRe.MatchString(tok) {
			return false
		}
		if stopWords[strings.ToLower(strings.TrimSuffix(tok, "."))] {
			return false
		}
	}
	return true
}

// CleanName strips markup and leading or trailing stop-list tokens from a raw
// name candidate, then validates it.
func CleanName(raw string) (string, bool) {
	raw = plain(raw)
	raw = strings.Trim(raw, " ,;:-–—|()[]\"'")
	tokens := strings.Fields(raw)
	for len(tokens) > 0 && stopWords[strings.ToLower(strings.TrimRight(tokens[0], ".,:"))] {
		tokens = tokens[1:]
	}
	for len(tokens) > 0 && stopWords[strings.ToLower(strings.TrimRight(tokens[len(tokens)-1], ".,"))] {
		tokens = tokens[:len(tokens)-1]
	}
	name := strings.TrimRight(strings.Join(tokens, " "), ",")
	if !ValidName(name) {
		return "", false
	}
	return name, true
}

// titleWordRe matches vocabulary that marks a string as a job title.
var titleWordRe = regexp.MustCompile(`(?i)\b(chief|ceo|cto|cfo|coo|ciso|cmo|cio|cro|cpo|president|vp|svp|evp|vice|director|head|manager|lead|principal|staff|founder|co-?founder|partner|officer|counsel|architect|engineer|chair|chairman|chairwoman|treasurer|secretary|controller|senior|sr)\b`)

// LooksLikeTitle reports whether s contains job-title vocabulary.
func LooksLikeTitle(s string) bool {
	return titleWordRe.MatchString(s)
}

// maxTitleLen bounds a believable title; longer strings are prose.
const maxTitleLen = 80

var (
	// employerCutRe marks the start of a trailing employer mention.
	employerCutRe = regexp.MustCompile(`(?i)\s+(?:at|@)\s+\S.*$`)
	// pipeTailRe drops everything after a pipe, e.g. "| LinkedIn".
	pipeTailRe = regexp.MustCompile(`\s*\|.*$`)
)

// TrimTitle cleans a raw title: strips markup, trailing employer mentions
// ("at Acme", ", Acme Inc", "- Acme", "| LinkedIn") and stray separators.
// It returns "" for strings too long to be a title.
func TrimTitle(raw, company string) string {
	t := plain(raw)
	t = pipeTailRe.ReplaceAllString(t, "")
	t = employerCutRe.ReplaceAllString(t, "")
	if company != "" {
		t = cutCompany(t, company)
	}
	t = resolve.CleanTitle(t)
	if len(t) > maxTitleLen {
		return ""
	}
	return t
}

// cutCompany removes a trailing ", <company>…", " - <company>…", " of <company>…"
// or " for <company>…" tail.
func cutCompany(title, company string) string {
	lowerTitle := strings.ToLower(title)
	lowerCompany := strings.ToLower(strings.TrimSpace(company))
	if lowerCompany == "" {
		return title
	}
	for _, sep := range []string{", ", " - ", " – ", " — ", " of ", " for ", " "} {
		if i := strings.LastIndex(lowerTitle, sep+lowerCompany); i >= 0 {
			return title[:i]
		}
	}
	return title
}

// MentionsCompany reports whether text names the company, comparing
// normalized forms without legal suffixes.
func MentionsCompany(text, company string) bool {
	key := companyKey(company)
	if key == "" {
		return true
	}
	return strings.Contains(" "+resolve.NameKey(text)+" ", " "+key+" ")
}

var legalSuffixes = map[string]bool{
	"inc": true, "llc": true, "corp": true, "ltd": true, "co": true, "company": true,
	"corporation": true, "incorporated": true,
}

func companyKey(company string) string {
	tokens := strings.Fields(resolve.NameKey(company))
	for len(tokens) > 1 && legalSuffixes[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

var (
	mdLinkRe    = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdImageRe   = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	mdEmphRe    = regexp.MustCompile(`[*_]{1,3}`)
	mdHeadingRe = regexp.MustCompile(`^\s*#{1,6}\s*`)
)

// plain strips the markdown produced by page converters from one line.
func plain(s string) string {
	s = mdImageRe.ReplaceAllString(s, "")
	s = mdLinkRe.ReplaceAllString(s, "$1")
	s = mdHeadingRe.ReplaceAllString(s, "")
	s = mdEmphRe.ReplaceAllString(s, "")
	return strings.TrimFunc(s, unicode.IsSpace)
}

package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/orgmap-cli/internal/model"
	"github.com/sells-group/orgmap-cli/internal/resolve"
)

var (
	// linkedInTailRe strips the site suffix from a profile headline.
	linkedInTailRe = regexp.MustCompile(`(?i)\s*[|\-–—]\s*linkedin.*$`)
	// headlineSepRe splits "Name - Title - Company".
	headlineSepRe = regexp.MustCompile(`\s+[-–—]\s+`)
)

// SnippetExtractor reads a search result rendered as its title line followed
// by its snippet. A professional-network headline on the first line
// ("Jane Doe - CTO - Acme | LinkedIn") is parsed before the snippet prose.
type SnippetExtractor struct {
	company string
	prose   Extractor
}

// NewSnippet returns a SnippetExtractor for one target company.
func NewSnippet(company string) *SnippetExtractor {
	return &SnippetExtractor{
		company: company,
		prose:   NewLayered(NewKeyValue(company), NewBullet(company), NewProximity(company)),
	}
}

// Extract implements Extractor.
func (e *SnippetExtractor) Extract(text string, src model.Source) []model.CandidateRecord {
	first, rest, _ := strings.Cut(text, "\n")

	var out []model.CandidateRecord
	var headlineKey string
	if e.isProfile(first, src) {
		if r, ok := e.headline(first, src); ok {
			headlineKey = resolve.NameKey(r.RawName)
			out = append(out, r)
		}
		text = rest
	}
	for _, r := range e.prose.Extract(text, src) {
		if headlineKey != "" && resolve.NameKey(r.RawName) == headlineKey {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (e *SnippetExtractor) isProfile(line string, src model.Source) bool {
	return strings.Contains(strings.ToLower(src.URLOrLabel), "linkedin.com") ||
		linkedInTailRe.MatchString(line)
}

// headline parses "Name - Title - Company | LinkedIn". A headline naming a
// different employer is skipped.
func (e *SnippetExtractor) headline(line string, src model.Source) (model.CandidateRecord, bool) {
	line = linkedInTailRe.ReplaceAllString(plain(line), "")
	parts := headlineSepRe.Split(line, -1)
	if len(parts) < 2 {
		return model.CandidateRecord{}, false
	}
	title := parts[1]
	if len(parts) >= 3 && e.company != "" && !MentionsCompany(parts[2], e.company) {
		return model.CandidateRecord{}, false
	}
	if at := employerCutRe.FindString(title); at != "" && e.company != "" && !MentionsCompany(at, e.company) {
		return model.CandidateRecord{}, false
	}
	if MentionsCompany(title, e.company) && companyKey(e.company) == resolve.NameKey(title) {
		// "Jane Doe - Acme | LinkedIn" carries no title.
		return model.CandidateRecord{}, false
	}
	return record(e.company, parts[0], title, src, model.ConfidenceMedium)
}

package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sells-group/orgmap-cli/internal/model"
	"github.com/sells-group/orgmap-cli/internal/resolve"
)

const (
	sp = `[ \t]+`

	// namePat captures two to four capitalized tokens.
	namePat = `(\p{Lu}[\p{L}'’\-]*\.?(?:` + sp + `\p{Lu}[\p{L}'’\-]*\.?){1,3})`

	deptPat = `(?:information` + sp + `security|security|software` + sp + `engineering|engineering|product|sales|marketing|` +
		`finance|operations|technology|legal|compliance|people|human` + sp + `resources|hr|it|infrastructure|data|` +
		`research|design|customer` + sp + `success|business` + sp + `development|revenue|risk|platform|growth|strategy)`

	titlePat = `(?i:\b(chief(?:` + sp + `[a-z]+){1,3}?` + sp + `officer|ceo|cto|ciso|cfo|coo|cmo|cio|cro|` +
		`(?:senior` + sp + `|executive` + sp + `)?(?:vice` + sp + `president|svp|evp|vp)(?:,?` + sp + `(?:of` + sp + `)?` + deptPat + `)?|` +
		`(?:senior` + sp + `)?director(?:,?` + sp + `(?:of` + sp + `)?` + deptPat + `)?|` +
		`head` + sp + `of` + sp + deptPat + `|` +
		`(?:principal|staff)` + sp + `(?:software` + sp + `)?(?:engineer|architect|scientist|designer|product` + sp + `manager)|` +
		`general` + sp + `counsel|(?:co-?)?founder|president)\b)`

	nameStart = `(?:^|[^\p{L}'’\-])`
)

// proximityPattern pairs a title-near-name regex with the confidence it earns.
// nameFirst records whether the name group precedes the title group.
type proximityPattern struct {
	re        *regexp.Regexp
	nameFirst bool
	conf      model.Confidence
}

// proximityPatterns are tried in order; earlier patterns win for a name.
var proximityPatterns = []proximityPattern{
	// "Jane Doe, CEO" / "Jane Doe, the CTO"
	{regexp.MustCompile(nameStart + namePat + `,` + sp + `(?:the` + sp + `|our` + sp + `)?` + titlePat), true, model.ConfidenceMedium},
	// "Jane Doe is the CEO of Acme"
	{regexp.MustCompile(nameStart + namePat + sp + `(?:is|serves` + sp + `as|has` + sp + `been|joined` + sp + `as|became)` + sp +
		`(?:the` + sp + `|our` + sp + `|an?` + sp + `)?(?:new` + sp + `|current` + sp + `)?` + titlePat), true, model.ConfidenceMedium},
	// "Jane Doe - VP Engineering at Acme"
	{regexp.MustCompile(nameStart + namePat + sp + `[-–—|]` + sp + titlePat), true, model.ConfidenceMedium},
	// "Jane Doe (CEO)"
	{regexp.MustCompile(nameStart + namePat + `[ \t]*\([ \t]*` + titlePat + `[ \t]*\)`), true, model.ConfidenceMedium},
	// "CEO Jane Doe"
	{regexp.MustCompile(titlePat + `,?` + sp + namePat), false, model.ConfidenceLow},
}

// ProximityExtractor finds known title vocabulary next to a capitalized name
// in running prose, in either order.
type ProximityExtractor struct {
	company string
}

// NewProximity returns a ProximityExtractor for one target company.
func NewProximity(company string) *ProximityExtractor {
	return &ProximityExtractor{company: company}
}

// Extract implements Extractor.
func (e *ProximityExtractor) Extract(text string, src model.Source) []model.CandidateRecord {
	var out []model.CandidateRecord
	seen := make(map[string]bool)
	for _, p := range proximityPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			rawName, rawTitle := m[1], m[2]
			if !p.nameFirst {
				rawName, rawTitle = m[2], m[1]
			}
			name, ok := nameWindow(rawName, p.nameFirst)
			if !ok {
				continue
			}
			key := resolve.NameKey(name)
			if seen[key] {
				continue
			}
			if r, ok := record(e.company, name, rawTitle, src, p.conf); ok {
				seen[key] = true
				out = append(out, r)
			}
		}
	}
	return out
}

// nameParticles join a surname to the rest of the name without counting as a
// name token of their own.
var nameParticles = map[string]bool{
	"van": true, "von": true, "der": true, "den": true, "de": true, "del": true, "della": true,
	"di": true, "da": true, "du": true, "le": true, "la": true, "bin": true, "al": true,
	"st": true, "ter": true,
}

// nameSuffixes may trail a surname.
var nameSuffixes = map[string]bool{"jr": true, "sr": true, "ii": true, "iii": true, "iv": true}

func tokenKey(tok string) string {
	return strings.ToLower(strings.Trim(tok, ".,"))
}

// isInitial matches "J" and "J.".
func isInitial(tok string) bool {
	return utf8.RuneCountInString(strings.TrimSuffix(tok, ".")) == 1
}

// adjacentName walks outward from the title side of a capture and keeps two
// full name tokens plus any initials, particles and suffixes between them.
// "Yesterday Jane Doe" (name before title) yields "Jane Doe" and
// "Jane Doe Announces" (name after title) yields "Jane Doe".
func adjacentName(tokens []string, tail bool) []string {
	at := func(i int) string {
		if tail {
			return tokens[len(tokens)-1-i]
		}
		return tokens[i]
	}

	i := 0
	for i < len(tokens) && stopWords[tokenKey(at(i))] {
		i++
	}
	var picked []string
	if tail {
		for i < len(tokens) && nameSuffixes[tokenKey(at(i))] {
			picked = append(picked, at(i))
			i++
		}
	}

	full := 0
	for ; i < len(tokens) && full < 2; i++ {
		tok := at(i)
		picked = append(picked, tok)
		if !isInitial(tok) && !nameParticles[tokenKey(tok)] && !nameSuffixes[tokenKey(tok)] {
			full++
		}
	}
	if !tail {
		for ; i < len(tokens) && nameSuffixes[tokenKey(at(i))]; i++ {
			picked = append(picked, at(i))
		}
	}

	if tail {
		for l, r := 0, len(picked)-1; l < r; l, r = l+1, r-1 {
			picked[l], picked[r] = picked[r], picked[l]
		}
	}
	return picked
}

// nameWindow narrows a greedy name capture to the tokens nearest the title:
// the tail when the name precedes the title, the head otherwise. When that
// window fails validation it retries shorter windows on the same side.
// "Acme Corp Jane Doe" yields "Jane Doe".
func nameWindow(raw string, tail bool) (string, bool) {
	tokens := strings.Fields(raw)
	if name, ok := CleanName(strings.Join(adjacentName(tokens, tail), " ")); ok {
		return name, true
	}
	for n := len(tokens) - 1; n >= 2; n-- {
		var window []string
		if tail {
			window = tokens[len(tokens)-n:]
		} else {
			window = tokens[:n]
		}
		if name, ok := CleanName(strings.Join(window, " ")); ok {
			return name, true
		}
	}
	return "", false
}

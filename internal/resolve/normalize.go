// Package resolve deduplicates candidate person records into canonical executives.
package resolve

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var multiSpaceRe = regexp.MustCompile(`\s+`)

// displayPunct lists separators that never belong inside a displayed person name.
var displayPunct = strings.NewReplacer(
	",", " ",
	";", " ",
	":", " ",
	"(", " ",
	")", " ",
	"[", " ",
	"]", " ",
	"{", " ",
	"}", " ",
	"\"", " ",
	"|", " ",
	"/", " ",
	"\\", " ",
	"“", " ",
	"”", " ",
)

var titleCaser = cases.Title(language.English)

// NameKey returns the dedup key for a person name:
//  1. Lowercasing
//  2. Dropping apostrophes
//  3. Replacing every other punctuation rune with a space
//  4. Collapsing whitespace and trimming
//
// "john   SMITH", "John Smith" and "John, Smith" share the key "john smith".
func NameKey(name string) string {
	name = strings.ToLower(name)
	name = strings.NewReplacer("'", "", "’", "").Replace(name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return r
	}, name)
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(name, " "))
}

// DisplayName cleans a raw name for output. NameKey(DisplayName(n)) == NameKey(n).
func DisplayName(raw string) string {
	raw = displayPunct.Replace(raw)
	raw = strings.TrimSpace(multiSpaceRe.ReplaceAllString(raw, " "))
	return TitleCase(raw)
}

// TitleCase title-cases tokens that are entirely lower or upper case.
// Mixed-case tokens such as "McDonald" are kept as written.
func TitleCase(name string) string {
	tokens := strings.Fields(name)
	for i, tok := range tokens {
		if tok == strings.ToLower(tok) || tok == strings.ToUpper(tok) {
			tokens[i] = titleCaser.String(tok)
		}
	}
	return strings.Join(tokens, " ")
}

// CleanTitle collapses whitespace and trims separators left over from extraction.
func CleanTitle(title string) string {
	title = strings.TrimSpace(multiSpaceRe.ReplaceAllString(title, " "))
	return strings.Trim(title, " ,;:-–—|.")
}

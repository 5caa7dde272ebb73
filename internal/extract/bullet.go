package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/orgmap-cli/internal/model"
)

var (
	// bulletRe matches a list marker at the start of a line.
	bulletRe = regexp.MustCompile(`^\s*(?:[-*•·▪●◦]|\d+[.)])\s+`)
	// bulletSepRe splits "Name – Title", "Name - Title", "Name | Title" and "Name, Title".
	bulletSepRe = regexp.MustCompile(`\s+[-–—]\s+|\s*[–—|]\s*|,\s+`)
)

// maxTitleWords bounds the title half of a list line.
const maxTitleWords = 10

// BulletExtractor reads one person per list line ("- Name – Title",
// "• Name, Title", "Name | Title") and stacked team-page cards where a name
// line is followed by a title line.
type BulletExtractor struct {
	company string
}

// NewBullet returns a BulletExtractor for one target company.
func NewBullet(company string) *BulletExtractor {
	return &BulletExtractor{company: company}
}

// Extract implements Extractor.
func (e *BulletExtractor) Extract(text string, src model.Source) []model.CandidateRecord {
	var out []model.CandidateRecord
	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if r, ok := e.fromLine(line, src); ok {
			out = append(out, r)
			continue
		}
		// Stacked card: a line holding only a name, then a title line.
		name, ok := CleanName(bulletRe.ReplaceAllString(line, ""))
		if !ok {
			continue
		}
		j := nextNonBlank(lines, i+1)
		if j < 0 {
			continue
		}
		if _, ok := e.fromLine(lines[j], src); ok {
			continue
		}
		next := plain(bulletRe.ReplaceAllString(lines[j], ""))
		if !LooksLikeTitle(next) {
			continue
		}
		if r, ok := record(e.company, name, next, src, model.ConfidenceMedium); ok {
			out = append(out, r)
			i = j
		}
	}
	return out
}

func (e *BulletExtractor) fromLine(line string, src model.Source) (model.CandidateRecord, bool) {
	marked := bulletRe.MatchString(line)
	body := plain(bulletRe.ReplaceAllString(line, ""))
	loc := bulletSepRe.FindStringIndex(body)
	if loc == nil {
		return model.CandidateRecord{}, false
	}
	// Commas only separate name and title on marked list lines; in prose they
	// are ordinary punctuation.
	if !marked && strings.TrimSpace(body[loc[0]:loc[1]]) == "," {
		return model.CandidateRecord{}, false
	}
	left, right := body[:loc[0]], body[loc[1]:]
	if len(strings.Fields(right)) > maxTitleWords {
		return model.CandidateRecord{}, false
	}
	if _, ok := CleanName(left); !ok {
		// "CEO – Jane Doe"
		if LooksLikeTitle(left) {
			left, right = right, left
		} else {
			return model.CandidateRecord{}, false
		}
	}
	if !LooksLikeTitle(right) {
		return model.CandidateRecord{}, false
	}
	return record(e.company, left, right, src, model.ConfidenceMedium)
}

func nextNonBlank(lines []string, from int) int {
	for j := from; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) != "" {
			return j
		}
	}
	return -1
}

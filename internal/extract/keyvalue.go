package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/orgmap-cli/internal/model"
)

// kvKeyRe matches a recognized key followed by ':' or '='. Group 1 is the key.
var kvKeyRe = regexp.MustCompile(`(?i)(?:^|[\s,;|])(full name|name|job title|title|position|role|department|dept|reports to|reports_to|manager)\s*[:=]`)

// KeyValueExtractor reads explicit "Name: X, Title: Y" records. Keys may share
// a line ("Name: X | Title: Y") or span consecutive lines; a blank line or a
// second name key starts a new record.
type KeyValueExtractor struct {
	company string
}

// NewKeyValue returns a KeyValueExtractor for one target company.
func NewKeyValue(company string) *KeyValueExtractor {
	return &KeyValueExtractor{company: company}
}

type kvBlock struct {
	name, title, dept, reportsTo string
}

// Extract implements Extractor.
func (e *KeyValueExtractor) Extract(text string, src model.Source) []model.CandidateRecord {
	var out []model.CandidateRecord
	var cur kvBlock

	flush := func() {
		if cur.name != "" {
			if r, ok := record(e.company, cur.name, cur.title, src, model.ConfidenceHigh); ok {
				r.DepartmentHint = cur.dept
				if reports, ok := CleanName(cur.reportsTo); ok {
					r.ReportsToHint = reports
				}
				out = append(out, r)
			}
		}
		cur = kvBlock{}
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		for _, kv := range splitKeyValues(line) {
			switch kv.key {
			case "name", "full name":
				if cur.name != "" {
					flush()
				}
				cur.name = kv.value
			case "title", "job title", "position", "role":
				if cur.title == "" {
					cur.title = kv.value
				}
			case "department", "dept":
				cur.dept = kv.value
			case "reports to", "reports_to", "manager":
				cur.reportsTo = kv.value
			}
		}
	}
	flush()
	return out
}

type keyValue struct {
	key, value string
}

// splitKeyValues finds every recognized key on a line; each value runs to the
// next key or the end of the line.
func splitKeyValues(line string) []keyValue {
	locs := kvKeyRe.FindAllStringSubmatchIndex(line, -1)
	out := make([]keyValue, 0, len(locs))
	for i, loc := range locs {
		end := len(line)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		value := strings.Trim(line[loc[1]:end], " \t,;|")
		out = append(out, keyValue{
			key:   strings.ToLower(line[loc[2]:loc[3]]),
			value: value,
		})
	}
	return out
}

package pipeline

import (
	"regexp"
	"strings"
)

// CompanyFacts holds company-level facts stated by a source. Empty fields were
// not found.
type CompanyFacts struct {
	Industry string `json:"industry,omitempty"`
	HQ       string `json:"hq,omitempty"`
	Size     string `json:"size,omitempty"`
	Revenue  string `json:"revenue,omitempty"`
}

var (
	// hqRe matches "headquartered in Austin, Texas" and "headquarters in Berlin".
	hqRe = regexp.MustCompile(`(?:[Hh]eadquartered|[Hh]eadquarters(?: is| are)?|[Bb]ased) in (\p{Lu}[\p{L}.'\-]*(?:[ ,]+\p{Lu}[\p{L}.'\-]*){0,4})`)
	// sizeRe matches "1,200 employees", "51-200 employees" and "500+ employees".
	sizeRe = regexp.MustCompile(`(?i)\b(\d[\d,]*(?:\s*[-–]\s*\d[\d,]*)?\+?)\s+(?:employees|staff|people)\b`)
	// revenueRe matches "$12.5 million in revenue" and "revenue of $3B".
	revenueRe    = regexp.MustCompile(`(?i)\$\s?(\d+(?:\.\d+)?)\s*(billion|million|[bm])\b[^.\n]{0,25}?\brevenue`)
	revenueRevRe = regexp.MustCompile(`(?i)\brevenues?\b[^.$\n]{0,40}?\$\s?(\d+(?:\.\d+)?)\s*(billion|million|[bm])\b`)
	// industryRe matches "Industry: Computer Software" and "in the fintech industry".
	industryRe   = regexp.MustCompile(`(?i)\bindustry\s*:\s*([^\n.;|]{3,60})`)
	industryInRe = regexp.MustCompile(`(?i)\bin the ([a-z][a-z &\-]{2,40}?) (?:industry|sector)\b`)
)

// ParseCompanyFacts scans texts in order and keeps the first statement of
// each fact.
func ParseCompanyFacts(texts []string) CompanyFacts {
	var f CompanyFacts
	for _, t := range texts {
		if f.HQ == "" {
			if m := hqRe.FindStringSubmatch(t); m != nil {
				f.HQ = strings.Trim(m[1], " ,.")
			}
		}
		if f.Size == "" {
			if m := sizeRe.FindStringSubmatch(t); m != nil {
				f.Size = m[1] + " employees"
			}
		}
		if f.Revenue == "" {
			if m := revenueRe.FindStringSubmatch(t); m != nil {
				f.Revenue = formatRevenue(m[1], m[2])
			} else if m := revenueRevRe.FindStringSubmatch(t); m != nil {
				f.Revenue = formatRevenue(m[1], m[2])
			}
		}
		if f.Industry == "" {
			if m := industryRe.FindStringSubmatch(t); m != nil {
				f.Industry = strings.TrimSpace(m[1])
			} else if m := industryInRe.FindStringSubmatch(t); m != nil {
				f.Industry = strings.TrimSpace(m[1])
			}
		}
	}
	return f
}

func formatRevenue(amount, unit string) string {
	switch strings.ToLower(unit) {
	case "b", "billion":
		unit = "billion"
	default:
		unit = "million"
	}
	return "$" + amount + " " + unit
}

package pipeline

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// SourceTarget names the family of sites a query is aimed at.
type SourceTarget string

const (
	TargetProfessionalNetwork SourceTarget = "professional_network"
	TargetRegistry            SourceTarget = "registry"
	TargetOrgChartSite        SourceTarget = "org_chart_site"
	TargetCompanySite         SourceTarget = "company_site"
	TargetPress               SourceTarget = "press"
)

// Query is one planned search.
type Query struct {
	Text           string       `json:"text"`
	Target         SourceTarget `json:"target"`
	AllowedSources []string     `json:"allowed_sources,omitempty"`
}

// maxPlannedQueries caps the plan size.
const maxPlannedQueries = 24

var targetSites = map[SourceTarget][]string{
	TargetProfessionalNetwork: {"linkedin.com"},
	TargetOrgChartSite:        {"theorg.com", "rocketreach.co", "zoominfo.com", "crunchbase.com"},
	TargetRegistry:            {"sec.gov", "opencorporates.com"},
	TargetPress:               {"prnewswire.com", "businesswire.com", "globenewswire.com"},
}

var (
	cSuiteTitles = []string{"CEO", "CTO", "CISO", "CFO", "COO"}
	vpDepts      = []string{"Engineering", "Security", "Product", "Sales", "Marketing"}
	// seniorPhrases pair quoted alternatives for director, head and principal roles.
	seniorPhrases = [][]string{
		{"Director of Security", "Head of Security"},
		{"Director of Engineering", "Head of Engineering"},
		{"Director of Compliance", "Head of Compliance"},
		{"Principal Engineer", "Staff Engineer", "Principal Architect"},
	}
)

var sitePaths = []string{"/about", "/about-us", "/leadership", "/team", "/our-team", "/management", "/company", "/people"}

// PlanQueries returns the ordered search plan for a company. It is a pure
// function of its inputs.
func PlanQueries(company, domain string) []Query {
	company = strings.TrimSpace(company)
	q := func(target SourceTarget, format string, args ...any) Query {
		return Query{
			Text:           fmt.Sprintf(format, args...),
			Target:         target,
			AllowedSources: targetSites[target],
		}
	}

	var plan []Query
	for _, title := range cSuiteTitles {
		plan = append(plan, q(TargetProfessionalNetwork, `"%s" %s`, company, title))
	}
	for _, dept := range vpDepts {
		plan = append(plan, q(TargetProfessionalNetwork, `"%s" "VP %s" OR "Vice President of %s"`, company, dept, dept))
	}
	for _, phrases := range seniorPhrases {
		plan = append(plan, q(TargetProfessionalNetwork, `"%s" %s`, company, quoteAlternatives(phrases)))
	}
	plan = append(plan,
		q(TargetOrgChartSite, `"%s" org chart leadership team`, company),
		q(TargetOrgChartSite, `"%s" executives management team`, company),
		q(TargetRegistry, `"%s" officers and directors`, company),
		q(TargetRegistry, `"%s" annual report executive officers`, company),
		q(TargetPress, `"%s" appoints OR names chief officer`, company),
		q(TargetPress, `"%s" announces new vice president`, company),
	)
	if domain != "" {
		site := Query{
			Text:           fmt.Sprintf(`site:%s leadership OR team OR management`, domain),
			Target:         TargetCompanySite,
			AllowedSources: []string{domain},
		}
		about := Query{
			Text:           fmt.Sprintf(`site:%s about executives`, domain),
			Target:         TargetCompanySite,
			AllowedSources: []string{domain},
		}
		plan = append(plan, site, about)
	}

	if len(plan) > maxPlannedQueries {
		plan = plan[:maxPlannedQueries]
	}
	return plan
}

func quoteAlternatives(phrases []string) string {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = `"` + p + `"`
	}
	return strings.Join(quoted, " OR ")
}

// CompanySitePaths returns the fixed leadership-page candidates on a domain.
func CompanySitePaths(domain string) []string {
	if domain == "" {
		return nil
	}
	out := make([]string, len(sitePaths))
	for i, p := range sitePaths {
		out[i] = "https://" + domain + p
	}
	return out
}

var legalSuffixes = map[string]bool{
	"inc": true, "llc": true, "corp": true, "ltd": true, "co": true, "company": true,
}

// DeriveDomain guesses a company's domain from its name: lowercased, trailing
// legal suffixes dropped, non-alphanumerics stripped, ".com" appended.
// "Acme, Inc." becomes "acme.com".
func DeriveDomain(company string) string {
	tokens := strings.Fields(strings.ToLower(company))
	for len(tokens) > 1 && legalSuffixes[strings.Trim(tokens[len(tokens)-1], ".,")] {
		tokens = tokens[:len(tokens)-1]
	}
	var b strings.Builder
	for _, r := range strings.Join(tokens, "") {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return b.String() + ".com"
}

// NormalizeDomain strips scheme, "www.", path and port from a user-supplied
// domain or URL.
func NormalizeDomain(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// ResolveDomain prefers an explicit domain and falls back to DeriveDomain.
func ResolveDomain(company, domain string) string {
	if d := NormalizeDomain(domain); d != "" {
		return d
	}
	return DeriveDomain(company)
}

package resolve

import (
	"strings"

	"github.com/sells-group/orgmap-cli/internal/model"
)

// Department names produced by InferDepartment.
const (
	DeptSecurity    = "Security"
	DeptEngineering = "Engineering"
	DeptFinance     = "Finance"
	DeptSales       = "Sales"
	DeptMarketing   = "Marketing"
	DeptProduct     = "Product"
	DeptHR          = "Human Resources"
	DeptLegal       = "Legal"
	DeptExecutive   = "Executive"
)

type deptRule struct {
	keywords []string
	dept     string
}

// departmentRules are checked in order; the first rule with a matching word wins.
// Officer abbreviations map to the function they lead.
var departmentRules = []deptRule{
	{[]string{"security", "compliance", "risk", "ciso"}, DeptSecurity},
	{[]string{"engineering", "technical", "software", "devops", "technology", "cto"}, DeptEngineering},
	{[]string{"finance", "accounting", "cfo"}, DeptFinance},
	{[]string{"sales", "revenue"}, DeptSales},
	{[]string{"marketing", "brand", "cmo"}, DeptMarketing},
	{[]string{"product"}, DeptProduct},
	{[]string{"hr", "people", "talent"}, DeptHR},
	{[]string{"legal", "counsel"}, DeptLegal},
}

// words splits a title into lowercase alphanumeric words, padded for phrase matching.
func words(title string) string {
	f := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return " " + strings.Join(f, " ") + " "
}

func hasWord(padded string, kw string) bool {
	return strings.Contains(padded, " "+kw+" ")
}

func hasAny(padded string, kws ...string) bool {
	for _, kw := range kws {
		if hasWord(padded, kw) {
			return true
		}
	}
	return false
}

// InferDepartment maps a title to a department via the keyword table, defaulting to Executive.
func InferDepartment(title string) string {
	w := words(title)
	for _, r := range departmentRules {
		if hasAny(w, r.keywords...) {
			return r.dept
		}
	}
	return DeptExecutive
}

// NormalizeDepartment maps a free-text department hint onto the canonical names
// where possible and title-cases it otherwise.
func NormalizeDepartment(hint string) string {
	hint = CleanTitle(hint)
	if hint == "" {
		return ""
	}
	if d := InferDepartment(hint); d != DeptExecutive {
		return d
	}
	return TitleCase(hint)
}

// InferLevel maps a title to a seniority band using ordered keyword checks.
func InferLevel(title string) model.ExecutiveLevel {
	w := words(title)
	vice := hasWord(w, "vice") || hasAny(w, "vp", "svp", "evp")
	switch {
	case hasAny(w, "ceo", "cto", "cfo", "coo", "ciso", "chief", "founder", "cofounder"):
		return model.LevelCSuite
	case hasWord(w, "president") && !vice:
		return model.LevelCSuite
	case vice:
		return model.LevelVP
	case hasWord(w, "director"):
		return model.LevelDirector
	case hasAny(w, "principal", "staff", "senior", "sr") || strings.Contains(w, " head of "):
		return model.LevelSenior
	default:
		return model.LevelManager
	}
}

// materiallyDifferent reports whether two titles for the same name describe
// different jobs rather than two phrasings of one job.
func materiallyDifferent(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if strings.Contains(la, lb) || strings.Contains(lb, la) {
		return false
	}
	if InferLevel(a) != InferLevel(b) {
		return true
	}
	da, db := InferDepartment(a), InferDepartment(b)
	return da != db && da != DeptExecutive && db != DeptExecutive
}

package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/sells-group/orgmap-cli/internal/model"
	"github.com/sells-group/orgmap-cli/internal/resolve"
)

// AssembleInput carries everything the assembler reads.
type AssembleInput struct {
	Company     string
	Domain      string
	Executives  []model.CanonicalExecutive
	Roles       []model.RoleAssignment
	Facts       CompanyFacts
	Gaps        []string
	GeneratedAt time.Time
}

// Gap texts shared with tests and callers.
const (
	GapNoVerifiedPeople = "No verified people found"
)

// coveredCSuite lists the officer roles whose absence is reported as a gap.
var coveredCSuite = []struct {
	label string
	match func(string) bool
}{
	{"CEO", isCEO},
	{"CTO", isCTO},
	{"CISO", isCISO},
	{"CFO", isCFO},
}

// directorCoverage lists functions that need a director-level contact.
var directorCoverage = []struct {
	label string
	match func(model.CanonicalExecutive) bool
}{
	{"Security", func(e model.CanonicalExecutive) bool { return e.Department == resolve.DeptSecurity }},
	{"Engineering", func(e model.CanonicalExecutive) bool { return e.Department == resolve.DeptEngineering }},
	{"Compliance", func(e model.CanonicalExecutive) bool {
		return strings.Contains(strings.ToLower(e.Title), "compliance")
	}},
}

// Assemble builds the final AccountMap. The result is always structurally
// valid: every slice is non-nil and unknown snapshot fields carry a labeled
// placeholder.
func Assemble(in AssembleInput) *model.AccountMap {
	m := &model.AccountMap{
		Company:     in.Company,
		Domain:      in.Domain,
		Status:      model.MapStatusComplete,
		GeneratedAt: in.GeneratedAt,
		CompanySnapshot: model.CompanySnapshot{
			Industry:         orPlaceholder(in.Facts.Industry),
			HQ:               orPlaceholder(in.Facts.HQ),
			Size:             orPlaceholder(in.Facts.Size),
			Revenue:          orPlaceholder(in.Facts.Revenue),
			StructureSummary: structureSummary(in.Executives),
		},
		OrgTree:      make([]model.OrgNode, 0, len(in.Executives)),
		RoleAnalysis: make([]model.RoleEntry, 0, len(in.Roles)),
		Gaps:         []string{},
		Citations:    []string{},
	}

	for _, e := range in.Executives {
		m.OrgTree = append(m.OrgTree, model.NewOrgNode(e))
	}
	for _, r := range in.Roles {
		m.RoleAnalysis = append(m.RoleAnalysis, model.NewRoleEntry(r))
	}

	seen := make(map[string]bool)
	for _, e := range in.Executives {
		for _, s := range e.Sources {
			if !seen[s.URLOrLabel] {
				seen[s.URLOrLabel] = true
				m.Citations = append(m.Citations, s.URLOrLabel)
			}
		}
	}

	if len(in.Executives) == 0 {
		m.Status = model.MapStatusNoVerifiedPeople
	}
	m.Gaps = coverageGaps(in)
	return m
}

func orPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return model.Placeholder
	}
	return v
}

func coverageGaps(in AssembleInput) []string {
	var gaps []string
	add := func(g string) {
		for _, existing := range gaps {
			if existing == g {
				return
			}
		}
		gaps = append(gaps, g)
	}

	if len(in.Executives) == 0 {
		add(GapNoVerifiedPeople)
	}
	for _, g := range in.Gaps {
		add(g)
	}

	for _, c := range coveredCSuite {
		found := false
		for _, e := range in.Executives {
			if c.match(e.Title) {
				found = true
				break
			}
		}
		if !found {
			add(fmt.Sprintf("No %s identified", c.label))
		}
	}

	for _, d := range directorCoverage {
		found := false
		for _, e := range in.Executives {
			if (e.Level == model.LevelDirector || e.Level == model.LevelVP) && d.match(e) {
				found = true
				break
			}
		}
		if !found {
			add(fmt.Sprintf("No director-level %s contact found", d.label))
		}
	}

	for _, e := range in.Executives {
		if e.Ambiguous {
			add(fmt.Sprintf("%s: conflicting titles across sources (%s); needs validation", e.Name, e.Title))
		}
	}
	for _, r := range in.Roles {
		if r.NeedsValidation() {
			add(fmt.Sprintf("%s (%s): stakeholder role needs validation", r.Name, r.Title))
		}
	}

	if gaps == nil {
		return []string{}
	}
	return gaps
}

// structureSummary counts members per level and department and states that
// reporting lines are inferred.
func structureSummary(execs []model.CanonicalExecutive) string {
	if len(execs) == 0 {
		return model.Placeholder
	}

	levelCounts := make(map[model.ExecutiveLevel]int)
	var deptOrder []string
	deptCounts := make(map[string]int)
	explicit := 0
	for _, e := range execs {
		levelCounts[e.Level]++
		if deptCounts[e.Department] == 0 {
			deptOrder = append(deptOrder, e.Department)
		}
		deptCounts[e.Department]++
		if !e.ReportsToInferred {
			explicit++
		}
	}

	var levels []string
	for lvl := model.LevelCSuite; lvl >= model.LevelIndividualContributor; lvl-- {
		if n := levelCounts[lvl]; n > 0 {
			levels = append(levels, fmt.Sprintf("%d %s", n, lvl))
		}
	}
	depts := make([]string, 0, len(deptOrder))
	for _, d := range deptOrder {
		depts = append(depts, fmt.Sprintf("%s (%d)", d, deptCounts[d]))
	}

	people := "people"
	if len(execs) == 1 {
		people = "person"
	}
	summary := fmt.Sprintf("%d %s mapped: %s. Departments: %s. ",
		len(execs), people, strings.Join(levels, ", "), strings.Join(depts, ", "))
	if explicit == 0 {
		return summary + "Reporting lines are inferred from titles and not verified."
	}
	return summary + fmt.Sprintf("%d reporting lines are stated by a source; the rest are inferred from titles.", explicit)
}

package pipeline

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/orgmap-cli/internal/model"
	"github.com/sells-group/orgmap-cli/internal/resolve"
)

func TestAssemble_Empty(t *testing.T) {
	m := Assemble(AssembleInput{Company: "Ghost Inc", GeneratedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)})

	assert.Equal(t, model.MapStatusNoVerifiedPeople, m.Status)
	assert.NotNil(t, m.OrgTree)
	assert.Empty(t, m.OrgTree)
	assert.NotNil(t, m.RoleAnalysis)
	assert.NotNil(t, m.Citations)
	assert.Empty(t, m.Citations)
	require.NotEmpty(t, m.Gaps)
	assert.Equal(t, GapNoVerifiedPeople, m.Gaps[0])
	assert.Contains(t, m.Gaps, "No CEO identified")
	assert.Contains(t, m.Gaps, "No director-level Security contact found")

	assert.Equal(t, model.Placeholder, m.CompanySnapshot.Industry)
	assert.Equal(t, model.Placeholder, m.CompanySnapshot.HQ)
	assert.Equal(t, model.Placeholder, m.CompanySnapshot.Size)
	assert.Equal(t, model.Placeholder, m.CompanySnapshot.Revenue)
	assert.Equal(t, model.Placeholder, m.CompanySnapshot.StructureSummary)

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"org_tree":[]`)
	assert.Contains(t, string(raw), `"citations":[]`)
	assert.Contains(t, string(raw), `"role_analysis":[]`)
}

func TestAssemble_FullMap(t *testing.T) {
	execs := BuildHierarchy([]model.CanonicalExecutive{
		newExec("Jane Doe", "Chief Executive Officer", model.LevelCSuite, resolve.DeptExecutive, "src1", "src2"),
		newExec("Carl Tan", "CTO", model.LevelCSuite, resolve.DeptEngineering, "src2", "src3"),
		newExec("Bob Smith", "VP Engineering", model.LevelVP, resolve.DeptEngineering, "src3"),
		newExec("Sam Lee", "Office Manager", model.LevelManager, resolve.DeptExecutive, "src4"),
	})
	roles := ClassifyRoles(execs, "Acme")

	m := Assemble(AssembleInput{
		Company:    "Acme",
		Domain:     "acme.com",
		Executives: execs,
		Roles:      roles,
		Facts:      CompanyFacts{HQ: "Austin, Texas"},
		Gaps:       []string{"Search unavailable for 2 of 22 queries"},
	})

	assert.Equal(t, model.MapStatusComplete, m.Status)
	require.Len(t, m.OrgTree, 4)
	require.Len(t, m.RoleAnalysis, 4)
	assert.Equal(t, []string{"src1", "src2", "src3", "src4"}, m.Citations)

	jane := m.OrgTree[0]
	assert.Equal(t, "Jane Doe", jane.Name)
	assert.Equal(t, model.BoardOfDirectors, jane.ReportsTo)
	assert.Equal(t, model.LevelCSuite, jane.Level)
	assert.Equal(t, resolve.DeptExecutive, jane.RegionFunction)
	assert.Equal(t, []string{"src1", "src2"}, jane.Sources)
	assert.Equal(t, "Carl Tan", m.OrgTree[2].ReportsTo)

	assert.Equal(t, model.RoleEconomicBuyer, m.RoleAnalysis[0].Role)
	assert.Equal(t, model.RoleChampion, m.RoleAnalysis[1].Role)

	assert.Equal(t, "Austin, Texas", m.CompanySnapshot.HQ)
	assert.Equal(t, model.Placeholder, m.CompanySnapshot.Revenue)
	assert.Equal(t,
		"4 people mapped: 2 C-Suite, 1 VP, 1 Manager. Departments: Executive (2), Engineering (2). Reporting lines are inferred from titles and not verified.",
		m.CompanySnapshot.StructureSummary)

	assert.Equal(t, []string{
		"Search unavailable for 2 of 22 queries",
		"No CISO identified",
		"No CFO identified",
		"No director-level Security contact found",
		"No director-level Compliance contact found",
		"Sam Lee (Office Manager): stakeholder role needs validation",
	}, m.Gaps)
}

func TestAssemble_AmbiguousGap(t *testing.T) {
	e := newExec("Pat Quinn", "VP Engineering / VP Sales", model.LevelVP, resolve.DeptEngineering, "a", "b")
	e.Ambiguous = true
	e.Confidence = model.ConfidenceLow

	m := Assemble(AssembleInput{Company: "Acme", Executives: []model.CanonicalExecutive{e}})
	assert.Contains(t, m.Gaps, "Pat Quinn: conflicting titles across sources (VP Engineering / VP Sales); needs validation")
	assert.Equal(t, model.ConfidenceLow, m.OrgTree[0].Confidence)
}

func TestAssemble_DuplicateGapsCollapsed(t *testing.T) {
	m := Assemble(AssembleInput{
		Company: "Acme",
		Gaps:    []string{"No CEO identified", "fetch phase timed out after 3m0s; results are partial"},
	})
	count := 0
	for _, g := range m.Gaps {
		if g == "No CEO identified" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestStructureSummary_ExplicitLines(t *testing.T) {
	e := newExec("Bob Smith", "VP Sales", model.LevelVP, resolve.DeptSales, "a")
	e.ReportsToInferred = false
	s := structureSummary([]model.CanonicalExecutive{e})
	assert.Equal(t, "1 person mapped: 1 VP. Departments: Sales (1). 1 reporting lines are stated by a source; the rest are inferred from titles.", s)
}

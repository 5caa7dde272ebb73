package model

import "time"

// Placeholder marks a snapshot field that no source established.
const Placeholder = "Unknown (not verified)"

// MapStatus summarizes whether a run found anyone.
type MapStatus string

const (
	MapStatusComplete         MapStatus = "complete"
	MapStatusNoVerifiedPeople MapStatus = "no_verified_people"
)

// CompanySnapshot holds company-level facts or labeled placeholders.
type CompanySnapshot struct {
	Industry         string `json:"industry" yaml:"industry"`
	HQ               string `json:"hq" yaml:"hq"`
	Size             string `json:"size" yaml:"size"`
	Revenue          string `json:"revenue" yaml:"revenue"`
	StructureSummary string `json:"structure_summary" yaml:"structure_summary"`
}

// OrgNode is the wire form of a CanonicalExecutive inside an AccountMap.
type OrgNode struct {
	Name              string         `json:"name" yaml:"name"`
	Title             string         `json:"title" yaml:"title"`
	ReportsTo         string         `json:"reports_to" yaml:"reports_to"`
	Level             ExecutiveLevel `json:"level" yaml:"level"`
	RegionFunction    string         `json:"region_function" yaml:"region_function"`
	Sources           []string       `json:"sources" yaml:"sources"`
	Confidence        Confidence     `json:"confidence" yaml:"confidence"`
	ReportsToInferred bool           `json:"reports_to_inferred" yaml:"reports_to_inferred"`
}

// RoleEntry is the wire form of a RoleAssignment inside an AccountMap.
type RoleEntry struct {
	Name    string          `json:"name" yaml:"name"`
	Title   string          `json:"title" yaml:"title"`
	Role    StakeholderRole `json:"role" yaml:"role"`
	Notes   string          `json:"notes" yaml:"notes"`
	Sources []string        `json:"sources" yaml:"sources"`
}

// AccountMap is the pipeline's sole output. Field names are a compatibility contract.
type AccountMap struct {
	RunID           string          `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Company         string          `json:"company,omitempty" yaml:"company,omitempty"`
	Domain          string          `json:"domain,omitempty" yaml:"domain,omitempty"`
	Status          MapStatus       `json:"status,omitempty" yaml:"status,omitempty"`
	GeneratedAt     time.Time       `json:"generated_at" yaml:"generated_at"`
	CompanySnapshot CompanySnapshot `json:"company_snapshot" yaml:"company_snapshot"`
	OrgTree         []OrgNode       `json:"org_tree" yaml:"org_tree"`
	RoleAnalysis    []RoleEntry     `json:"role_analysis" yaml:"role_analysis"`
	Gaps            []string        `json:"gaps" yaml:"gaps"`
	Citations       []string        `json:"citations" yaml:"citations"`
}

// NewOrgNode converts a frozen executive into its wire form.
func NewOrgNode(e CanonicalExecutive) OrgNode {
	return OrgNode{
		Name:              e.Name,
		Title:             e.Title,
		ReportsTo:         e.ReportsTo,
		Level:             e.Level,
		RegionFunction:    e.Department,
		Sources:           e.SourceLabels(),
		Confidence:        e.Confidence,
		ReportsToInferred: e.ReportsToInferred,
	}
}

// NewRoleEntry converts a role assignment into its wire form.
func NewRoleEntry(r RoleAssignment) RoleEntry {
	labels := make([]string, 0, len(r.Sources))
	for _, s := range r.Sources {
		labels = append(labels, s.URLOrLabel)
	}
	return RoleEntry{
		Name:    r.Name,
		Title:   r.Title,
		Role:    r.Role,
		Notes:   r.Rationale,
		Sources: labels,
	}
}

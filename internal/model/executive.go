package model

// SourceKind classifies where an observation came from.
type SourceKind string

const (
	SourceSearchResult SourceKind = "search_result"
	SourcePageFetch    SourceKind = "page_fetch"
	SourceFiling       SourceKind = "filing"
	SourcePress        SourceKind = "press"
)

// Source is a citation for an observation. It is a comparable value type so
// records can share and union sources without identity concerns.
type Source struct {
	URLOrLabel string     `json:"url_or_label"`
	Kind       SourceKind `json:"kind"`
}

// Sentinel hierarchy roots. Neither corresponds to a CanonicalExecutive.
const (
	BoardOfDirectors    = "Board of Directors"
	ExecutiveLeadership = "Executive Leadership"
)

// IsSentinel reports whether name is a synthetic hierarchy root.
func IsSentinel(name string) bool {
	return name == BoardOfDirectors || name == ExecutiveLeadership
}

// CandidateRecord is one unverified observation of a person from one source.
type CandidateRecord struct {
	RawName              string     `json:"raw_name"`
	RawTitle             string     `json:"raw_title"`
	DepartmentHint       string     `json:"department_hint,omitempty"`
	ReportsToHint        string     `json:"reports_to_hint,omitempty"`
	Source               Source     `json:"source_ref"`
	ExtractionConfidence Confidence `json:"extraction_confidence"`
}

// CanonicalExecutive is the merged representation of one real person across sources.
type CanonicalExecutive struct {
	Name       string         `json:"name"`
	Title      string         `json:"title"`
	Level      ExecutiveLevel `json:"level"`
	Department string         `json:"department"`
	ReportsTo  string         `json:"reports_to"`
	Sources    []Source       `json:"sources"`
	Confidence Confidence     `json:"confidence"`

	// ReportsToHint is the first explicit reporting line seen across sources.
	ReportsToHint string `json:"reports_to_hint,omitempty"`
	// ReportsToInferred is false only when an explicit source named the manager.
	ReportsToInferred bool `json:"reports_to_inferred"`
	// Ambiguous marks a merge of materially different titles under one name.
	Ambiguous bool `json:"ambiguous,omitempty"`
	// Titles lists every distinct observed title in first-seen order. Re-merging
	// folds this list back so Title is never re-split.
	Titles []string `json:"-" yaml:"-"`
}

// HasSource reports whether src is already cited.
func (e *CanonicalExecutive) HasSource(src Source) bool {
	for _, s := range e.Sources {
		if s == src {
			return true
		}
	}
	return false
}

// SourceLabels returns the citation labels in first-seen order.
func (e *CanonicalExecutive) SourceLabels() []string {
	out := make([]string, 0, len(e.Sources))
	for _, s := range e.Sources {
		out = append(out, s.URLOrLabel)
	}
	return out
}

// Clone returns a deep copy so later phases never alias an earlier phase's slices.
func (e CanonicalExecutive) Clone() CanonicalExecutive {
	c := e
	c.Sources = append([]Source(nil), e.Sources...)
	return c
}

// RoleAssignment is the derived stakeholder view of one CanonicalExecutive.
type RoleAssignment struct {
	Name      string          `json:"name"`
	Title     string          `json:"title"`
	Role      StakeholderRole `json:"role"`
	Rationale string          `json:"rationale"`
	Sources   []Source        `json:"sources"`
}

// NeedsValidation reports whether the title matched no taxonomy keyword.
func (r RoleAssignment) NeedsValidation() bool {
	return r.Role == RoleUnclassified
}

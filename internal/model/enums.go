package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Confidence is a coarse evidence tier derived from source counts, not a probability.
type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

var confidenceNames = map[Confidence]string{
	ConfidenceLow:    "Low",
	ConfidenceMedium: "Medium",
	ConfidenceHigh:   "High",
}

func (c Confidence) String() string {
	if s, ok := confidenceNames[c]; ok {
		return s
	}
	return "Low"
}

// MarshalText implements encoding.TextMarshaler.
func (c Confidence) MarshalText() ([]byte, error) {
	if _, ok := confidenceNames[c]; !ok {
		return nil, eris.Errorf("model: invalid confidence %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown tiers are rejected.
func (c *Confidence) UnmarshalText(b []byte) error {
	for k, v := range confidenceNames {
		if strings.EqualFold(v, string(b)) {
			*c = k
			return nil
		}
	}
	return eris.Errorf("model: unknown confidence %q", string(b))
}

// ConfidenceFromSources maps a distinct-source count to a tier:
// three or more sources is High, two is Medium, anything else Low.
func ConfidenceFromSources(n int) Confidence {
	switch {
	case n >= 3:
		return ConfidenceHigh
	case n == 2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// MaxConfidence returns the higher of two tiers.
func MaxConfidence(a, b Confidence) Confidence {
	if a > b {
		return a
	}
	return b
}

// ExecutiveLevel is the seniority band inferred from a title. Higher values outrank lower ones.
type ExecutiveLevel int

const (
	LevelIndividualContributor ExecutiveLevel = iota
	LevelManager
	LevelSenior
	LevelDirector
	LevelVP
	LevelCSuite
)

var levelNames = map[ExecutiveLevel]string{
	LevelCSuite:                "C-Suite",
	LevelVP:                    "VP",
	LevelDirector:              "Director",
	LevelSenior:                "Senior",
	LevelManager:               "Manager",
	LevelIndividualContributor: "Individual Contributor",
}

func (l ExecutiveLevel) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return "Individual Contributor"
}

// MarshalText implements encoding.TextMarshaler.
func (l ExecutiveLevel) MarshalText() ([]byte, error) {
	if _, ok := levelNames[l]; !ok {
		return nil, eris.Errorf("model: invalid executive level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown levels are rejected.
func (l *ExecutiveLevel) UnmarshalText(b []byte) error {
	for k, v := range levelNames {
		if strings.EqualFold(v, string(b)) {
			*l = k
			return nil
		}
	}
	return eris.Errorf("model: unknown executive level %q", string(b))
}

// Outranks reports whether l is strictly more senior than other.
func (l ExecutiveLevel) Outranks(other ExecutiveLevel) bool {
	return l > other
}

// Superior returns the level directly above l and false for C-Suite.
func (l ExecutiveLevel) Superior() (ExecutiveLevel, bool) {
	if l >= LevelCSuite {
		return LevelCSuite, false
	}
	return l + 1, true
}

// StakeholderRole is the sales-taxonomy tag for a person's likely influence on a purchase.
type StakeholderRole int

const (
	RoleUnclassified StakeholderRole = iota
	RoleEconomicBuyer
	RoleChampion
	RoleEvaluator
	RoleInfluencer
	RoleBlocker
	RoleUser
)

var roleNames = map[StakeholderRole]string{
	RoleEconomicBuyer: "economic_buyer",
	RoleChampion:      "champion",
	RoleEvaluator:     "evaluator",
	RoleInfluencer:    "influencer",
	RoleBlocker:       "blocker",
	RoleUser:          "user",
	RoleUnclassified:  "unclassified",
}

func (r StakeholderRole) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return "unclassified"
}

// ParseStakeholderRole converts a taxonomy tag into a role. Tags outside the
// closed set are an error rather than a silent "unclassified".
func ParseStakeholderRole(s string) (StakeholderRole, error) {
	for k, v := range roleNames {
		if v == strings.ToLower(strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return RoleUnclassified, eris.Errorf("model: unknown stakeholder role %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (r StakeholderRole) MarshalText() ([]byte, error) {
	if _, ok := roleNames[r]; !ok {
		return nil, eris.Errorf("model: invalid stakeholder role %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *StakeholderRole) UnmarshalText(b []byte) error {
	role, err := ParseStakeholderRole(string(b))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// AllStakeholderRoles returns the closed taxonomy in display order.
func AllStakeholderRoles() []StakeholderRole {
	return []StakeholderRole{
		RoleEconomicBuyer,
		RoleChampion,
		RoleEvaluator,
		RoleInfluencer,
		RoleBlocker,
		RoleUser,
		RoleUnclassified,
	}
}

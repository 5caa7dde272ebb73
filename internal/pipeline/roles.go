package pipeline

import (
	"fmt"
	"strings"

	"github.com/sells-group/orgmap-cli/internal/model"
)

// titleCanon rewrites long-form title phrases to the short forms the role
// rules are written in. Order matters: specific phrases come first.
var titleCanon = strings.NewReplacer(
	"chief executive officer", "ceo",
	"chief financial officer", "cfo",
	"chief technology officer", "cto",
	"chief technical officer", "cto",
	"chief information security officer", "ciso",
	"chief security officer", "ciso",
	"chief operating officer", "coo",
	"senior vice president", "vp",
	"executive vice president", "vp",
	"vice president", "vp",
	"svp", "vp",
	"evp", "vp",
	"information security", "security",
	"cyber security", "security",
	"cybersecurity", "security",
	"software engineering", "engineering",
)

// connectorCanon drops connectors left after titleCanon: "vp of engineering".
var connectorCanon = strings.NewReplacer(
	"vp of ", "vp ",
	"vp for ", "vp ",
	"director of ", "director ",
	"director for ", "director ",
)

// canonicalTitle lowercases a title, turns punctuation into spaces, collapses
// whitespace and rewrites long forms. The result is padded with single spaces
// so rules can match whole words.
func canonicalTitle(title string) string {
	lower := strings.ToLower(title)
	lower = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ' ' {
			return r
		}
		return ' '
	}, lower)
	lower = strings.Join(strings.Fields(lower), " ")
	return " " + connectorCanon.Replace(titleCanon.Replace(lower)) + " "
}

func titleHas(canon string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(canon, " "+p+" ") {
			return true
		}
	}
	return false
}

type roleRule struct {
	phrases []string
	role    model.StakeholderRole
}

// roleRules are checked in order; the first rule with a matching phrase wins.
var roleRules = []roleRule{
	{[]string{"ceo", "cfo"}, model.RoleEconomicBuyer},
	{[]string{"cto", "ciso", "vp security", "vp engineering"}, model.RoleChampion},
	{[]string{"director security", "director engineering", "head of security"}, model.RoleEvaluator},
	{[]string{"principal", "architect", "architecture", "staff engineer"}, model.RoleInfluencer},
	{[]string{"legal", "compliance", "procurement"}, model.RoleBlocker},
}

// ClassifyRole maps a title to a stakeholder role. It is a pure function.
func ClassifyRole(title string) model.StakeholderRole {
	canon := canonicalTitle(title)
	for _, r := range roleRules {
		if titleHas(canon, r.phrases...) {
			return r.role
		}
	}
	return model.RoleUnclassified
}

// Rationale renders the note attached to a role assignment.
func Rationale(title, company string, role model.StakeholderRole) string {
	if role == model.RoleUnclassified {
		return fmt.Sprintf("%s at %s; no title keyword matched, needs validation.", title, company)
	}
	return fmt.Sprintf("%s at %s; classified %s from title keywords.", title, company, role)
}

// ClassifyRoles derives one role assignment per executive, in org order.
func ClassifyRoles(execs []model.CanonicalExecutive, company string) []model.RoleAssignment {
	out := make([]model.RoleAssignment, 0, len(execs))
	for _, e := range execs {
		role := ClassifyRole(e.Title)
		out = append(out, model.RoleAssignment{
			Name:      e.Name,
			Title:     e.Title,
			Role:      role,
			Rationale: Rationale(e.Title, company, role),
			Sources:   append([]model.Source(nil), e.Sources...),
		})
	}
	return out
}

func isCEO(title string) bool  { return titleHas(canonicalTitle(title), "ceo") }
func isCTO(title string) bool  { return titleHas(canonicalTitle(title), "cto") }
func isCISO(title string) bool { return titleHas(canonicalTitle(title), "ciso") }
func isCFO(title string) bool  { return titleHas(canonicalTitle(title), "cfo") }

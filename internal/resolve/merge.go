package resolve

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/orgmap-cli/internal/model"
)

// ambiguousSep joins materially different titles kept for one person.
const ambiguousSep = " / "

// group accumulates every observation that shares one NameKey.
type group struct {
	name        string
	titles      []string
	sources     []model.Source
	department  string
	reportsHint string
	floor       model.Confidence
}

func (g *group) addTitle(t string) {
	t = CleanTitle(t)
	if t == "" {
		return
	}
	for _, existing := range g.titles {
		if strings.EqualFold(existing, t) {
			return
		}
	}
	g.titles = append(g.titles, t)
}

func (g *group) addSource(src model.Source) {
	if src.URLOrLabel == "" {
		return
	}
	for _, s := range g.sources {
		if s == src {
			return
		}
	}
	g.sources = append(g.sources, src)
}

func (g *group) addRecord(r model.CandidateRecord) {
	if g.name == "" {
		g.name = DisplayName(r.RawName)
	}
	g.addTitle(r.RawTitle)
	g.addSource(r.Source)
	if g.department == "" {
		g.department = NormalizeDepartment(r.DepartmentHint)
	}
	if g.reportsHint == "" {
		g.reportsHint = strings.TrimSpace(r.ReportsToHint)
	}
}

func (g *group) addExecutive(e model.CanonicalExecutive) {
	if g.name == "" {
		g.name = e.Name
	}
	if len(e.Titles) > 0 {
		for _, t := range e.Titles {
			g.addTitle(t)
		}
	} else {
		g.addTitle(e.Title)
	}
	for _, s := range e.Sources {
		g.addSource(s)
	}
	if g.department == "" {
		g.department = e.Department
	}
	if g.reportsHint == "" {
		g.reportsHint = e.ReportsToHint
	}
	g.floor = model.MaxConfidence(g.floor, e.Confidence)
}

// chooseTitle picks the longest title (ties go to the first seen) and then any
// titles materially different from everything already chosen.
func (g *group) chooseTitle() (string, bool) {
	if len(g.titles) == 0 {
		return "", false
	}
	best := 0
	for i, t := range g.titles {
		if len(t) > len(g.titles[best]) {
			best = i
		}
	}
	chosen := []string{g.titles[best]}
	for i, t := range g.titles {
		if i == best {
			continue
		}
		distinct := true
		for _, c := range chosen {
			if !materiallyDifferent(t, c) {
				distinct = false
				break
			}
		}
		if distinct {
			chosen = append(chosen, t)
		}
	}
	return strings.Join(chosen, ambiguousSep), len(chosen) > 1
}

func (g *group) finalize() model.CanonicalExecutive {
	title, ambiguous := g.chooseTitle()

	dept := g.department
	if dept == "" {
		dept = InferDepartment(title)
	}

	conf := model.ConfidenceFromSources(len(g.sources))
	if ambiguous {
		conf = model.ConfidenceLow
		zap.L().Debug("resolve: ambiguous merge kept both titles",
			zap.String("name", g.name),
			zap.String("title", title),
		)
	}

	return model.CanonicalExecutive{
		Name:              g.name,
		Title:             title,
		Level:             InferLevel(title),
		Department:        dept,
		Sources:           append([]model.Source(nil), g.sources...),
		Confidence:        model.MaxConfidence(conf, g.floor),
		ReportsToHint:     g.reportsHint,
		ReportsToInferred: true,
		Ambiguous:         ambiguous,
		Titles:            append([]string(nil), g.titles...),
	}
}

// groups keeps first-seen order of keys.
type groups struct {
	order []string
	byKey map[string]*group
}

func newGroups() *groups {
	return &groups{byKey: make(map[string]*group)}
}

func (gs *groups) get(name string) *group {
	key := NameKey(name)
	if key == "" {
		return nil
	}
	g, ok := gs.byKey[key]
	if !ok {
		g = &group{}
		gs.byKey[key] = g
		gs.order = append(gs.order, key)
	}
	return g
}

func (gs *groups) result() []model.CanonicalExecutive {
	out := make([]model.CanonicalExecutive, 0, len(gs.order))
	for _, key := range gs.order {
		out = append(out, gs.byKey[key].finalize())
	}
	return out
}

// Merge collapses candidate records that share a NameKey into canonical executives,
// in first-seen order.
func Merge(records []model.CandidateRecord) []model.CanonicalExecutive {
	gs := newGroups()
	for _, r := range records {
		if g := gs.get(r.RawName); g != nil {
			g.addRecord(r)
		}
	}
	return gs.result()
}

// MergeExecutives folds more observations into an already-merged set. Feeding
// Merge output back through it returns an identical set, and confidence never
// drops below what an input executive already carried.
func MergeExecutives(existing []model.CanonicalExecutive, more ...model.CandidateRecord) []model.CanonicalExecutive {
	gs := newGroups()
	for _, e := range existing {
		if g := gs.get(e.Name); g != nil {
			g.addExecutive(e)
		}
	}
	for _, r := range more {
		if g := gs.get(r.RawName); g != nil {
			g.addRecord(r)
		}
	}
	return gs.result()
}

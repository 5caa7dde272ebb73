package pipeline

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/orgmap-cli/internal/model"
	"github.com/sells-group/orgmap-cli/internal/resolve"
)

// hierarchy assigns one reporting edge per member. parent[i] is the index of
// i's manager, or -1 when i reports to a sentinel or is not yet assigned.
type hierarchy struct {
	execs  []model.CanonicalExecutive
	parent []int
	byKey  map[string]int
}

// BuildHierarchy sets ReportsTo on a copy of execs. C-Suite members report to
// the board; everyone else to the first same-department member one level up
// (walking further up when that level is empty), then to the first CISO or
// CTO for Security and Engineering, then to the first CEO. An explicit
// reporting hint naming a member wins over the heuristics and is the only
// edge marked as not inferred. An edge that would close a loop is redirected
// to a sentinel, so following ReportsTo always ends at a sentinel.
func BuildHierarchy(execs []model.CanonicalExecutive) []model.CanonicalExecutive {
	h := &hierarchy{
		execs:  make([]model.CanonicalExecutive, len(execs)),
		parent: make([]int, len(execs)),
		byKey:  make(map[string]int, len(execs)),
	}
	for i, e := range execs {
		h.execs[i] = e.Clone()
		h.parent[i] = -1
		if _, dup := h.byKey[resolve.NameKey(e.Name)]; !dup {
			h.byKey[resolve.NameKey(e.Name)] = i
		}
	}
	for i := range h.execs {
		h.assign(i)
	}
	return h.execs
}

func (h *hierarchy) assign(i int) {
	e := &h.execs[i]
	e.ReportsToInferred = true

	if j, ok := h.hinted(i); ok {
		if h.link(i, j) {
			e.ReportsToInferred = false
			return
		}
	}

	if e.Level == model.LevelCSuite {
		e.ReportsTo = model.BoardOfDirectors
		return
	}

	for _, j := range h.candidates(i) {
		if h.link(i, j) {
			return
		}
	}
	e.ReportsTo = h.topSentinel()
}

// hinted resolves an explicit reporting hint to a member index.
func (h *hierarchy) hinted(i int) (int, bool) {
	hint := h.execs[i].ReportsToHint
	if hint == "" {
		return 0, false
	}
	j, ok := h.byKey[resolve.NameKey(hint)]
	return j, ok && j != i
}

// candidates lists managers for a non-C-Suite member in preference order.
func (h *hierarchy) candidates(i int) []int {
	e := h.execs[i]
	var out []int

	for lvl := e.Level + 1; lvl <= model.LevelCSuite; lvl++ {
		if j := h.first(func(o model.CanonicalExecutive) bool {
			return o.Level == lvl && strings.EqualFold(o.Department, e.Department)
		}); j >= 0 {
			out = append(out, j)
		}
	}

	switch e.Department {
	case resolve.DeptSecurity:
		if j := h.first(func(o model.CanonicalExecutive) bool { return isCISO(o.Title) }); j >= 0 {
			out = append(out, j)
		}
	case resolve.DeptEngineering, "Technology":
		if j := h.first(func(o model.CanonicalExecutive) bool { return isCTO(o.Title) }); j >= 0 {
			out = append(out, j)
		}
	}

	if j := h.first(func(o model.CanonicalExecutive) bool { return isCEO(o.Title) }); j >= 0 {
		out = append(out, j)
	}
	if j := h.first(func(o model.CanonicalExecutive) bool { return o.Level == model.LevelCSuite }); j >= 0 {
		out = append(out, j)
	}
	return out
}

func (h *hierarchy) first(match func(model.CanonicalExecutive) bool) int {
	for j, o := range h.execs {
		if match(o) {
			return j
		}
	}
	return -1
}

// link points i at j unless that would be a self-edge or close a loop.
func (h *hierarchy) link(i, j int) bool {
	if i == j || h.reaches(j, i) {
		zap.L().Debug("pipeline: reporting edge redirected",
			zap.String("name", h.execs[i].Name),
			zap.String("manager", h.execs[j].Name),
			zap.Error(ErrHierarchyCycle),
		)
		return false
	}
	h.parent[i] = j
	h.execs[i].ReportsTo = h.execs[j].Name
	return true
}

// reaches reports whether following managers up from j arrives at target.
func (h *hierarchy) reaches(j, target int) bool {
	for steps := 0; j >= 0 && steps <= len(h.parent); steps++ {
		if j == target {
			return true
		}
		j = h.parent[j]
	}
	return false
}

// topSentinel is the root for members with no resolvable manager.
func (h *hierarchy) topSentinel() string {
	if h.first(func(o model.CanonicalExecutive) bool { return o.Level == model.LevelCSuite }) >= 0 {
		return model.BoardOfDirectors
	}
	return model.ExecutiveLeadership
}

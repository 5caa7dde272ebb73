package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/orgmap-cli/internal/model"
)

// VerifyQuery builds the corroboration query for one executive.
func VerifyQuery(e model.CanonicalExecutive, company string) string {
	q := fmt.Sprintf(`"%s" "%s"`, e.Name, company)
	if e.Title != "" && !e.Ambiguous {
		q += fmt.Sprintf(` "%s"`, e.Title)
	}
	return q + ` -former -"ex-"`
}

// verifyStats counts verifier outcomes for phase bookkeeping.
type verifyStats struct {
	Calls    int
	Failures int
	Raised   int
}

// Verify issues one targeted search per executive. Any non-empty result set
// raises confidence to High and adds the result URLs as sources. Failures and
// empty results leave the record as it was; confidence never goes down. The
// input slice is not modified.
func Verify(ctx context.Context, searcher Searcher, p *pool, execs []model.CanonicalExecutive, company string) ([]model.CanonicalExecutive, verifyStats) {
	log := zap.L().With(zap.String("company", company), zap.String("phase", "verify"))

	results := runAll(ctx, p, execs, func(ctx context.Context, e model.CanonicalExecutive) ([]SearchResult, error) {
		return searcher.Search(ctx, VerifyQuery(e, company), nil)
	})

	out := make([]model.CanonicalExecutive, len(execs))
	stats := verifyStats{Calls: len(execs)}
	for i, e := range execs {
		out[i] = e.Clone()
		res := results[i]
		if res.Err != nil {
			stats.Failures++
			log.Debug("pipeline: verification search failed",
				zap.String("name", e.Name),
				zap.Error(sourceErr("search", VerifyQuery(e, company), res.Err)),
			)
			continue
		}
		if applyEvidence(&out[i], res.Out) {
			stats.Raised++
			log.Debug("pipeline: verification corroborated",
				zap.String("name", e.Name),
				zap.Int("results", len(res.Out)),
				zap.Int("surname_mentions", surnameMentions(e.Name, res.Out)),
			)
		}
	}
	return out, stats
}

// applyEvidence folds a verification result set into e and reports whether it
// counted as corroboration.
func applyEvidence(e *model.CanonicalExecutive, results []SearchResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		src := model.Source{URLOrLabel: r.URL, Kind: model.SourceSearchResult}
		if !e.HasSource(src) {
			e.Sources = append(e.Sources, src)
		}
	}
	e.Confidence = model.MaxConfidence(e.Confidence, model.ConfidenceHigh)
	return true
}

// surnameMentions counts results whose text names the person's surname.
func surnameMentions(name string, results []SearchResult) int {
	surname := surnameOf(name)
	if surname == "" {
		return 0
	}
	n := 0
	for _, r := range results {
		if strings.Contains(strings.ToLower(r.Title+" "+r.Snippet+" "+r.URL), surname) {
			n++
		}
	}
	return n
}

func surnameOf(name string) string {
	f := strings.Fields(name)
	if len(f) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSuffix(f[len(f)-1], "."))
}

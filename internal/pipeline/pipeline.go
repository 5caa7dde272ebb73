// Package pipeline turns a company name into a citation-backed AccountMap:
// plan queries, search, fetch, extract and merge, verify, infer the
// hierarchy, classify roles and assemble.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/orgmap-cli/internal/config"
	"github.com/sells-group/orgmap-cli/internal/extract"
	"github.com/sells-group/orgmap-cli/internal/model"
	"github.com/sells-group/orgmap-cli/internal/resolve"
	"github.com/sells-group/orgmap-cli/internal/store"
)

// fetchInstruction asks an instruction-following fetcher to reduce a page to
// lines the structured extractor reads.
const fetchInstruction = `List every person named on this page with their job title, one per line, as "Name: <full name>, Title: <job title>". Append ", Department: <department>" or ", Reports to: <manager name>" only when the page states them. Skip customers, investors and testimonials.`

// Options tunes a Pipeline.
type Options struct {
	Workers         int
	RequestInterval time.Duration
	CallTimeout     time.Duration
	PhaseTimeout    time.Duration
	Verify          bool
	MaxPages        int
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Workers:         4,
		RequestInterval: 1500 * time.Millisecond,
		CallTimeout:     20 * time.Second,
		PhaseTimeout:    3 * time.Minute,
		Verify:          true,
		MaxPages:        8,
	}
}

// OptionsFromConfig converts the discovery config section.
func OptionsFromConfig(cfg config.DiscoveryConfig) Options {
	return Options{
		Workers:         cfg.Workers,
		RequestInterval: cfg.RequestInterval(),
		CallTimeout:     cfg.CallTimeout(),
		PhaseTimeout:    cfg.PhaseTimeout(),
		Verify:          cfg.Verify,
		MaxPages:        cfg.MaxPages,
	}
}

// Pipeline runs account-mapping for one company at a time. Search and fetch
// are injected; the store is optional and only records run history.
type Pipeline struct {
	opts     Options
	searcher Searcher
	fetcher  Fetcher
	store    store.Store
	now      func() time.Time
}

// New creates a Pipeline. st may be nil.
func New(opts Options, searcher Searcher, fetcher Fetcher, st store.Store) *Pipeline {
	return &Pipeline{
		opts:     opts,
		searcher: searcher,
		fetcher:  fetcher,
		store:    st,
		now:      time.Now,
	}
}

type searchHit struct {
	query  Query
	result SearchResult
}

type fetchedPage struct {
	url  string
	text string
}

// runState is the orchestrator's private accumulator for one run. Phases
// return values to it; workers never touch it.
type runState struct {
	p       *Pipeline
	log     *zap.Logger
	company model.Company
	runID   string
	pool    *pool
	gaps    []string
	phases  []model.PhaseResult
}

// Run maps one company. Source failures, timeouts and empty results degrade
// the map and add gaps; the only error is a missing company name.
func (p *Pipeline) Run(ctx context.Context, company model.Company) (*model.AccountMap, error) {
	company.Name = strings.TrimSpace(company.Name)
	if company.Name == "" {
		return nil, eris.New("pipeline: company name is required")
	}
	company.Domain = ResolveDomain(company.Name, company.Domain)

	r := &runState{
		p:       p,
		log:     zap.L().With(zap.String("company", company.Name), zap.String("domain", company.Domain)),
		company: company,
		pool:    newPool(p.opts.Workers, p.opts.RequestInterval, p.opts.CallTimeout),
	}
	r.log.Info("pipeline: starting account map")
	r.createRun(ctx)

	var queries []Query
	r.phase(ctx, "plan", func(_ context.Context, pr *model.PhaseResult) {
		queries = PlanQueries(company.Name, company.Domain)
		pr.Records = len(queries)
	})

	r.setStatus(ctx, model.RunStatusSearching)
	var hits []searchHit
	r.phase(ctx, "search", func(ctx context.Context, pr *model.PhaseResult) {
		hits = r.search(ctx, queries, pr)
	})

	r.setStatus(ctx, model.RunStatusFetching)
	var pages []fetchedPage
	targets := r.fetchTargets(hits)
	if len(targets) == 0 {
		r.skip(ctx, "fetch")
	} else {
		r.phase(ctx, "fetch", func(ctx context.Context, pr *model.PhaseResult) {
			pages = r.fetch(ctx, targets, pr)
		})
	}

	// Extraction and inference are local and always run, even after the
	// caller cancels, so partial source results still produce a map.
	local := context.WithoutCancel(ctx)

	r.setStatus(ctx, model.RunStatusMerging)
	var execs []model.CanonicalExecutive
	var facts CompanyFacts
	r.phase(local, "extract", func(_ context.Context, pr *model.PhaseResult) {
		execs, facts = r.extract(hits, pages, pr)
	})

	if p.opts.Verify && len(execs) > 0 {
		r.setStatus(ctx, model.RunStatusVerifying)
		r.phase(ctx, "verify", func(ctx context.Context, pr *model.PhaseResult) {
			execs = r.verify(ctx, execs, pr)
		})
	} else {
		r.skip(ctx, "verify")
	}

	var roles []model.RoleAssignment
	r.phase(local, "hierarchy", func(_ context.Context, pr *model.PhaseResult) {
		execs = BuildHierarchy(execs)
		pr.Records = len(execs)
	})
	r.phase(local, "roles", func(_ context.Context, pr *model.PhaseResult) {
		roles = ClassifyRoles(execs, company.Name)
		pr.Records = len(roles)
	})

	m := Assemble(AssembleInput{
		Company:     company.Name,
		Domain:      company.Domain,
		Executives:  execs,
		Roles:       roles,
		Facts:       facts,
		Gaps:        r.gaps,
		GeneratedAt: p.now().UTC(),
	})
	m.RunID = r.runID

	r.finish(local, m)
	r.log.Info("pipeline: account map complete",
		zap.Int("people", len(m.OrgTree)),
		zap.Int("gaps", len(m.Gaps)),
		zap.Int("phases", len(r.phases)),
		zap.String("status", string(m.Status)),
	)
	return m, nil
}

func (r *runState) createRun(ctx context.Context) {
	if r.p.store == nil {
		return
	}
	run, err := r.p.store.CreateRun(ctx, r.company)
	if err != nil {
		r.log.Warn("pipeline: failed to create run", zap.Error(err))
		return
	}
	r.runID = run.ID
	r.log = r.log.With(zap.String("run_id", run.ID))
}

func (r *runState) setStatus(ctx context.Context, status model.RunStatus) {
	if r.p.store == nil || r.runID == "" {
		return
	}
	if err := r.p.store.UpdateRunStatus(ctx, r.runID, status); err != nil {
		r.log.Warn("pipeline: failed to update status", zap.Error(err))
	}
}

func (r *runState) finish(ctx context.Context, m *model.AccountMap) {
	if r.p.store == nil || r.runID == "" {
		return
	}
	if err := r.p.store.UpdateRunResult(ctx, r.runID, m); err != nil {
		r.log.Warn("pipeline: failed to save result", zap.Error(err))
	}
	r.setStatus(ctx, model.RunStatusComplete)
}

func (r *runState) addGap(g string) {
	r.gaps = append(r.gaps, g)
}

// phase runs fn under its own timeout and records the outcome. A phase that
// runs out of time keeps whatever it produced and adds a gap.
func (r *runState) phase(ctx context.Context, name string, fn func(ctx context.Context, pr *model.PhaseResult)) {
	if ctx.Err() != nil {
		r.skip(ctx, name)
		return
	}

	var stored *model.RunPhase
	if r.p.store != nil && r.runID != "" {
		var err error
		if stored, err = r.p.store.CreatePhase(ctx, r.runID, name); err != nil {
			r.log.Warn("pipeline: failed to create phase", zap.String("phase", name), zap.Error(err))
		}
	}

	phaseCtx, cancel := ctx, context.CancelFunc(func() {})
	if r.p.opts.PhaseTimeout > 0 {
		phaseCtx, cancel = context.WithTimeout(ctx, r.p.opts.PhaseTimeout)
	}
	defer cancel()

	pr := &model.PhaseResult{Name: name}
	start := time.Now()
	fn(phaseCtx, pr)
	pr.Duration = time.Since(start).Milliseconds()

	if errors.Is(phaseCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		pr.Status = model.PhaseStatusTimedOut
		pr.Error = fmt.Sprintf("phase exceeded %s", r.p.opts.PhaseTimeout)
		r.addGap(fmt.Sprintf("%s phase timed out after %s; results are partial", name, r.p.opts.PhaseTimeout))
		r.log.Warn("pipeline: phase timed out", zap.String("phase", name), zap.Int64("duration_ms", pr.Duration))
	} else {
		pr.Status = model.PhaseStatusComplete
		r.log.Info("pipeline: phase complete",
			zap.String("phase", name),
			zap.Int64("duration_ms", pr.Duration),
			zap.Int("calls", pr.Calls),
			zap.Int("failures", pr.Failures),
			zap.Int("records", pr.Records),
		)
	}

	r.record(ctx, stored, pr)
}

func (r *runState) skip(ctx context.Context, name string) {
	pr := &model.PhaseResult{Name: name, Status: model.PhaseStatusSkipped}
	if ctx.Err() != nil {
		pr.Error = ctx.Err().Error()
	}
	r.log.Debug("pipeline: phase skipped", zap.String("phase", name))
	r.record(ctx, nil, pr)
}

func (r *runState) record(ctx context.Context, stored *model.RunPhase, pr *model.PhaseResult) {
	if stored != nil {
		if err := r.p.store.CompletePhase(ctx, stored.ID, pr); err != nil {
			r.log.Warn("pipeline: failed to complete phase", zap.String("phase", pr.Name), zap.Error(err))
		}
	}
	r.phases = append(r.phases, *pr)
}

func (r *runState) search(ctx context.Context, queries []Query, pr *model.PhaseResult) []searchHit {
	results := runAll(ctx, r.pool, queries, func(ctx context.Context, q Query) ([]SearchResult, error) {
		return r.p.searcher.Search(ctx, q.Text, q.AllowedSources)
	})

	var hits []searchHit
	seen := make(map[string]bool)
	empty := 0
	for i, res := range results {
		pr.Calls++
		if res.Err != nil {
			pr.Failures++
			r.log.Debug("pipeline: search failed", zap.Error(sourceErr("search", queries[i].Text, res.Err)))
			continue
		}
		if len(res.Out) == 0 {
			empty++
			continue
		}
		for _, hit := range res.Out {
			if hit.URL != "" {
				if seen[hit.URL] {
					continue
				}
				seen[hit.URL] = true
			}
			hits = append(hits, searchHit{query: queries[i], result: hit})
		}
	}
	pr.Records = len(hits)

	switch {
	case len(queries) > 0 && pr.Failures+empty == len(queries):
		r.addGap(fmt.Sprintf("Search returned no results for any of %d planned queries", len(queries)))
	case pr.Failures > 0:
		r.addGap(fmt.Sprintf("Search unavailable for %d of %d queries", pr.Failures, len(queries)))
	}
	return hits
}

// fetchTargets lists pages worth fetching: org-chart and company-site result
// URLs first, then the fixed company-site paths, capped at MaxPages.
func (r *runState) fetchTargets(hits []searchHit) []string {
	if r.p.opts.MaxPages <= 0 || r.p.fetcher == nil {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	add := func(u string) {
		if u == "" || seen[u] || len(out) >= r.p.opts.MaxPages {
			return
		}
		seen[u] = true
		out = append(out, u)
	}
	for _, h := range hits {
		if h.query.Target == TargetOrgChartSite || h.query.Target == TargetCompanySite {
			add(h.result.URL)
		}
	}
	for _, u := range CompanySitePaths(r.company.Domain) {
		add(u)
	}
	return out
}

func (r *runState) fetch(ctx context.Context, targets []string, pr *model.PhaseResult) []fetchedPage {
	results := runAll(ctx, r.pool, targets, func(ctx context.Context, u string) (string, error) {
		return r.p.fetcher.Fetch(ctx, u, fetchInstruction)
	})

	var pages []fetchedPage
	for i, res := range results {
		pr.Calls++
		if res.Err != nil || strings.TrimSpace(res.Out) == "" {
			pr.Failures++
			r.log.Debug("pipeline: fetch failed", zap.Error(sourceErr("fetch", targets[i], res.Err)))
			continue
		}
		pages = append(pages, fetchedPage{url: targets[i], text: res.Out})
	}
	pr.Records = len(pages)

	if len(pages) == 0 {
		r.addGap(fmt.Sprintf("Company pages unavailable: none of %d pages could be fetched", len(targets)))
	}
	return pages
}

func hitSource(h searchHit) model.Source {
	label := h.result.URL
	if label == "" {
		label = "search: " + h.query.Text
	}
	return model.Source{URLOrLabel: label, Kind: model.SourceSearchResult}
}

// extract runs the per-source extractors and merges their records. Search
// hits that never mention the company are ignored.
func (r *runState) extract(hits []searchHit, pages []fetchedPage, pr *model.PhaseResult) ([]model.CanonicalExecutive, CompanyFacts) {
	snippets := extract.NewSnippet(r.company.Name)
	pageText := extract.NewPage(r.company.Name)

	var records []model.CandidateRecord
	var texts []string
	unparseable := 0

	for _, h := range hits {
		text := h.result.Title + "\n" + h.result.Snippet
		if !extract.MentionsCompany(text, r.company.Name) {
			continue
		}
		texts = append(texts, h.result.Snippet)
		recs := snippets.Extract(text, hitSource(h))
		if len(recs) == 0 {
			unparseable++
		}
		records = append(records, recs...)
	}
	for _, pg := range pages {
		texts = append(texts, pg.text)
		recs := pageText.Extract(pg.text, model.Source{URLOrLabel: pg.url, Kind: model.SourcePageFetch})
		if len(recs) == 0 {
			unparseable++
		}
		records = append(records, recs...)
	}
	if unparseable > 0 {
		r.log.Debug("pipeline: texts without candidates",
			zap.Int("count", unparseable),
			zap.Error(ErrUnparseableContent),
		)
	}

	execs := resolve.Merge(records)
	for _, e := range execs {
		if e.Ambiguous {
			r.log.Info("pipeline: kept conflicting titles",
				zap.String("name", e.Name),
				zap.String("title", e.Title),
				zap.Error(ErrAmbiguousMerge),
			)
		}
	}

	pr.Calls = len(hits) + len(pages)
	pr.Records = len(execs)
	return execs, ParseCompanyFacts(texts)
}

func (r *runState) verify(ctx context.Context, execs []model.CanonicalExecutive, pr *model.PhaseResult) []model.CanonicalExecutive {
	out, stats := Verify(ctx, r.p.searcher, r.pool, execs, r.company.Name)
	pr.Calls = stats.Calls
	pr.Failures = stats.Failures
	pr.Records = stats.Raised

	switch {
	case stats.Failures == 0:
	case stats.Failures == stats.Calls:
		r.addGap(fmt.Sprintf("Verification unavailable: all %d searches failed; confidence reflects source counts only", stats.Calls))
	default:
		r.addGap(fmt.Sprintf("Verification unavailable for %d of %d people", stats.Failures, stats.Calls))
	}
	return out
}

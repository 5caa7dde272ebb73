//go:build !integration

package main

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/orgmap-cli/internal/model"
	"github.com/sells-group/orgmap-cli/internal/store"
)

// fakeMapper records the companies it was asked to map.
type fakeMapper struct {
	mu    sync.Mutex
	calls []model.Company
	out   *model.AccountMap
	err   error
}

func (f *fakeMapper) Run(_ context.Context, company model.Company) (*model.AccountMap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, company)
	return f.out, f.err
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "orgmap.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func sampleMap() *model.AccountMap {
	return &model.AccountMap{
		RunID:       "run-1",
		Company:     "Acme",
		Domain:      "acme.com",
		Status:      model.MapStatusComplete,
		GeneratedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		CompanySnapshot: model.CompanySnapshot{
			Industry:         "Computer Software",
			HQ:               "Austin, Texas",
			Size:             model.Placeholder,
			Revenue:          model.Placeholder,
			StructureSummary: "1 C-Suite, 1 VP; reporting lines inferred",
		},
		OrgTree: []model.OrgNode{
			{
				Name: "Jane Doe", Title: "Chief Executive Officer", Level: model.LevelCSuite,
				RegionFunction: "Executive", Sources: []string{"https://acme.com/leadership"},
				Confidence: model.ConfidenceHigh, ReportsToInferred: true,
			},
			{
				Name: "John Smith", Title: "VP Engineering", ReportsTo: "Jane Doe", Level: model.LevelVP,
				RegionFunction: "Engineering", Sources: []string{"https://acme.com/leadership"},
				Confidence: model.ConfidenceMedium, ReportsToInferred: true,
			},
		},
		RoleAnalysis: []model.RoleEntry{
			{Name: "Jane Doe", Title: "Chief Executive Officer", Role: model.RoleEconomicBuyer, Notes: "Signs off on spend"},
		},
		Gaps:      []string{"No CISO identified"},
		Citations: []string{"https://acme.com/leadership"},
	}
}

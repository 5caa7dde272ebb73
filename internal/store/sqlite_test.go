package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/orgmap-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

var _ Store = (*SQLiteStore)(nil)

func TestSQLite_Migrate_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}

// --- Runs ---

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.Company{Name: "Acme Corp", Domain: "acme.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "Acme Corp", got.Company.Name)
	assert.Equal(t, "acme.com", got.Company.Domain)
	assert.Equal(t, model.RunStatusQueued, got.Status)
	assert.Nil(t, got.Result)
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLite_UpdateRunStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.Company{Name: "Acme Corp"})
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusSearching))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusSearching, got.Status)
}

func TestSQLite_UpdateRunStatus_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.UpdateRunStatus(context.Background(), "missing", model.RunStatusFailed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLite_UpdateRunResult(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.Company{Name: "Acme Corp"})
	require.NoError(t, err)

	m := &model.AccountMap{
		RunID:   run.ID,
		Company: "Acme Corp",
		Status:  model.MapStatusComplete,
		OrgTree: []model.OrgNode{{
			Name:       "Jane Doe",
			Title:      "CEO",
			ReportsTo:  model.BoardOfDirectors,
			Level:      model.LevelCSuite,
			Sources:    []string{"https://acme.com/leadership"},
			Confidence: model.ConfidenceMedium,
		}},
		RoleAnalysis: []model.RoleEntry{},
		Gaps:         []string{"No CTO identified"},
		Citations:    []string{"https://acme.com/leadership"},
	}
	require.NoError(t, st.UpdateRunResult(ctx, run.ID, m))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Result)
	assert.Equal(t, run.ID, got.Result.RunID)
	require.Len(t, got.Result.OrgTree, 1)
	assert.Equal(t, "Jane Doe", got.Result.OrgTree[0].Name)
	assert.Equal(t, model.LevelCSuite, got.Result.OrgTree[0].Level)
	assert.Equal(t, model.ConfidenceMedium, got.Result.OrgTree[0].Confidence)
	assert.Equal(t, []string{"No CTO identified"}, got.Result.Gaps)
	// Status is owned by UpdateRunStatus.
	assert.Equal(t, model.RunStatusQueued, got.Status)
}

func TestSQLite_ListRuns_Filters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	acme, err := st.CreateRun(ctx, model.Company{Name: "Acme Corp"})
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, model.Company{Name: "Globex"})
	require.NoError(t, err)
	require.NoError(t, st.UpdateRunStatus(ctx, acme.ID, model.RunStatusComplete))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	done, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, acme.ID, done[0].ID)

	byName, err := st.ListRuns(ctx, RunFilter{Company: "acme corp"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Acme Corp", byName[0].Company.Name)

	limited, err := st.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	offset, err := st.ListRuns(ctx, RunFilter{Limit: 10, Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, offset)
	assert.NotNil(t, offset)
}

// --- Phases ---

func TestSQLite_Phases(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.Company{Name: "Acme Corp"})
	require.NoError(t, err)

	search, err := st.CreatePhase(ctx, run.ID, "search")
	require.NoError(t, err)
	assert.Equal(t, model.PhaseStatusRunning, search.Status)

	fetch, err := st.CreatePhase(ctx, run.ID, "fetch")
	require.NoError(t, err)

	require.NoError(t, st.CompletePhase(ctx, search.ID, &model.PhaseResult{
		Name:     "search",
		Status:   model.PhaseStatusComplete,
		Calls:    22,
		Failures: 2,
		Records:  40,
	}))
	require.NoError(t, st.CompletePhase(ctx, fetch.ID, &model.PhaseResult{
		Name:   "fetch",
		Status: model.PhaseStatusTimedOut,
		Error:  "phase exceeded 3m0s",
	}))

	phases, err := st.ListPhases(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, phases, 2)
	assert.Equal(t, "search", phases[0].Name)
	assert.Equal(t, model.PhaseStatusComplete, phases[0].Status)
	require.NotNil(t, phases[0].Result)
	assert.Equal(t, 22, phases[0].Result.Calls)
	assert.Equal(t, 2, phases[0].Result.Failures)
	assert.Equal(t, model.PhaseStatusTimedOut, phases[1].Status)
}

func TestSQLite_CompletePhase_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.CompletePhase(context.Background(), "missing", &model.PhaseResult{Status: model.PhaseStatusComplete})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

// --- Response cache ---

func TestSQLite_Cache_SetAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetCached(ctx, CacheSearch, `"Acme" CEO`, []byte(`[{"url":"https://acme.com"}]`), time.Hour))

	data, err := st.GetCached(ctx, CacheSearch, `"Acme" CEO`)
	require.NoError(t, err)
	assert.Equal(t, `[{"url":"https://acme.com"}]`, string(data))
}

func TestSQLite_Cache_KindsAreSeparate(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetCached(ctx, CacheFetch, "https://acme.com/team", []byte("page"), time.Hour))

	data, err := st.GetCached(ctx, CacheSearch, "https://acme.com/team")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSQLite_Cache_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	data, err := st.GetCached(context.Background(), CacheFetch, "https://nowhere.example")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSQLite_Cache_ExpiredAndOverwrite(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetCached(ctx, CacheFetch, "https://acme.com/about", []byte("old"), -time.Hour))

	data, err := st.GetCached(ctx, CacheFetch, "https://acme.com/about")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, st.SetCached(ctx, CacheFetch, "https://acme.com/about", []byte("new"), time.Hour))

	data, err = st.GetCached(ctx, CacheFetch, "https://acme.com/about")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestSQLite_DeleteExpired(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetCached(ctx, CacheSearch, "a", []byte("1"), -time.Minute))
	require.NoError(t, st.SetCached(ctx, CacheSearch, "b", []byte("2"), -time.Minute))
	require.NoError(t, st.SetCached(ctx, CacheSearch, "c", []byte("3"), time.Hour))

	n, err := st.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := st.GetCached(ctx, CacheSearch, "c")
	require.NoError(t, err)
	assert.Equal(t, "3", string(data))
}

func TestCacheKey(t *testing.T) {
	a := CacheKey(CacheSearch, "acme")
	assert.Len(t, a, 64)
	assert.Equal(t, a, CacheKey(CacheSearch, "acme"))
	assert.NotEqual(t, a, CacheKey(CacheFetch, "acme"))
}
